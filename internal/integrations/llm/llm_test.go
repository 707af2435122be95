package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campuspulse/internal/domain"
)

type crowdReply struct {
	CrowdLevel           string  `json:"crowdLevel"`
	EstimatedWaitMinutes float64 `json:"estimatedWaitMinutes"`
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    crowdReply
		wantErr bool
	}{
		{name: "plain", raw: `{"crowdLevel":"High","estimatedWaitMinutes":30}`, want: crowdReply{"High", 30}},
		{name: "fenced", raw: "```json\n{\"crowdLevel\":\"Low\",\"estimatedWaitMinutes\":5}\n```", want: crowdReply{"Low", 5}},
		{name: "prose around", raw: "Sure! {\"crowdLevel\":\"Medium\",\"estimatedWaitMinutes\":12.5} hope it helps", want: crowdReply{"Medium", 12.5}},
		{name: "brace inside string", raw: `{"crowdLevel":"High {peak}","estimatedWaitMinutes":1}`, want: crowdReply{"High {peak}", 1}},
		{name: "no object", raw: "I cannot predict that.", wantErr: true},
		{name: "unbalanced", raw: `{"crowdLevel":"High"`, wantErr: true},
		{name: "wrong type", raw: `{"crowdLevel":3}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON[crowdReply](tt.raw, nil)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrOracleMalformedResponse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractJSONValidator(t *testing.T) {
	_, err := ExtractJSON[crowdReply](`{"crowdLevel":""}`, func(r crowdReply) error {
		if r.CrowdLevel == "" {
			return errors.New("missing crowdLevel")
		}
		return nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOracleMalformedResponse)
	assert.Contains(t, err.Error(), "missing crowdLevel")
}

func TestCanonicalLevel(t *testing.T) {
	assert.Equal(t, domain.CrowdHigh, CanonicalLevel(" HIGH "))
	assert.Equal(t, domain.CrowdMedium, CanonicalLevel("medium"))
	assert.Equal(t, domain.CrowdLow, CanonicalLevel("Low"))
	assert.Equal(t, CrowdLevel("Packed"), CanonicalLevel("Packed"))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"Dosa", "Idli", "Coffee"}, SplitList(" Dosa, Idli ,,Coffee, "))
	assert.Empty(t, SplitList(" , "))
}

func TestNewClientWithoutCredential(t *testing.T) {
	c, ok := NewClient(Config{LLMProvider: "openai"})
	assert.False(t, ok)
	assert.Nil(t, c)

	_, err := c.Complete(context.Background(), Request{Prompt: "x"})
	assert.ErrorIs(t, err, ErrOracleNotConfigured)
}

func newOpenAITestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, ok := NewClient(Config{LLMProvider: "openai", OpenAIAPIKey: "sk-test", OpenAIBaseURL: srv.URL + "/"})
	require.True(t, ok)
	return c
}

func TestCompleteOpenAI(t *testing.T) {
	var got openAIRequest
	c := newOpenAITestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"crowdLevel\":\"High\"}"}}],"usage":{"prompt_tokens":10,"completion_tokens":5}}`))
	})

	text, err := c.Complete(context.Background(), Request{
		Task:   "predict",
		Prompt: "Predict the crowd",
		Schema: []Field{{Name: "crowdLevel", Type: "string"}},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"crowdLevel":"High"}`, text)
	assert.Equal(t, defaultOpenAIModel, got.Model)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	require.Len(t, got.Messages, 2)
	assert.Contains(t, got.Messages[0].Content, `"crowdLevel" (string)`)
	assert.Equal(t, "Predict the crowd", got.Messages[1].Content)
}

func TestCompleteOpenAIPlainTextHasNoResponseFormat(t *testing.T) {
	var got openAIRequest
	c := newOpenAITestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Dosa, Idli"}}]}`))
	})

	text, err := c.Complete(context.Background(), Request{Task: "demand", Prompt: "List items"})
	require.NoError(t, err)
	assert.Equal(t, "Dosa, Idli", text)
	assert.Nil(t, got.ResponseFormat)
}

func TestCompleteOpenAIErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "api error", status: http.StatusUnauthorized, body: `{"error":{"message":"bad key"}}`, wantErr: ErrOracleUnavailable},
		{name: "server error non json", status: http.StatusBadGateway, body: `<html>`, wantErr: ErrOracleUnavailable},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, wantErr: ErrOracleMalformedResponse},
		{name: "garbage body", status: http.StatusOK, body: `not json`, wantErr: ErrOracleMalformedResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newOpenAITestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.Complete(context.Background(), Request{Prompt: "x"})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCompleteOpenAITimeout(t *testing.T) {
	c := newOpenAITestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Complete(ctx, Request{Prompt: "x"})
	assert.ErrorIs(t, err, ErrOracleTimeout)
}

func TestNewClientAnthropicDefaults(t *testing.T) {
	c, ok := NewClient(Config{LLMProvider: "anthropic", AnthropicAPIKey: "sk-ant"})
	require.True(t, ok)
	assert.Equal(t, "anthropic", c.Provider())
	assert.Equal(t, defaultAnthropicModel, c.Model())
}
