package llm

import (
	"strings"

	"campuspulse/internal/domain"
)

// CanonicalLevel maps case and spacing variants of a crowd label onto the
// canonical level. Unknown labels are returned trimmed but otherwise as-is.
func CanonicalLevel(label string) CrowdLevel {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "low":
		return domain.CrowdLow
	case "medium":
		return domain.CrowdMedium
	case "high":
		return domain.CrowdHigh
	default:
		return CrowdLevel(strings.TrimSpace(label))
	}
}
