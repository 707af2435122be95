package domain

import "strings"

// Service is the closed set of campus desks the engine knows rules for.
type Service int

const (
	ServiceUnknown Service = iota
	ServiceCanteen
	ServiceLibrary
	ServiceAdminOffice
	ServiceExamCell
)

// KnownServices lists the services in dashboard order.
var KnownServices = []Service{ServiceCanteen, ServiceLibrary, ServiceAdminOffice, ServiceExamCell}

// serviceTokens is checked in order; the first token contained in the
// lowercased input wins, so "Admin exam desk" resolves to the admin office.
var serviceTokens = []struct {
	token   string
	service Service
}{
	{"canteen", ServiceCanteen},
	{"library", ServiceLibrary},
	{"admin", ServiceAdminOffice},
	{"exam", ServiceExamCell},
}

// ClassifyService resolves a free-form service name once, at the boundary.
func ClassifyService(name string) Service {
	lower := strings.ToLower(name)
	for _, st := range serviceTokens {
		if strings.Contains(lower, st.token) {
			return st.service
		}
	}
	return ServiceUnknown
}

func (s Service) String() string {
	switch s {
	case ServiceCanteen:
		return "Canteen"
	case ServiceLibrary:
		return "Library"
	case ServiceAdminOffice:
		return "Admin Office"
	case ServiceExamCell:
		return "Exam Cell"
	default:
		return "Unknown"
	}
}
