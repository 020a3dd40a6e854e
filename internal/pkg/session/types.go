// internal/pkg/session/types.go
package session

import (
	"time"

	"fleetdash/internal/domain/auth"
)

// SessionData is one browser session. The browser only ever sees ID; the fleet
// API tokens stay here.
type SessionData struct {
	ID             string              `json:"id"`
	State          auth.State          `json:"state"`
	Selections     map[string][]string `json:"selections,omitempty"`
	IPAddress      string              `json:"ip_address"`
	UserAgent      string              `json:"user_agent"`
	CreatedAt      time.Time           `json:"created_at"`
	LastActivityAt time.Time           `json:"last_activity_at"`
	ExpiresAt      time.Time           `json:"expires_at"`
}

// Phone returns the signed-in account's phone, or "".
func (s *SessionData) Phone() string {
	if s.State.User == nil {
		return ""
	}
	return s.State.User.Phone
}

// Selection returns the selected row keys for a dataset.
func (s *SessionData) Selection(dataset string) []string {
	if s.Selections == nil {
		return []string{}
	}
	if sel, ok := s.Selections[dataset]; ok {
		return sel
	}
	return []string{}
}

func (s *SessionData) SetSelection(dataset string, keys []string) {
	if s.Selections == nil {
		s.Selections = make(map[string][]string)
	}
	if len(keys) == 0 {
		delete(s.Selections, dataset)
		return
	}
	s.Selections[dataset] = keys
}
