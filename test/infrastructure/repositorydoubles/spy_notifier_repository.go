//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"sync"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
	"github.com/rios0rios0/portetrack/internal/domain/repositories"
)

// SpyNotifierRepository records every alert it is asked to send.
type SpyNotifierRepository struct {
	mu      sync.Mutex
	Alerts  []entities.Alert
	SendErr error
}

var _ repositories.NotifierRepository = (*SpyNotifierRepository)(nil)

func (s *SpyNotifierRepository) Send(_ context.Context, alert entities.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Alerts = append(s.Alerts, alert)
	return s.SendErr
}

// AlertsOfType returns the recorded alerts of the given type.
func (s *SpyNotifierRepository) AlertsOfType(alertType entities.AlertType) []entities.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entities.Alert
	for _, a := range s.Alerts {
		if a.Type == alertType {
			out = append(out, a)
		}
	}
	return out
}
