//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"sync"
	"time"

	"github.com/rios0rios0/portetrack/internal/domain/repositories"
)

// SpyMetricsRepository counts observations by label.
type SpyMetricsRepository struct {
	mu         sync.Mutex
	Components map[string]int
	Decisions  map[string]int
	Pipelines  map[string]int
	Stages     map[string]int // "stage:status"
	Written    []string
}

var _ repositories.MetricsRepository = (*SpyMetricsRepository)(nil)

// NewSpyMetricsRepository creates a spy with empty counters.
func NewSpyMetricsRepository() *SpyMetricsRepository {
	return &SpyMetricsRepository{
		Components: map[string]int{},
		Decisions:  map[string]int{},
		Pipelines:  map[string]int{},
		Stages:     map[string]int{},
	}
}

func (s *SpyMetricsRepository) ObserveComponent(outcome string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Components[outcome]++
}

func (s *SpyMetricsRepository) ObserveDecision(decision string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Decisions[decision]++
}

func (s *SpyMetricsRepository) ObservePipeline(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Pipelines[status]++
}

func (s *SpyMetricsRepository) ObserveStage(stage, status string, _ time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Stages[stage+":"+status]++
}

func (s *SpyMetricsRepository) WriteTextfile(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Written = append(s.Written, path)
	return nil
}
