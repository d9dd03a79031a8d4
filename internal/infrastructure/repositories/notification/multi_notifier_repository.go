package notification

import (
	"context"
	"errors"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
	"github.com/rios0rios0/portetrack/internal/domain/repositories"
)

// MultiNotifierRepository fans an alert out to every sink. A failing sink
// does not stop the others; the failures are joined.
type MultiNotifierRepository struct {
	sinks []repositories.NotifierRepository
}

var _ repositories.NotifierRepository = (*MultiNotifierRepository)(nil)

// NewMultiNotifierRepository creates a fan-out over the given sinks.
func NewMultiNotifierRepository(sinks ...repositories.NotifierRepository) *MultiNotifierRepository {
	return &MultiNotifierRepository{sinks: sinks}
}

// NewNotifierRepository returns the sinks the settings ask for: always the
// log, plus the webhook when a URL is configured.
func NewNotifierRepository(settings entities.NotificationSettings) repositories.NotifierRepository {
	sinks := []repositories.NotifierRepository{NewLogNotifierRepository()}
	if settings.WebhookURL != "" {
		sinks = append(sinks, NewWebhookNotifierRepository(settings))
	}
	return NewMultiNotifierRepository(sinks...)
}

func (it *MultiNotifierRepository) Send(ctx context.Context, alert entities.Alert) error {
	var errs []error
	for _, sink := range it.sinks {
		if err := sink.Send(ctx, alert); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
