package notification

import (
	"context"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
	"github.com/rios0rios0/portetrack/internal/domain/repositories"
)

// LogNotifierRepository writes alerts to the log; HIGH urgency alerts are
// logged as errors.
type LogNotifierRepository struct{}

var _ repositories.NotifierRepository = (*LogNotifierRepository)(nil)

// NewLogNotifierRepository creates a new LogNotifierRepository.
func NewLogNotifierRepository() *LogNotifierRepository {
	return &LogNotifierRepository{}
}

func (it *LogNotifierRepository) Send(_ context.Context, alert entities.Alert) error {
	fields := logger.Fields{"type": alert.Type, "urgency": alert.Urgency}
	for _, f := range alert.Fields {
		fields[f.Title] = f.Value
	}
	entry := logger.WithFields(fields)

	switch alert.Urgency {
	case entities.UrgencyHigh:
		entry.Errorf("[notify] %s", alert.Title)
	case entities.UrgencyMedium:
		entry.Warnf("[notify] %s", alert.Title)
	default:
		entry.Infof("[notify] %s", alert.Title)
	}
	return nil
}
