package repositories

import (
	"context"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
)

// NotifierRepository delivers alerts to a chat or log channel.
type NotifierRepository interface {
	Send(ctx context.Context, alert entities.Alert) error
}
