package ports

import (
	"context"

	"github.com/njprem/user_admin_backend/internal/domain"
)

type Notifier interface {
	Send(ctx context.Context, n domain.Notification) error
}
