package mail

import (
	"context"

	"go.uber.org/zap"

	"github.com/njprem/user_admin_backend/internal/domain"
	"github.com/njprem/user_admin_backend/internal/repository/ports"
)

// LogNotifier records notifications in the application log. Payload values
// carry tokens and are never written.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Send(ctx context.Context, n domain.Notification) error {
	msg, err := Render("", n)
	if err != nil {
		return err
	}
	l.logger.Info("notification",
		zap.String("kind", string(n.Kind)),
		zap.String("recipient", n.Recipient),
		zap.String("subject", msg.Subject),
	)
	return nil
}

var _ ports.Notifier = (*LogNotifier)(nil)
