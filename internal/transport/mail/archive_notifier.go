package mail

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"github.com/njprem/user_admin_backend/internal/domain"
	"github.com/njprem/user_admin_backend/internal/repository/ports"
)

// ArchiveNotifier stores every rendered notification as an .eml object instead
// of delivering it.
type ArchiveNotifier struct {
	storage ports.ObjectStorage
	bucket  string
	from    string
	logger  *zap.Logger
	now     func() time.Time
}

func NewArchiveNotifier(storage ports.ObjectStorage, bucket, from string, logger *zap.Logger) *ArchiveNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArchiveNotifier{
		storage: storage,
		bucket:  bucket,
		from:    from,
		logger:  logger,
		now:     time.Now,
	}
}

func (a *ArchiveNotifier) Send(ctx context.Context, n domain.Notification) error {
	msg, err := Render(a.from, n)
	if err != nil {
		return err
	}
	data := msg.Bytes()
	object := fmt.Sprintf("%s/%s/%s.eml", n.Kind, a.now().UTC().Format("2006/01/02"), ksuid.New().String())

	url, err := a.storage.Upload(ctx, a.bucket, object, "message/rfc822", bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("archive notification: %w", err)
	}
	a.logger.Debug("notification archived",
		zap.String("kind", string(n.Kind)),
		zap.String("object", url),
	)
	return nil
}

var _ ports.Notifier = (*ArchiveNotifier)(nil)
