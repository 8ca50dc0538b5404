package notify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const sendTimeout = 30 * time.Second

type Messenger interface {
	SendMessage(ctx context.Context, telegramID int64, text string) error
}

// Notifier delivers messages in the background so callers never wait on
// the messaging channel.
type Notifier struct {
	messenger Messenger
	pool      WorkerPoolI
}

func New(messenger Messenger, workers, queueSize int) *Notifier {
	return &Notifier{
		messenger: messenger,
		pool:      NewWorkerPool(workers, queueSize),
	}
}

func (n *Notifier) Notify(telegramID int64, text string) {
	queued := n.pool.TryAddTask(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := n.messenger.SendMessage(ctx, telegramID, text); err != nil {
			return fmt.Errorf("notify %d: %w", telegramID, err)
		}
		return nil
	})
	if !queued {
		zap.L().Warn("notification dropped", zap.Int64("telegram_id", telegramID))
	}
}

func (n *Notifier) Close() {
	n.pool.Close()
}
