package worker

import (
	"context"

	"supper-club/internal/queue"
	"supper-club/internal/service"
)

type ConfirmationWorker interface {
	// 訂閱確認訊息隊列
	Start(ctx context.Context) error
}

type ConfirmationWorkerImpl struct {
	service service.ConfirmationService
	queue   queue.ConfirmationQueue
}

func NewConfirmationWorker(service service.ConfirmationService, queue queue.ConfirmationQueue) ConfirmationWorker {
	return &ConfirmationWorkerImpl{
		service: service,
		queue:   queue,
	}
}

func (w *ConfirmationWorkerImpl) Start(ctx context.Context) error {
	msgs, err := w.queue.SubscribeConfirmations(ctx)
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgs {
			// 把隊列裡的確認訊息投遞出去，失敗就 Nack 等待重試
			err := w.service.Send(ctx, msg.Data)

			if err != nil {
				msg.Nack(true)
			} else {
				msg.Ack()
			}
		}
	}()
	return nil
}
