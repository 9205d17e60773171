package service

import (
	"context"

	"supper-club/internal/model"
	"supper-club/pkg/logger"

	"go.uber.org/zap"
)

type ConfirmationService interface {
	// Send 投遞報名確認訊息給訪客
	Send(ctx context.Context, confirmation *model.Confirmation) error
}

// LogConfirmationService 目前只把確認訊息寫進 log；
// 接簡訊或 email 供應商時換掉這個實作即可。
type LogConfirmationService struct{}

func NewLogConfirmationService() ConfirmationService {
	return &LogConfirmationService{}
}

func (s *LogConfirmationService) Send(ctx context.Context, confirmation *model.Confirmation) error {
	logger.WithComponent("confirmation").Info("registration confirmed",
		zap.Int("registration_id", confirmation.RegistrationID),
		zap.Int("event_id", confirmation.EventID),
		zap.String("name", confirmation.Name),
		zap.String("phone", confirmation.Phone),
		zap.Int("num_guests", confirmation.NumGuests),
		zap.String("event_title", confirmation.EventTitle),
	)
	return nil
}
