package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/kranthisuryadevara25-cpu/monyFest-sub000/internal/model"
)

// grantSignupCommissions создаёт ожидающие комиссии для предков реферальной
// цепочки нового пользователя. Запись ведётся по принципу best effort:
// ошибки логируются, регистрация пользователя не отменяется.
func (s *Service) grantSignupCommissions(ctx context.Context, newUserID int64, chain []int64) {
	if len(chain) == 0 {
		return
	}

	settings, err := s.repo.GetCommissionSettings(ctx)
	if err != nil {
		s.logger.Error("signup commissions skipped: settings unavailable",
			zap.Error(err), zap.Int64("newUserID", newUserID))
		return
	}

	sourceID := strconv.FormatInt(newUserID, 10)
	for i, ancestorID := range chain {
		level := i + 1
		if level > model.MaxReferralChain {
			break
		}

		amount := settings.LevelAmount(level)
		if amount <= 0 {
			continue
		}

		t := model.NewCommissionTransaction(ancestorID, amount, level, sourceID,
			fmt.Sprintf("L%d signup commission for user %d", level, newUserID))
		if _, err := s.repo.CreateTransaction(ctx, t); err != nil {
			s.logger.Error("signup commission write failed",
				zap.Error(err), zap.Int64("ancestorID", ancestorID), zap.Int("level", level))
		}
	}
}

// CreateMerchant создаёт продавца и, при наличии связанного агента,
// начисляет тому разовую комиссию merchant bonus (best effort).
func (s *Service) CreateMerchant(ctx context.Context, m model.Merchant) (int64, error) {
	id, err := s.repo.CreateMerchant(ctx, m)
	if err != nil {
		return 0, err
	}

	if m.LinkedAgentID != nil {
		settings, err := s.repo.GetCommissionSettings(ctx)
		if err != nil {
			s.logger.Error("merchant bonus skipped: settings unavailable",
				zap.Error(err), zap.Int64("merchantID", id))
			return id, nil
		}

		if settings.MerchantBonus > 0 {
			t := model.NewCommissionTransaction(*m.LinkedAgentID, settings.MerchantBonus, 1,
				fmt.Sprintf("merchant:%d", id),
				fmt.Sprintf("merchant bonus for onboarding %s", m.Name))
			if _, err := s.repo.CreateTransaction(ctx, t); err != nil {
				s.logger.Error("merchant bonus write failed",
					zap.Error(err), zap.Int64("agentID", *m.LinkedAgentID), zap.Int64("merchantID", id))
			}
		}
	}

	return id, nil
}

// ReviewCommissionPayout подтверждает либо отклоняет ожидающую выплату комиссии.
func (s *Service) ReviewCommissionPayout(ctx context.Context, transactionID int64, approve bool) error {
	to := model.PayoutCompleted
	if !approve {
		to = model.PayoutRejected
	}
	return s.repo.UpdatePayoutStatus(ctx, transactionID, to)
}
