package service

import (
	"context"
	"fmt"

	"github.com/kranthisuryadevara25-cpu/monyFest-sub000/internal/metrics"
	"github.com/kranthisuryadevara25-cpu/monyFest-sub000/internal/model"
)

// CreditBoost начисляет продавцу boost-кэшбэк за покупку и возвращает
// начисленную сумму в пайсах. Выключенный boost, нулевой процент и
// неположительная сумма дают 0 без изменений.
// grossAmount используется как база при apply_on = gross, иначе amount.
func (s *Service) CreditBoost(ctx context.Context, merchantID, amount, grossAmount int64, sourceID string) (int64, error) {
	settings, err := s.repo.GetBoostSettings(ctx)
	if err != nil {
		return 0, fmt.Errorf("load boost settings: %w", err)
	}

	if !settings.Enabled || settings.Percentage <= 0 || amount <= 0 {
		return 0, nil
	}

	base := amount
	if settings.ApplyOn == model.BoostApplyGross && grossAmount > 0 {
		base = grossAmount
	}

	credit := base * settings.Percentage / 100
	if credit <= 0 {
		return 0, nil
	}

	if err := s.repo.CreditBoost(ctx, merchantID, credit, sourceID); err != nil {
		return 0, fmt.Errorf("credit boost: %w", err)
	}

	metrics.BoostCredited.Add(float64(credit))
	return credit, nil
}

// RequestBoostWithdrawal создаёт заявку продавца на вывод boost-баланса.
// Баланс списывается в момент создания; заявка в пределах порога
// автоподтверждения сразу получает статус completed.
func (s *Service) RequestBoostWithdrawal(ctx context.Context, merchantID int64) (*model.BoostWithdrawal, error) {
	settings, err := s.repo.GetBoostSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load boost settings: %w", err)
	}

	return s.repo.CreateBoostWithdrawal(ctx, merchantID, settings.MinRedemptionAmount, settings.AutoApproveThreshold)
}

// ReviewBoostWithdrawal подтверждает либо отклоняет ожидающую заявку на вывод.
// Отклонение восстанавливает баланс продавца; повторное рассмотрение — ошибка.
func (s *Service) ReviewBoostWithdrawal(ctx context.Context, id int64, approve bool) (*model.BoostWithdrawal, error) {
	to := model.WithdrawalCompleted
	if !approve {
		to = model.WithdrawalRejected
	}
	return s.repo.ReviewBoostWithdrawal(ctx, id, to)
}
