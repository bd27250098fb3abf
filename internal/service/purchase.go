package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/kranthisuryadevara25-cpu/monyFest-sub000/internal/loyalty"
	"github.com/kranthisuryadevara25-cpu/monyFest-sub000/internal/metrics"
	"github.com/kranthisuryadevara25-cpu/monyFest-sub000/internal/model"
	"github.com/kranthisuryadevara25-cpu/monyFest-sub000/internal/validation"
)

// PurchaseInput описывает покупку для записи в журнал.
// GrossAmount передаётся, когда сумма расчёта отличается от полной суммы заказа.
type PurchaseInput struct {
	UserID      int64
	OfferID     *int64
	MerchantID  *int64
	Quantity    int64
	Amount      int64
	GrossAmount int64
}

// PurchaseResult описывает итог записи покупки.
// AllocationError заполняется, если покупка записана, но распределение
// баллов не удалось: запись о покупке в этом случае не откатывается.
type PurchaseResult struct {
	PurchaseTransactionID int64
	Split                 PointsSplit
	AllocationError       error
}

// RecordPurchase записывает покупку в журнал, начисляет boost продавцу
// и распределяет баллы лояльности по реферальной цепочке покупателя.
func (s *Service) RecordPurchase(ctx context.Context, in PurchaseInput) (*PurchaseResult, error) {
	if err := validation.ValidatePurchase(in.Quantity, in.Amount); err != nil {
		return nil, err
	}

	pool, merchant, err := s.resolvePointPool(ctx, in)
	if err != nil {
		return nil, err
	}

	purchaseTx := model.NewPurchaseTransaction(in.UserID, in.Amount, purchaseDescription(in))
	purchaseTxID, err := s.repo.CreateTransaction(ctx, purchaseTx)
	if err != nil {
		return nil, fmt.Errorf("record purchase: %w", err)
	}
	metrics.PurchasesRecorded.Inc()

	res := &PurchaseResult{PurchaseTransactionID: purchaseTxID}
	sourceID := strconv.FormatInt(purchaseTxID, 10)

	// Boost и баллы — независимые следствия одной покупки:
	// сбой одного не отменяет другое и не откатывает саму покупку.
	if merchant != nil {
		if _, err := s.CreditBoost(ctx, merchant.ID, in.Amount, in.GrossAmount, sourceID); err != nil {
			s.logger.Error("boost credit failed",
				zap.Error(err), zap.Int64("merchantID", merchant.ID), zap.String("purchaseTx", sourceID))
		}
	}

	if pool > 0 {
		split, err := s.AllocatePoints(ctx, in.UserID, sourceID, pool)
		if err != nil {
			s.logger.Error("points allocation failed",
				zap.Error(err), zap.Int64("userID", in.UserID), zap.String("purchaseTx", sourceID))
			res.AllocationError = err
		} else {
			res.Split = split
		}
	}

	return res, nil
}

// resolvePointPool определяет пул баллов: слэб категории продавца,
// иначе баллы оффера (по умолчанию 10), умноженные на количество.
// Слэб оценивает заказ целиком и от количества не зависит.
func (s *Service) resolvePointPool(ctx context.Context, in PurchaseInput) (int64, *model.Merchant, error) {
	var merchant *model.Merchant

	if in.MerchantID != nil {
		m, err := s.repo.GetMerchantByID(ctx, *in.MerchantID)
		if err != nil {
			return 0, nil, fmt.Errorf("load merchant: %w", err)
		}
		merchant = m

		key := loyalty.CategoryKey(m.Industry, m.Category)
		slabs, err := s.repo.GetLoyaltySlabs(ctx, key)
		if err != nil {
			return 0, nil, fmt.Errorf("load slabs: %w", err)
		}

		if points, matched := loyalty.ResolvePoints(in.Amount, slabs); matched {
			return points, merchant, nil
		}
	}

	perUnit := int64(model.DefaultOfferPoints)
	if in.OfferID != nil {
		offer, err := s.repo.GetOfferByID(ctx, *in.OfferID)
		if err != nil {
			return 0, nil, fmt.Errorf("load offer: %w", err)
		}
		if offer.LoyaltyPoints != nil {
			perUnit = *offer.LoyaltyPoints
		}
	}

	return perUnit * in.Quantity, merchant, nil
}

func purchaseDescription(in PurchaseInput) string {
	if in.OfferID != nil {
		return fmt.Sprintf("purchase of offer %d x%d", *in.OfferID, in.Quantity)
	}
	return "purchase"
}

// RedeemPoints списывает баллы пользователя.
func (s *Service) RedeemPoints(ctx context.Context, userID, points int64, description string) error {
	if points <= 0 {
		return validation.ErrInvalidPoints
	}
	if description == "" {
		description = "points redemption"
	}
	return s.repo.RedeemPoints(ctx, userID, points, description)
}
