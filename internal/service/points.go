package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kranthisuryadevara25-cpu/monyFest-sub000/internal/metrics"
	"github.com/kranthisuryadevara25-cpu/monyFest-sub000/internal/model"
	"github.com/kranthisuryadevara25-cpu/monyFest-sub000/internal/repository"
)

// PointsSplit описывает распределение пула баллов между покупателем и его реферерами.
type PointsSplit struct {
	Buyer       int64
	Parent      int64
	Grandparent int64
}

// splitPoints распределяет пул баллов по настроенным долям.
// Доли нормализуются по их фактической сумме, поэтому некорректная
// конфигурация (сумма не равна 100) не ломает распределение.
// Доли отсутствующих уровней и остаток от округления достаются покупателю,
// так что сумма частей всегда равна total.
func splitPoints(total int64, s model.CommissionSettings, hasParent, hasGrandparent bool) PointsSplit {
	if total <= 0 {
		return PointsSplit{}
	}

	sum := s.BuyerPct + s.ParentPct + s.GrandparentPct
	if sum <= 0 {
		return PointsSplit{Buyer: total}
	}

	var split PointsSplit
	if hasParent {
		split.Parent = total * s.ParentPct / sum
	}
	if hasGrandparent {
		split.Grandparent = total * s.GrandparentPct / sum
	}
	split.Buyer = total - split.Parent - split.Grandparent

	return split
}

// AllocatePoints распределяет пул баллов за покупку между покупателем,
// его реферером и реферером реферера и атомарно применяет начисления.
// purchaseTxID связывает записи о баллах с породившей покупкой.
func (s *Service) AllocatePoints(ctx context.Context, buyerID int64, purchaseTxID string, total int64) (PointsSplit, error) {
	if total <= 0 {
		return PointsSplit{}, nil
	}

	settings, err := s.repo.GetCommissionSettings(ctx)
	if err != nil {
		return PointsSplit{}, fmt.Errorf("load commission settings: %w", err)
	}

	buyer, err := s.repo.GetUserByID(ctx, buyerID)
	if err != nil {
		return PointsSplit{}, fmt.Errorf("load buyer: %w", err)
	}

	// Самореферал в данных — повреждение, трактуем как отсутствие реферера.
	var parent *model.User
	if buyer.ReferredBy != nil && *buyer.ReferredBy != buyer.ID {
		parent, err = s.repo.GetUserByID(ctx, *buyer.ReferredBy)
		if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
			return PointsSplit{}, fmt.Errorf("load parent: %w", err)
		}
	}

	var grandparent *model.User
	if parent != nil && parent.ReferredBy != nil &&
		*parent.ReferredBy != parent.ID && *parent.ReferredBy != buyer.ID {
		grandparent, err = s.repo.GetUserByID(ctx, *parent.ReferredBy)
		if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
			return PointsSplit{}, fmt.Errorf("load grandparent: %w", err)
		}
	}

	split := splitPoints(total, settings, parent != nil, grandparent != nil)

	awards := make([]repository.PointsAward, 0, 3)
	if split.Buyer > 0 {
		awards = append(awards, repository.PointsAward{
			UserID:      buyer.ID,
			Points:      split.Buyer,
			Description: "points earned on purchase",
		})
	}
	if parent != nil && split.Parent > 0 {
		awards = append(awards, repository.PointsAward{
			UserID:      parent.ID,
			Points:      split.Parent,
			Description: fmt.Sprintf("L1 referral points for purchase by %s", buyer.Login),
		})
	}
	if grandparent != nil && split.Grandparent > 0 {
		awards = append(awards, repository.PointsAward{
			UserID:      grandparent.ID,
			Points:      split.Grandparent,
			Description: fmt.Sprintf("L2 referral points for purchase by %s", buyer.Login),
		})
	}

	if err := s.repo.AllocatePoints(ctx, awards, purchaseTxID); err != nil {
		return PointsSplit{}, fmt.Errorf("allocate points: %w", err)
	}

	metrics.PointsAllocated.Add(float64(total))
	s.logger.Info("points allocated",
		zap.Int64("buyerID", buyer.ID),
		zap.String("purchaseTx", purchaseTxID),
		zap.Int64("buyer", split.Buyer),
		zap.Int64("parent", split.Parent),
		zap.Int64("grandparent", split.Grandparent),
	)

	return split, nil
}
