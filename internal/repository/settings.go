package repository

import (
	"context"
	"fmt"

	"github.com/kranthisuryadevara25-cpu/monyFest-sub000/internal/model"
)

// GetCommissionSettings возвращает настройки комиссий и долей распределения баллов.
func (r *PostgresRepository) GetCommissionSettings(ctx context.Context) (model.CommissionSettings, error) {
	var s model.CommissionSettings
	err := r.pool.QueryRow(ctx,
		`SELECT level1, level2, level3, merchant_bonus, buyer_pct, parent_pct, grandparent_pct
		 FROM commission_settings WHERE id = 1`,
	).Scan(&s.Level1, &s.Level2, &s.Level3, &s.MerchantBonus, &s.BuyerPct, &s.ParentPct, &s.GrandparentPct)
	if err != nil {
		return model.CommissionSettings{}, fmt.Errorf("get commission settings: %w", err)
	}
	return s, nil
}

// UpdateCommissionSettings сохраняет настройки комиссий.
func (r *PostgresRepository) UpdateCommissionSettings(ctx context.Context, s model.CommissionSettings) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE commission_settings
		 SET level1 = $1, level2 = $2, level3 = $3, merchant_bonus = $4,
		     buyer_pct = $5, parent_pct = $6, grandparent_pct = $7
		 WHERE id = 1`,
		s.Level1, s.Level2, s.Level3, s.MerchantBonus, s.BuyerPct, s.ParentPct, s.GrandparentPct,
	)
	if err != nil {
		return fmt.Errorf("update commission settings: %w", err)
	}
	return nil
}

// GetBoostSettings возвращает настройки boost-кэшбэка.
func (r *PostgresRepository) GetBoostSettings(ctx context.Context) (model.BoostSettings, error) {
	var (
		s       model.BoostSettings
		applyOn string
	)
	err := r.pool.QueryRow(ctx,
		`SELECT enabled, percentage, apply_on, min_redemption_amount, auto_approve_threshold
		 FROM boost_settings WHERE id = 1`,
	).Scan(&s.Enabled, &s.Percentage, &applyOn, &s.MinRedemptionAmount, &s.AutoApproveThreshold)
	if err != nil {
		return model.BoostSettings{}, fmt.Errorf("get boost settings: %w", err)
	}
	s.ApplyOn = model.BoostApplyOn(applyOn)
	return s, nil
}

// UpdateBoostSettings сохраняет настройки boost-кэшбэка.
func (r *PostgresRepository) UpdateBoostSettings(ctx context.Context, s model.BoostSettings) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE boost_settings
		 SET enabled = $1, percentage = $2, apply_on = $3,
		     min_redemption_amount = $4, auto_approve_threshold = $5
		 WHERE id = 1`,
		s.Enabled, s.Percentage, string(s.ApplyOn), s.MinRedemptionAmount, s.AutoApproveThreshold,
	)
	if err != nil {
		return fmt.Errorf("update boost settings: %w", err)
	}
	return nil
}

// GetLoyaltySlabs возвращает слэбы категории, отсортированные по нижней границе.
func (r *PostgresRepository) GetLoyaltySlabs(ctx context.Context, categoryKey string) ([]model.LoyaltySlab, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT min_amount, max_amount, points
		 FROM loyalty_slabs
		 WHERE category_key = $1
		 ORDER BY min_amount`,
		categoryKey,
	)
	if err != nil {
		return nil, fmt.Errorf("select slabs: %w", err)
	}
	defer rows.Close()

	var res []model.LoyaltySlab
	for rows.Next() {
		var s model.LoyaltySlab
		if err := rows.Scan(&s.MinAmount, &s.MaxAmount, &s.Points); err != nil {
			return nil, fmt.Errorf("scan slab: %w", err)
		}
		res = append(res, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// SetLoyaltySlabs заменяет набор слэбов категории целиком.
func (r *PostgresRepository) SetLoyaltySlabs(ctx context.Context, categoryKey string, slabs []model.LoyaltySlab) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `DELETE FROM loyalty_slabs WHERE category_key = $1`, categoryKey)
	if err != nil {
		return fmt.Errorf("delete slabs: %w", err)
	}

	for _, s := range slabs {
		_, err = tx.Exec(ctx,
			`INSERT INTO loyalty_slabs (category_key, min_amount, max_amount, points)
			 VALUES ($1, $2, $3, $4)`,
			categoryKey, s.MinAmount, s.MaxAmount, s.Points,
		)
		if err != nil {
			return fmt.Errorf("insert slab: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}
