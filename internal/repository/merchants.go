package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kranthisuryadevara25-cpu/monyFest-sub000/internal/model"
)

// CreateMerchant создаёт нового продавца.
func (r *PostgresRepository) CreateMerchant(ctx context.Context, m model.Merchant) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO merchants (name, category, industry, linked_agent_id)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		m.Name, m.Category, m.Industry, m.LinkedAgentID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create merchant: %w", err)
	}
	return id, nil
}

// GetMerchantByID возвращает продавца по идентификатору.
func (r *PostgresRepository) GetMerchantByID(ctx context.Context, id int64) (*model.Merchant, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, category, industry, linked_agent_id, boost_balance, total_boost_earned, created_at
		 FROM merchants WHERE id = $1`,
		id,
	)

	var m model.Merchant
	err := row.Scan(&m.ID, &m.Name, &m.Category, &m.Industry, &m.LinkedAgentID,
		&m.BoostBalance, &m.TotalBoostEarned, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMerchantNotFound
		}
		return nil, fmt.Errorf("get merchant: %w", err)
	}

	return &m, nil
}

// GetOfferByID возвращает оффер по идентификатору.
func (r *PostgresRepository) GetOfferByID(ctx context.Context, id int64) (*model.Offer, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, merchant_id, title, loyalty_points FROM offers WHERE id = $1`, id)

	var o model.Offer
	if err := row.Scan(&o.ID, &o.MerchantID, &o.Title, &o.LoyaltyPoints); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOfferNotFound
		}
		return nil, fmt.Errorf("get offer: %w", err)
	}

	return &o, nil
}

// CreditBoost атомарно увеличивает boost-баланс продавца и пишет запись журнала.
func (r *PostgresRepository) CreditBoost(ctx context.Context, merchantID, amount int64, sourceID string) error {
	return r.withRetry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		var dummy int
		err = tx.QueryRow(ctx, `SELECT 1 FROM merchants WHERE id = $1 FOR UPDATE`, merchantID).Scan(&dummy)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrMerchantNotFound
			}
			return fmt.Errorf("lock merchant for update: %w", err)
		}

		_, err = tx.Exec(ctx,
			`UPDATE merchants
			 SET boost_balance = boost_balance + $2, total_boost_earned = total_boost_earned + $2
			 WHERE id = $1`,
			merchantID, amount,
		)
		if err != nil {
			return fmt.Errorf("update boost balance: %w", err)
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO boost_transactions (merchant_id, kind, amount, source_id)
			 VALUES ($1, $2, $3, $4)`,
			merchantID, string(model.BoostCredit), amount, sourceID,
		)
		if err != nil {
			return fmt.Errorf("insert boost transaction: %w", err)
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}

		return nil
	})
}

// CreateBoostWithdrawal атомарно обнуляет boost-баланс продавца и создаёт заявку на вывод.
// Баланс ниже minAmount отклоняется без изменений. Заявка сразу получает статус
// completed, если autoApprove > 0 и сумма не превышает его, иначе pending.
func (r *PostgresRepository) CreateBoostWithdrawal(ctx context.Context, merchantID, minAmount, autoApprove int64) (*model.BoostWithdrawal, error) {
	var result *model.BoostWithdrawal

	err := r.withRetry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		var balance int64
		err = tx.QueryRow(ctx, `SELECT boost_balance FROM merchants WHERE id = $1 FOR UPDATE`, merchantID).Scan(&balance)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrMerchantNotFound
			}
			return fmt.Errorf("lock merchant for update: %w", err)
		}

		if balance < minAmount {
			return ErrBelowThreshold
		}

		_, err = tx.Exec(ctx, `UPDATE merchants SET boost_balance = 0 WHERE id = $1`, merchantID)
		if err != nil {
			return fmt.Errorf("zero boost balance: %w", err)
		}

		status := model.WithdrawalPending
		if autoApprove > 0 && balance <= autoApprove {
			status = model.WithdrawalCompleted
		}

		var w model.BoostWithdrawal
		err = tx.QueryRow(ctx,
			`INSERT INTO boost_withdrawals (merchant_id, amount, status)
			 VALUES ($1, $2, $3) RETURNING id, merchant_id, amount, status, created_at, reviewed_at`,
			merchantID, balance, string(status),
		).Scan(&w.ID, &w.MerchantID, &w.Amount, &w.Status, &w.CreatedAt, &w.ReviewedAt)
		if err != nil {
			return fmt.Errorf("insert withdrawal: %w", err)
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO boost_transactions (merchant_id, kind, amount, source_id)
			 VALUES ($1, $2, $3, $4)`,
			merchantID, string(model.BoostDebit), balance, fmt.Sprintf("withdrawal:%d", w.ID),
		)
		if err != nil {
			return fmt.Errorf("insert boost debit: %w", err)
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}

		result = &w
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// ReviewBoostWithdrawal переводит заявку из pending в указанный терминальный статус.
// При отклонении boost-баланс продавца восстанавливается на сумму заявки
// в той же транзакции с компенсирующей записью журнала.
func (r *PostgresRepository) ReviewBoostWithdrawal(ctx context.Context, id int64, to model.WithdrawalStatus) (*model.BoostWithdrawal, error) {
	var result *model.BoostWithdrawal

	err := r.withRetry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		var w model.BoostWithdrawal
		err = tx.QueryRow(ctx,
			`SELECT id, merchant_id, amount, status, created_at, reviewed_at
			 FROM boost_withdrawals WHERE id = $1 FOR UPDATE`,
			id,
		).Scan(&w.ID, &w.MerchantID, &w.Amount, &w.Status, &w.CreatedAt, &w.ReviewedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrWithdrawalNotFound
			}
			return fmt.Errorf("lock withdrawal for update: %w", err)
		}

		if err := w.Status.Next(to); err != nil {
			return fmt.Errorf("%w: withdrawal %d is %s", ErrAlreadyReviewed, w.ID, w.Status)
		}

		if to == model.WithdrawalRejected {
			var dummy int
			err = tx.QueryRow(ctx, `SELECT 1 FROM merchants WHERE id = $1 FOR UPDATE`, w.MerchantID).Scan(&dummy)
			if err != nil {
				return fmt.Errorf("lock merchant for update: %w", err)
			}

			_, err = tx.Exec(ctx,
				`UPDATE merchants SET boost_balance = boost_balance + $2 WHERE id = $1`,
				w.MerchantID, w.Amount,
			)
			if err != nil {
				return fmt.Errorf("restore boost balance: %w", err)
			}

			_, err = tx.Exec(ctx,
				`INSERT INTO boost_transactions (merchant_id, kind, amount, source_id)
				 VALUES ($1, $2, $3, $4)`,
				w.MerchantID, string(model.BoostCredit), w.Amount, fmt.Sprintf("withdrawal:%d", w.ID),
			)
			if err != nil {
				return fmt.Errorf("insert compensating credit: %w", err)
			}
		}

		err = tx.QueryRow(ctx,
			`UPDATE boost_withdrawals SET status = $2, reviewed_at = now()
			 WHERE id = $1 RETURNING status, reviewed_at`,
			w.ID, string(to),
		).Scan(&w.Status, &w.ReviewedAt)
		if err != nil {
			return fmt.Errorf("update withdrawal status: %w", err)
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}

		result = &w
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
