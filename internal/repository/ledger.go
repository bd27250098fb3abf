package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/kranthisuryadevara25-cpu/monyFest-sub000/internal/model"
)

// CreateTransaction добавляет запись в журнал операций и возвращает её идентификатор.
func (r *PostgresRepository) CreateTransaction(ctx context.Context, t model.Transaction) (int64, error) {
	var payoutStatus *string
	if t.PayoutStatus != "" {
		s := string(t.PayoutStatus)
		payoutStatus = &s
	}

	var commissionLevel *int
	if t.CommissionLevel != 0 {
		commissionLevel = &t.CommissionLevel
	}

	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO transactions (user_id, type, amount, points_earned, points_redeemed, source_id, payout_status, commission_level, description)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		t.UserID, string(t.Type), t.Amount, t.PointsEarned, t.PointsRedeemed,
		t.SourceID, payoutStatus, commissionLevel, t.Description,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}

	return id, nil
}

// GetTransactionsByUser возвращает записи журнала пользователя, новые первыми.
// types сужает выборку по видам записей, limit <= 0 означает без ограничения.
func (r *PostgresRepository) GetTransactionsByUser(ctx context.Context, userID int64, types []model.TransactionType, limit int) ([]model.Transaction, error) {
	query := `SELECT id, user_id, type, amount, points_earned, points_redeemed,
		source_id, payout_status, commission_level, description, created_at
		FROM transactions WHERE user_id = $1`
	args := []any{userID}

	if len(types) > 0 {
		names := make([]string, 0, len(types))
		for _, tp := range types {
			names = append(names, string(tp))
		}
		args = append(args, names)
		query += ` AND type = ANY($` + strconv.Itoa(len(args)) + `)`
	}

	query += ` ORDER BY created_at DESC`

	if limit > 0 {
		args = append(args, limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}
	defer rows.Close()

	var res []model.Transaction
	for rows.Next() {
		var (
			t               model.Transaction
			payoutStatus    *string
			commissionLevel *int
		)
		err := rows.Scan(&t.ID, &t.UserID, &t.Type, &t.Amount, &t.PointsEarned, &t.PointsRedeemed,
			&t.SourceID, &payoutStatus, &commissionLevel, &t.Description, &t.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if payoutStatus != nil {
			t.PayoutStatus = model.PayoutStatus(*payoutStatus)
		}
		if commissionLevel != nil {
			t.CommissionLevel = *commissionLevel
		}
		res = append(res, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// UpdatePayoutStatus переводит выплату комиссии из pending в терминальный статус.
// Повторное рассмотрение уже завершённой выплаты отклоняется.
func (r *PostgresRepository) UpdatePayoutStatus(ctx context.Context, id int64, to model.PayoutStatus) error {
	return r.withRetry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		var current string
		err = tx.QueryRow(ctx,
			`SELECT payout_status FROM transactions WHERE id = $1 AND type = $2 FOR UPDATE`,
			id, string(model.TransactionCommission),
		).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrTransactionNotFound
			}
			return fmt.Errorf("lock transaction for update: %w", err)
		}

		if err := model.PayoutStatus(current).Next(to); err != nil {
			return fmt.Errorf("%w: commission %d is %s", ErrAlreadyReviewed, id, current)
		}

		_, err = tx.Exec(ctx,
			`UPDATE transactions SET payout_status = $2 WHERE id = $1`,
			id, string(to),
		)
		if err != nil {
			return fmt.Errorf("update payout status: %w", err)
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}

		return nil
	})
}
