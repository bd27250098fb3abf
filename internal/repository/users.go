package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kranthisuryadevara25-cpu/monyFest-sub000/internal/model"
)

// CreateUser создаёт нового пользователя с реферальными ссылками.
func (r *PostgresRepository) CreateUser(ctx context.Context, login string, passwordHash []byte, referralCode string, referredBy *int64, chain []int64) (int64, error) {
	if chain == nil {
		chain = []int64{}
	}

	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (login, password_hash, referral_code, referred_by, referral_chain)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		login, passwordHash, referralCode, referredBy, chain,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return 0, fmt.Errorf("%w: %s", ErrUserExists, login)
		}
		return 0, fmt.Errorf("create user: %w", err)
	}
	return id, nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Login, &u.PasswordHash, &u.ReferralCode, &u.ReferredBy,
		&u.ReferralChain, &u.PointsBalance, &u.WalletBalance, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

const userColumns = `id, login, password_hash, referral_code, referred_by,
	referral_chain, points_balance, wallet_balance, created_at`

// GetUserByLogin возвращает пользователя по логину.
func (r *PostgresRepository) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE login = $1`, login))
}

// GetUserByID возвращает пользователя по идентификатору.
func (r *PostgresRepository) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetUserByReferralCode возвращает пользователя по реферальному коду.
func (r *PostgresRepository) GetUserByReferralCode(ctx context.Context, code string) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE referral_code = $1`, code))
}

// PointsAward описывает начисление баллов одному получателю.
type PointsAward struct {
	UserID      int64
	Points      int64
	Description string
}

// AllocatePoints атомарно начисляет баллы получателям и пишет записи журнала.
// Либо применяются все начисления, либо ни одно. Строки пользователей
// блокируются в порядке возрастания id во избежание взаимоблокировок.
func (r *PostgresRepository) AllocatePoints(ctx context.Context, awards []PointsAward, sourceID string) error {
	if len(awards) == 0 {
		return nil
	}

	return r.withRetry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		ids := make([]int64, 0, len(awards))
		for _, a := range awards {
			ids = append(ids, a.UserID)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		for _, id := range ids {
			var dummy int
			if err := tx.QueryRow(ctx, `SELECT 1 FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&dummy); err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return fmt.Errorf("%w: id %d", ErrUserNotFound, id)
				}
				return fmt.Errorf("lock user for update: %w", err)
			}
		}

		for _, a := range awards {
			_, err := tx.Exec(ctx,
				`UPDATE users SET points_balance = points_balance + $2 WHERE id = $1`,
				a.UserID, a.Points,
			)
			if err != nil {
				return fmt.Errorf("update points balance: %w", err)
			}

			_, err = tx.Exec(ctx,
				`INSERT INTO transactions (user_id, type, points_earned, source_id, description)
				 VALUES ($1, $2, $3, $4, $5)`,
				a.UserID, string(model.TransactionPointsEarned), a.Points, sourceID, a.Description,
			)
			if err != nil {
				return fmt.Errorf("insert points transaction: %w", err)
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}

		return nil
	})
}

// RedeemPoints атомарно списывает баллы пользователя с записью в журнал.
// Использует блокировку строки пользователя для сериализации списаний.
func (r *PostgresRepository) RedeemPoints(ctx context.Context, userID, points int64, description string) error {
	return r.withRetry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		var balance int64
		err = tx.QueryRow(ctx, `SELECT points_balance FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&balance)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrUserNotFound
			}
			return fmt.Errorf("lock user for update: %w", err)
		}

		if balance < points {
			return ErrInsufficientPoints
		}

		_, err = tx.Exec(ctx,
			`UPDATE users SET points_balance = points_balance - $2 WHERE id = $1`,
			userID, points,
		)
		if err != nil {
			return fmt.Errorf("update points balance: %w", err)
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO transactions (user_id, type, points_redeemed, description)
			 VALUES ($1, $2, $3, $4)`,
			userID, string(model.TransactionPointsRedeemed), points, description,
		)
		if err != nil {
			return fmt.Errorf("insert redeem transaction: %w", err)
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}

		return nil
	})
}
