package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kranthisuryadevara25-cpu/monyFest-sub000/internal/model"
)

// CreatePaymentOrder сохраняет платёжное поручение в статусе PENDING.
func (r *PostgresRepository) CreatePaymentOrder(ctx context.Context, o model.PaymentOrder) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO payment_orders (merchant_order_id, user_id, merchant_id, amount, offer_id, quantity, status, gateway_order_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		o.MerchantOrderID, o.UserID, o.MerchantID, o.Amount, o.OfferID, o.Quantity,
		string(model.PaymentPending), o.GatewayOrderID,
	)
	if err != nil {
		return fmt.Errorf("insert payment order: %w", err)
	}
	return nil
}

// GetPaymentOrder возвращает платёжное поручение по merchantOrderID.
func (r *PostgresRepository) GetPaymentOrder(ctx context.Context, merchantOrderID string) (*model.PaymentOrder, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT merchant_order_id, user_id, merchant_id, amount, offer_id, quantity, status, gateway_order_id, error_code, created_at, updated_at
		 FROM payment_orders WHERE merchant_order_id = $1`,
		merchantOrderID,
	)

	var (
		o      model.PaymentOrder
		status string
	)
	err := row.Scan(&o.MerchantOrderID, &o.UserID, &o.MerchantID, &o.Amount, &o.OfferID,
		&o.Quantity, &status, &o.GatewayOrderID, &o.ErrorCode, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get payment order: %w", err)
	}
	o.Status = model.PaymentOrderStatus(status)

	return &o, nil
}

// MarkPaymentOrderSuccess переводит поручение PENDING -> SUCCESS.
// Возвращает false, если поручение уже было в терминальном статусе:
// так повторная доставка вебхука не приводит к повторной обработке.
func (r *PostgresRepository) MarkPaymentOrderSuccess(ctx context.Context, merchantOrderID, gatewayOrderID string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE payment_orders
		 SET status = $2, gateway_order_id = $3, updated_at = now()
		 WHERE merchant_order_id = $1 AND status = $4`,
		merchantOrderID, string(model.PaymentSuccess), gatewayOrderID, string(model.PaymentPending),
	)
	if err != nil {
		return false, fmt.Errorf("mark order success: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// MarkPaymentOrderFailed переводит поручение PENDING -> FAILED.
// Возвращает false, если поручение уже было в терминальном статусе.
func (r *PostgresRepository) MarkPaymentOrderFailed(ctx context.Context, merchantOrderID, errorCode string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE payment_orders
		 SET status = $2, error_code = $3, updated_at = now()
		 WHERE merchant_order_id = $1 AND status = $4`,
		merchantOrderID, string(model.PaymentFailed), errorCode, string(model.PaymentPending),
	)
	if err != nil {
		return false, fmt.Errorf("mark order failed: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
