package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kranthisuryadevara25-cpu/monyFest-sub000/internal/gateway"
	"github.com/kranthisuryadevara25-cpu/monyFest-sub000/internal/metrics"
	"github.com/kranthisuryadevara25-cpu/monyFest-sub000/internal/model"
	"github.com/kranthisuryadevara25-cpu/monyFest-sub000/internal/repository"
	"github.com/kranthisuryadevara25-cpu/monyFest-sub000/internal/validation"
)

// PaymentRequest описывает запрос на создание платежа через шлюз.
type PaymentRequest struct {
	MerchantID  *int64
	OfferID     *int64
	Quantity    int64
	Amount      int64
	RedirectURL string
}

// PaymentInit содержит данные для перенаправления плательщика на шлюз.
type PaymentInit struct {
	MerchantOrderID string
	RedirectURL     string
}

// CreatePayment создаёт платёжное поручение и заказ в платёжном шлюзе.
// Поручение сохраняется в статусе PENDING до прихода вебхука.
func (s *Service) CreatePayment(ctx context.Context, userID int64, req PaymentRequest) (*PaymentInit, error) {
	if err := validation.ValidatePaymentAmount(req.Amount); err != nil {
		return nil, err
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	merchantOrderID := uuid.NewString()

	err := s.repo.CreatePaymentOrder(ctx, model.PaymentOrder{
		MerchantOrderID: merchantOrderID,
		UserID:          userID,
		MerchantID:      req.MerchantID,
		Amount:          req.Amount,
		OfferID:         req.OfferID,
		Quantity:        req.Quantity,
	})
	if err != nil {
		return nil, fmt.Errorf("create payment order: %w", err)
	}

	resp, err := s.gateway.CreateOrder(ctx, merchantOrderID, req.Amount, req.RedirectURL)
	if err != nil {
		return nil, fmt.Errorf("gateway create order: %w", err)
	}

	return &PaymentInit{
		MerchantOrderID: merchantOrderID,
		RedirectURL:     resp.RedirectURL,
	}, nil
}

// GetPaymentOrderStatus возвращает состояние платёжного поручения для опроса клиентом.
func (s *Service) GetPaymentOrderStatus(ctx context.Context, merchantOrderID string) (*model.PaymentOrder, error) {
	return s.repo.GetPaymentOrder(ctx, merchantOrderID)
}

// HandleWebhook обрабатывает событие платёжного шлюза и возвращает HTTP-статус
// для ответа шлюзу. Повторная доставка уже обработанного события — успешный
// no-op: шлюз не различает "уже сделано" и "не получилось".
func (s *Service) HandleWebhook(ctx context.Context, body []byte, signature string) (int, error) {
	if !s.gateway.VerifySignature(body, signature) {
		metrics.WebhookEvents.WithLabelValues("bad_signature").Inc()
		return http.StatusUnauthorized, fmt.Errorf("webhook signature mismatch")
	}

	evt, err := gateway.ParseWebhook(body)
	if err != nil {
		metrics.WebhookEvents.WithLabelValues("malformed").Inc()
		return http.StatusBadRequest, err
	}

	if !evt.Completed() {
		// Неуспех подтверждаем 200, чтобы остановить повторы шлюза.
		marked, err := s.repo.MarkPaymentOrderFailed(ctx, evt.Payload.MerchantOrderID, evt.Payload.ErrorCode)
		if err != nil {
			return http.StatusInternalServerError, err
		}
		if marked {
			s.logger.Info("payment failed",
				zap.String("merchantOrderID", evt.Payload.MerchantOrderID),
				zap.String("errorCode", evt.Payload.ErrorCode))
		}
		metrics.WebhookEvents.WithLabelValues("failed").Inc()
		return http.StatusOK, nil
	}

	order, err := s.repo.GetPaymentOrder(ctx, evt.Payload.MerchantOrderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			metrics.WebhookEvents.WithLabelValues("unknown_order").Inc()
			return http.StatusBadRequest, err
		}
		return http.StatusInternalServerError, err
	}

	// Идемпотентность: повторный вебхук по обработанному поручению — no-op.
	if order.Status != model.PaymentPending {
		metrics.WebhookEvents.WithLabelValues("duplicate").Inc()
		return http.StatusOK, nil
	}

	if evt.Payload.Amount != 0 && evt.Payload.Amount != order.Amount {
		metrics.WebhookEvents.WithLabelValues("amount_mismatch").Inc()
		return http.StatusBadRequest, fmt.Errorf("%w: got %d, order %d",
			ErrAmountMismatch, evt.Payload.Amount, order.Amount)
	}

	res, err := s.RecordPurchase(ctx, PurchaseInput{
		UserID:     order.UserID,
		OfferID:    order.OfferID,
		MerchantID: order.MerchantID,
		Quantity:   order.Quantity,
		Amount:     order.Amount,
	})
	if err != nil {
		return http.StatusInternalServerError, fmt.Errorf("record purchase: %w", err)
	}
	if res.AllocationError != nil {
		// Покупка записана; сбой распределения баллов не повод для повтора вебхука.
		s.logger.Error("webhook purchase recorded without points",
			zap.Error(res.AllocationError),
			zap.String("merchantOrderID", order.MerchantOrderID))
	}

	marked, err := s.repo.MarkPaymentOrderSuccess(ctx, order.MerchantOrderID, evt.Payload.OrderID)
	if err != nil {
		return http.StatusInternalServerError, err
	}
	if !marked {
		// Параллельный дубликат успел первым; поручение уже терминально.
		metrics.WebhookEvents.WithLabelValues("duplicate").Inc()
		return http.StatusOK, nil
	}

	metrics.WebhookEvents.WithLabelValues("success").Inc()
	s.logger.Info("payment settled",
		zap.String("merchantOrderID", order.MerchantOrderID),
		zap.String("gatewayOrderID", evt.Payload.OrderID),
		zap.Int64("amount", order.Amount))

	return http.StatusOK, nil
}
