// Package handler содержит HTTP-обработчики API сервиса лояльности monyFest.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kranthisuryadevara25-cpu/monyFest-sub000/internal/middleware"
	"github.com/kranthisuryadevara25-cpu/monyFest-sub000/internal/model"
	"github.com/kranthisuryadevara25-cpu/monyFest-sub000/internal/repository"
	"github.com/kranthisuryadevara25-cpu/monyFest-sub000/internal/service"
	"github.com/kranthisuryadevara25-cpu/monyFest-sub000/internal/validation"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	RegisterUser(ctx context.Context, login, password, referralCode string) (int64, error)
	AuthenticateUser(ctx context.Context, login, password string) (int64, error)
	GetBalance(ctx context.Context, userID int64) (*model.Balance, error)
	GetTransactionsByUser(ctx context.Context, userID int64, types []model.TransactionType, limit int) ([]model.Transaction, error)
	RedeemPoints(ctx context.Context, userID, points int64, description string) error

	RecordPurchase(ctx context.Context, in service.PurchaseInput) (*service.PurchaseResult, error)
	CreatePayment(ctx context.Context, userID int64, req service.PaymentRequest) (*service.PaymentInit, error)
	GetPaymentOrderStatus(ctx context.Context, merchantOrderID string) (*model.PaymentOrder, error)
	HandleWebhook(ctx context.Context, body []byte, signature string) (int, error)

	CreateMerchant(ctx context.Context, m model.Merchant) (int64, error)
	RequestBoostWithdrawal(ctx context.Context, merchantID int64) (*model.BoostWithdrawal, error)
	ReviewBoostWithdrawal(ctx context.Context, id int64, approve bool) (*model.BoostWithdrawal, error)
	ReviewCommissionPayout(ctx context.Context, transactionID int64, approve bool) error

	GetCommissionSettings(ctx context.Context) (model.CommissionSettings, error)
	UpdateCommissionSettings(ctx context.Context, cfg model.CommissionSettings) error
	GetBoostSettings(ctx context.Context) (model.BoostSettings, error)
	UpdateBoostSettings(ctx context.Context, cfg model.BoostSettings) error
	GetLoyaltySlabs(ctx context.Context, categoryKey string) ([]model.LoyaltySlab, error)
	SetLoyaltySlabs(ctx context.Context, categoryKey string, slabs []model.LoyaltySlab) error
}

// Handler реализует HTTP-обработчики API сервиса лояльности.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

type credentialsRequest struct {
	Login        string `json:"login"`
	Password     string `json:"password"`
	ReferralCode string `json:"referral_code,omitempty"`
}

// Register обрабатывает регистрацию нового пользователя.
// Несуществующий реферальный код отклоняется со статусом 422.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.Login == "" || req.Password == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	userID, err := h.service.RegisterUser(r.Context(), req.Login, req.Password, strings.TrimSpace(req.ReferralCode))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUserExists):
			http.Error(w, http.StatusText(http.StatusConflict), http.StatusConflict)
		case errors.Is(err, service.ErrReferrerNotFound):
			http.Error(w, "unknown referral code", http.StatusUnprocessableEntity)
		default:
			h.logger.Error("register user error", zap.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	h.authMiddleware.SetAuthCookie(w, userID)
	w.WriteHeader(http.StatusOK)
}

// Login выполняет аутентификацию пользователя и установку cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.Login == "" || req.Password == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	userID, err := h.service.AuthenticateUser(r.Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) || errors.Is(err, service.ErrInvalidCredentials) {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		h.logger.Error("login user error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.authMiddleware.SetAuthCookie(w, userID)
	w.WriteHeader(http.StatusOK)
}

// GetBalance возвращает баланс текущего пользователя.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	balance, err := h.service.GetBalance(r.Context(), userID)
	if err != nil {
		h.logger.Error("get balance error", zap.Error(err), zap.Int64("userID", userID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, balance)
}

type transactionResponse struct {
	ID              int64  `json:"id"`
	Type            string `json:"type"`
	Amount          int64  `json:"amount,omitempty"`
	PointsEarned    int64  `json:"points_earned,omitempty"`
	PointsRedeemed  int64  `json:"points_redeemed,omitempty"`
	SourceID        string `json:"source_id,omitempty"`
	PayoutStatus    string `json:"payout_status,omitempty"`
	CommissionLevel int    `json:"commission_level,omitempty"`
	Description     string `json:"description,omitempty"`
	CreatedAt       string `json:"created_at"`
}

// GetTransactions возвращает журнал операций текущего пользователя.
// Параметр type можно повторять для фильтра по видам, limit ограничивает выборку.
func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var types []model.TransactionType
	for _, t := range r.URL.Query()["type"] {
		if t != "" {
			types = append(types, model.TransactionType(t))
		}
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		limit = n
	}

	transactions, err := h.service.GetTransactionsByUser(r.Context(), userID, types, limit)
	if err != nil {
		h.logger.Error("get transactions error", zap.Error(err), zap.Int64("userID", userID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if len(transactions) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	resp := make([]transactionResponse, 0, len(transactions))
	for _, t := range transactions {
		resp = append(resp, transactionResponse{
			ID:              t.ID,
			Type:            string(t.Type),
			Amount:          t.Amount,
			PointsEarned:    t.PointsEarned,
			PointsRedeemed:  t.PointsRedeemed,
			SourceID:        t.SourceID,
			PayoutStatus:    string(t.PayoutStatus),
			CommissionLevel: t.CommissionLevel,
			Description:     t.Description,
			CreatedAt:       t.CreatedAt.Format(time.RFC3339),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

type redeemRequest struct {
	Points      int64  `json:"points"`
	Description string `json:"description,omitempty"`
}

// RedeemPoints списывает баллы текущего пользователя.
func (h *Handler) RedeemPoints(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	err := h.service.RedeemPoints(r.Context(), userID, req.Points, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, validation.ErrInvalidPoints):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		case errors.Is(err, repository.ErrInsufficientPoints):
			http.Error(w, http.StatusText(http.StatusPaymentRequired), http.StatusPaymentRequired)
		default:
			h.logger.Error("redeem points error", zap.Error(err), zap.Int64("userID", userID))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
}

type purchaseRequest struct {
	MerchantID  *int64 `json:"merchant_id,omitempty"`
	OfferID     *int64 `json:"offer_id,omitempty"`
	Quantity    int64  `json:"quantity"`
	Amount      int64  `json:"amount"`
	GrossAmount int64  `json:"gross_amount,omitempty"`
}

type purchaseResponse struct {
	TransactionID     int64  `json:"transaction_id"`
	BuyerPoints       int64  `json:"buyer_points"`
	ParentPoints      int64  `json:"parent_points,omitempty"`
	GrandparentPoints int64  `json:"grandparent_points,omitempty"`
	AllocationError   string `json:"allocation_error,omitempty"`
}

// RecordPurchase записывает прямую покупку текущего пользователя.
// Сбой распределения баллов не отменяет покупку и возвращается в теле ответа.
func (h *Handler) RecordPurchase(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	res, err := h.service.RecordPurchase(r.Context(), service.PurchaseInput{
		UserID:      userID,
		OfferID:     req.OfferID,
		MerchantID:  req.MerchantID,
		Quantity:    req.Quantity,
		Amount:      req.Amount,
		GrossAmount: req.GrossAmount,
	})
	if err != nil {
		switch {
		case errors.Is(err, validation.ErrInvalidQuantity), errors.Is(err, validation.ErrInvalidAmount):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		case errors.Is(err, repository.ErrMerchantNotFound), errors.Is(err, repository.ErrOfferNotFound):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			h.logger.Error("record purchase error", zap.Error(err), zap.Int64("userID", userID))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	resp := purchaseResponse{
		TransactionID:     res.PurchaseTransactionID,
		BuyerPoints:       res.Split.Buyer,
		ParentPoints:      res.Split.Parent,
		GrandparentPoints: res.Split.Grandparent,
	}
	if res.AllocationError != nil {
		resp.AllocationError = res.AllocationError.Error()
	}

	writeJSON(w, http.StatusOK, resp)
}

type paymentRequest struct {
	MerchantID  *int64 `json:"merchant_id,omitempty"`
	OfferID     *int64 `json:"offer_id,omitempty"`
	Quantity    int64  `json:"quantity"`
	Amount      int64  `json:"amount"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

type paymentResponse struct {
	MerchantOrderID string `json:"merchant_order_id"`
	RedirectURL     string `json:"redirect_url"`
}

// CreatePayment создаёт платёжное поручение и возвращает адрес
// перенаправления на платёжный шлюз.
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	init, err := h.service.CreatePayment(r.Context(), userID, service.PaymentRequest{
		MerchantID:  req.MerchantID,
		OfferID:     req.OfferID,
		Quantity:    req.Quantity,
		Amount:      req.Amount,
		RedirectURL: req.RedirectURL,
	})
	if err != nil {
		if errors.Is(err, validation.ErrAmountBelowMinimum) || errors.Is(err, validation.ErrInvalidAmount) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		h.logger.Error("create payment error", zap.Error(err), zap.Int64("userID", userID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, paymentResponse{
		MerchantOrderID: init.MerchantOrderID,
		RedirectURL:     init.RedirectURL,
	})
}

type paymentStatusResponse struct {
	MerchantOrderID string `json:"merchant_order_id"`
	Status          string `json:"status"`
	Amount          int64  `json:"amount"`
	ErrorCode       string `json:"error_code,omitempty"`
}

// GetPaymentStatus возвращает состояние платёжного поручения для опроса клиентом.
func (h *Handler) GetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserIDFromContext(r.Context()); !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	merchantOrderID := pathParam(r, "merchantOrderID")
	order, err := h.service.GetPaymentOrderStatus(r.Context(), merchantOrderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		h.logger.Error("get payment status error", zap.Error(err), zap.String("merchantOrderID", merchantOrderID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, paymentStatusResponse{
		MerchantOrderID: order.MerchantOrderID,
		Status:          string(order.Status),
		Amount:          order.Amount,
		ErrorCode:       order.ErrorCode,
	})
}

// Webhook принимает уведомление платёжного шлюза. Подпись тела передаётся
// в заголовке Authorization; статус ответа определяет бизнес-логика.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	status, err := h.service.HandleWebhook(r.Context(), body, r.Header.Get("Authorization"))
	if err != nil {
		if status >= http.StatusInternalServerError {
			h.logger.Error("webhook processing error", zap.Error(err))
			http.Error(w, http.StatusText(status), status)
			return
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.WriteHeader(status)
}
