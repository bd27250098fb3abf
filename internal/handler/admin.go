package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/kranthisuryadevara25-cpu/monyFest-sub000/internal/model"
	"github.com/kranthisuryadevara25-cpu/monyFest-sub000/internal/repository"
)

type merchantRequest struct {
	Name          string `json:"name"`
	Category      string `json:"category"`
	Industry      string `json:"industry,omitempty"`
	LinkedAgentID *int64 `json:"linked_agent_id,omitempty"`
}

// CreateMerchant регистрирует нового продавца.
func (h *Handler) CreateMerchant(w http.ResponseWriter, r *http.Request) {
	var req merchantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.Name == "" {
		http.Error(w, "merchant name is required", http.StatusBadRequest)
		return
	}

	id, err := h.service.CreateMerchant(r.Context(), model.Merchant{
		Name:          req.Name,
		Category:      req.Category,
		Industry:      req.Industry,
		LinkedAgentID: req.LinkedAgentID,
	})
	if err != nil {
		h.logger.Error("create merchant error", zap.Error(err), zap.String("name", req.Name))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

type withdrawalResponse struct {
	ID         int64  `json:"id"`
	MerchantID int64  `json:"merchant_id"`
	Amount     int64  `json:"amount"`
	Status     string `json:"status"`
}

// RequestBoostWithdrawal создаёт заявку продавца на вывод boost-баланса.
// Баланс ниже минимального порога отклоняется со статусом 402.
func (h *Handler) RequestBoostWithdrawal(w http.ResponseWriter, r *http.Request) {
	merchantID, err := pathID(r, "merchantID")
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	wd, err := h.service.RequestBoostWithdrawal(r.Context(), merchantID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrMerchantNotFound):
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		case errors.Is(err, repository.ErrBelowThreshold):
			http.Error(w, err.Error(), http.StatusPaymentRequired)
		default:
			h.logger.Error("boost withdrawal error", zap.Error(err), zap.Int64("merchantID", merchantID))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, withdrawalResponse{
		ID:         wd.ID,
		MerchantID: wd.MerchantID,
		Amount:     wd.Amount,
		Status:     string(wd.Status),
	})
}

type reviewRequest struct {
	Approve bool `json:"approve"`
}

// ReviewBoostWithdrawal подтверждает либо отклоняет ожидающую заявку на вывод.
// Повторное рассмотрение возвращает 409.
func (h *Handler) ReviewBoostWithdrawal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	wd, err := h.service.ReviewBoostWithdrawal(r.Context(), id, req.Approve)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrWithdrawalNotFound):
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		case errors.Is(err, repository.ErrAlreadyReviewed):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			h.logger.Error("review withdrawal error", zap.Error(err), zap.Int64("withdrawalID", id))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, withdrawalResponse{
		ID:         wd.ID,
		MerchantID: wd.MerchantID,
		Amount:     wd.Amount,
		Status:     string(wd.Status),
	})
}

// ReviewCommissionPayout подтверждает либо отклоняет ожидающую выплату комиссии.
func (h *Handler) ReviewCommissionPayout(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	err = h.service.ReviewCommissionPayout(r.Context(), id, req.Approve)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrTransactionNotFound):
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		case errors.Is(err, repository.ErrAlreadyReviewed):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			h.logger.Error("review commission error", zap.Error(err), zap.Int64("transactionID", id))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
}

type commissionSettingsPayload struct {
	Level1         int64  `json:"level1"`
	Level2         int64  `json:"level2"`
	Level3         int64  `json:"level3"`
	MerchantBonus  int64  `json:"merchant_bonus"`
	BuyerPct       int64  `json:"buyer_pct"`
	ParentPct      int64  `json:"parent_pct"`
	GrandparentPct int64  `json:"grandparent_pct"`
	Warning        string `json:"warning,omitempty"`
}

// GetCommissionSettings возвращает текущие настройки комиссий.
func (h *Handler) GetCommissionSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.GetCommissionSettings(r.Context())
	if err != nil {
		h.logger.Error("get commission settings error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, commissionSettingsPayload{
		Level1:         s.Level1,
		Level2:         s.Level2,
		Level3:         s.Level3,
		MerchantBonus:  s.MerchantBonus,
		BuyerPct:       s.BuyerPct,
		ParentPct:      s.ParentPct,
		GrandparentPct: s.GrandparentPct,
	})
}

// UpdateCommissionSettings сохраняет настройки комиссий. Доли, не
// суммирующиеся в 100, допустимы: ответ содержит предупреждение, а движок
// нормализует их при каждом распределении.
func (h *Handler) UpdateCommissionSettings(w http.ResponseWriter, r *http.Request) {
	var req commissionSettingsPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.Level1 < 0 || req.Level2 < 0 || req.Level3 < 0 || req.MerchantBonus < 0 ||
		req.BuyerPct < 0 || req.ParentPct < 0 || req.GrandparentPct < 0 {
		http.Error(w, "settings must be non-negative", http.StatusUnprocessableEntity)
		return
	}

	err := h.service.UpdateCommissionSettings(r.Context(), model.CommissionSettings{
		Level1:         req.Level1,
		Level2:         req.Level2,
		Level3:         req.Level3,
		MerchantBonus:  req.MerchantBonus,
		BuyerPct:       req.BuyerPct,
		ParentPct:      req.ParentPct,
		GrandparentPct: req.GrandparentPct,
	})
	if err != nil {
		h.logger.Error("update commission settings error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if sum := req.BuyerPct + req.ParentPct + req.GrandparentPct; sum != 100 {
		req.Warning = "point shares do not sum to 100 and will be normalized on allocation"
	}

	writeJSON(w, http.StatusOK, req)
}

type boostSettingsPayload struct {
	Enabled              bool   `json:"enabled"`
	Percentage           int64  `json:"percentage"`
	ApplyOn              string `json:"apply_on"`
	MinRedemptionAmount  int64  `json:"min_redemption_amount"`
	AutoApproveThreshold int64  `json:"auto_approve_threshold"`
}

// GetBoostSettings возвращает текущие настройки boost-кэшбэка.
func (h *Handler) GetBoostSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.GetBoostSettings(r.Context())
	if err != nil {
		h.logger.Error("get boost settings error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, boostSettingsPayload{
		Enabled:              s.Enabled,
		Percentage:           s.Percentage,
		ApplyOn:              string(s.ApplyOn),
		MinRedemptionAmount:  s.MinRedemptionAmount,
		AutoApproveThreshold: s.AutoApproveThreshold,
	})
}

// UpdateBoostSettings сохраняет настройки boost-кэшбэка.
func (h *Handler) UpdateBoostSettings(w http.ResponseWriter, r *http.Request) {
	var req boostSettingsPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.MinRedemptionAmount < 0 || req.AutoApproveThreshold < 0 {
		http.Error(w, "thresholds must be non-negative", http.StatusUnprocessableEntity)
		return
	}

	err := h.service.UpdateBoostSettings(r.Context(), model.BoostSettings{
		Enabled:              req.Enabled,
		Percentage:           req.Percentage,
		ApplyOn:              model.BoostApplyOn(req.ApplyOn),
		MinRedemptionAmount:  req.MinRedemptionAmount,
		AutoApproveThreshold: req.AutoApproveThreshold,
	})
	if err != nil {
		h.logger.Error("update boost settings error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

type slabPayload struct {
	MinAmount int64  `json:"min_amount"`
	MaxAmount *int64 `json:"max_amount,omitempty"`
	Points    int64  `json:"points"`
}

// GetLoyaltySlabs возвращает слэбы начисления баллов для категории.
func (h *Handler) GetLoyaltySlabs(w http.ResponseWriter, r *http.Request) {
	category := pathParam(r, "category")
	slabs, err := h.service.GetLoyaltySlabs(r.Context(), category)
	if err != nil {
		h.logger.Error("get loyalty slabs error", zap.Error(err), zap.String("category", category))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resp := make([]slabPayload, 0, len(slabs))
	for _, s := range slabs {
		resp = append(resp, slabPayload{MinAmount: s.MinAmount, MaxAmount: s.MaxAmount, Points: s.Points})
	}

	writeJSON(w, http.StatusOK, resp)
}

// SetLoyaltySlabs заменяет слэбы категории целиком.
func (h *Handler) SetLoyaltySlabs(w http.ResponseWriter, r *http.Request) {
	category := pathParam(r, "category")

	var req []slabPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	slabs := make([]model.LoyaltySlab, 0, len(req))
	for _, s := range req {
		if s.MinAmount < 0 || s.Points < 0 || (s.MaxAmount != nil && *s.MaxAmount < s.MinAmount) {
			http.Error(w, "invalid slab bounds", http.StatusUnprocessableEntity)
			return
		}
		slabs = append(slabs, model.LoyaltySlab{MinAmount: s.MinAmount, MaxAmount: s.MaxAmount, Points: s.Points})
	}

	if err := h.service.SetLoyaltySlabs(r.Context(), category, slabs); err != nil {
		h.logger.Error("set loyalty slabs error", zap.Error(err), zap.String("category", category))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func pathID(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(pathParam(r, key), 10, 64)
}
