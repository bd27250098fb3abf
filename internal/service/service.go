// Package service реализует бизнес-логику сервиса лояльности monyFest.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kranthisuryadevara25-cpu/monyFest-sub000/internal/gateway"
	"github.com/kranthisuryadevara25-cpu/monyFest-sub000/internal/model"
	"github.com/kranthisuryadevara25-cpu/monyFest-sub000/internal/repository"
)

// ErrInvalidCredentials возвращается при неверной паре логин/пароль.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrReferrerNotFound возвращается при регистрации с несуществующим реферальным кодом.
	ErrReferrerNotFound = errors.New("referrer not found")
	// ErrAmountMismatch возвращается, когда сумма из вебхука не совпадает с поручением.
	ErrAmountMismatch = errors.New("webhook amount mismatch")
)

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error

	CreateUser(ctx context.Context, login string, passwordHash []byte, referralCode string, referredBy *int64, chain []int64) (int64, error)
	GetUserByLogin(ctx context.Context, login string) (*model.User, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByReferralCode(ctx context.Context, code string) (*model.User, error)
	AllocatePoints(ctx context.Context, awards []repository.PointsAward, sourceID string) error
	RedeemPoints(ctx context.Context, userID, points int64, description string) error

	CreateMerchant(ctx context.Context, m model.Merchant) (int64, error)
	GetMerchantByID(ctx context.Context, id int64) (*model.Merchant, error)
	GetOfferByID(ctx context.Context, id int64) (*model.Offer, error)
	CreditBoost(ctx context.Context, merchantID, amount int64, sourceID string) error
	CreateBoostWithdrawal(ctx context.Context, merchantID, minAmount, autoApprove int64) (*model.BoostWithdrawal, error)
	ReviewBoostWithdrawal(ctx context.Context, id int64, to model.WithdrawalStatus) (*model.BoostWithdrawal, error)

	CreateTransaction(ctx context.Context, t model.Transaction) (int64, error)
	GetTransactionsByUser(ctx context.Context, userID int64, types []model.TransactionType, limit int) ([]model.Transaction, error)
	UpdatePayoutStatus(ctx context.Context, id int64, to model.PayoutStatus) error

	GetCommissionSettings(ctx context.Context) (model.CommissionSettings, error)
	UpdateCommissionSettings(ctx context.Context, s model.CommissionSettings) error
	GetBoostSettings(ctx context.Context) (model.BoostSettings, error)
	UpdateBoostSettings(ctx context.Context, s model.BoostSettings) error
	GetLoyaltySlabs(ctx context.Context, categoryKey string) ([]model.LoyaltySlab, error)
	SetLoyaltySlabs(ctx context.Context, categoryKey string, slabs []model.LoyaltySlab) error

	CreatePaymentOrder(ctx context.Context, o model.PaymentOrder) error
	GetPaymentOrder(ctx context.Context, merchantOrderID string) (*model.PaymentOrder, error)
	MarkPaymentOrderSuccess(ctx context.Context, merchantOrderID, gatewayOrderID string) (bool, error)
	MarkPaymentOrderFailed(ctx context.Context, merchantOrderID, errorCode string) (bool, error)
}

// PaymentGateway описывает контракт платёжного шлюза, используемый сервисом.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, merchantOrderID string, amount int64, redirectURL string) (*gateway.CreateOrderResponse, error)
	VerifySignature(body []byte, header string) bool
}

// Service содержит бизнес-логику сервиса лояльности.
type Service struct {
	repo    Repository
	gateway PaymentGateway
	logger  *zap.Logger
}

// NewService создаёт новый сервис с указанным репозиторием и платёжным шлюзом.
func NewService(repo Repository, gw PaymentGateway, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:    repo,
		gateway: gw,
		logger:  logger,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// RegisterUser регистрирует нового пользователя и начисляет комиссии его реферерам.
// referralCode может быть пустым; несуществующий код отклоняется до создания.
func (s *Service) RegisterUser(ctx context.Context, login, password, referralCode string) (int64, error) {
	var (
		referredBy *int64
		chain      []int64
	)

	if referralCode != "" {
		referrer, err := s.repo.GetUserByReferralCode(ctx, referralCode)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return 0, ErrReferrerNotFound
			}
			return 0, err
		}

		referredBy = &referrer.ID
		chain = append([]int64{referrer.ID}, referrer.ReferralChain...)
		if len(chain) > model.MaxReferralChain {
			chain = chain[:model.MaxReferralChain]
		}
	}

	hashed := hashPassword(login, password)
	id, err := s.repo.CreateUser(ctx, login, hashed, newReferralCode(), referredBy, chain)
	if err != nil {
		return 0, err
	}

	// Комиссии — побочный учёт: их сбой не должен отменять регистрацию.
	s.grantSignupCommissions(ctx, id, chain)

	return id, nil
}

// AuthenticateUser проверяет логин и пароль пользователя и возвращает его идентификатор.
func (s *Service) AuthenticateUser(ctx context.Context, login, password string) (int64, error) {
	u, err := s.repo.GetUserByLogin(ctx, login)
	if err != nil {
		return 0, err
	}

	hashed := hashPassword(login, password)
	if hex.EncodeToString(hashed) != hex.EncodeToString(u.PasswordHash) {
		return 0, ErrInvalidCredentials
	}

	return u.ID, nil
}

func hashPassword(login, password string) []byte {
	sum := sha256.Sum256([]byte(login + ":" + password))
	return sum[:]
}

func newReferralCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// GetBalance возвращает баланс пользователя в виде структуры model.Balance.
func (s *Service) GetBalance(ctx context.Context, userID int64) (*model.Balance, error) {
	u, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &model.Balance{
		Points: u.PointsBalance,
		Wallet: float64(u.WalletBalance) / 100,
	}, nil
}

// GetTransactionsByUser возвращает записи журнала пользователя.
func (s *Service) GetTransactionsByUser(ctx context.Context, userID int64, types []model.TransactionType, limit int) ([]model.Transaction, error) {
	return s.repo.GetTransactionsByUser(ctx, userID, types, limit)
}

// GetCommissionSettings возвращает текущие настройки комиссий.
func (s *Service) GetCommissionSettings(ctx context.Context) (model.CommissionSettings, error) {
	return s.repo.GetCommissionSettings(ctx)
}

// UpdateCommissionSettings сохраняет настройки комиссий. Доли могут не
// суммироваться в 100: движок нормализует их при каждом распределении.
func (s *Service) UpdateCommissionSettings(ctx context.Context, cfg model.CommissionSettings) error {
	return s.repo.UpdateCommissionSettings(ctx, cfg)
}

// GetBoostSettings возвращает текущие настройки boost-кэшбэка.
func (s *Service) GetBoostSettings(ctx context.Context) (model.BoostSettings, error) {
	return s.repo.GetBoostSettings(ctx)
}

// UpdateBoostSettings сохраняет настройки boost-кэшбэка, ограничивая процент диапазоном 0..100.
func (s *Service) UpdateBoostSettings(ctx context.Context, cfg model.BoostSettings) error {
	if cfg.Percentage < 0 {
		cfg.Percentage = 0
	}
	if cfg.Percentage > 100 {
		cfg.Percentage = 100
	}
	if cfg.ApplyOn != model.BoostApplyGross {
		cfg.ApplyOn = model.BoostApplyFinal
	}
	return s.repo.UpdateBoostSettings(ctx, cfg)
}

// GetLoyaltySlabs возвращает слэбы категории.
func (s *Service) GetLoyaltySlabs(ctx context.Context, categoryKey string) ([]model.LoyaltySlab, error) {
	return s.repo.GetLoyaltySlabs(ctx, categoryKey)
}

// SetLoyaltySlabs заменяет слэбы категории, предварительно отсортировав их по нижней границе.
func (s *Service) SetLoyaltySlabs(ctx context.Context, categoryKey string, slabs []model.LoyaltySlab) error {
	sort.Slice(slabs, func(i, j int) bool { return slabs[i].MinAmount < slabs[j].MinAmount })
	return s.repo.SetLoyaltySlabs(ctx, categoryKey, slabs)
}
