// Package model содержит доменные сущности сервиса лояльности monyFest.
package model

import (
	"errors"
	"time"
)

// ErrIllegalTransition возвращается при попытке перевести запись из терминального статуса.
var ErrIllegalTransition = errors.New("illegal status transition")

// MaxReferralChain ограничивает глубину реферальной цепочки пользователя.
const MaxReferralChain = 3

// DefaultOfferPoints — баллы за единицу оффера, если продавец их не настроил.
const DefaultOfferPoints = 10

// MinPayableAmount — минимальная сумма платежа в пайсах (1 рупия).
const MinPayableAmount = 100

// User представляет участника программы лояльности.
type User struct {
	ID            int64
	Login         string
	PasswordHash  []byte
	ReferralCode  string
	ReferredBy    *int64
	ReferralChain []int64
	PointsBalance int64
	WalletBalance int64
	CreatedAt     time.Time
}

// Merchant представляет продавца с накопительным boost-балансом.
type Merchant struct {
	ID               int64
	Name             string
	Category         string
	Industry         string
	LinkedAgentID    *int64
	BoostBalance     int64
	TotalBoostEarned int64
	CreatedAt        time.Time
}

// Offer описывает предложение продавца с собственной ставкой баллов.
type Offer struct {
	ID            int64
	MerchantID    int64
	Title         string
	LoyaltyPoints *int64
}

// TransactionType описывает вид записи в журнале операций.
type TransactionType string

const (
	TransactionPurchase       TransactionType = "purchase"
	TransactionCommission     TransactionType = "commission"
	TransactionPayout         TransactionType = "payout"
	TransactionCredit         TransactionType = "credit"
	TransactionDebit          TransactionType = "debit"
	TransactionPointsEarned   TransactionType = "points_earned"
	TransactionPointsRedeemed TransactionType = "points_redeemed"
	TransactionRefund         TransactionType = "refund"
)

// PayoutStatus описывает состояние выплаты комиссии.
type PayoutStatus string

const (
	PayoutPending   PayoutStatus = "pending"
	PayoutCompleted PayoutStatus = "completed"
	PayoutRejected  PayoutStatus = "rejected"
)

// Next проверяет допустимость перехода статуса выплаты.
// Разрешён только одноразовый переход pending -> completed/rejected.
func (s PayoutStatus) Next(to PayoutStatus) error {
	if s != PayoutPending {
		return ErrIllegalTransition
	}
	if to != PayoutCompleted && to != PayoutRejected {
		return ErrIllegalTransition
	}
	return nil
}

// Transaction — неизменяемая запись журнала операций.
// Поля PayoutStatus и CommissionLevel заполняются только для комиссий,
// поэтому записи создаются через типизированные конструкторы ниже.
type Transaction struct {
	ID              int64
	UserID          int64
	Type            TransactionType
	Amount          int64
	PointsEarned    int64
	PointsRedeemed  int64
	SourceID        string
	PayoutStatus    PayoutStatus
	CommissionLevel int
	Description     string
	CreatedAt       time.Time
}

// NewPurchaseTransaction создаёт запись о покупке на указанную сумму в пайсах.
func NewPurchaseTransaction(userID, amount int64, description string) Transaction {
	return Transaction{
		UserID:      userID,
		Type:        TransactionPurchase,
		Amount:      amount,
		Description: description,
	}
}

// NewPointsEarnedTransaction создаёт запись о начислении баллов.
// sourceID ссылается на породившую покупку.
func NewPointsEarnedTransaction(userID, points int64, sourceID, description string) Transaction {
	return Transaction{
		UserID:       userID,
		Type:         TransactionPointsEarned,
		PointsEarned: points,
		SourceID:     sourceID,
		Description:  description,
	}
}

// NewPointsRedeemedTransaction создаёт запись о списании баллов.
func NewPointsRedeemedTransaction(userID, points int64, description string) Transaction {
	return Transaction{
		UserID:         userID,
		Type:           TransactionPointsRedeemed,
		PointsRedeemed: points,
		Description:    description,
	}
}

// NewCommissionTransaction создаёт запись о комиссии с ожидающей выплатой.
// sourceID ссылается на приглашённого пользователя либо продавца.
func NewCommissionTransaction(userID, amount int64, level int, sourceID, description string) Transaction {
	return Transaction{
		UserID:          userID,
		Type:            TransactionCommission,
		Amount:          amount,
		SourceID:        sourceID,
		PayoutStatus:    PayoutPending,
		CommissionLevel: level,
		Description:     description,
	}
}

// PaymentOrderStatus описывает состояние платёжного поручения.
type PaymentOrderStatus string

const (
	PaymentPending PaymentOrderStatus = "PENDING"
	PaymentSuccess PaymentOrderStatus = "SUCCESS"
	PaymentFailed  PaymentOrderStatus = "FAILED"
)

// Next проверяет допустимость перехода статуса платёжного поручения.
func (s PaymentOrderStatus) Next(to PaymentOrderStatus) error {
	if s != PaymentPending {
		return ErrIllegalTransition
	}
	if to != PaymentSuccess && to != PaymentFailed {
		return ErrIllegalTransition
	}
	return nil
}

// PaymentOrder — платёжное поручение, созданное до перенаправления на шлюз.
type PaymentOrder struct {
	MerchantOrderID string
	UserID          int64
	MerchantID      *int64
	Amount          int64
	OfferID         *int64
	Quantity        int64
	Status          PaymentOrderStatus
	GatewayOrderID  string
	ErrorCode       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// WithdrawalStatus описывает состояние заявки на вывод boost-баланса.
type WithdrawalStatus string

const (
	WithdrawalPending   WithdrawalStatus = "pending"
	WithdrawalCompleted WithdrawalStatus = "completed"
	WithdrawalRejected  WithdrawalStatus = "rejected"
)

// Next проверяет допустимость перехода статуса заявки на вывод.
func (s WithdrawalStatus) Next(to WithdrawalStatus) error {
	if s != WithdrawalPending {
		return ErrIllegalTransition
	}
	if to != WithdrawalCompleted && to != WithdrawalRejected {
		return ErrIllegalTransition
	}
	return nil
}

// BoostWithdrawal — заявка продавца на вывод накопленного boost-баланса.
// Баланс списывается в момент создания и восстанавливается при отклонении.
type BoostWithdrawal struct {
	ID         int64
	MerchantID int64
	Amount     int64
	Status     WithdrawalStatus
	CreatedAt  time.Time
	ReviewedAt *time.Time
}

// BoostTransactionKind описывает направление boost-операции продавца.
type BoostTransactionKind string

const (
	BoostCredit BoostTransactionKind = "credit"
	BoostDebit  BoostTransactionKind = "debit"
)

// BoostTransaction — запись журнала boost-операций продавца.
type BoostTransaction struct {
	ID         int64
	MerchantID int64
	Kind       BoostTransactionKind
	Amount     int64
	SourceID   string
	CreatedAt  time.Time
}

// CommissionSettings — настройки комиссий и долей распределения баллов.
// Доли не обязаны суммироваться в 100 на чтении: движок нормализует их сам.
type CommissionSettings struct {
	Level1         int64
	Level2         int64
	Level3         int64
	MerchantBonus  int64
	BuyerPct       int64
	ParentPct      int64
	GrandparentPct int64
}

// LevelAmount возвращает сумму комиссии для уровня реферальной цепочки (1..3).
func (s CommissionSettings) LevelAmount(level int) int64 {
	switch level {
	case 1:
		return s.Level1
	case 2:
		return s.Level2
	case 3:
		return s.Level3
	}
	return 0
}

// LoyaltySlab — диапазон суммы заказа с фиксированным начислением баллов.
// MaxAmount == nil означает открытый сверху диапазон.
type LoyaltySlab struct {
	MinAmount int64
	MaxAmount *int64
	Points    int64
}

// BoostApplyOn определяет базу начисления boost-кэшбэка.
type BoostApplyOn string

const (
	BoostApplyGross BoostApplyOn = "gross"
	BoostApplyFinal BoostApplyOn = "final"
)

// Balance содержит баланс баллов и кошелька пользователя (кошелёк в рупиях).
type Balance struct {
	Points int64   `json:"points"`
	Wallet float64 `json:"wallet"`
}

// BoostSettings — настройки boost-кэшбэка продавцов. Пороги заданы в пайсах.
type BoostSettings struct {
	Enabled              bool
	Percentage           int64
	ApplyOn              BoostApplyOn
	MinRedemptionAmount  int64
	AutoApproveThreshold int64
}
