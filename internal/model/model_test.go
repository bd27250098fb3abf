package model

import (
	"errors"
	"testing"
)

func TestPayoutStatusNext(t *testing.T) {
	if err := PayoutPending.Next(PayoutCompleted); err != nil {
		t.Fatalf("pending -> completed must be allowed, got %v", err)
	}
	if err := PayoutPending.Next(PayoutRejected); err != nil {
		t.Fatalf("pending -> rejected must be allowed, got %v", err)
	}
	if err := PayoutCompleted.Next(PayoutRejected); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("terminal status must not transition, got %v", err)
	}
	if err := PayoutPending.Next(PayoutPending); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("pending -> pending must be rejected, got %v", err)
	}
}

func TestPaymentOrderStatusNext(t *testing.T) {
	if err := PaymentPending.Next(PaymentSuccess); err != nil {
		t.Fatalf("pending -> success must be allowed, got %v", err)
	}
	if err := PaymentSuccess.Next(PaymentFailed); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("settled order must not transition, got %v", err)
	}
	if err := PaymentFailed.Next(PaymentSuccess); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("failed order must not transition, got %v", err)
	}
}

func TestWithdrawalStatusNext(t *testing.T) {
	if err := WithdrawalPending.Next(WithdrawalRejected); err != nil {
		t.Fatalf("pending -> rejected must be allowed, got %v", err)
	}
	if err := WithdrawalRejected.Next(WithdrawalCompleted); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("reviewed withdrawal must not transition, got %v", err)
	}
}

func TestCommissionSettingsLevelAmount(t *testing.T) {
	s := CommissionSettings{Level1: 5000, Level2: 2000, Level3: 1000}

	for level, want := range map[int]int64{1: 5000, 2: 2000, 3: 1000, 4: 0, 0: 0} {
		if got := s.LevelAmount(level); got != want {
			t.Fatalf("LevelAmount(%d) = %d, want %d", level, got, want)
		}
	}
}

func TestNewCommissionTransaction(t *testing.T) {
	tx := NewCommissionTransaction(7, 5000, 2, "42", "L2 signup commission for user 42")

	if tx.Type != TransactionCommission {
		t.Fatalf("type = %s, want commission", tx.Type)
	}
	if tx.PayoutStatus != PayoutPending {
		t.Fatalf("new commission must be pending payout, got %s", tx.PayoutStatus)
	}
	if tx.CommissionLevel != 2 || tx.Amount != 5000 || tx.UserID != 7 {
		t.Fatalf("unexpected transaction: %+v", tx)
	}
}
