package service

import (
	"context"
	"errors"
	"testing"

	"github.com/kranthisuryadevara25-cpu/monyFest-sub000/internal/model"
	"github.com/kranthisuryadevara25-cpu/monyFest-sub000/internal/repository"
)

func TestCreditBoost_DisabledIsNoOp(t *testing.T) {
	repo := newStubRepo()
	repo.boostSettings = model.BoostSettings{Enabled: false, Percentage: 10}

	svc := NewService(repo, nil, nil)

	credit, err := svc.CreditBoost(context.Background(), 10, 5000, 0, "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if credit != 0 || len(repo.boostCredits) != 0 {
		t.Fatalf("disabled boost must not credit, got %d", credit)
	}
}

func TestCreditBoost_FinalBase(t *testing.T) {
	repo := newStubRepo()
	repo.boostSettings = model.BoostSettings{Enabled: true, Percentage: 5, ApplyOn: model.BoostApplyFinal}

	svc := NewService(repo, nil, nil)

	credit, err := svc.CreditBoost(context.Background(), 10, 20000, 25000, "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if credit != 1000 {
		t.Fatalf("expected 5%% of final 20000, got %d", credit)
	}
}

func TestCreditBoost_GrossBase(t *testing.T) {
	repo := newStubRepo()
	repo.boostSettings = model.BoostSettings{Enabled: true, Percentage: 5, ApplyOn: model.BoostApplyGross}

	svc := NewService(repo, nil, nil)

	credit, err := svc.CreditBoost(context.Background(), 10, 20000, 25000, "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if credit != 1250 {
		t.Fatalf("expected 5%% of gross 25000, got %d", credit)
	}

	// Без брутто-суммы базой остаётся сумма расчёта.
	credit, err = svc.CreditBoost(context.Background(), 10, 20000, 0, "2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if credit != 1000 {
		t.Fatalf("expected fallback to final amount, got %d", credit)
	}
}

func TestCreditBoost_TinyAmountRoundsToZero(t *testing.T) {
	repo := newStubRepo()
	repo.boostSettings = model.BoostSettings{Enabled: true, Percentage: 5, ApplyOn: model.BoostApplyFinal}

	svc := NewService(repo, nil, nil)

	credit, err := svc.CreditBoost(context.Background(), 10, 10, 0, "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if credit != 0 || len(repo.boostCredits) != 0 {
		t.Fatalf("sub-paisa credit must be dropped, got %d", credit)
	}
}

func TestRequestBoostWithdrawal_BelowThreshold(t *testing.T) {
	repo := newStubRepo()
	repo.merchants[10] = &model.Merchant{ID: 10, Name: "shop", BoostBalance: 500}
	repo.boostSettings = model.BoostSettings{Enabled: true, MinRedemptionAmount: 1000}

	svc := NewService(repo, nil, nil)

	_, err := svc.RequestBoostWithdrawal(context.Background(), 10)
	if !errors.Is(err, repository.ErrBelowThreshold) {
		t.Fatalf("expected ErrBelowThreshold, got %v", err)
	}
}

func TestRequestBoostWithdrawal_AutoApproved(t *testing.T) {
	repo := newStubRepo()
	repo.merchants[10] = &model.Merchant{ID: 10, Name: "shop", BoostBalance: 5000}
	repo.boostSettings = model.BoostSettings{Enabled: true, MinRedemptionAmount: 1000, AutoApproveThreshold: 10000}

	svc := NewService(repo, nil, nil)

	wd, err := svc.RequestBoostWithdrawal(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wd.Status != model.WithdrawalCompleted {
		t.Fatalf("expected auto-approved withdrawal, got %s", wd.Status)
	}
	if wd.Amount != 5000 {
		t.Fatalf("expected full balance withdrawal, got %d", wd.Amount)
	}
	if repo.merchants[10].BoostBalance != 0 {
		t.Fatalf("balance must be zeroed on withdrawal")
	}
}

func TestReviewBoostWithdrawal_RejectAndRepeat(t *testing.T) {
	repo := newStubRepo()
	repo.withdrawal = &model.BoostWithdrawal{ID: 1, MerchantID: 10, Amount: 5000, Status: model.WithdrawalPending}

	svc := NewService(repo, nil, nil)

	wd, err := svc.ReviewBoostWithdrawal(context.Background(), 1, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wd.Status != model.WithdrawalRejected {
		t.Fatalf("expected rejected status, got %s", wd.Status)
	}

	_, err = svc.ReviewBoostWithdrawal(context.Background(), 1, true)
	if !errors.Is(err, repository.ErrAlreadyReviewed) {
		t.Fatalf("expected ErrAlreadyReviewed on second review, got %v", err)
	}
}

func TestReviewCommissionPayout(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, nil, nil)

	if err := svc.ReviewCommissionPayout(context.Background(), 7, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.payoutUpdates[7] != model.PayoutCompleted {
		t.Fatalf("expected completed payout, got %s", repo.payoutUpdates[7])
	}

	if err := svc.ReviewCommissionPayout(context.Background(), 8, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.payoutUpdates[8] != model.PayoutRejected {
		t.Fatalf("expected rejected payout, got %s", repo.payoutUpdates[8])
	}
}
