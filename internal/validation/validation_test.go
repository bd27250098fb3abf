package validation

import (
	"errors"
	"testing"
)

func TestValidatePurchase(t *testing.T) {
	if err := ValidatePurchase(1, 0); err != nil {
		t.Fatalf("free purchase must be valid, got %v", err)
	}
	if err := ValidatePurchase(0, 100); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	if err := ValidatePurchase(1, -1); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestValidatePaymentAmount(t *testing.T) {
	if err := ValidatePaymentAmount(100); err != nil {
		t.Fatalf("minimum amount must be valid, got %v", err)
	}
	if err := ValidatePaymentAmount(99); !errors.Is(err, ErrAmountBelowMinimum) {
		t.Fatalf("expected ErrAmountBelowMinimum, got %v", err)
	}
}
