// Package validation содержит функции валидации входных данных.
package validation

import (
	"errors"

	"github.com/kranthisuryadevara25-cpu/monyFest-sub000/internal/model"
)

// ErrInvalidQuantity возвращается при количестве меньше единицы.
var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	// ErrInvalidAmount возвращается при отрицательной сумме.
	ErrInvalidAmount = errors.New("amount must not be negative")
	// ErrInvalidPoints возвращается при неположительном количестве баллов.
	ErrInvalidPoints = errors.New("points must be positive")
	// ErrAmountBelowMinimum возвращается при сумме платежа ниже минимальной.
	ErrAmountBelowMinimum = errors.New("amount below minimum payable")
)

// ValidatePurchase проверяет количество и сумму покупки до любых записей.
func ValidatePurchase(quantity, amount int64) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if amount < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// ValidatePaymentAmount проверяет минимальную сумму платежа в пайсах.
func ValidatePaymentAmount(amount int64) error {
	if amount < model.MinPayableAmount {
		return ErrAmountBelowMinimum
	}
	return nil
}
