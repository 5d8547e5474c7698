package services

import (
	"github.com/shopspring/decimal"

	"gestorbanco/internal/models"
	"gestorbanco/internal/money"
	"gestorbanco/internal/validator"
)

// Apply returns the balance after recording an operation. Debits never take the
// balance below zero.
func Apply(balance decimal.Decimal, t models.OperationType, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return balance, validator.Invalid("amount", "must be greater than 0")
	}
	if t.Credits() {
		next := balance.Add(amount)
		if !money.InRange(next) {
			return balance, validator.Invalid("amount", money.ErrAmountTooLarge.Error())
		}
		return next, nil
	}
	if balance.LessThan(amount) {
		return balance, ErrInsufficientFunds
	}
	return balance.Sub(amount), nil
}

// Reverse undoes Apply for a deleted operation.
func Reverse(balance decimal.Decimal, t models.OperationType, amount decimal.Decimal) decimal.Decimal {
	if t.Credits() {
		return balance.Sub(amount)
	}
	return balance.Add(amount)
}
