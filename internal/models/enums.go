package models

import (
	"errors"
	"strings"
)

var (
	ErrInvalidRole          = errors.New("invalid role")
	ErrInvalidAccountType   = errors.New("invalid account type")
	ErrInvalidOperationType = errors.New("invalid operation type")
)

type Role string

const (
	RoleAdmin Role = "Admin"
	RoleUser  Role = "User"
)

// ParseRole accepts "admin" or "user" in any case.
func ParseRole(raw string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "admin":
		return RoleAdmin, nil
	case "user":
		return RoleUser, nil
	}
	return "", ErrInvalidRole
}

type AccountType string

const (
	AccountSavings  AccountType = "Savings"
	AccountChecking AccountType = "Checking"
	AccountBusiness AccountType = "Business"
)

var accountTypeAliases = map[string]AccountType{
	"savings":     AccountSavings,
	"ahorro":      AccountSavings,
	"checking":    AccountChecking,
	"corriente":   AccountChecking,
	"business":    AccountBusiness,
	"empresarial": AccountBusiness,
}

// ParseAccountType accepts the English names and the legacy Spanish ones
// (AHORRO, CORRIENTE, EMPRESARIAL).
func ParseAccountType(raw string) (AccountType, error) {
	if t, ok := accountTypeAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return t, nil
	}
	return "", ErrInvalidAccountType
}

type OperationType string

const (
	OperationDeposit     OperationType = "Deposit"
	OperationWithdrawal  OperationType = "Withdrawal"
	OperationTransferIn  OperationType = "TransferIn"
	OperationTransferOut OperationType = "TransferOut"
)

var operationTypeAliases = map[string]OperationType{
	"deposit":               OperationDeposit,
	"ingresardinero":        OperationDeposit,
	"withdrawal":            OperationWithdrawal,
	"retirardinero":         OperationWithdrawal,
	"transferin":            OperationTransferIn,
	"entradatransferencia":  OperationTransferIn,
	"transferout":           OperationTransferOut,
	"retiradatransferencia": OperationTransferOut,
}

func ParseOperationType(raw string) (OperationType, error) {
	if t, ok := operationTypeAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return t, nil
	}
	return "", ErrInvalidOperationType
}

func (t OperationType) IsTransfer() bool {
	return t == OperationTransferIn || t == OperationTransferOut
}

// Credits reports whether applying the operation increases the balance.
func (t OperationType) Credits() bool {
	return t == OperationDeposit || t == OperationTransferIn
}
