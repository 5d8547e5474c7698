package handlers

import (
	"context"

	"github.com/shopspring/decimal"

	"gestorbanco/internal/models"
	"gestorbanco/internal/services"
	"gestorbanco/internal/session"
	"gestorbanco/internal/store"
)

type AuthService interface {
	Login(ctx context.Context, sess *session.Session, username, password string) (string, error)
	Register(ctx context.Context, req services.RegisterRequest) (string, error)
}

type LedgerService interface {
	AddOperation(ctx context.Context, req services.AddOperationRequest) (models.Operation, error)
	DeleteOperation(ctx context.Context, code int64, actor string) (models.Operation, error)
	CreateAccount(ctx context.Context, req services.CreateAccountRequest) (models.Account, error)
	UpdateAccount(ctx context.Context, req services.UpdateAccountRequest) error
	DeleteAccount(ctx context.Context, number, actor string) error
	AddHolder(ctx context.Context, number, nif, actor string) error
	RemoveHolder(ctx context.Context, number, nif, actor string) error
}

type CustomerService interface {
	List(ctx context.Context) ([]models.Customer, error)
	Search(ctx context.Context, q services.CustomerQuery) ([]models.Customer, error)
	Get(ctx context.Context, nif string) (models.Customer, error)
	Create(ctx context.Context, c models.Customer, actor string) (models.Customer, error)
	Update(ctx context.Context, nif string, c models.Customer, actor string) (models.Customer, error)
	Delete(ctx context.Context, nif, actor string) error
}

type AccountReader interface {
	List(ctx context.Context) ([]models.Account, error)
	Search(ctx context.Context, f store.AccountFilter) ([]models.Account, error)
	GetByNumber(ctx context.Context, number string) (models.Account, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]models.Account, error)
}

type HolderReader interface {
	ListByAccount(ctx context.Context, accountNumber string) ([]models.Customer, error)
	ListNotInAccount(ctx context.Context, accountNumber string) ([]models.Customer, error)
}

type OperationReader interface {
	ListByAccount(ctx context.Context, accountNumber string) ([]models.Operation, error)
	GetByCode(ctx context.Context, code int64) (models.Operation, error)
	SignedTotal(ctx context.Context, accountNumber string) (decimal.Decimal, error)
}

type AuditReader interface {
	List(ctx context.Context, limit, offset int) ([]models.AuditLog, error)
}

type UserReader interface {
	GetByUsername(ctx context.Context, username string) (models.User, error)
}
