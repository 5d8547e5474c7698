package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"gestorbanco/internal/models"
	"gestorbanco/internal/store"
	"gestorbanco/internal/websocket"
)

type AccountStore interface {
	Create(ctx context.Context, tx store.Execer, a models.Account) error
	GetForUpdate(ctx context.Context, tx store.Getter, number string) (models.Account, error)
	UpdateBalance(ctx context.Context, tx store.Execer, number string, balance decimal.Decimal, expectedVersion int) error
	UpdateDetails(ctx context.Context, tx store.Execer, number string, accountType models.AccountType, createdOn time.Time, expectedVersion int) error
	Delete(ctx context.Context, tx store.Execer, number string) error
	LinkCustomer(ctx context.Context, tx store.Execer, number string, customerID int64) error
	UnlinkCustomer(ctx context.Context, tx store.Execer, number string, customerID int64) error
	UnlinkAllCustomers(ctx context.Context, tx store.Execer, number string) error
}

type OperationStore interface {
	Create(ctx context.Context, tx store.Getter, op models.Operation) (int64, error)
	GetForUpdate(ctx context.Context, tx store.Getter, code int64) (models.Operation, error)
	Delete(ctx context.Context, tx store.Execer, code int64) error
	DeleteByAccount(ctx context.Context, tx store.Execer, accountNumber string) (int64, error)
}

type CustomerLookup interface {
	GetByNIF(ctx context.Context, nif string) (models.Customer, error)
}

type CustomerStore interface {
	CustomerLookup
	List(ctx context.Context) ([]models.Customer, error)
	Search(ctx context.Context, f store.CustomerFilter) ([]models.Customer, error)
	TakenFields(ctx context.Context, c models.Customer, excludeID int64) ([]string, error)
	Create(ctx context.Context, tx store.Getter, c models.Customer) (int64, error)
	Update(ctx context.Context, tx store.Execer, c models.Customer) error
	Delete(ctx context.Context, tx store.Execer, id int64) error
}

type CustomerLinks interface {
	UnlinkCustomerEverywhere(ctx context.Context, tx store.Execer, customerID int64) error
}

type UserStore interface {
	Create(ctx context.Context, tx store.Getter, user models.User) (int64, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	Exists(ctx context.Context, username, email string) (bool, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actor, action, entityType, entityID, data string) error
}

type BalanceHub interface {
	BroadcastBalance(update websocket.BalanceUpdate)
}
