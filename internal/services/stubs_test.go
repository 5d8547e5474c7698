package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"gestorbanco/internal/models"
	"gestorbanco/internal/store"
	"gestorbanco/internal/websocket"
)

type fakeTxRunner struct {
	err error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubAccountStore struct {
	createFn        func(ctx context.Context, tx store.Execer, a models.Account) error
	getForUpdateFn  func(ctx context.Context, tx store.Getter, number string) (models.Account, error)
	updateBalanceFn func(ctx context.Context, tx store.Execer, number string, balance decimal.Decimal, expectedVersion int) error
	updateDetailsFn func(ctx context.Context, tx store.Execer, number string, t models.AccountType, createdOn time.Time, expectedVersion int) error
	deleteFn        func(ctx context.Context, tx store.Execer, number string) error
	linkFn          func(ctx context.Context, tx store.Execer, number string, customerID int64) error
	unlinkFn        func(ctx context.Context, tx store.Execer, number string, customerID int64) error
	unlinkAllFn     func(ctx context.Context, tx store.Execer, number string) error
}

func (s stubAccountStore) Create(ctx context.Context, tx store.Execer, a models.Account) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, a)
}

func (s stubAccountStore) GetForUpdate(ctx context.Context, tx store.Getter, number string) (models.Account, error) {
	return s.getForUpdateFn(ctx, tx, number)
}

func (s stubAccountStore) UpdateBalance(ctx context.Context, tx store.Execer, number string, balance decimal.Decimal, expectedVersion int) error {
	if s.updateBalanceFn == nil {
		return nil
	}
	return s.updateBalanceFn(ctx, tx, number, balance, expectedVersion)
}

func (s stubAccountStore) UpdateDetails(ctx context.Context, tx store.Execer, number string, t models.AccountType, createdOn time.Time, expectedVersion int) error {
	if s.updateDetailsFn == nil {
		return nil
	}
	return s.updateDetailsFn(ctx, tx, number, t, createdOn, expectedVersion)
}

func (s stubAccountStore) Delete(ctx context.Context, tx store.Execer, number string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, tx, number)
}

func (s stubAccountStore) LinkCustomer(ctx context.Context, tx store.Execer, number string, customerID int64) error {
	if s.linkFn == nil {
		return nil
	}
	return s.linkFn(ctx, tx, number, customerID)
}

func (s stubAccountStore) UnlinkCustomer(ctx context.Context, tx store.Execer, number string, customerID int64) error {
	if s.unlinkFn == nil {
		return nil
	}
	return s.unlinkFn(ctx, tx, number, customerID)
}

func (s stubAccountStore) UnlinkAllCustomers(ctx context.Context, tx store.Execer, number string) error {
	if s.unlinkAllFn == nil {
		return nil
	}
	return s.unlinkAllFn(ctx, tx, number)
}

type stubOperationStore struct {
	createFn          func(ctx context.Context, tx store.Getter, op models.Operation) (int64, error)
	getForUpdateFn    func(ctx context.Context, tx store.Getter, code int64) (models.Operation, error)
	deleteFn          func(ctx context.Context, tx store.Execer, code int64) error
	deleteByAccountFn func(ctx context.Context, tx store.Execer, number string) (int64, error)
}

func (s stubOperationStore) Create(ctx context.Context, tx store.Getter, op models.Operation) (int64, error) {
	if s.createFn == nil {
		return 1, nil
	}
	return s.createFn(ctx, tx, op)
}

func (s stubOperationStore) GetForUpdate(ctx context.Context, tx store.Getter, code int64) (models.Operation, error) {
	return s.getForUpdateFn(ctx, tx, code)
}

func (s stubOperationStore) Delete(ctx context.Context, tx store.Execer, code int64) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, tx, code)
}

func (s stubOperationStore) DeleteByAccount(ctx context.Context, tx store.Execer, number string) (int64, error) {
	if s.deleteByAccountFn == nil {
		return 0, nil
	}
	return s.deleteByAccountFn(ctx, tx, number)
}

type stubCustomerStore struct {
	getByNIFFn    func(ctx context.Context, nif string) (models.Customer, error)
	listFn        func(ctx context.Context) ([]models.Customer, error)
	searchFn      func(ctx context.Context, f store.CustomerFilter) ([]models.Customer, error)
	takenFieldsFn func(ctx context.Context, c models.Customer, excludeID int64) ([]string, error)
	createFn      func(ctx context.Context, tx store.Getter, c models.Customer) (int64, error)
	updateFn      func(ctx context.Context, tx store.Execer, c models.Customer) error
	deleteFn      func(ctx context.Context, tx store.Execer, id int64) error
}

func (s stubCustomerStore) GetByNIF(ctx context.Context, nif string) (models.Customer, error) {
	return s.getByNIFFn(ctx, nif)
}

func (s stubCustomerStore) List(ctx context.Context) ([]models.Customer, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx)
}

func (s stubCustomerStore) Search(ctx context.Context, f store.CustomerFilter) ([]models.Customer, error) {
	if s.searchFn == nil {
		return nil, nil
	}
	return s.searchFn(ctx, f)
}

func (s stubCustomerStore) TakenFields(ctx context.Context, c models.Customer, excludeID int64) ([]string, error) {
	if s.takenFieldsFn == nil {
		return nil, nil
	}
	return s.takenFieldsFn(ctx, c, excludeID)
}

func (s stubCustomerStore) Create(ctx context.Context, tx store.Getter, c models.Customer) (int64, error) {
	if s.createFn == nil {
		return 1, nil
	}
	return s.createFn(ctx, tx, c)
}

func (s stubCustomerStore) Update(ctx context.Context, tx store.Execer, c models.Customer) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, tx, c)
}

func (s stubCustomerStore) Delete(ctx context.Context, tx store.Execer, id int64) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, tx, id)
}

type stubLinks struct {
	unlinkFn func(ctx context.Context, tx store.Execer, customerID int64) error
}

func (s stubLinks) UnlinkCustomerEverywhere(ctx context.Context, tx store.Execer, customerID int64) error {
	if s.unlinkFn == nil {
		return nil
	}
	return s.unlinkFn(ctx, tx, customerID)
}

type stubUserStore struct {
	createFn        func(ctx context.Context, tx store.Getter, user models.User) (int64, error)
	getByUsernameFn func(ctx context.Context, username string) (models.User, error)
	existsFn        func(ctx context.Context, username, email string) (bool, error)
}

func (s stubUserStore) Create(ctx context.Context, tx store.Getter, user models.User) (int64, error) {
	if s.createFn == nil {
		return 1, nil
	}
	return s.createFn(ctx, tx, user)
}

func (s stubUserStore) GetByUsername(ctx context.Context, username string) (models.User, error) {
	return s.getByUsernameFn(ctx, username)
}

func (s stubUserStore) Exists(ctx context.Context, username, email string) (bool, error) {
	if s.existsFn == nil {
		return false, nil
	}
	return s.existsFn(ctx, username, email)
}

type stubAuditStore struct {
	logFn func(ctx context.Context, tx store.Execer, actor, action, entityType, entityID, data string) error
}

func (s stubAuditStore) Log(ctx context.Context, tx store.Execer, actor, action, entityType, entityID, data string) error {
	if s.logFn == nil {
		return nil
	}
	return s.logFn(ctx, tx, actor, action, entityType, entityID, data)
}

type stubHub struct {
	calls []websocket.BalanceUpdate
}

func (s *stubHub) BroadcastBalance(update websocket.BalanceUpdate) {
	s.calls = append(s.calls, update)
}
