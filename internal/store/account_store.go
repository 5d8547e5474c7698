package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"gestorbanco/internal/models"
)

type AccountStore struct {
	db DB
}

type AccountFilter struct {
	Number string
	Type   models.AccountType
	// Ascending orders by creation date, oldest first.
	Ascending bool
}

const accountColumns = `number, type, created_on, balance, version`

func NewAccountStore(db DB) *AccountStore {
	return &AccountStore{db: db}
}

func (s *AccountStore) Create(ctx context.Context, tx Execer, a models.Account) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO accounts (number, type, created_on, balance, version)
		VALUES ($1, $2, $3, $4, 0)
	`, a.Number, string(a.Type), a.CreatedOn, a.Balance)
	return wrap("create account", err)
}

func (s *AccountStore) List(ctx context.Context) ([]models.Account, error) {
	var rows []models.Account
	err := s.db.SelectContext(ctx, &rows, `SELECT `+accountColumns+` FROM accounts ORDER BY created_on DESC, number`)
	if err != nil {
		return nil, wrap("list accounts", err)
	}
	return rows, nil
}

func (s *AccountStore) Search(ctx context.Context, f AccountFilter) ([]models.Account, error) {
	order := "DESC"
	if f.Ascending {
		order = "ASC"
	}
	var rows []models.Account
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE ($1 = '' OR number ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR type = $2)
		ORDER BY created_on `+order+`, number
	`, likeArg(f.Number), string(f.Type))
	if err != nil {
		return nil, wrap("search accounts", err)
	}
	return rows, nil
}

func (s *AccountStore) GetByNumber(ctx context.Context, number string) (models.Account, error) {
	var row models.Account
	err := s.db.GetContext(ctx, &row, `SELECT `+accountColumns+` FROM accounts WHERE number = $1`, number)
	if err != nil {
		return models.Account{}, wrap("get account", err)
	}
	return row, nil
}

func (s *AccountStore) GetForUpdate(ctx context.Context, tx Getter, number string) (models.Account, error) {
	var row models.Account
	err := tx.GetContext(ctx, &row, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE number = $1
		FOR UPDATE
	`, number)
	if err != nil {
		return models.Account{}, wrap("lock account", err)
	}
	return row, nil
}

func (s *AccountStore) ListByCustomer(ctx context.Context, customerID int64) ([]models.Account, error) {
	var rows []models.Account
	err := s.db.SelectContext(ctx, &rows, `
		SELECT a.number, a.type, a.created_on, a.balance, a.version
		FROM accounts a
		JOIN account_customers ac ON ac.account_number = a.number
		WHERE ac.customer_id = $1
		ORDER BY a.created_on DESC
	`, customerID)
	if err != nil {
		return nil, wrap("list customer accounts", err)
	}
	return rows, nil
}

// UpdateBalance sets the balance when expectedVersion is still current.
func (s *AccountStore) UpdateBalance(ctx context.Context, tx Execer, number string, balance decimal.Decimal, expectedVersion int) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET balance = $1, version = version + 1
		WHERE number = $2 AND version = $3
	`, balance, number, expectedVersion)
	if err != nil {
		return wrap("update balance", err)
	}
	return requireRows(res, ErrConflictingUpdate)
}

// UpdateDetails changes type and creation date. The balance only moves through operations.
func (s *AccountStore) UpdateDetails(ctx context.Context, tx Execer, number string, accountType models.AccountType, createdOn time.Time, expectedVersion int) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET type = $1, created_on = $2, version = version + 1
		WHERE number = $3 AND version = $4
	`, string(accountType), createdOn, number, expectedVersion)
	if err != nil {
		return wrap("update account", err)
	}
	return requireRows(res, ErrConflictingUpdate)
}

func (s *AccountStore) Delete(ctx context.Context, tx Execer, number string) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE number = $1`, number)
	if err != nil {
		return wrap("delete account", err)
	}
	return requireRows(res, ErrNotFound)
}

func (s *AccountStore) LinkCustomer(ctx context.Context, tx Execer, number string, customerID int64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO account_customers (account_number, customer_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, number, customerID)
	return wrap("link customer", err)
}

func (s *AccountStore) UnlinkCustomer(ctx context.Context, tx Execer, number string, customerID int64) error {
	res, err := tx.ExecContext(ctx, `
		DELETE FROM account_customers
		WHERE account_number = $1 AND customer_id = $2
	`, number, customerID)
	if err != nil {
		return wrap("unlink customer", err)
	}
	return requireRows(res, ErrNotFound)
}

func (s *AccountStore) UnlinkAllCustomers(ctx context.Context, tx Execer, number string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM account_customers WHERE account_number = $1`, number)
	return wrap("unlink account customers", err)
}

func (s *AccountStore) UnlinkCustomerEverywhere(ctx context.Context, tx Execer, customerID int64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM account_customers WHERE customer_id = $1`, customerID)
	return wrap("unlink customer accounts", err)
}
