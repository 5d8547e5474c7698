package store

import (
	"context"

	"github.com/shopspring/decimal"

	"gestorbanco/internal/models"
)

type OperationStore struct {
	db DB
}

const operationColumns = `code, description, type, date, amount, counterpart, account_number`

func NewOperationStore(db DB) *OperationStore {
	return &OperationStore{db: db}
}

func (s *OperationStore) Create(ctx context.Context, tx Getter, op models.Operation) (int64, error) {
	var code int64
	err := tx.GetContext(ctx, &code, `
		INSERT INTO operations (description, type, date, amount, counterpart, account_number)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING code
	`, op.Description, string(op.Type), op.Date, op.Amount, op.Counterpart, op.AccountNumber)
	return code, wrap("create operation", err)
}

func (s *OperationStore) GetByCode(ctx context.Context, code int64) (models.Operation, error) {
	var row models.Operation
	err := s.db.GetContext(ctx, &row, `SELECT `+operationColumns+` FROM operations WHERE code = $1`, code)
	if err != nil {
		return models.Operation{}, wrap("get operation", err)
	}
	return row, nil
}

func (s *OperationStore) GetForUpdate(ctx context.Context, tx Getter, code int64) (models.Operation, error) {
	var row models.Operation
	err := tx.GetContext(ctx, &row, `SELECT `+operationColumns+` FROM operations WHERE code = $1 FOR UPDATE`, code)
	if err != nil {
		return models.Operation{}, wrap("lock operation", err)
	}
	return row, nil
}

func (s *OperationStore) ListByAccount(ctx context.Context, accountNumber string) ([]models.Operation, error) {
	var rows []models.Operation
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+operationColumns+`
		FROM operations
		WHERE account_number = $1
		ORDER BY date DESC, code DESC
	`, accountNumber)
	if err != nil {
		return nil, wrap("list operations", err)
	}
	return rows, nil
}

// SignedTotal sums credits minus debits for the account.
func (s *OperationStore) SignedTotal(ctx context.Context, accountNumber string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.db.GetContext(ctx, &total, `
		SELECT COALESCE(SUM(CASE WHEN type IN ('Deposit', 'TransferIn') THEN amount ELSE -amount END), 0)
		FROM operations
		WHERE account_number = $1
	`, accountNumber)
	return total, wrap("sum operations", err)
}

func (s *OperationStore) Delete(ctx context.Context, tx Execer, code int64) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM operations WHERE code = $1`, code)
	if err != nil {
		return wrap("delete operation", err)
	}
	return requireRows(res, ErrNotFound)
}

func (s *OperationStore) DeleteByAccount(ctx context.Context, tx Execer, accountNumber string) (int64, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM operations WHERE account_number = $1`, accountNumber)
	if err != nil {
		return 0, wrap("delete account operations", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, &StorageError{Op: "rows affected", Err: err}
	}
	return n, nil
}
