package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"gestorbanco/internal/db"
	"gestorbanco/internal/iban"
	"gestorbanco/internal/models"
	"gestorbanco/internal/money"
	"gestorbanco/internal/store"
	"gestorbanco/internal/validator"
	"gestorbanco/internal/websocket"
)

const (
	ibanCountry        = "ES"
	ibanBankLength     = 8
	ibanAccountLength  = 12
	numberAttempts     = 3
	conflictAttempts   = 3
	openingDescription = "Saldo inicial"
)

// LedgerService owns every write that touches an account: operations, account
// lifecycle and holder links.
type LedgerService struct {
	txRunner   db.TxRunner
	accounts   AccountStore
	operations OperationStore
	customers  CustomerLookup
	audit      AuditStore
	hub        BalanceHub
	logger     *slog.Logger
	now        func() time.Time
}

func NewLedgerService(txRunner db.TxRunner, accounts AccountStore, operations OperationStore, customers CustomerLookup, audit AuditStore, hub BalanceHub, logger *slog.Logger) *LedgerService {
	return &LedgerService{
		txRunner:   txRunner,
		accounts:   accounts,
		operations: operations,
		customers:  customers,
		audit:      audit,
		hub:        hub,
		logger:     logger,
		now:        time.Now,
	}
}

type AddOperationRequest struct {
	AccountNumber string
	Type          models.OperationType
	Amount        decimal.Decimal
	Description   string
	Date          time.Time
	Counterpart   string
	Actor         string
}

func (s *LedgerService) AddOperation(ctx context.Context, req AddOperationRequest) (models.Operation, error) {
	op := models.Operation{
		Description:   strings.TrimSpace(req.Description),
		Type:          req.Type,
		Date:          dateOnly(req.Date),
		Amount:        req.Amount,
		AccountNumber: req.AccountNumber,
	}
	if op.Date.IsZero() {
		op.Date = dateOnly(s.now())
	}
	if req.Type.IsTransfer() {
		counterpart := iban.Normalize(req.Counterpart)
		if !iban.Validate(counterpart) {
			return models.Operation{}, ErrInvalidIban
		}
		if counterpart == req.AccountNumber {
			return models.Operation{}, validator.Invalid("counterpart", "must differ from the account")
		}
		op.Counterpart = &counterpart
	}
	if err := validator.Struct(op); err != nil {
		return models.Operation{}, err
	}

	var balance decimal.Decimal
	err := s.retryOnConflict(ctx, func() error {
		return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
			account, err := s.lockAccount(ctx, tx, op.AccountNumber)
			if err != nil {
				return err
			}
			if op.Date.Before(dateOnly(account.CreatedOn)) {
				return validator.Invalid("date", "must not precede the account creation date")
			}
			next, err := Apply(account.Balance, op.Type, op.Amount)
			if err != nil {
				return err
			}
			if err := s.accounts.UpdateBalance(ctx, tx, account.Number, next, account.Version); err != nil {
				return err
			}
			code, err := s.operations.Create(ctx, tx, op)
			if err != nil {
				return err
			}
			op.Code = code
			balance = next
			return s.audit.Log(ctx, tx, req.Actor, "add_operation", "operation", strconv.FormatInt(code, 10), auditData(map[string]string{
				"account": account.Number,
				"type":    string(op.Type),
				"amount":  money.Format(op.Amount),
				"balance": money.Format(next),
			}))
		})
	})
	if err != nil {
		return models.Operation{}, err
	}
	s.logger.Info("operation applied", "code", op.Code, "account", op.AccountNumber, "type", op.Type, "actor", req.Actor)
	s.hub.BroadcastBalance(websocket.BalanceUpdate{
		AccountNumber: op.AccountNumber,
		Balance:       money.Format(balance),
		OperationCode: op.Code,
		Event:         websocket.EventApplied,
	})
	return op, nil
}

// DeleteOperation reverses the operation's effect and removes it in one transaction.
func (s *LedgerService) DeleteOperation(ctx context.Context, code int64, actor string) (models.Operation, error) {
	var removed models.Operation
	var balance decimal.Decimal
	err := s.retryOnConflict(ctx, func() error {
		return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
			op, err := s.operations.GetForUpdate(ctx, tx, code)
			if errors.Is(err, store.ErrNotFound) {
				return ErrOperationNotFound
			}
			if err != nil {
				return err
			}
			account, err := s.lockAccount(ctx, tx, op.AccountNumber)
			if err != nil {
				return err
			}
			next := Reverse(account.Balance, op.Type, op.Amount)
			if err := s.accounts.UpdateBalance(ctx, tx, account.Number, next, account.Version); err != nil {
				return err
			}
			if err := s.operations.Delete(ctx, tx, code); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return ErrOperationNotFound
				}
				return err
			}
			removed = op
			balance = next
			return s.audit.Log(ctx, tx, actor, "delete_operation", "operation", strconv.FormatInt(code, 10), auditData(map[string]string{
				"account": account.Number,
				"type":    string(op.Type),
				"amount":  money.Format(op.Amount),
				"balance": money.Format(next),
			}))
		})
	})
	if err != nil {
		return models.Operation{}, err
	}
	s.logger.Info("operation reversed", "code", code, "account", removed.AccountNumber, "actor", actor)
	s.hub.BroadcastBalance(websocket.BalanceUpdate{
		AccountNumber: removed.AccountNumber,
		Balance:       money.Format(balance),
		OperationCode: code,
		Event:         websocket.EventReversed,
	})
	return removed, nil
}

type CreateAccountRequest struct {
	Type           models.AccountType
	CreatedOn      time.Time
	InitialBalance decimal.Decimal
	HolderNIF      string
	Actor          string
}

// CreateAccount opens an account with a generated IBAN. A positive initial
// balance is recorded as an opening deposit.
func (s *LedgerService) CreateAccount(ctx context.Context, req CreateAccountRequest) (models.Account, error) {
	if req.InitialBalance.IsNegative() {
		return models.Account{}, validator.Invalid("balance", "must not be negative")
	}
	createdOn := dateOnly(req.CreatedOn)
	if createdOn.IsZero() {
		createdOn = dateOnly(s.now())
	}
	holder, err := s.customers.GetByNIF(ctx, req.HolderNIF)
	if errors.Is(err, store.ErrNotFound) {
		return models.Account{}, ErrCustomerNotFound
	}
	if err != nil {
		return models.Account{}, err
	}

	var account models.Account
	for attempt := 1; attempt <= numberAttempts; attempt++ {
		number, err := iban.Generate(ibanCountry, ibanBankLength, ibanAccountLength)
		if err != nil {
			return models.Account{}, err
		}
		account = models.Account{Number: number, Type: req.Type, CreatedOn: createdOn, Balance: decimal.Zero}
		if err := validator.Struct(account); err != nil {
			return models.Account{}, err
		}
		err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
			if err := s.accounts.Create(ctx, tx, account); err != nil {
				return err
			}
			if err := s.accounts.LinkCustomer(ctx, tx, number, holder.ID); err != nil {
				return err
			}
			if req.InitialBalance.IsPositive() {
				if _, err := s.operations.Create(ctx, tx, models.Operation{
					Description:   openingDescription,
					Type:          models.OperationDeposit,
					Date:          createdOn,
					Amount:        req.InitialBalance,
					AccountNumber: number,
				}); err != nil {
					return err
				}
				if err := s.accounts.UpdateBalance(ctx, tx, number, req.InitialBalance, 0); err != nil {
					return err
				}
				account.Balance = req.InitialBalance
				account.Version = 1
			}
			return s.audit.Log(ctx, tx, req.Actor, "create_account", "account", number, auditData(map[string]string{
				"holder":  holder.NIF,
				"type":    string(req.Type),
				"balance": money.Format(req.InitialBalance),
			}))
		})
		if errors.Is(err, store.ErrDuplicate) && attempt < numberAttempts {
			continue
		}
		if err != nil {
			return models.Account{}, err
		}
		break
	}
	s.logger.Info("account created", "account", account.Number, "holder", holder.NIF, "actor", req.Actor)
	return account, nil
}

type UpdateAccountRequest struct {
	Number    string
	Type      models.AccountType
	CreatedOn time.Time
	Version   int
	Actor     string
}

// UpdateAccount changes type and creation date. A stale Version yields ErrConflictingUpdate.
func (s *LedgerService) UpdateAccount(ctx context.Context, req UpdateAccountRequest) error {
	candidate := models.Account{Number: req.Number, Type: req.Type, CreatedOn: dateOnly(req.CreatedOn)}
	if err := validator.Struct(candidate); err != nil {
		return err
	}
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		account, err := s.lockAccount(ctx, tx, req.Number)
		if err != nil {
			return err
		}
		if account.Version != req.Version {
			return ErrConflictingUpdate
		}
		if err := s.accounts.UpdateDetails(ctx, tx, req.Number, req.Type, candidate.CreatedOn, req.Version); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, req.Actor, "update_account", "account", req.Number, auditData(map[string]string{
			"type":       string(req.Type),
			"created_on": candidate.CreatedOn.Format(time.DateOnly),
		}))
	})
}

// DeleteAccount removes operations, then holder links, then the account.
func (s *LedgerService) DeleteAccount(ctx context.Context, number, actor string) error {
	var removedOps int64
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := s.lockAccount(ctx, tx, number); err != nil {
			return err
		}
		n, err := s.operations.DeleteByAccount(ctx, tx, number)
		if err != nil {
			return err
		}
		removedOps = n
		if err := s.accounts.UnlinkAllCustomers(ctx, tx, number); err != nil {
			return err
		}
		if err := s.accounts.Delete(ctx, tx, number); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrAccountNotFound
			}
			return err
		}
		return s.audit.Log(ctx, tx, actor, "delete_account", "account", number, auditData(map[string]string{
			"operations": strconv.FormatInt(n, 10),
		}))
	})
	if err != nil {
		return err
	}
	s.logger.Info("account deleted", "account", number, "operations", removedOps, "actor", actor)
	s.hub.BroadcastBalance(websocket.BalanceUpdate{AccountNumber: number, Balance: money.Format(decimal.Zero), Event: websocket.EventClosed})
	return nil
}

func (s *LedgerService) AddHolder(ctx context.Context, number, nif, actor string) error {
	return s.changeHolder(ctx, number, nif, actor, true)
}

func (s *LedgerService) RemoveHolder(ctx context.Context, number, nif, actor string) error {
	return s.changeHolder(ctx, number, nif, actor, false)
}

func (s *LedgerService) changeHolder(ctx context.Context, number, nif, actor string, link bool) error {
	customer, err := s.customers.GetByNIF(ctx, nif)
	if errors.Is(err, store.ErrNotFound) {
		return ErrCustomerNotFound
	}
	if err != nil {
		return err
	}
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := s.lockAccount(ctx, tx, number); err != nil {
			return err
		}
		action := "add_holder"
		if link {
			err = s.accounts.LinkCustomer(ctx, tx, number, customer.ID)
		} else {
			action = "remove_holder"
			err = s.accounts.UnlinkCustomer(ctx, tx, number, customer.ID)
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("%w: %s is not a holder of %s", ErrCustomerNotFound, customer.NIF, number)
			}
		}
		if err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, actor, action, "account", number, auditData(map[string]string{"customer": customer.NIF}))
	})
}

func (s *LedgerService) lockAccount(ctx context.Context, tx store.Getter, number string) (models.Account, error) {
	account, err := s.accounts.GetForUpdate(ctx, tx, number)
	if errors.Is(err, store.ErrNotFound) {
		return models.Account{}, ErrAccountNotFound
	}
	return account, err
}

// retryOnConflict re-runs fn, which re-reads the account, when a version check fails.
func (s *LedgerService) retryOnConflict(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; attempt <= conflictAttempts; attempt++ {
		err = fn()
		if !errors.Is(err, ErrConflictingUpdate) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		s.logger.Warn("version conflict, retrying", "attempt", attempt)
	}
	return err
}

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func auditData(fields map[string]string) string {
	data, err := json.Marshal(fields)
	if err != nil {
		return "{}"
	}
	return string(data)
}
