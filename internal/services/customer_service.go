package services

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"gestorbanco/internal/db"
	"gestorbanco/internal/models"
	"gestorbanco/internal/store"
	"gestorbanco/internal/validator"
)

type CustomerSort string

const (
	SortNone      CustomerSort = ""
	SortBirthYear CustomerSort = "birth_year"
	SortSurname   CustomerSort = "apellidos"
)

func ParseCustomerSort(raw string) (CustomerSort, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return SortNone, nil
	case "birth_year", "anio_nacimiento", "edad":
		return SortBirthYear, nil
	case "apellidos", "surname":
		return SortSurname, nil
	}
	return SortNone, validator.Invalid("sort", "must be birth_year or apellidos")
}

type CustomerQuery struct {
	Filter     store.CustomerFilter
	Sort       CustomerSort
	Descending bool
}

type CustomerService struct {
	txRunner  db.TxRunner
	customers CustomerStore
	links     CustomerLinks
	audit     AuditStore
	logger    *slog.Logger
}

func NewCustomerService(txRunner db.TxRunner, customers CustomerStore, links CustomerLinks, audit AuditStore, logger *slog.Logger) *CustomerService {
	return &CustomerService{
		txRunner:  txRunner,
		customers: customers,
		links:     links,
		audit:     audit,
		logger:    logger,
	}
}

func (s *CustomerService) List(ctx context.Context) ([]models.Customer, error) {
	return s.customers.List(ctx)
}

func (s *CustomerService) Search(ctx context.Context, q CustomerQuery) ([]models.Customer, error) {
	rows, err := s.customers.Search(ctx, q.Filter)
	if err != nil {
		return nil, err
	}
	SortCustomers(rows, q.Sort, q.Descending)
	return rows, nil
}

// SortCustomers orders by birth year or by surname using Spanish collation.
func SortCustomers(rows []models.Customer, by CustomerSort, descending bool) {
	var less func(a, b models.Customer) bool
	switch by {
	case SortBirthYear:
		less = func(a, b models.Customer) bool { return a.BirthYear < b.BirthYear }
	case SortSurname:
		col := collate.New(language.Spanish, collate.IgnoreCase, collate.IgnoreDiacritics)
		less = func(a, b models.Customer) bool {
			if c := col.CompareString(a.Apellidos, b.Apellidos); c != 0 {
				return c < 0
			}
			return col.CompareString(a.Nombre, b.Nombre) < 0
		}
	default:
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if descending {
			return less(rows[j], rows[i])
		}
		return less(rows[i], rows[j])
	})
}

func (s *CustomerService) Get(ctx context.Context, nif string) (models.Customer, error) {
	c, err := s.customers.GetByNIF(ctx, nif)
	if errors.Is(err, store.ErrNotFound) {
		return models.Customer{}, ErrCustomerNotFound
	}
	return c, err
}

func (s *CustomerService) Create(ctx context.Context, c models.Customer, actor string) (models.Customer, error) {
	c = normalizeCustomer(c)
	if err := validator.Struct(c); err != nil {
		return models.Customer{}, err
	}
	if err := s.checkUnique(ctx, c, 0); err != nil {
		return models.Customer{}, err
	}
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		id, err := s.customers.Create(ctx, tx, c)
		if err != nil {
			return err
		}
		c.ID = id
		return s.audit.Log(ctx, tx, actor, "create_customer", "customer", c.NIF, "")
	})
	if err != nil {
		return models.Customer{}, duplicateAsExists(err)
	}
	s.logger.Info("customer created", "nif", c.NIF, "actor", actor)
	return c, nil
}

// Update replaces the customer identified by nif. c.Version must match the stored version.
func (s *CustomerService) Update(ctx context.Context, nif string, c models.Customer, actor string) (models.Customer, error) {
	current, err := s.Get(ctx, nif)
	if err != nil {
		return models.Customer{}, err
	}
	c = normalizeCustomer(c)
	c.ID = current.ID
	if err := validator.Struct(c); err != nil {
		return models.Customer{}, err
	}
	if c.Version != current.Version {
		return models.Customer{}, ErrConflictingUpdate
	}
	if err := s.checkUnique(ctx, c, c.ID); err != nil {
		return models.Customer{}, err
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.customers.Update(ctx, tx, c); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, actor, "update_customer", "customer", strconv.FormatInt(c.ID, 10), "")
	})
	if err != nil {
		return models.Customer{}, duplicateAsExists(err)
	}
	c.Version++
	return c, nil
}

// Delete removes the customer's account links before the customer row.
func (s *CustomerService) Delete(ctx context.Context, nif, actor string) error {
	current, err := s.Get(ctx, nif)
	if err != nil {
		return err
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.links.UnlinkCustomerEverywhere(ctx, tx, current.ID); err != nil {
			return err
		}
		if err := s.customers.Delete(ctx, tx, current.ID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrCustomerNotFound
			}
			return err
		}
		return s.audit.Log(ctx, tx, actor, "delete_customer", "customer", current.NIF, "")
	})
	if err != nil {
		return err
	}
	s.logger.Info("customer deleted", "nif", current.NIF, "actor", actor)
	return nil
}

func (s *CustomerService) checkUnique(ctx context.Context, c models.Customer, excludeID int64) error {
	taken, err := s.customers.TakenFields(ctx, c, excludeID)
	if err != nil {
		return err
	}
	if len(taken) > 0 {
		return &CustomerExistsError{Fields: taken}
	}
	return nil
}

func duplicateAsExists(err error) error {
	var dup *store.DuplicateError
	if errors.As(err, &dup) {
		return &CustomerExistsError{Fields: []string{dup.Field()}}
	}
	return err
}

func normalizeCustomer(c models.Customer) models.Customer {
	c.NIF = strings.ToUpper(strings.TrimSpace(c.NIF))
	c.Nombre = strings.TrimSpace(c.Nombre)
	c.Apellidos = strings.TrimSpace(c.Apellidos)
	c.Address = strings.TrimSpace(c.Address)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Phone = strings.TrimSpace(c.Phone)
	return c
}
