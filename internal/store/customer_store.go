package store

import (
	"context"
	"strings"

	"gestorbanco/internal/models"
)

type CustomerStore struct {
	db DB
}

// CustomerFilter holds case-insensitive substring filters. Empty fields match all.
type CustomerFilter struct {
	Nombre    string
	Apellidos string
	Email     string
	Phone     string
	NIF       string
}

const customerColumns = `id, nif, nombre, apellidos, birth_year, address, email, phone, version`

func NewCustomerStore(db DB) *CustomerStore {
	return &CustomerStore{db: db}
}

func (s *CustomerStore) List(ctx context.Context) ([]models.Customer, error) {
	var rows []models.Customer
	err := s.db.SelectContext(ctx, &rows, `SELECT `+customerColumns+` FROM customers ORDER BY id`)
	if err != nil {
		return nil, wrap("list customers", err)
	}
	return rows, nil
}

func (s *CustomerStore) Search(ctx context.Context, f CustomerFilter) ([]models.Customer, error) {
	var rows []models.Customer
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE ($1 = '' OR nombre ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR apellidos ILIKE '%' || $2 || '%')
		  AND ($3 = '' OR email ILIKE '%' || $3 || '%')
		  AND ($4 = '' OR phone ILIKE '%' || $4 || '%')
		  AND ($5 = '' OR nif ILIKE '%' || $5 || '%')
		ORDER BY id
	`, likeArg(f.Nombre), likeArg(f.Apellidos), likeArg(f.Email), likeArg(f.Phone), likeArg(f.NIF))
	if err != nil {
		return nil, wrap("search customers", err)
	}
	return rows, nil
}

func (s *CustomerStore) GetByNIF(ctx context.Context, nif string) (models.Customer, error) {
	var row models.Customer
	err := s.db.GetContext(ctx, &row, `SELECT `+customerColumns+` FROM customers WHERE nif = $1`, strings.ToUpper(nif))
	if err != nil {
		return models.Customer{}, wrap("get customer", err)
	}
	return row, nil
}

type uniqueRow struct {
	NIF   string `db:"nif"`
	Email string `db:"email"`
	Phone string `db:"phone"`
}

// TakenFields returns which of nif, email and phone already belong to a customer
// other than excludeID.
func (s *CustomerStore) TakenFields(ctx context.Context, c models.Customer, excludeID int64) ([]string, error) {
	var rows []uniqueRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT nif, email, phone
		FROM customers
		WHERE (nif = $1 OR email = $2 OR phone = $3) AND id <> $4
	`, c.NIF, c.Email, c.Phone, excludeID)
	if err != nil {
		return nil, wrap("customer uniqueness", err)
	}
	var taken []string
	seen := map[string]bool{}
	add := func(field string) {
		if !seen[field] {
			seen[field] = true
			taken = append(taken, field)
		}
	}
	for _, r := range rows {
		if strings.EqualFold(r.NIF, c.NIF) {
			add("nif")
		}
		if strings.EqualFold(r.Email, c.Email) {
			add("email")
		}
		if r.Phone == c.Phone {
			add("phone")
		}
	}
	return taken, nil
}

func (s *CustomerStore) Create(ctx context.Context, q Getter, c models.Customer) (int64, error) {
	var id int64
	err := q.GetContext(ctx, &id, `
		INSERT INTO customers (nif, nombre, apellidos, birth_year, address, email, phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, c.NIF, c.Nombre, c.Apellidos, c.BirthYear, c.Address, c.Email, c.Phone)
	return id, wrap("create customer", err)
}

// Update writes c if its version is still current and bumps the version.
func (s *CustomerStore) Update(ctx context.Context, q Execer, c models.Customer) error {
	res, err := q.ExecContext(ctx, `
		UPDATE customers
		SET nif = $1, nombre = $2, apellidos = $3, birth_year = $4, address = $5,
		    email = $6, phone = $7, version = version + 1
		WHERE id = $8 AND version = $9
	`, c.NIF, c.Nombre, c.Apellidos, c.BirthYear, c.Address, c.Email, c.Phone, c.ID, c.Version)
	if err != nil {
		return wrap("update customer", err)
	}
	return requireRows(res, ErrConflictingUpdate)
}

func (s *CustomerStore) Delete(ctx context.Context, q Execer, id int64) error {
	res, err := q.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return wrap("delete customer", err)
	}
	return requireRows(res, ErrNotFound)
}

func (s *CustomerStore) ListByAccount(ctx context.Context, accountNumber string) ([]models.Customer, error) {
	var rows []models.Customer
	err := s.db.SelectContext(ctx, &rows, `
		SELECT c.id, c.nif, c.nombre, c.apellidos, c.birth_year, c.address, c.email, c.phone, c.version
		FROM customers c
		JOIN account_customers ac ON ac.customer_id = c.id
		WHERE ac.account_number = $1
		ORDER BY c.apellidos, c.nombre
	`, accountNumber)
	if err != nil {
		return nil, wrap("list account customers", err)
	}
	return rows, nil
}

func (s *CustomerStore) ListNotInAccount(ctx context.Context, accountNumber string) ([]models.Customer, error) {
	var rows []models.Customer
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+customerColumns+`
		FROM customers c
		WHERE NOT EXISTS (
			SELECT 1 FROM account_customers ac
			WHERE ac.customer_id = c.id AND ac.account_number = $1
		)
		ORDER BY c.apellidos, c.nombre
	`, accountNumber)
	if err != nil {
		return nil, wrap("list customers outside account", err)
	}
	return rows, nil
}

func likeArg(v string) string {
	v = strings.TrimSpace(v)
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(v)
}
