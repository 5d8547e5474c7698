package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Nombre       string    `db:"nombre" json:"nombre"`
	Apellidos    string    `db:"apellidos" json:"apellidos"`
	Email        string    `db:"email" json:"email"`
	Role         Role      `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type Customer struct {
	ID        int64  `db:"id" json:"id"`
	NIF       string `db:"nif" json:"nif" validate:"required,nif"`
	Nombre    string `db:"nombre" json:"nombre" validate:"required,max=50"`
	Apellidos string `db:"apellidos" json:"apellidos" validate:"required,max=100"`
	BirthYear int    `db:"birth_year" json:"birth_year" validate:"adult"`
	Address   string `db:"address" json:"address" validate:"required,max=150"`
	Email     string `db:"email" json:"email" validate:"required,email,max=100"`
	Phone     string `db:"phone" json:"phone" validate:"required,phone"`
	Version   int    `db:"version" json:"version"`
}

type Account struct {
	Number    string          `db:"number" json:"number" validate:"required,max=34"`
	Type      AccountType     `db:"type" json:"type" validate:"required,oneof=Savings Checking Business"`
	CreatedOn time.Time       `db:"created_on" json:"created_on" validate:"notfuture"`
	Balance   decimal.Decimal `db:"balance" json:"balance"`
	Version   int             `db:"version" json:"version"`
}

type Operation struct {
	Code          int64           `db:"code" json:"code"`
	Description   string          `db:"description" json:"description" validate:"required,max=255"`
	Type          OperationType   `db:"type" json:"type" validate:"required,oneof=Deposit Withdrawal TransferIn TransferOut"`
	Date          time.Time       `db:"date" json:"date" validate:"notfuture"`
	Amount        decimal.Decimal `db:"amount" json:"amount" validate:"gt=0"`
	Counterpart   *string         `db:"counterpart" json:"counterpart,omitempty"`
	AccountNumber string          `db:"account_number" json:"account_number" validate:"required"`
}

type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	Actor      string    `db:"actor" json:"actor"`
	Action     string    `db:"action" json:"action"`
	EntityType string    `db:"entity_type" json:"entity_type"`
	EntityID   string    `db:"entity_id" json:"entity_id"`
	Data       string    `db:"data" json:"data"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
