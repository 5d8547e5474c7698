package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"gestorbanco/internal/auth"
	"gestorbanco/internal/config"
	"gestorbanco/internal/middleware"
	"gestorbanco/internal/models"
	"gestorbanco/internal/services"
	"gestorbanco/internal/session"
	"gestorbanco/internal/store"
	"gestorbanco/internal/websocket"
)

const (
	testJWTSecret = "handler-test-secret"
	testCodecKey  = "0123456789abcdef"
	testAccount   = "ES9121000418450200051332"
)

type fakeTxRunner struct {
	err error
}

func (f fakeTxRunner) WithTx(_ context.Context, fn func(*sqlx.Tx) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

type stubAuth struct {
	loginFn    func(ctx context.Context, sess *session.Session, username, password string) (string, error)
	registerFn func(ctx context.Context, req services.RegisterRequest) (string, error)
}

func (s stubAuth) Login(ctx context.Context, sess *session.Session, username, password string) (string, error) {
	if s.loginFn == nil {
		return "", services.ErrAuthenticationFailed
	}
	return s.loginFn(ctx, sess, username, password)
}

func (s stubAuth) Register(ctx context.Context, req services.RegisterRequest) (string, error) {
	if s.registerFn == nil {
		return "", services.ErrUnauthorized
	}
	return s.registerFn(ctx, req)
}

type stubLedger struct {
	addOperationFn    func(ctx context.Context, req services.AddOperationRequest) (models.Operation, error)
	deleteOperationFn func(ctx context.Context, code int64, actor string) (models.Operation, error)
	createAccountFn   func(ctx context.Context, req services.CreateAccountRequest) (models.Account, error)
	updateAccountFn   func(ctx context.Context, req services.UpdateAccountRequest) error
	deleteAccountFn   func(ctx context.Context, number, actor string) error
	addHolderFn       func(ctx context.Context, number, nif, actor string) error
	removeHolderFn    func(ctx context.Context, number, nif, actor string) error
}

func (s stubLedger) AddOperation(ctx context.Context, req services.AddOperationRequest) (models.Operation, error) {
	if s.addOperationFn == nil {
		return models.Operation{}, nil
	}
	return s.addOperationFn(ctx, req)
}

func (s stubLedger) DeleteOperation(ctx context.Context, code int64, actor string) (models.Operation, error) {
	if s.deleteOperationFn == nil {
		return models.Operation{Code: code}, nil
	}
	return s.deleteOperationFn(ctx, code, actor)
}

func (s stubLedger) CreateAccount(ctx context.Context, req services.CreateAccountRequest) (models.Account, error) {
	if s.createAccountFn == nil {
		return models.Account{}, nil
	}
	return s.createAccountFn(ctx, req)
}

func (s stubLedger) UpdateAccount(ctx context.Context, req services.UpdateAccountRequest) error {
	if s.updateAccountFn == nil {
		return nil
	}
	return s.updateAccountFn(ctx, req)
}

func (s stubLedger) DeleteAccount(ctx context.Context, number, actor string) error {
	if s.deleteAccountFn == nil {
		return nil
	}
	return s.deleteAccountFn(ctx, number, actor)
}

func (s stubLedger) AddHolder(ctx context.Context, number, nif, actor string) error {
	if s.addHolderFn == nil {
		return nil
	}
	return s.addHolderFn(ctx, number, nif, actor)
}

func (s stubLedger) RemoveHolder(ctx context.Context, number, nif, actor string) error {
	if s.removeHolderFn == nil {
		return nil
	}
	return s.removeHolderFn(ctx, number, nif, actor)
}

type stubCustomers struct {
	listFn   func(ctx context.Context) ([]models.Customer, error)
	searchFn func(ctx context.Context, q services.CustomerQuery) ([]models.Customer, error)
	getFn    func(ctx context.Context, nif string) (models.Customer, error)
	createFn func(ctx context.Context, c models.Customer, actor string) (models.Customer, error)
	updateFn func(ctx context.Context, nif string, c models.Customer, actor string) (models.Customer, error)
	deleteFn func(ctx context.Context, nif, actor string) error
}

func (s stubCustomers) List(ctx context.Context) ([]models.Customer, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx)
}

func (s stubCustomers) Search(ctx context.Context, q services.CustomerQuery) ([]models.Customer, error) {
	if s.searchFn == nil {
		return nil, nil
	}
	return s.searchFn(ctx, q)
}

func (s stubCustomers) Get(ctx context.Context, nif string) (models.Customer, error) {
	if s.getFn == nil {
		return models.Customer{}, services.ErrCustomerNotFound
	}
	return s.getFn(ctx, nif)
}

func (s stubCustomers) Create(ctx context.Context, c models.Customer, actor string) (models.Customer, error) {
	if s.createFn == nil {
		return c, nil
	}
	return s.createFn(ctx, c, actor)
}

func (s stubCustomers) Update(ctx context.Context, nif string, c models.Customer, actor string) (models.Customer, error) {
	if s.updateFn == nil {
		return c, nil
	}
	return s.updateFn(ctx, nif, c, actor)
}

func (s stubCustomers) Delete(ctx context.Context, nif, actor string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, nif, actor)
}

type stubAccounts struct {
	listFn           func(ctx context.Context) ([]models.Account, error)
	searchFn         func(ctx context.Context, f store.AccountFilter) ([]models.Account, error)
	getByNumberFn    func(ctx context.Context, number string) (models.Account, error)
	listByCustomerFn func(ctx context.Context, customerID int64) ([]models.Account, error)
}

func (s stubAccounts) List(ctx context.Context) ([]models.Account, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx)
}

func (s stubAccounts) Search(ctx context.Context, f store.AccountFilter) ([]models.Account, error) {
	if s.searchFn == nil {
		return nil, nil
	}
	return s.searchFn(ctx, f)
}

func (s stubAccounts) GetByNumber(ctx context.Context, number string) (models.Account, error) {
	if s.getByNumberFn == nil {
		return models.Account{}, store.ErrNotFound
	}
	return s.getByNumberFn(ctx, number)
}

func (s stubAccounts) ListByCustomer(ctx context.Context, customerID int64) ([]models.Account, error) {
	if s.listByCustomerFn == nil {
		return nil, nil
	}
	return s.listByCustomerFn(ctx, customerID)
}

type stubHolders struct{}

func (stubHolders) ListByAccount(context.Context, string) ([]models.Customer, error) {
	return nil, nil
}

func (stubHolders) ListNotInAccount(context.Context, string) ([]models.Customer, error) {
	return nil, nil
}

type stubOperations struct {
	listByAccountFn func(ctx context.Context, accountNumber string) ([]models.Operation, error)
	getByCodeFn     func(ctx context.Context, code int64) (models.Operation, error)
	signedTotalFn   func(ctx context.Context, accountNumber string) (decimal.Decimal, error)
}

func (s stubOperations) ListByAccount(ctx context.Context, accountNumber string) ([]models.Operation, error) {
	if s.listByAccountFn == nil {
		return nil, nil
	}
	return s.listByAccountFn(ctx, accountNumber)
}

func (s stubOperations) GetByCode(ctx context.Context, code int64) (models.Operation, error) {
	if s.getByCodeFn == nil {
		return models.Operation{}, store.ErrNotFound
	}
	return s.getByCodeFn(ctx, code)
}

func (s stubOperations) SignedTotal(ctx context.Context, accountNumber string) (decimal.Decimal, error) {
	if s.signedTotalFn == nil {
		return decimal.Zero, nil
	}
	return s.signedTotalFn(ctx, accountNumber)
}

type stubAudit struct {
	listFn func(ctx context.Context, limit, offset int) ([]models.AuditLog, error)
}

func (s stubAudit) List(ctx context.Context, limit, offset int) ([]models.AuditLog, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, limit, offset)
}

// stubUsers knows "admin" as an Admin and every other username as a User.
type stubUsers struct{}

func (stubUsers) GetByUsername(_ context.Context, username string) (models.User, error) {
	role := models.RoleUser
	if username == "admin" {
		role = models.RoleAdmin
	}
	return models.User{ID: 1, Username: username, Role: role}, nil
}

type testDeps struct {
	auth       AuthService
	ledger     LedgerService
	customers  CustomerService
	accounts   AccountReader
	operations OperationReader
	audit      AuditReader
	sessions   session.Store
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() config.Config {
	return config.Config{
		AppEnv:             "test",
		JWTSecret:          testJWTSecret,
		TokenTTL:           24 * time.Second,
		CodecKey:           testCodecKey,
		RegistrationSecret: "registration-secret",
		MaxLoginAttempts:   5,
		AllowedOrigins:     "*",
	}
}

func newTestHandler(t *testing.T, deps testDeps) *Handler {
	t.Helper()
	cfg := testConfig()
	codec, err := auth.NewCodec(cfg.CodecKey)
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	if deps.auth == nil {
		deps.auth = stubAuth{}
	}
	if deps.ledger == nil {
		deps.ledger = stubLedger{}
	}
	if deps.customers == nil {
		deps.customers = stubCustomers{}
	}
	if deps.accounts == nil {
		deps.accounts = stubAccounts{}
	}
	if deps.operations == nil {
		deps.operations = stubOperations{}
	}
	if deps.audit == nil {
		deps.audit = stubAudit{}
	}
	if deps.sessions == nil {
		deps.sessions = session.NewMemoryStore(time.Minute)
	}
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	return New(cfg, discardLogger(), codec, tokens, deps.sessions, stubUsers{}, deps.auth, deps.ledger, deps.customers, deps.accounts, stubHolders{}, deps.operations, deps.audit, websocket.NewHub())
}

func (h *Handler) mustEncrypt(t *testing.T, plain string) string {
	t.Helper()
	ref, err := h.codec.Encrypt(plain)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	return ref
}

// do sends a request through the full router. A non-empty username gets a valid
// jwt cookie; form values go in the body for POST and in the query otherwise.
func do(t *testing.T, h *Handler, method, path, username string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if method == http.MethodPost {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		target := path
		if len(form) > 0 {
			target += "?" + form.Encode()
		}
		req = httptest.NewRequest(method, target, nil)
	}
	if username != "" {
		token, err := h.tokens.Issue(username)
		if err != nil {
			t.Fatalf("issue token: %v", err)
		}
		req.AddCookie(&http.Cookie{Name: middleware.TokenCookie, Value: token})
	}
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	return rec
}
