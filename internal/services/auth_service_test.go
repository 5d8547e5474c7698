package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gestorbanco/internal/auth"
	"gestorbanco/internal/models"
	"gestorbanco/internal/session"
	"gestorbanco/internal/store"
	"gestorbanco/internal/validator"
)

const registrationSecret = "let-me-in"

func newAuth(t *testing.T, users UserStore) (*AuthService, *auth.TokenService) {
	t.Helper()
	tokens := auth.NewTokenService("test-secret", 24*time.Second)
	return NewAuthService(fakeTxRunner{}, users, stubAuditStore{}, tokens, session.NewGuard(session.DefaultMaxAttempts), registrationSecret, discardLogger()), tokens
}

func storedUser(t *testing.T, password string) models.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return models.User{ID: 1, Username: "ana", PasswordHash: hash, Role: models.RoleUser}
}

func TestLoginIssuesToken(t *testing.T) {
	user := storedUser(t, "Secreta1!")
	svc, tokens := newAuth(t, stubUserStore{
		getByUsernameFn: func(context.Context, string) (models.User, error) { return user, nil },
	})
	sess := &session.Session{ID: "s1", FailedAttempts: 3}

	token, err := svc.Login(context.Background(), sess, "ana", "Secreta1!")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if subject, err := tokens.Verify(token); err != nil || subject != "ana" {
		t.Fatalf("unexpected token subject %q: %v", subject, err)
	}
	if sess.FailedAttempts != 0 {
		t.Fatalf("expected counter reset, got %d", sess.FailedAttempts)
	}
}

func TestLoginUnknownUserCountsAsFailure(t *testing.T) {
	svc, _ := newAuth(t, stubUserStore{
		getByUsernameFn: func(context.Context, string) (models.User, error) { return models.User{}, store.ErrNotFound },
	})
	sess := session.New()

	if _, err := svc.Login(context.Background(), sess, "ghost", "x"); !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
	if sess.FailedAttempts != 1 {
		t.Fatalf("expected 1 failed attempt, got %d", sess.FailedAttempts)
	}
}

func TestLoginLocksAfterFiveFailures(t *testing.T) {
	user := storedUser(t, "Secreta1!")
	lookups := 0
	svc, _ := newAuth(t, stubUserStore{
		getByUsernameFn: func(context.Context, string) (models.User, error) {
			lookups++
			return user, nil
		},
	})
	sess := session.New()

	for i := 0; i < session.DefaultMaxAttempts; i++ {
		if _, err := svc.Login(context.Background(), sess, "ana", "wrong"); !errors.Is(err, ErrAuthenticationFailed) {
			t.Fatalf("attempt %d: expected ErrAuthenticationFailed, got %v", i+1, err)
		}
	}
	if _, err := svc.Login(context.Background(), sess, "ana", "Secreta1!"); !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
	if lookups != session.DefaultMaxAttempts {
		t.Fatalf("locked session must not reach the store, got %d lookups", lookups)
	}

	sess.FailedAttempts = 0
	if _, err := svc.Login(context.Background(), sess, "ana", "Secreta1!"); err != nil {
		t.Fatalf("expected login after reset, got %v", err)
	}
}

func TestLoginAuditFailureDoesNotBlock(t *testing.T) {
	user := storedUser(t, "Secreta1!")
	tokens := auth.NewTokenService("test-secret", 24*time.Second)
	svc := NewAuthService(fakeTxRunner{err: errors.New("db down")}, stubUserStore{
		getByUsernameFn: func(context.Context, string) (models.User, error) { return user, nil },
	}, stubAuditStore{}, tokens, session.NewGuard(0), registrationSecret, discardLogger())

	if _, err := svc.Login(context.Background(), session.New(), "ana", "Secreta1!"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func validRegistration() RegisterRequest {
	return RegisterRequest{
		Secret:    registrationSecret,
		Username:  "luis.m",
		Password:  "Segura#2024",
		Nombre:    "Luis",
		Apellidos: "Martín",
		Email:     "Luis@example.com",
		Role:      "admin",
	}
}

func TestRegisterCreatesUser(t *testing.T) {
	var created models.User
	svc, tokens := newAuth(t, stubUserStore{
		createFn: func(_ context.Context, _ store.Getter, user models.User) (int64, error) {
			created = user
			return 2, nil
		},
	})

	token, err := svc.Register(context.Background(), validRegistration())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Role != models.RoleAdmin || created.Email != "luis@example.com" {
		t.Fatalf("unexpected user: %#v", created)
	}
	if !auth.CheckPassword(created.PasswordHash, "Segura#2024") {
		t.Fatalf("password was not hashed with bcrypt")
	}
	if !tokens.IsValid(token, "luis.m") {
		t.Fatalf("expected token for new user")
	}
}

func TestRegisterErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*RegisterRequest)
		exists bool
		check  func(error) bool
	}{
		{"wrong secret", func(r *RegisterRequest) { r.Secret = "nope" }, false, func(err error) bool { return errors.Is(err, ErrUnauthorized) }},
		{"weak password", func(r *RegisterRequest) { r.Password = "password" }, false, func(err error) bool { return errors.Is(err, ErrInvalidPassword) }},
		{"unknown role", func(r *RegisterRequest) { r.Role = "root" }, false, func(err error) bool { return errors.Is(err, ErrInvalidRole) }},
		{"bad email", func(r *RegisterRequest) { r.Email = "nope" }, false, func(err error) bool {
			var verr *validator.ValidationError
			return errors.As(err, &verr)
		}},
		{"bad username", func(r *RegisterRequest) { r.Username = "a b" }, false, func(err error) bool {
			var verr *validator.ValidationError
			return errors.As(err, &verr)
		}},
		{"taken", func(*RegisterRequest) {}, true, func(err error) bool { return errors.Is(err, ErrUserAlreadyExists) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			exists := tc.exists
			svc, _ := newAuth(t, stubUserStore{
				existsFn: func(context.Context, string, string) (bool, error) { return exists, nil },
				createFn: func(context.Context, store.Getter, models.User) (int64, error) {
					t.Fatalf("unexpected insert")
					return 0, nil
				},
			})
			req := validRegistration()
			tc.mutate(&req)
			if _, err := svc.Register(context.Background(), req); !tc.check(err) {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestRegisterDuplicateRace(t *testing.T) {
	svc, _ := newAuth(t, stubUserStore{
		createFn: func(context.Context, store.Getter, models.User) (int64, error) {
			return 0, &store.DuplicateError{Constraint: "users_username_key"}
		},
	})
	if _, err := svc.Register(context.Background(), validRegistration()); !errors.Is(err, ErrUserAlreadyExists) {
		t.Fatalf("expected ErrUserAlreadyExists, got %v", err)
	}
}
