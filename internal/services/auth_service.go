package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"

	"gestorbanco/internal/auth"
	"gestorbanco/internal/db"
	"gestorbanco/internal/models"
	"gestorbanco/internal/session"
	"gestorbanco/internal/store"
	"gestorbanco/internal/validator"
)

// AuthService checks credentials and registers users. Both paths return a signed token.
type AuthService struct {
	txRunner           db.TxRunner
	users              UserStore
	audit              AuditStore
	tokens             *auth.TokenService
	guard              session.Guard
	registrationSecret string
	logger             *slog.Logger
}

func NewAuthService(txRunner db.TxRunner, users UserStore, audit AuditStore, tokens *auth.TokenService, guard session.Guard, registrationSecret string, logger *slog.Logger) *AuthService {
	return &AuthService{
		txRunner:           txRunner,
		users:              users,
		audit:              audit,
		tokens:             tokens,
		guard:              guard,
		registrationSecret: registrationSecret,
		logger:             logger,
	}
}

// Login mutates sess: failures increment its counter and success resets it.
// The caller persists the session afterwards.
func (s *AuthService) Login(ctx context.Context, sess *session.Session, username, password string) (string, error) {
	if err := s.guard.Check(sess); err != nil {
		s.logger.Warn("login locked out", "username", username)
		return "", err
	}
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return "", err
	}
	if err != nil || !auth.CheckPassword(user.PasswordHash, password) {
		s.guard.RecordFailure(sess)
		s.logger.Info("login failed", "username", username, "attempts", sess.FailedAttempts)
		return "", ErrAuthenticationFailed
	}
	s.guard.RecordSuccess(sess)
	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return "", err
	}
	if err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.audit.Log(ctx, tx, user.Username, "login", "user", user.Username, "")
	}); err != nil {
		s.logger.Error("audit login", "error", err)
	}
	return token, nil
}

type RegisterRequest struct {
	Secret    string
	Username  string `json:"username" validate:"required,max=50"`
	Password  string
	Nombre    string `json:"nombre" validate:"required,max=100"`
	Apellidos string `json:"apellidos" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=100"`
	Role      string
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (string, error) {
	if !auth.SecretMatches(s.registrationSecret, req.Secret) {
		return "", ErrUnauthorized
	}
	if err := validator.ValidatePassword(req.Password); err != nil {
		return "", err
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		return "", err
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validator.Struct(req); err != nil {
		return "", err
	}
	if err := validator.ValidateUsername(req.Username); err != nil {
		return "", validator.Invalid("username", "may only contain letters, digits, dots and underscores")
	}
	exists, err := s.users.Exists(ctx, req.Username, req.Email)
	if err != nil {
		return "", err
	}
	if exists {
		return "", ErrUserAlreadyExists
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return "", err
	}
	user := models.User{
		Username:     req.Username,
		PasswordHash: hash,
		Nombre:       strings.TrimSpace(req.Nombre),
		Apellidos:    strings.TrimSpace(req.Apellidos),
		Email:        req.Email,
		Role:         role,
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := s.users.Create(ctx, tx, user); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, user.Username, "register", "user", user.Username, auditData(map[string]string{"role": string(role)}))
	})
	if errors.Is(err, store.ErrDuplicate) {
		return "", ErrUserAlreadyExists
	}
	if err != nil {
		return "", err
	}
	s.logger.Info("user registered", "username", user.Username, "role", role)
	return s.tokens.Issue(user.Username)
}
