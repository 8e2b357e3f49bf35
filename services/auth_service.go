package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"idcard.link/configs/configslog"
	"idcard.link/models"
	"idcard.link/repositories"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthServiceError authentication failures.
type AuthServiceError string

func (e AuthServiceError) Error() string { return string(e) }

const (
	ErrInvalidCredentials AuthServiceError = "invalid username or password"
	ErrUserInactive       AuthServiceError = "account is disabled"
	ErrSessionInvalid     AuthServiceError = "session is invalid or expired"
	ErrSessionRevoked     AuthServiceError = "session has been logged out"
	ErrAuthInternal       AuthServiceError = "authentication failed"
)

// Session is the authenticated operator attached to a request.
type Session struct {
	UserID      uint      `json:"id"`
	Username    string    `json:"username"`
	FullName    string    `json:"fullName"`
	Designation string    `json:"designation"`
	TokenID     string    `json:"-"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// SessionClaims JWT payload.
type SessionClaims struct {
	UserID      uint   `json:"id"`
	Username    string `json:"username"`
	FullName    string `json:"fullName,omitempty"`
	Designation string `json:"designation"`
	jwt.RegisteredClaims
}

type AuthOptions struct {
	Secret               []byte
	TTL                  time.Duration
	AllowLegacyPasswords bool
}

type IAuthService interface {
	Login(ctx context.Context, username, password string) (string, *Session, error)
	Verify(ctx context.Context, token string) (*Session, error)
	Logout(ctx context.Context, session *Session) error
	HashPassword(password string) (string, error)
}

type AuthService struct {
	users   repositories.IUserRepository
	revoked RevocationStore
	opts    AuthOptions
	now     func() time.Time
}

func NewAuthService(users repositories.IUserRepository, revoked RevocationStore, opts AuthOptions) *AuthService {
	if opts.TTL <= 0 {
		opts.TTL = 8 * time.Hour
	}
	return &AuthService{users: users, revoked: revoked, opts: opts, now: time.Now}
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func isBcryptHash(h string) bool {
	return strings.HasPrefix(h, "$2a$") || strings.HasPrefix(h, "$2b$") || strings.HasPrefix(h, "$2y$")
}

// checkPassword reports a match and whether the stored value must be upgraded to bcrypt.
func (s *AuthService) checkPassword(stored, password string) (bool, bool) {
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil, false
	}
	if !s.opts.AllowLegacyPasswords || stored == "" {
		return false, false
	}
	return stored == password, true
}

// Login checks the credentials and issues a signed session token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", nil, ErrInvalidCredentials
	}
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		configslog.Log.Error("AuthService.Login: user lookup failed", zap.Error(err))
		return "", nil, ErrAuthInternal
	}
	ok, upgrade := s.checkPassword(user.PasswordHash, password)
	if !ok {
		configslog.Log.Info("Login rejected", zap.String("username", username))
		return "", nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", nil, ErrUserInactive
	}

	now := s.now()
	updates := map[string]interface{}{"last_login_at": now}
	if upgrade {
		hash, err := s.HashPassword(password)
		if err != nil {
			configslog.Log.Error("AuthService.Login: password upgrade hash failed", zap.Error(err))
		} else {
			updates["password_hash"] = hash
			configslog.Log.Info("Legacy password upgraded", zap.Uint("user_id", user.ID))
		}
	}
	if err := s.users.Update(ctx, user.ID, updates); err != nil {
		configslog.Log.Warn("AuthService.Login: could not update user after login", zap.Uint("user_id", user.ID), zap.Error(err))
	}

	session := &Session{
		UserID:      user.ID,
		Username:    user.Username,
		FullName:    user.FullName,
		Designation: user.Designation,
		TokenID:     uuid.NewString(),
		ExpiresAt:   now.Add(s.opts.TTL),
	}
	claims := SessionClaims{
		UserID:      session.UserID,
		Username:    session.Username,
		FullName:    session.FullName,
		Designation: session.Designation,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.TokenID,
			Subject:   fmt.Sprint(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.opts.Secret)
	if err != nil {
		configslog.Log.Error("AuthService.Login: signing failed", zap.Error(err))
		return "", nil, ErrAuthInternal
	}
	return token, session, nil
}

// Verify parses a session token and checks it was not logged out.
func (s *AuthService) Verify(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrSessionInvalid
	}
	claims := &SessionClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	parsed, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.opts.Secret, nil
	})
	if err != nil || !parsed.Valid || claims.ExpiresAt == nil || claims.ID == "" {
		return nil, ErrSessionInvalid
	}
	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		configslog.Log.Error("AuthService.Verify: revocation lookup failed", zap.Error(err))
		return nil, ErrAuthInternal
	}
	if revoked {
		return nil, ErrSessionRevoked
	}
	// Accounts disabled or removed after login lose access on the next request.
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserInactive
		}
		configslog.Log.Error("AuthService.Verify: user lookup failed", zap.Uint("user_id", claims.UserID), zap.Error(err))
		return nil, ErrAuthInternal
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	return &Session{
		UserID:      user.ID,
		Username:    user.Username,
		FullName:    user.FullName,
		Designation: user.Designation,
		TokenID:     claims.ID,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

// Logout revokes the session until its natural expiry.
func (s *AuthService) Logout(ctx context.Context, session *Session) error {
	if session == nil || session.TokenID == "" {
		return nil
	}
	if err := s.revoked.Revoke(ctx, session.TokenID, session.ExpiresAt); err != nil {
		configslog.Log.Error("AuthService.Logout: revoke failed", zap.Error(err))
		return ErrAuthInternal
	}
	return nil
}

var _ IAuthService = (*AuthService)(nil)

// ContextWithSession tags ctx with the acting user for the audit columns.
func ContextWithSession(ctx context.Context, session *Session) context.Context {
	if session == nil {
		return ctx
	}
	return models.WithUserID(ctx, session.UserID)
}
