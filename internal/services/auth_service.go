package services

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"bustiming/internal/domain"
	"bustiming/internal/domain/models"
	"bustiming/internal/logging"
	"bustiming/internal/repositories"
	"bustiming/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const DefaultTokenTTL = 24 * time.Hour

// DefaultAdmin is the account created when the admins table is empty.
type DefaultAdmin struct {
	Username string
	Password string
	Email    string
}

// AuthService verifies administrator credentials and bearer tokens.
type AuthService struct {
	Repo    repositories.AdminRepository
	Secret  []byte
	TTL     time.Duration
	Now     func() time.Time
	Default DefaultAdmin
	Log     *zap.Logger
}

type LoginResult struct {
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expiresAt"`
	Admin     models.PublicAdmin `json:"admin"`
}

type adminClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticate checks the password first, then the active flag, so a
// disabled account is only revealed to someone holding its password.
func (s AuthService) Authenticate(ctx context.Context, username, password string) (LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return LoginResult{}, domain.AuthError{Kind: domain.InvalidCredentials}
	}

	acct, err := s.Repo.GetByUsername(ctx, username)
	if errors.Is(err, sql.ErrNoRows) {
		return LoginResult{}, domain.AuthError{Kind: domain.InvalidCredentials}
	}
	if err != nil {
		return LoginResult{}, domain.UpstreamError{Op: "load admin", Err: err}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return LoginResult{}, domain.AuthError{Kind: domain.InvalidCredentials, Err: err}
	}
	if !acct.IsActive {
		return LoginResult{}, domain.AuthError{Kind: domain.AccountDisabled}
	}

	now := s.now()
	exp := now.Add(s.ttl())
	claims := adminClaims{
		Username: acct.Username,
		Role:     acct.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(acct.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return LoginResult{}, err
	}

	utils.LogEvent(logging.OrNop(s.Log), "", "auth", "login", "admin logged in",
		zap.Int64("admin_id", acct.ID), zap.String("username", acct.Username))

	return LoginResult{Token: token, ExpiresAt: exp, Admin: acct.ToPublic()}, nil
}

// Authorize validates token and reloads the account it names. A token for an
// account disabled since login no longer authorizes.
func (s AuthService) Authorize(ctx context.Context, token string) (domain.AdminIdentity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.AdminIdentity{}, domain.AuthError{Kind: domain.InvalidToken}
	}

	var claims adminClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return domain.AdminIdentity{}, domain.AuthError{Kind: domain.Expired, Err: err}
	}
	if err != nil {
		return domain.AdminIdentity{}, domain.AuthError{Kind: domain.InvalidToken, Err: err}
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return domain.AdminIdentity{}, domain.AuthError{Kind: domain.InvalidToken, Err: err}
	}

	acct, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.AdminIdentity{}, domain.AuthError{Kind: domain.InvalidToken, Err: err}
	}
	if err != nil {
		return domain.AdminIdentity{}, domain.UpstreamError{Op: "load admin", Err: err}
	}
	if !acct.IsActive {
		return domain.AdminIdentity{}, domain.AuthError{Kind: domain.InvalidToken}
	}

	return domain.AdminIdentity{
		ID:       domain.ID(acct.ID),
		Username: acct.Username,
		Email:    acct.Email,
		Role:     acct.Role,
	}, nil
}

// EnsureDefaultAdmin creates the configured default account when no admin
// exists yet. It is safe to call on every start.
func (s AuthService) EnsureDefaultAdmin(ctx context.Context) (bool, error) {
	n, err := s.Repo.Count(ctx)
	if err != nil {
		return false, domain.UpstreamError{Op: "count admins", Err: err}
	}
	if n > 0 {
		return false, nil
	}

	d := s.Default
	if strings.TrimSpace(d.Username) == "" || d.Password == "" {
		return false, domain.ValidationError{Field: "bootstrap", Msg: "default admin username and password are required"}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(d.Password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}

	id, err := s.Repo.Create(ctx, models.AdminAccount{
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		IsActive:     true,
	})
	if err != nil {
		return false, domain.UpstreamError{Op: "create admin", Err: err}
	}

	logging.OrNop(s.Log).Warn("default admin account created; change its password",
		zap.Int64("admin_id", id), zap.String("username", strings.ToLower(d.Username)))
	return true, nil
}

func (s AuthService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return DefaultTokenTTL
}

func (s AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
