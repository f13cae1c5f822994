package services

import (
	"context"
	"testing"
	"time"

	"bustiming/internal/domain"
	"bustiming/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"
)

var authEpoch = time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)

func hashPassword(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(h)
}

func adminRows(hash string, active bool) *sqlmock.Rows {
	return sqlmock.NewRows(adminColumns).
		AddRow(1, "admin", "admin@perdoor.com", hash, "admin", active, authEpoch, authEpoch)
}

func newAuthService(t *testing.T) (AuthService, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	svc := AuthService{
		Repo:   repositories.AdminRepository{DB: db},
		Secret: []byte("test-secret"),
		Now:    func() time.Time { return authEpoch },
	}
	return svc, mock, func() { db.Close() }
}

func TestAuthenticate_IssuesTokenThatAuthorizes(t *testing.T) {
	svc, mock, done := newAuthService(t)
	defer done()

	mock.ExpectQuery("FROM admins\\s+WHERE username = \\?").
		WithArgs("admin").
		WillReturnRows(adminRows(hashPassword(t, "admin123"), true))
	mock.ExpectQuery("FROM admins\\s+WHERE id = \\?").
		WithArgs(int64(1)).
		WillReturnRows(adminRows("x", true))

	res, err := svc.Authenticate(context.Background(), " Admin ", "admin123")
	if err != nil {
		t.Fatalf("Authenticate error: %v", err)
	}
	if res.Token == "" || res.Admin.Username != "admin" {
		t.Fatalf("unexpected login result %+v", res)
	}
	if !res.ExpiresAt.Equal(authEpoch.Add(24 * time.Hour)) {
		t.Fatalf("token should expire after 24h, got %v", res.ExpiresAt)
	}

	id, err := svc.Authorize(context.Background(), res.Token)
	if err != nil {
		t.Fatalf("Authorize error: %v", err)
	}
	if id.ID != 1 || id.Role != "admin" {
		t.Fatalf("unexpected identity %+v", id)
	}
}

func TestAuthenticate_WrongPasswordAndUnknownUserLookAlike(t *testing.T) {
	svc, mock, done := newAuthService(t)
	defer done()

	mock.ExpectQuery("WHERE username = \\?").
		WithArgs("admin").
		WillReturnRows(adminRows(hashPassword(t, "admin123"), true))
	mock.ExpectQuery("WHERE username = \\?").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(adminColumns))

	_, wrongPw := svc.Authenticate(context.Background(), "admin", "nope")
	_, unknown := svc.Authenticate(context.Background(), "ghost", "admin123")

	for _, err := range []error{wrongPw, unknown} {
		kind, ok := domain.AsAuth(err)
		if !ok || kind != domain.InvalidCredentials {
			t.Fatalf("expected invalid credentials, got %v", err)
		}
		if err.Error() != "Invalid credentials" {
			t.Fatalf("message must not reveal which field was wrong: %q", err.Error())
		}
	}
}

func TestAuthenticate_DisabledAccount(t *testing.T) {
	svc, mock, done := newAuthService(t)
	defer done()

	hash := hashPassword(t, "admin123")
	mock.ExpectQuery("WHERE username = \\?").WillReturnRows(adminRows(hash, false))
	mock.ExpectQuery("WHERE username = \\?").WillReturnRows(adminRows(hash, false))

	_, err := svc.Authenticate(context.Background(), "admin", "admin123")
	if kind, _ := domain.AsAuth(err); kind != domain.AccountDisabled {
		t.Fatalf("expected account disabled, got %v", err)
	}

	_, err = svc.Authenticate(context.Background(), "admin", "wrong")
	if kind, _ := domain.AsAuth(err); kind != domain.InvalidCredentials {
		t.Fatalf("a disabled account with a wrong password reads as invalid credentials, got %v", err)
	}
}

func TestAuthorize_ExpiredAndTampered(t *testing.T) {
	svc, mock, done := newAuthService(t)
	defer done()

	mock.ExpectQuery("WHERE username = \\?").WillReturnRows(adminRows(hashPassword(t, "admin123"), true))
	res, err := svc.Authenticate(context.Background(), "admin", "admin123")
	if err != nil {
		t.Fatalf("Authenticate error: %v", err)
	}

	later := svc
	later.Now = func() time.Time { return authEpoch.Add(25 * time.Hour) }
	if _, err := later.Authorize(context.Background(), res.Token); err == nil {
		t.Fatalf("expired token accepted")
	} else if kind, _ := domain.AsAuth(err); kind != domain.Expired {
		t.Fatalf("expected expired, got %v", err)
	}

	other := svc
	other.Secret = []byte("another-secret")
	if _, err := other.Authorize(context.Background(), res.Token); err == nil {
		t.Fatalf("token signed with another secret accepted")
	} else if kind, _ := domain.AsAuth(err); kind != domain.InvalidToken {
		t.Fatalf("expected invalid token, got %v", err)
	}

	if _, err := svc.Authorize(context.Background(), "not-a-jwt"); err == nil {
		t.Fatalf("garbage token accepted")
	}
}

func TestEnsureDefaultAdmin_Idempotent(t *testing.T) {
	svc, mock, done := newAuthService(t)
	defer done()
	svc.Default = DefaultAdmin{Username: "admin", Password: "admin123", Email: "admin@perdoor.com"}

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM admins").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectExec("INSERT INTO admins").
		WithArgs("admin", "admin@perdoor.com", sqlmock.AnyArg(), "admin", true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM admins").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))

	created, err := svc.EnsureDefaultAdmin(context.Background())
	if err != nil || !created {
		t.Fatalf("first call should create the admin: %v %v", created, err)
	}
	created, err = svc.EnsureDefaultAdmin(context.Background())
	if err != nil || created {
		t.Fatalf("second call must be a no-op: %v %v", created, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuthorize_DisabledSinceLogin(t *testing.T) {
	svc, mock, done := newAuthService(t)
	defer done()

	mock.ExpectQuery("WHERE username = \\?").WillReturnRows(adminRows(hashPassword(t, "admin123"), true))
	mock.ExpectQuery("WHERE id = \\?").WithArgs(int64(1)).WillReturnRows(adminRows("x", false))

	res, err := svc.Authenticate(context.Background(), "admin", "admin123")
	if err != nil {
		t.Fatalf("Authenticate error: %v", err)
	}
	if _, err := svc.Authorize(context.Background(), res.Token); err == nil {
		t.Fatalf("disabled account still authorized")
	} else if kind, _ := domain.AsAuth(err); kind != domain.InvalidToken {
		t.Fatalf("expected invalid token, got %v", err)
	}
}
