package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/sistema-pedidos/orders-api/internal/core/domain"
	"github.com/sistema-pedidos/orders-api/internal/core/ports"
)

func newTestAuthService(t *testing.T) (*AuthService, *stubAccountRepo) {
	t.Helper()
	repo := newStubAccountRepo()
	return NewAuthService(repo, newTestTokens(t), zerolog.Nop()), repo
}

var ana = ports.RegisterInput{Name: "Ana", Email: "ana@x.com", Password: "pw1"}

func TestAuthService_Register_Success(t *testing.T) {
	svc, _ := newTestAuthService(t)

	account, err := svc.Register(context.Background(), ana)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if account.ID == 0 {
		t.Fatalf("expected id to be assigned")
	}
	if account.Admin || !account.Active {
		t.Fatalf("expected active non-admin account, got %+v", account)
	}
	if account.PasswordHash == "pw1" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte("pw1")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, _ := newTestAuthService(t)

	for _, in := range []ports.RegisterInput{
		{Email: "a@x.com", Password: "pw"},
		{Name: "A", Password: "pw"},
		{Name: "A", Email: "a@x.com"},
	} {
		if _, err := svc.Register(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected ErrValidation for %+v, got %v", in, err)
		}
	}
}

func TestAuthService_Register_PasswordTooLong(t *testing.T) {
	svc, repo := newTestAuthService(t)

	for _, pw := range []string{
		strings.Repeat("p", 80),
		strings.Repeat("é", 40), // 40 characters, 80 bytes
	} {
		_, err := svc.Register(context.Background(), ports.RegisterInput{Name: "Ana", Email: "ana@x.com", Password: pw})
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected ErrValidation for a %d-byte password, got %v", len(pw), err)
		}
	}
	if len(repo.byID) != 0 {
		t.Fatalf("expected nothing stored, got %d accounts", len(repo.byID))
	}

	if _, err := svc.Register(context.Background(), ports.RegisterInput{Name: "Ana", Email: "ana@x.com", Password: strings.Repeat("p", 72)}); err != nil {
		t.Fatalf("expected a 72-byte password to be accepted, got %v", err)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc, repo := newTestAuthService(t)

	_, _ = svc.Register(context.Background(), ana)
	if _, err := svc.Register(context.Background(), ports.RegisterInput{Name: "Other", Email: "ana@x.com", Password: "pw2"}); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	if len(repo.byID) != 1 {
		t.Fatalf("expected a single stored account, got %d", len(repo.byID))
	}
}

func TestAuthService_Register_StoreFailure(t *testing.T) {
	svc, repo := newTestAuthService(t)
	repo.findErr = errors.New("connection refused")

	_, err := svc.Register(context.Background(), ana)
	if err == nil || errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected a store error, got %v", err)
	}
}

func TestAuthService_RegisterAdmin(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	admin := &domain.Account{ID: 99, Admin: true}
	created, err := svc.RegisterAdmin(ctx, admin, ports.RegisterInput{Name: "Root", Email: "root@x.com", Password: "pw"})
	if err != nil {
		t.Fatalf("RegisterAdmin: %v", err)
	}
	if !created.Admin {
		t.Fatalf("expected admin account")
	}

	standard := &domain.Account{ID: 1}
	if _, err := svc.RegisterAdmin(ctx, standard, ports.RegisterInput{Name: "X", Email: "x@x.com", Password: "pw"}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for standard caller, got %v", err)
	}
	if _, err := svc.RegisterAdmin(ctx, nil, ports.RegisterInput{Name: "X", Email: "x@x.com", Password: "pw"}); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for anonymous caller, got %v", err)
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()
	registered, _ := svc.Register(ctx, ana)

	account, err := svc.Authenticate(ctx, "ana@x.com", "pw1")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if account.ID != registered.ID {
		t.Fatalf("expected account %d, got %d", registered.ID, account.ID)
	}

	if _, err := svc.Authenticate(ctx, "ana@x.com", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "ghost@x.com", "pw1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestAuthService_TokensResolveToAccount(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()
	registered, _ := svc.Register(ctx, ana)

	pair, err := svc.IssueTokenPair(registered.ID)
	if err != nil {
		t.Fatalf("IssueTokenPair: %v", err)
	}
	if pair.TokenType != "Bearer" {
		t.Fatalf("expected Bearer token type, got %q", pair.TokenType)
	}

	for name, token := range map[string]string{"access": pair.AccessToken, "refresh": pair.RefreshToken} {
		identity, err := svc.ResolveIdentity(ctx, token)
		if err != nil {
			t.Fatalf("%s: ResolveIdentity: %v", name, err)
		}
		if identity == nil || identity.ID != registered.ID {
			t.Fatalf("%s: expected identity %d, got %+v", name, registered.ID, identity)
		}
	}
}

func TestAuthService_ResolveIdentity_Absent(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	unknownSubject, _ := svc.IssueAccessToken(12345)

	for name, token := range map[string]string{
		"empty":           "",
		"garbage":         "abc.def.ghi",
		"unknown subject": unknownSubject,
	} {
		identity, err := svc.ResolveIdentity(ctx, token)
		if err != nil {
			t.Fatalf("%s: expected no error, got %v", name, err)
		}
		if identity != nil {
			t.Fatalf("%s: expected absent identity, got %+v", name, identity)
		}
		if _, err := svc.RequireIdentity(ctx, token); !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("%s: expected ErrUnauthorized, got %v", name, err)
		}
	}
}

func TestAuthService_ResolveIdentity_StoreFailure(t *testing.T) {
	svc, repo := newTestAuthService(t)
	token, _ := svc.IssueAccessToken(1)
	repo.findErr = errors.New("connection refused")

	if _, err := svc.ResolveIdentity(context.Background(), token); err == nil {
		t.Fatalf("expected store error to surface")
	}
}

func TestAuthService_ExpiredAccessThenRefresh(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()
	registered, _ := svc.Register(ctx, ana)

	issued := time.Now()
	svc.tokens.now = func() time.Time { return issued }
	pair, _ := svc.IssueTokenPair(registered.ID)

	svc.tokens.now = func() time.Time { return issued.Add(31 * time.Minute) }
	if _, err := svc.RequireIdentity(ctx, pair.AccessToken); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected expired access token to be rejected, got %v", err)
	}

	fresh, err := svc.RefreshAccessToken(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshAccessToken: %v", err)
	}
	identity, err := svc.RequireIdentity(ctx, fresh)
	if err != nil || identity.ID != registered.ID {
		t.Fatalf("expected refreshed token to resolve to %d, got %+v (%v)", registered.ID, identity, err)
	}

	if _, err := svc.RefreshAccessToken(ctx, "garbage"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for invalid refresh token, got %v", err)
	}
}
