package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/sistema-pedidos/orders-api/internal/core/domain"
	"github.com/sistema-pedidos/orders-api/internal/core/ports"
)

const tokenTypeBearer = "Bearer"

// maxPasswordBytes is the longest input bcrypt hashes.
const maxPasswordBytes = 72

// AuthService implements registration, login and identity resolution.
type AuthService struct {
	repo   ports.AccountRepository
	tokens *TokenService
	log    zerolog.Logger
}

func NewAuthService(repo ports.AccountRepository, tokens *TokenService, log zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, log: log}
}

// Register creates a standard, active, non-admin account.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Account, error) {
	return s.create(ctx, in, false)
}

// RegisterAdmin creates an admin account. Only an admin caller may do so.
func (s *AuthService) RegisterAdmin(ctx context.Context, caller *domain.Account, in ports.RegisterInput) (*domain.Account, error) {
	if err := domain.RequireAdmin(caller); err != nil {
		return nil, err
	}
	return s.create(ctx, in, true)
}

func (s *AuthService) create(ctx context.Context, in ports.RegisterInput, admin bool) (*domain.Account, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: nome, email and senha are required", domain.ErrValidation)
	}
	if len(in.Password) > maxPasswordBytes {
		return nil, fmt.Errorf("%w: senha must be at most %d bytes", domain.ErrValidation, maxPasswordBytes)
	}

	_, err := s.repo.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, domain.ErrDuplicateEmail
	case !errors.Is(err, domain.ErrAccountNotFound):
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	created, err := s.repo.Create(ctx, &domain.Account{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Active:       true,
		Admin:        admin,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Int64("account_id", created.ID).Bool("admin", admin).Msg("account created")
	return created, nil
}

// Authenticate checks email and password. Unknown email and wrong password
// both yield domain.ErrInvalidCredentials after a bcrypt comparison, so the
// two cases cannot be told apart.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*domain.Account, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrAccountNotFound) {
			return nil, fmt.Errorf("authenticate: %w", err)
		}
		_ = bcrypt.CompareHashAndPassword(placeholderHash(), []byte(password))
		return nil, domain.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return account, nil
}

// IssueTokenPair returns an access and a refresh token for accountID.
func (s *AuthService) IssueTokenPair(accountID int64) (*ports.TokenPair, error) {
	access, err := s.tokens.AccessToken(accountID)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.tokens.RefreshToken(accountID)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	return &ports.TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: tokenTypeBearer}, nil
}

// IssueAccessToken returns a single access token for accountID.
func (s *AuthService) IssueAccessToken(accountID int64) (string, error) {
	token, err := s.tokens.AccessToken(accountID)
	if err != nil {
		return "", fmt.Errorf("issue access token: %w", err)
	}
	return token, nil
}

func (s *AuthService) ResolveIdentity(ctx context.Context, token string) (*domain.Account, error) {
	if token == "" {
		return nil, nil
	}

	subject, err := s.tokens.Subject(token)
	if err != nil {
		s.log.Debug().Err(err).Msg("token rejected")
		return nil, nil
	}

	account, err := s.repo.FindByID(ctx, subject)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			s.log.Debug().Int64("account_id", subject).Msg("token subject not found")
			return nil, nil
		}
		return nil, fmt.Errorf("resolve identity: %w", err)
	}
	return account, nil
}

func (s *AuthService) RequireIdentity(ctx context.Context, token string) (*domain.Account, error) {
	account, err := s.ResolveIdentity(ctx, token)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.ErrUnauthorized
	}
	return account, nil
}

// RefreshAccessToken verifies refreshToken like any bearer token and mints a
// new access token for the same subject.
func (s *AuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	account, err := s.RequireIdentity(ctx, refreshToken)
	if err != nil {
		return "", err
	}
	return s.IssueAccessToken(account.ID)
}

var (
	placeholderOnce sync.Once
	placeholder     []byte
)

func placeholderHash() []byte {
	placeholderOnce.Do(func() {
		placeholder, _ = bcrypt.GenerateFromPassword([]byte("placeholder-password"), bcrypt.DefaultCost)
	})
	return placeholder
}
