package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fveldev/blog-auth/internal/domain"
	"github.com/fveldev/blog-auth/internal/federation"
	"github.com/fveldev/blog-auth/internal/google"
	"github.com/fveldev/blog-auth/internal/hash"
	"github.com/fveldev/blog-auth/internal/logging"
	"github.com/fveldev/blog-auth/internal/refresh"
	"github.com/fveldev/blog-auth/internal/repo"
	"github.com/fveldev/blog-auth/internal/token"
)

const notifyTimeout = 5 * time.Second

// IdentityProvider is the slice of the Google client the facade needs.
type IdentityProvider interface {
	ExchangeCode(ctx context.Context, code string) (*google.TokenResponse, error)
	VerifyAssertion(ctx context.Context, idToken string) (*domain.ExternalIdentity, error)
}

// Notifier dispatches the welcome notification. Delivery failures are logged
// and absorbed; they never reach the registering caller.
type Notifier interface {
	Welcome(ctx context.Context, email, firstName string) error
}

type AuthService struct {
	Repo      *repo.GormRepo
	Codec     *token.Codec
	Refresh   *refresh.Manager
	Creds     *CredentialAuthenticator
	Provider  IdentityProvider
	Resolver  *federation.Resolver
	Notifier  Notifier
	AccessTTL time.Duration
}

type AuthResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type RoleView struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type ProfileView struct {
	ID        uuid.UUID  `json:"id"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Email     string     `json:"email"`
	Roles     []RoleView `json:"roles"`
	ImageURL  string     `json:"imageURL"`
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	account, err := s.Creds.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.issueFor(ctx, account)
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	exists, err := s.Repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrEmailExists
	}

	role, err := s.Repo.RoleByName(ctx, domain.RoleUser)
	if err != nil {
		return nil, err
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	account := &domain.Account{
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Credentials: domain.LocalCredentials{PasswordHash: pwHash},
		Roles:       []domain.Role{*role},
	}
	if err := s.Repo.CreateAccount(ctx, account); err != nil {
		return nil, err
	}

	s.notifyWelcome(ctx, account)

	return s.issueFor(ctx, account)
}

func (s *AuthService) GoogleLogin(ctx context.Context, code string) (*AuthResponse, error) {
	tokens, err := s.Provider.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}
	identity, err := s.Provider.VerifyAssertion(ctx, tokens.IDToken)
	if err != nil {
		return nil, err
	}
	account, err := s.Resolver.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	return s.issueFor(ctx, account)
}

func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	pair, err := s.Refresh.Rotate(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}

// Logout revokes the presented refresh token. An unknown token is not an
// error; the session is gone either way.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	_, err := s.Repo.RevokeRefresh(ctx, refreshToken)
	return err
}

// LogoutAll invalidates every refresh token the account holds.
func (s *AuthService) LogoutAll(ctx context.Context, accountID uuid.UUID) error {
	return s.Repo.DeleteAllRefreshForAccount(ctx, accountID)
}

func (s *AuthService) Profile(ctx context.Context, accountID uuid.UUID) (*ProfileView, error) {
	account, err := s.Repo.AccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	roles := make([]RoleView, 0, len(account.Roles))
	for _, r := range account.Roles {
		roles = append(roles, RoleView{ID: r.ID, Name: r.Name})
	}
	return &ProfileView{
		ID:        account.ID,
		FirstName: account.FirstName,
		LastName:  account.LastName,
		Email:     account.Email,
		Roles:     roles,
		ImageURL:  account.ImageURL,
	}, nil
}

func (s *AuthService) issueFor(ctx context.Context, account *domain.Account) (*AuthResponse, error) {
	access, err := s.Codec.Mint(account.Email, account.ID.String(), account.RoleNames(), s.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("mint access token: %w", err)
	}
	refreshToken, err := s.Refresh.Issue(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	return &AuthResponse{
		AccessToken:  access,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.AccessTTL.Seconds()),
	}, nil
}

func (s *AuthService) notifyWelcome(ctx context.Context, account *domain.Account) {
	if s.Notifier == nil {
		return
	}
	l := logging.FromContext(ctx).With("svc", "auth.notify")
	email, firstName := account.Email, account.FirstName
	go func() {
		nctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.Notifier.Welcome(nctx, email, firstName); err != nil {
			l.Error("welcome_notify_failed", "error", err)
		}
	}()
}
