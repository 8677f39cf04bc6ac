package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aristath/portfolio/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// Token is the response of a successful authentication
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Username    string `json:"username"`
}

// Credentials is a username/password pair
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Service handles registration, authentication and token resolution
type Service struct {
	repo       *Repository
	secret     []byte
	ttl        time.Duration
	bcryptCost int
	now        func() time.Time
	log        zerolog.Logger
}

// NewService creates a new auth service signing HS256 tokens with secret
func NewService(repo *Repository, secret string, ttl time.Duration, log zerolog.Logger) *Service {
	return &Service{
		repo:       repo,
		secret:     []byte(secret),
		ttl:        ttl,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
		log:        log.With().Str("service", "auth").Logger(),
	}
}

// Register creates a non-admin user
func (s *Service) Register(ctx context.Context, creds Credentials) (*domain.User, error) {
	return s.create(ctx, creds, false)
}

// EnsureAdmin creates the admin user if it does not exist yet
func (s *Service) EnsureAdmin(ctx context.Context, creds Credentials) error {
	_, err := s.repo.Get(ctx, creds.Username)
	if err == nil {
		return nil
	}
	if !domain.IsNotFound(err) {
		return err
	}
	if _, err := s.create(ctx, creds, true); err != nil {
		return err
	}
	s.log.Info().Str("username", creds.Username).Msg("Admin user created")
	return nil
}

func (s *Service) create(ctx context.Context, creds Credentials, admin bool) (*domain.User, error) {
	creds.Username = strings.TrimSpace(creds.Username)
	if creds.Username == "" || creds.Password == "" {
		return nil, domain.Validationf("username and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := domain.User{Username: creds.Username, IsAdmin: admin}
	if err := s.repo.Create(ctx, user, string(hash)); err != nil {
		return nil, err
	}
	return &user, nil
}

// Authenticate verifies credentials and issues a bearer token
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (*Token, error) {
	user, err := s.repo.Get(ctx, creds.Username)
	if err != nil && !domain.IsNotFound(err) {
		return nil, err
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)) != nil {
		return nil, domain.Authenticationf("Incorrect username or password.")
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   user.Username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &Token{AccessToken: signed, TokenType: "bearer", Username: user.Username}, nil
}

// Resolve returns the user a bearer token was issued to
func (s *Service) Resolve(ctx context.Context, token string) (*domain.User, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || claims.Subject == "" {
		return nil, domain.Authenticationf("Invalid authentication credentials.")
	}

	user, err := s.repo.Get(ctx, claims.Subject)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.Authenticationf("Invalid authentication credentials.")
	}
	if err != nil {
		return nil, err
	}
	return &user.User, nil
}
