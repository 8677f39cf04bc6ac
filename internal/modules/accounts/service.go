package accounts

import (
	"context"

	"github.com/aristath/portfolio/internal/domain"
	"github.com/rs/zerolog"
)

// Service resolves account inputs against the institution catalog
type Service struct {
	repo         *Repository
	institutions domain.InstitutionStore
	log          zerolog.Logger
}

// NewService creates a new account service
func NewService(repo *Repository, institutions domain.InstitutionStore, log zerolog.Logger) *Service {
	return &Service{
		repo:         repo,
		institutions: institutions,
		log:          log.With().Str("service", "account").Logger(),
	}
}

// resolve builds the account document for owner. Accounts without a holder
// type drop any holder given in the input.
func (s *Service) resolve(ctx context.Context, owner string, in domain.AccountInput) (*domain.Account, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	account := &domain.Account{
		Owner:       owner,
		Type:        in.Type,
		Code:        in.Code,
		Description: in.Description,
		Assets:      []domain.Balance{},
	}

	holderType, required := domain.HolderType(in.Type)
	if !required {
		return account, nil
	}
	if in.Holder == "" {
		return nil, domain.Validationf("Account of type %s must have a holder of type %s.", in.Type, holderType)
	}

	holder, err := s.institutions.GetByType(ctx, holderType, in.Holder)
	if domain.IsNotFound(err) {
		return nil, domain.Validationf("Holder %s is not an institution of type %s.", in.Holder, holderType)
	}
	if err != nil {
		return nil, err
	}
	account.Holder = holder
	return account, nil
}

// Create stores a new account for owner with empty assets
func (s *Service) Create(ctx context.Context, owner string, in domain.AccountInput) (*domain.Account, error) {
	account, err := s.resolve(ctx, owner, in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, *account); err != nil {
		return nil, err
	}
	return account, nil
}

// Replace overwrites the owner's account, keeping its assets
func (s *Service) Replace(ctx context.Context, owner, code string, in domain.AccountInput) (*domain.Account, error) {
	account, err := s.resolve(ctx, owner, in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Replace(ctx, owner, code, *account); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, owner, account.Code)
}

// Get returns one of the owner's accounts
func (s *Service) Get(ctx context.Context, owner, code string) (*domain.Account, error) {
	return s.repo.Get(ctx, owner, code)
}

// List returns the owner's accounts, optionally filtered by type
func (s *Service) List(ctx context.Context, owner string, t *domain.AccountType) ([]domain.Account, error) {
	return s.repo.List(ctx, owner, t)
}

// Delete removes one of the owner's accounts
func (s *Service) Delete(ctx context.Context, owner, code string) error {
	return s.repo.Delete(ctx, owner, code)
}
