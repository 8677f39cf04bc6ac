package instruments

import (
	"context"

	"github.com/aristath/portfolio/internal/domain"
	"github.com/rs/zerolog"
)

// Service resolves instrument inputs against the institution catalog
type Service struct {
	repo         *Repository
	institutions domain.InstitutionStore
	log          zerolog.Logger
}

// NewService creates a new instrument service
func NewService(repo *Repository, institutions domain.InstitutionStore, log zerolog.Logger) *Service {
	return &Service{
		repo:         repo,
		institutions: institutions,
		log:          log.With().Str("service", "instrument").Logger(),
	}
}

// Resolve turns an input into an instrument, looking up the exchange of securities.
// Inputs of other types ignore the exchange.
func (s *Service) Resolve(ctx context.Context, in domain.InstrumentInput) (*domain.Instrument, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	instrument := &domain.Instrument{
		Type:        in.Type,
		Description: in.Description,
		Symbol:      in.Symbol,
	}

	if in.Type == domain.InstrumentSecurity {
		exchange, err := s.institutions.GetByType(ctx, domain.InstitutionExchange, in.Exchange)
		if domain.IsNotFound(err) {
			return nil, domain.Validationf("Exchange %s does not exist.", in.Exchange)
		}
		if err != nil {
			return nil, err
		}
		instrument.Exchange = exchange
		instrument.Code = domain.InstrumentCode(in.Type, in.Symbol, exchange.Code)
	} else {
		instrument.Code = domain.InstrumentCode(in.Type, in.Symbol, "")
	}

	return instrument, nil
}

// Create resolves and stores a new instrument
func (s *Service) Create(ctx context.Context, in domain.InstrumentInput) (*domain.Instrument, error) {
	instrument, err := s.Resolve(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, *instrument); err != nil {
		return nil, err
	}
	return instrument, nil
}

// Replace overwrites an existing instrument. The instrument type cannot change.
func (s *Service) Replace(ctx context.Context, code string, in domain.InstrumentInput) (*domain.Instrument, error) {
	existing, err := s.repo.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if existing.Type != in.Type {
		return nil, domain.Validationf("Instrument type cannot change from %s to %s.", existing.Type, in.Type)
	}

	instrument, err := s.Resolve(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Replace(ctx, code, *instrument); err != nil {
		return nil, err
	}
	return instrument, nil
}

// Get returns the instrument with the given code
func (s *Service) Get(ctx context.Context, code string) (*domain.Instrument, error) {
	return s.repo.Get(ctx, code)
}

// List returns instruments, optionally filtered by type
func (s *Service) List(ctx context.Context, t *domain.InstrumentType) ([]domain.Instrument, error) {
	return s.repo.List(ctx, t)
}

// Delete removes an instrument
func (s *Service) Delete(ctx context.Context, code string) error {
	return s.repo.Delete(ctx, code)
}
