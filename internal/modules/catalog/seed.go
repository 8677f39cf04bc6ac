// Package catalog seeds institutions and instruments from a YAML file at startup.
package catalog

import (
	"context"
	"fmt"
	"os"

	"github.com/aristath/portfolio/internal/domain"
	"github.com/aristath/portfolio/internal/modules/institutions"
	"github.com/aristath/portfolio/internal/modules/instruments"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Seed is the catalog file layout:
//
//	institutions:
//	  - {type: exchange, name: Nasdaq, code: NDQ}
//	instruments:
//	  - {type: currency, description: Euro, symbol: EUR}
//	  - {type: security, description: Apple, symbol: AAPL, exchange: NDQ}
type Seed struct {
	Institutions []domain.Institution     `yaml:"institutions"`
	Instruments  []domain.InstrumentInput `yaml:"instruments"`
}

// Result counts what Apply wrote
type Result struct {
	Created int
	Skipped int
}

// LoadFile parses a catalog seed file
func LoadFile(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse parses catalog seed YAML
func Parse(data []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return &seed, nil
}

// Seeder writes a seed into the catalog stores
type Seeder struct {
	institutions *institutions.Repository
	instruments  *instruments.Service
	log          zerolog.Logger
}

// NewSeeder creates a catalog seeder
func NewSeeder(institutions *institutions.Repository, instruments *instruments.Service, log zerolog.Logger) *Seeder {
	return &Seeder{
		institutions: institutions,
		instruments:  instruments,
		log:          log.With().Str("component", "catalog").Logger(),
	}
}

// Apply creates every seeded record whose code is not stored yet.
// Existing records are left untouched, so applying the same seed twice is a no-op.
func (s *Seeder) Apply(ctx context.Context, seed *Seed) (Result, error) {
	var result Result

	for _, inst := range seed.Institutions {
		_, err := s.institutions.Get(ctx, inst.Code)
		if err == nil {
			result.Skipped++
			continue
		}
		if !domain.IsNotFound(err) {
			return result, err
		}
		if err := s.institutions.Create(ctx, inst); err != nil {
			return result, fmt.Errorf("institution %s: %w", inst.Code, err)
		}
		result.Created++
	}

	for _, in := range seed.Instruments {
		instrument, err := s.instruments.Resolve(ctx, in)
		if err != nil {
			return result, fmt.Errorf("instrument %s: %w", in.Symbol, err)
		}

		_, err = s.instruments.Get(ctx, instrument.Code)
		if err == nil {
			result.Skipped++
			continue
		}
		if !domain.IsNotFound(err) {
			return result, err
		}
		if _, err := s.instruments.Create(ctx, in); err != nil {
			return result, fmt.Errorf("instrument %s: %w", instrument.Code, err)
		}
		result.Created++
	}

	s.log.Info().Int("created", result.Created).Int("skipped", result.Skipped).Msg("Catalog seeded")
	return result, nil
}
