package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/FredrikM97/grocery-scan-card/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// LookupServiceConfig holds configuration for the product lookup service
type LookupServiceConfig struct {
	CacheTTL       time.Duration
	CacheEnabled   bool
	MaxSuggestions int
}

// LookupService resolves barcodes to product metadata with caching.
// Flow: check cache -> query product database -> normalize -> cache -> return.
// All lookup failures degrade to ErrProductNotFound so callers can always
// offer manual entry.
type LookupService struct {
	cache          domain.ProductCache
	db             domain.ProductDatabase
	usage          domain.UsageStore
	flight         singleflight.Group
	cacheTTL       time.Duration
	cacheEnabled   bool
	maxSuggestions int
	log            zerolog.Logger
}

// NewLookupService creates a new product lookup service with dependencies
func NewLookupService(
	cache domain.ProductCache,
	db domain.ProductDatabase,
	usage domain.UsageStore,
	config LookupServiceConfig,
	log zerolog.Logger,
) *LookupService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 720 * time.Hour // Default 30 days
	}
	maxSuggestions := config.MaxSuggestions
	if maxSuggestions == 0 {
		maxSuggestions = 8
	}

	return &LookupService{
		cache:          cache,
		db:             db,
		usage:          usage,
		cacheTTL:       cacheTTL,
		cacheEnabled:   config.CacheEnabled,
		maxSuggestions: maxSuggestions,
		log:            log.With().Str("component", "lookup").Logger(),
	}
}

// Resolve looks up product metadata for a barcode. A cached barcode never
// hits the network; concurrent resolutions of the same barcode share one
// request.
func (s *LookupService) Resolve(ctx context.Context, barcode string) (*domain.Product, error) {
	if barcode == "" {
		return nil, domain.ErrInvalidRequest
	}

	if s.cacheEnabled {
		if cached, err := s.cache.Get(ctx, barcode); err == nil {
			cached.Source = domain.SourceCache
			return cached, nil
		}
	}

	result, err, _ := s.flight.Do(barcode, func() (interface{}, error) {
		product, err := s.db.Lookup(ctx, barcode)
		if err != nil {
			if errors.Is(err, domain.ErrProductNotFound) {
				return nil, domain.ErrProductNotFound
			}
			// Transport failures degrade to a miss: the user can always
			// type the product in.
			s.log.Warn().Err(err).Str("barcode", barcode).Msg("lookup degraded to not-found")
			return nil, domain.ErrProductNotFound
		}

		if s.cacheEnabled {
			if err := s.cache.Set(ctx, barcode, product, s.cacheTTL); err != nil {
				s.log.Warn().Err(err).Str("barcode", barcode).Msg("failed to cache product")
			}
		}
		return product, nil
	})
	if err != nil {
		return nil, err
	}

	// Copy the shared singleflight result so callers own their value
	product := *result.(*domain.Product)
	return &product, nil
}

// RecordUsage bumps the advisory "most added" counter for an item name.
// Failures are logged and swallowed: ranking data is never load-bearing.
func (s *LookupService) RecordUsage(name string) {
	if s.usage == nil || name == "" {
		return
	}
	if err := s.usage.Increment(name); err != nil {
		s.log.Warn().Err(err).Str("name", name).Msg("failed to record usage")
	}
}

// Suggestions returns the top-ranked item names for quick-add chips.
func (s *LookupService) Suggestions() []string {
	if s.usage == nil {
		return nil
	}
	names, err := s.usage.Top(s.maxSuggestions)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to load suggestions")
		return nil
	}
	return names
}
