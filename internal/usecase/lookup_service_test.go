package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/FredrikM97/grocery-scan-card/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockProductCache is a mock implementation of domain.ProductCache
type mockProductCache struct {
	mu       sync.Mutex
	data     map[string]domain.Product
	setError error
}

func newMockProductCache() *mockProductCache {
	return &mockProductCache{data: make(map[string]domain.Product)}
}

func (m *mockProductCache) Get(ctx context.Context, barcode string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if product, ok := m.data[barcode]; ok {
		copied := product
		return &copied, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *mockProductCache) Set(ctx context.Context, barcode string, product *domain.Product, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setError != nil {
		return m.setError
	}
	m.data[barcode] = *product
	return nil
}

func (m *mockProductCache) Delete(ctx context.Context, barcode string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, barcode)
	return nil
}

// mockProductDB is a mock implementation of domain.ProductDatabase
type mockProductDB struct {
	mu      sync.Mutex
	product *domain.Product
	err     error
	calls   int
}

func (m *mockProductDB) Lookup(ctx context.Context, barcode string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	copied := *m.product
	return &copied, nil
}

func (m *mockProductDB) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockUsageStore is a mock implementation of domain.UsageStore
type mockUsageStore struct {
	mu     sync.Mutex
	counts map[string]int
	order  []string
	err    error
}

func newMockUsageStore() *mockUsageStore {
	return &mockUsageStore{counts: make(map[string]int)}
}

func (m *mockUsageStore) Increment(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.counts[name] == 0 {
		m.order = append(m.order, name)
	}
	m.counts[name]++
	return nil
}

func (m *mockUsageStore) Top(limit int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if len(m.order) > limit {
		return m.order[:limit], nil
	}
	return m.order, nil
}

func (m *mockUsageStore) Close() error { return nil }

func newTestLookupService(cache *mockProductCache, db *mockProductDB, usage *mockUsageStore) *LookupService {
	return NewLookupService(cache, db, usage, LookupServiceConfig{
		CacheTTL:     time.Hour,
		CacheEnabled: true,
	}, zerolog.Nop())
}

func TestResolve_CacheIdempotence(t *testing.T) {
	cache := newMockProductCache()
	db := &mockProductDB{product: &domain.Product{
		Barcode: "111", Name: "Milk", Brand: "Arla", Source: domain.SourceAPI,
	}}
	service := newTestLookupService(cache, db, newMockUsageStore())
	ctx := context.Background()

	first, err := service.Resolve(ctx, "111")
	require.NoError(t, err)
	assert.Equal(t, domain.SourceAPI, first.Source)
	assert.Equal(t, 1, db.callCount())

	// Second resolve must come from cache with no second network call
	second, err := service.Resolve(ctx, "111")
	require.NoError(t, err)
	assert.Equal(t, 1, db.callCount())
	assert.Equal(t, domain.SourceCache, second.Source)
	assert.Equal(t, first.Name, second.Name)
	assert.Equal(t, first.Brand, second.Brand)
	assert.Equal(t, first.Barcode, second.Barcode)
}

func TestResolve_NotFound(t *testing.T) {
	db := &mockProductDB{err: domain.ErrProductNotFound}
	service := newTestLookupService(newMockProductCache(), db, newMockUsageStore())

	_, err := service.Resolve(context.Background(), "00000000")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestResolve_TransportFailureDegradesToNotFound(t *testing.T) {
	db := &mockProductDB{err: errors.New("connection refused")}
	service := newTestLookupService(newMockProductCache(), db, newMockUsageStore())

	_, err := service.Resolve(context.Background(), "111")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestResolve_EmptyBarcode(t *testing.T) {
	service := newTestLookupService(newMockProductCache(), &mockProductDB{}, newMockUsageStore())

	_, err := service.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestResolve_CacheDisabled(t *testing.T) {
	cache := newMockProductCache()
	db := &mockProductDB{product: &domain.Product{Barcode: "111", Name: "Milk", Source: domain.SourceAPI}}
	service := NewLookupService(cache, db, nil, LookupServiceConfig{CacheEnabled: false}, zerolog.Nop())
	ctx := context.Background()

	_, err := service.Resolve(ctx, "111")
	require.NoError(t, err)
	_, err = service.Resolve(ctx, "111")
	require.NoError(t, err)

	assert.Equal(t, 2, db.callCount())
	assert.Empty(t, cache.data)
}

func TestResolve_CacheSetFailureIsNonFatal(t *testing.T) {
	cache := newMockProductCache()
	cache.setError = errors.New("disk full")
	db := &mockProductDB{product: &domain.Product{Barcode: "111", Name: "Milk", Source: domain.SourceAPI}}
	service := newTestLookupService(cache, db, newMockUsageStore())

	product, err := service.Resolve(context.Background(), "111")
	require.NoError(t, err)
	assert.Equal(t, "Milk", product.Name)
}

func TestRecordUsageAndSuggestions(t *testing.T) {
	usage := newMockUsageStore()
	service := newTestLookupService(newMockProductCache(), &mockProductDB{}, usage)

	service.RecordUsage("Milk")
	service.RecordUsage("Bread")
	service.RecordUsage("")

	assert.Equal(t, []string{"Milk", "Bread"}, service.Suggestions())
	assert.Equal(t, 0, usage.counts[""])
}

func TestSuggestions_StoreFailure(t *testing.T) {
	usage := newMockUsageStore()
	usage.err = errors.New("db closed")
	service := newTestLookupService(newMockProductCache(), &mockProductDB{}, usage)

	assert.Nil(t, service.Suggestions())
}

func TestRecordUsage_NilStore(t *testing.T) {
	service := NewLookupService(newMockProductCache(), &mockProductDB{}, nil, LookupServiceConfig{}, zerolog.Nop())

	// Must not panic without a usage store
	service.RecordUsage("Milk")
	assert.Nil(t, service.Suggestions())
}
