package cart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/cart-engine/internal/domain/product"
	"github.com/your-org/cart-engine/internal/pkg/syncerr"
)

// mockSource is a scriptable product source
type mockSource struct {
	mu          sync.Mutex
	products    map[uint]*product.Product
	errors      map[uint]error
	calls       map[uint]int
	sawDeadline bool
}

func newMockSource() *mockSource {
	return &mockSource{
		products: make(map[uint]*product.Product),
		errors:   make(map[uint]error),
		calls:    make(map[uint]int),
	}
}

func (s *mockSource) GetByID(ctx context.Context, id uint) (*product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := ctx.Deadline(); ok {
		s.sawDeadline = true
	}
	s.calls[id]++
	if err, ok := s.errors[id]; ok {
		return nil, err
	}
	if prod, ok := s.products[id]; ok {
		return prod, nil
	}
	return nil, syncerr.New(syncerr.CategoryNotFound, product.ErrNotFound)
}

func (s *mockSource) callCount(id uint) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[id]
}

func newTestValidator(source product.Source) *Validator {
	classifier := syncerr.NewClassifier(syncerr.NewRecorder(), nil)
	policy := syncerr.NewRetryPolicy(2, time.Millisecond, 10*time.Millisecond, classifier, nil)
	return NewValidator(source, policy, classifier, time.Second, nil)
}

func TestValidate_EmptyCart(t *testing.T) {
	validator := newTestValidator(newMockSource())
	engine, _, _ := newTestEngine(true)

	results, notices, err := validator.Validate(context.Background(), engine)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, notices)
}

func TestValidate_RemovesVanishedProduct(t *testing.T) {
	source := newMockSource()
	source.products[2] = testProduct(2, 300, 10)
	validator := newTestValidator(source)

	engine, _, _ := newTestEngine(true)
	ctx := context.Background()
	_, _, err := engine.AddItem(ctx, testProduct(1, 500, 10))
	require.NoError(t, err)
	_, _, err = engine.AddItem(ctx, testProduct(2, 300, 10))
	require.NoError(t, err)

	results, notices, err := validator.Validate(ctx, engine)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.True(t, results[0].Unavailable)

	require.Len(t, notices, 1)
	assert.Equal(t, NoticeItemUnavailable, notices[0].Kind)

	items := engine.Items()
	require.Len(t, items, 1)
	assert.Equal(t, uint(2), items[0].ProductID)
	assert.Equal(t, int64(300), engine.Totals().Total)
}

func TestValidate_RefreshesPriceAndStock(t *testing.T) {
	source := newMockSource()
	source.products[1] = testProduct(1, 750, 3)
	validator := newTestValidator(source)

	engine, _, _ := newTestEngine(true)
	ctx := context.Background()
	prod := testProduct(1, 500, 10)
	for i := 0; i < 5; i++ {
		_, _, err := engine.AddItem(ctx, prod)
		require.NoError(t, err)
	}

	results, notices, err := validator.Validate(ctx, engine)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.True(t, results[0].PriceChanged)
	assert.True(t, results[0].StockChanged)

	assert.NotEmpty(t, notices)

	items := engine.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, int64(750), items[0].UnitPrice())
}

func TestValidate_TransientFailureLeavesItemUntouched(t *testing.T) {
	source := newMockSource()
	source.errors[1] = syncerr.New(syncerr.CategoryNetwork, errors.New("connection refused"))
	validator := newTestValidator(source)

	engine, _, _ := newTestEngine(true)
	ctx := context.Background()
	_, _, err := engine.AddItem(ctx, testProduct(1, 500, 10))
	require.NoError(t, err)

	results, notices, err := validator.Validate(ctx, engine)
	require.NoError(t, err)

	assert.Empty(t, results)
	require.Len(t, notices, 1)
	assert.Equal(t, NoticeValidationFailed, notices[0].Kind)

	// Item and totals unchanged
	items := engine.Items()
	require.Len(t, items, 1)
	assert.Equal(t, int64(500), engine.Totals().Total)

	// First call plus two retries under the test policy
	assert.Equal(t, 3, source.callCount(1))
}

func TestValidate_LookupsCarryDeadline(t *testing.T) {
	source := newMockSource()
	source.products[1] = testProduct(1, 500, 10)
	validator := newTestValidator(source)

	engine, _, _ := newTestEngine(true)
	ctx := context.Background()
	_, _, err := engine.AddItem(ctx, testProduct(1, 500, 10))
	require.NoError(t, err)

	_, _, err = validator.Validate(ctx, engine)
	require.NoError(t, err)

	// Each lookup runs under the configured per-lookup deadline even
	// when the caller's context has none
	assert.True(t, source.sawDeadline)
}

func TestRun_PeriodicPassRefreshesResidentCarts(t *testing.T) {
	source := newMockSource()
	source.products[1] = testProduct(1, 900, 10)
	validator := newTestValidator(source)

	registry := newTestRegistry(&stubStore{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine, err := registry.Get(ctx, "s1")
	require.NoError(t, err)
	_, _, err = engine.AddItem(ctx, testProduct(1, 500, 10))
	require.NoError(t, err)

	go validator.Run(ctx, registry, 5*time.Millisecond, func() bool { return true })

	assert.Eventually(t, func() bool {
		items := engine.Items()
		return len(items) == 1 && items[0].UnitPrice() == 900
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRun_ZeroIntervalReturnsImmediately(t *testing.T) {
	validator := newTestValidator(newMockSource())
	registry := newTestRegistry(&stubStore{})

	done := make(chan struct{})
	go func() {
		validator.Run(context.Background(), registry, 0, nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return for a zero interval")
	}
}

func TestValidate_NotFoundNotRetried(t *testing.T) {
	source := newMockSource()
	validator := newTestValidator(source)

	engine, _, _ := newTestEngine(true)
	ctx := context.Background()
	_, _, err := engine.AddItem(ctx, testProduct(1, 500, 10))
	require.NoError(t, err)

	_, _, err = validator.Validate(ctx, engine)
	require.NoError(t, err)

	// Not-found resolves by removal on the first attempt
	assert.Equal(t, 1, source.callCount(1))
	assert.Empty(t, engine.Items())
}
