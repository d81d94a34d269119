package estimating

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/machshop/backend/internal/domain/estimating"
	"github.com/machshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// recordingCache tracks invalidations so tests can assert cache hygiene
type recordingCache struct {
	invalidated []uuid.UUID
}

func (c *recordingCache) GetListPrice(ctx context.Context, itemID uuid.UUID) (decimal.Decimal, bool) {
	return decimal.Zero, false
}

func (c *recordingCache) SetListPrice(ctx context.Context, itemID uuid.UUID, price decimal.Decimal) {}

func (c *recordingCache) InvalidateListPrice(ctx context.Context, itemID uuid.UUID) {
	c.invalidated = append(c.invalidated, itemID)
}

func TestPriceBookService_Create(t *testing.T) {
	t.Run("creates a customer-scoped book", func(t *testing.T) {
		repo := new(MockPriceBookRepository)
		service := NewPriceBookService(repo, nil)
		ctx := context.Background()
		customerID := uuid.New()

		repo.On("Save", ctx, mock.AnythingOfType("*estimating.PriceBook")).Return(nil)

		result, err := service.Create(ctx, CreatePriceBookRequest{
			Name:       "Acme negotiated",
			CustomerID: &customerID,
		})

		require.NoError(t, err)
		assert.Equal(t, "Acme negotiated", result.Name)
		assert.Equal(t, customerID, *result.CustomerID)
		assert.False(t, result.IsDefault)
		assert.True(t, result.Active)
		repo.AssertExpectations(t)
	})

	t.Run("creating a default book unmarks the previous default", func(t *testing.T) {
		repo := new(MockPriceBookRepository)
		service := NewPriceBookService(repo, nil)
		ctx := context.Background()

		previous, err := estimating.NewPriceBook("Old default")
		require.NoError(t, err)
		previous.MarkDefault()

		repo.On("FindDefault", ctx).Return(previous, nil)
		repo.On("Save", ctx, mock.AnythingOfType("*estimating.PriceBook")).Return(nil)

		result, err := service.Create(ctx, CreatePriceBookRequest{
			Name:      "New default",
			IsDefault: true,
		})

		require.NoError(t, err)
		assert.True(t, result.IsDefault)
		assert.False(t, previous.IsDefault)
		repo.AssertNumberOfCalls(t, "Save", 2)
	})

	t.Run("first default tolerates a missing current default", func(t *testing.T) {
		repo := new(MockPriceBookRepository)
		service := NewPriceBookService(repo, nil)
		ctx := context.Background()

		repo.On("FindDefault", ctx).Return(nil, shared.ErrNotFound)
		repo.On("Save", ctx, mock.AnythingOfType("*estimating.PriceBook")).Return(nil)

		result, err := service.Create(ctx, CreatePriceBookRequest{Name: "Standard", IsDefault: true})

		require.NoError(t, err)
		assert.True(t, result.IsDefault)
	})

	t.Run("rejects a book scoped to both customer and segment", func(t *testing.T) {
		repo := new(MockPriceBookRepository)
		service := NewPriceBookService(repo, nil)
		ctx := context.Background()
		customerID := uuid.New()

		_, err := service.Create(ctx, CreatePriceBookRequest{
			Name:            "Conflicted",
			CustomerID:      &customerID,
			CustomerSegment: "wholesale",
		})

		assert.Error(t, err)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestPriceBookService_AddEntry(t *testing.T) {
	t.Run("adds entry and invalidates the cached list price", func(t *testing.T) {
		repo := new(MockPriceBookRepository)
		cache := &recordingCache{}
		service := NewPriceBookService(repo, cache)
		ctx := context.Background()

		book, err := estimating.NewPriceBook("Standard")
		require.NoError(t, err)
		itemID := uuid.New()

		repo.On("FindByID", ctx, book.ID).Return(book, nil)
		repo.On("Save", ctx, book).Return(nil)

		result, err := service.AddEntry(ctx, book.ID, AddPriceBookEntryRequest{
			ItemID:    itemID,
			UnitPrice: decimal.NewFromInt(10),
		})

		require.NoError(t, err)
		require.Len(t, result.Entries, 1)
		// Unset MinQty defaults to one
		assert.True(t, decimal.NewFromInt(1).Equal(result.Entries[0].MinQty))
		assert.Equal(t, []uuid.UUID{itemID}, cache.invalidated)
	})

	t.Run("rejects a negative price", func(t *testing.T) {
		repo := new(MockPriceBookRepository)
		service := NewPriceBookService(repo, nil)
		ctx := context.Background()

		book, err := estimating.NewPriceBook("Standard")
		require.NoError(t, err)

		repo.On("FindByID", ctx, book.ID).Return(book, nil)

		_, err = service.AddEntry(ctx, book.ID, AddPriceBookEntryRequest{
			ItemID:    uuid.New(),
			UnitPrice: decimal.NewFromInt(-1),
		})

		assert.Error(t, err)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestPriceBookService_RemoveEntry(t *testing.T) {
	repo := new(MockPriceBookRepository)
	cache := &recordingCache{}
	service := NewPriceBookService(repo, cache)
	ctx := context.Background()

	book, err := estimating.NewPriceBook("Standard")
	require.NoError(t, err)
	itemID := uuid.New()
	entry, err := book.AddEntry(itemID, decimal.NewFromInt(10), decimal.NewFromInt(1), nil)
	require.NoError(t, err)

	repo.On("FindByID", ctx, book.ID).Return(book, nil)
	repo.On("Save", ctx, book).Return(nil)

	result, err := service.RemoveEntry(ctx, book.ID, entry.ID)

	require.NoError(t, err)
	assert.Empty(t, result.Entries)
	assert.Equal(t, []uuid.UUID{itemID}, cache.invalidated)
}

func TestPriceBookService_Update(t *testing.T) {
	t.Run("deactivating invalidates every priced item once", func(t *testing.T) {
		repo := new(MockPriceBookRepository)
		cache := &recordingCache{}
		service := NewPriceBookService(repo, cache)
		ctx := context.Background()

		book, err := estimating.NewPriceBook("Standard")
		require.NoError(t, err)
		itemID := uuid.New()
		_, err = book.AddEntry(itemID, decimal.NewFromInt(10), decimal.NewFromInt(1), nil)
		require.NoError(t, err)
		maxQty := decimal.NewFromInt(49)
		_, err = book.AddEntry(itemID, decimal.NewFromInt(8), decimal.NewFromInt(10), &maxQty)
		require.NoError(t, err)

		repo.On("FindByID", ctx, book.ID).Return(book, nil)
		repo.On("Save", ctx, book).Return(nil)

		inactive := false
		result, err := service.Update(ctx, book.ID, UpdatePriceBookRequest{Active: &inactive})

		require.NoError(t, err)
		assert.False(t, result.Active)
		assert.Equal(t, []uuid.UUID{itemID}, cache.invalidated)
	})

	t.Run("renames a book", func(t *testing.T) {
		repo := new(MockPriceBookRepository)
		service := NewPriceBookService(repo, nil)
		ctx := context.Background()

		book, err := estimating.NewPriceBook("Standard")
		require.NoError(t, err)

		repo.On("FindByID", ctx, book.ID).Return(book, nil)
		repo.On("Save", ctx, book).Return(nil)

		name := "Standard 2026"
		result, err := service.Update(ctx, book.ID, UpdatePriceBookRequest{Name: &name})

		require.NoError(t, err)
		assert.Equal(t, "Standard 2026", result.Name)
	})
}

func TestPriceBookService_Delete(t *testing.T) {
	repo := new(MockPriceBookRepository)
	cache := &recordingCache{}
	service := NewPriceBookService(repo, cache)
	ctx := context.Background()

	book, err := estimating.NewPriceBook("Standard")
	require.NoError(t, err)
	itemID := uuid.New()
	_, err = book.AddEntry(itemID, decimal.NewFromInt(10), decimal.NewFromInt(1), nil)
	require.NoError(t, err)

	repo.On("FindByID", ctx, book.ID).Return(book, nil)
	repo.On("Delete", ctx, book.ID).Return(nil)

	require.NoError(t, service.Delete(ctx, book.ID))
	assert.Equal(t, []uuid.UUID{itemID}, cache.invalidated)
	repo.AssertExpectations(t)
}
