package estimating

import (
	"context"

	"github.com/google/uuid"
	"github.com/machshop/backend/internal/domain/estimating"
	"github.com/machshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PriceBookService handles price book configuration
type PriceBookService struct {
	books estimating.PriceBookRepository
	cache estimating.ListPriceCache
}

// NewPriceBookService creates a new PriceBookService. cache may be nil.
func NewPriceBookService(books estimating.PriceBookRepository, cache estimating.ListPriceCache) *PriceBookService {
	return &PriceBookService{books: books, cache: cache}
}

// Create creates a new price book
func (s *PriceBookService) Create(ctx context.Context, req CreatePriceBookRequest) (*PriceBookResponse, error) {
	book, err := estimating.NewPriceBook(req.Name)
	if err != nil {
		return nil, err
	}

	if req.CustomerID != nil {
		if err := book.ScopeToCustomer(*req.CustomerID); err != nil {
			return nil, err
		}
	}
	if req.CustomerSegment != "" {
		if err := book.ScopeToSegment(req.CustomerSegment); err != nil {
			return nil, err
		}
	}
	if req.ValidFrom != nil || req.ValidUntil != nil {
		if err := book.SetValidity(req.ValidFrom, req.ValidUntil); err != nil {
			return nil, err
		}
	}

	if req.IsDefault {
		if err := s.swapDefault(ctx, book); err != nil {
			return nil, err
		}
	}

	if err := s.books.Save(ctx, book); err != nil {
		return nil, err
	}

	response := ToPriceBookResponse(book)
	return &response, nil
}

// GetByID retrieves a price book with its entries
func (s *PriceBookService) GetByID(ctx context.Context, id uuid.UUID) (*PriceBookResponse, error) {
	book, err := s.books.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToPriceBookResponse(book)
	return &response, nil
}

// List retrieves price books with filtering and pagination
func (s *PriceBookService) List(ctx context.Context, filter shared.Filter) ([]PriceBookResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	books, err := s.books.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.books.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return ToPriceBookResponses(books), total, nil
}

// Update updates a price book
func (s *PriceBookService) Update(ctx context.Context, id uuid.UUID, req UpdatePriceBookRequest) (*PriceBookResponse, error) {
	book, err := s.books.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, shared.NewValidationError("Price book name cannot be empty")
		}
		book.Name = *req.Name
	}
	if req.ValidFrom != nil || req.ValidUntil != nil {
		from := book.ValidFrom
		until := book.ValidUntil
		if req.ValidFrom != nil {
			from = req.ValidFrom
		}
		if req.ValidUntil != nil {
			until = req.ValidUntil
		}
		if err := book.SetValidity(from, until); err != nil {
			return nil, err
		}
	}
	if req.Active != nil {
		if *req.Active {
			book.Active = true
		} else {
			book.Deactivate()
		}
	}
	if req.IsDefault != nil {
		if *req.IsDefault && !book.IsDefault {
			if err := s.swapDefault(ctx, book); err != nil {
				return nil, err
			}
		} else if !*req.IsDefault {
			book.UnmarkDefault()
		}
	}

	if err := s.books.Save(ctx, book); err != nil {
		return nil, err
	}
	s.invalidateBook(ctx, book)

	response := ToPriceBookResponse(book)
	return &response, nil
}

// AddEntry adds a priced item to a price book
func (s *PriceBookService) AddEntry(ctx context.Context, bookID uuid.UUID, req AddPriceBookEntryRequest) (*PriceBookResponse, error) {
	book, err := s.books.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	minQty := req.MinQty
	if minQty.IsZero() {
		minQty = decimal.NewFromInt(1)
	}
	if _, err := book.AddEntry(req.ItemID, req.UnitPrice, minQty, req.MaxQty); err != nil {
		return nil, err
	}

	if err := s.books.Save(ctx, book); err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.InvalidateListPrice(ctx, req.ItemID)
	}

	response := ToPriceBookResponse(book)
	return &response, nil
}

// RemoveEntry removes an entry from a price book
func (s *PriceBookService) RemoveEntry(ctx context.Context, bookID, entryID uuid.UUID) (*PriceBookResponse, error) {
	book, err := s.books.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	var itemID *uuid.UUID
	for _, entry := range book.Entries {
		if entry.ID == entryID {
			id := entry.ItemID
			itemID = &id
			break
		}
	}

	if err := book.RemoveEntry(entryID); err != nil {
		return nil, err
	}

	if err := s.books.Save(ctx, book); err != nil {
		return nil, err
	}
	if s.cache != nil && itemID != nil {
		s.cache.InvalidateListPrice(ctx, *itemID)
	}

	response := ToPriceBookResponse(book)
	return &response, nil
}

// Delete deletes a price book and its entries
func (s *PriceBookService) Delete(ctx context.Context, id uuid.UUID) error {
	book, err := s.books.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.books.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateBook(ctx, book)
	return nil
}

// swapDefault marks the book default, unmarking the previous default first
func (s *PriceBookService) swapDefault(ctx context.Context, book *estimating.PriceBook) error {
	current, err := s.books.FindDefault(ctx)
	if err != nil && !shared.IsNotFound(err) {
		return err
	}
	if current != nil && current.ID != book.ID {
		current.UnmarkDefault()
		if err := s.books.Save(ctx, current); err != nil {
			return err
		}
		s.invalidateBook(ctx, current)
	}
	book.MarkDefault()
	return nil
}

// invalidateBook drops cached list prices for every item the book prices
func (s *PriceBookService) invalidateBook(ctx context.Context, book *estimating.PriceBook) {
	if s.cache == nil {
		return
	}
	seen := make(map[uuid.UUID]struct{}, len(book.Entries))
	for _, entry := range book.Entries {
		if _, ok := seen[entry.ItemID]; ok {
			continue
		}
		seen[entry.ItemID] = struct{}{}
		s.cache.InvalidateListPrice(ctx, entry.ItemID)
	}
}
