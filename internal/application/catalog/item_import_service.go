package catalog

import (
	"context"
	"strconv"
	"strings"

	"github.com/machshop/backend/internal/domain/catalog"
	"github.com/machshop/backend/internal/domain/shared"
	csvimport "github.com/machshop/backend/internal/infrastructure/import"
	"github.com/shopspring/decimal"
)

// ConflictMode defines how rows matching an existing SKU are handled.
type ConflictMode string

const (
	// ConflictModeSkip leaves the existing item untouched
	ConflictModeSkip ConflictMode = "skip"
	// ConflictModeUpdate overwrites the existing item with the row's values
	ConflictModeUpdate ConflictMode = "update"
	// ConflictModeFail counts the row as an error
	ConflictModeFail ConflictMode = "fail"
)

// IsValid checks if the conflict mode is a known value
func (c ConflictMode) IsValid() bool {
	switch c {
	case ConflictModeSkip, ConflictModeUpdate, ConflictModeFail:
		return true
	}
	return false
}

// itemImportHeaders are the columns a row may carry; sku and name are required.
var itemImportRequiredHeaders = []string{"sku", "name"}

// ItemImportResult summarizes an item CSV import.
type ItemImportResult struct {
	TotalRows    int                  `json:"total_rows"`
	ImportedRows int                  `json:"imported_rows"`
	UpdatedRows  int                  `json:"updated_rows"`
	SkippedRows  int                  `json:"skipped_rows"`
	ErrorRows    int                  `json:"error_rows"`
	Errors       []csvimport.RowError `json:"errors,omitempty"`
	IsTruncated  bool                 `json:"is_truncated,omitempty"`
	TotalErrors  int                  `json:"total_errors,omitempty"`
}

// ItemImportService bulk-loads catalog items from CSV. Rows are processed
// independently; a bad row is reported and skipped rather than aborting the
// whole file.
type ItemImportService struct {
	items       catalog.ItemRepository
	invalidator ItemInvalidator
}

// NewItemImportService creates a new ItemImportService. invalidator may be nil.
func NewItemImportService(items catalog.ItemRepository, invalidator ItemInvalidator) *ItemImportService {
	return &ItemImportService{items: items, invalidator: invalidator}
}

// Import parses and loads a CSV payload. Expected columns: sku, name, unit,
// cost_per_unit, quantity_on_hand, reorder_point, vendor_name,
// vendor_lead_time_days, category. Unknown columns are ignored.
func (s *ItemImportService) Import(ctx context.Context, data []byte, mode ConflictMode) (*ItemImportResult, error) {
	if !mode.IsValid() {
		return nil, shared.NewValidationError("Invalid conflict mode; use skip, update or fail")
	}

	parser, err := csvimport.ParseFromBytes(data)
	if err != nil {
		return nil, shared.NewValidationError(err.Error())
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, shared.NewValidationError(err.Error())
	}
	if missing := parser.MissingHeaders(itemImportRequiredHeaders); len(missing) > 0 {
		return nil, shared.NewValidationError("Missing required columns: " + strings.Join(missing, ", "))
	}

	rows, err := parser.ReadAllRows()
	if err != nil {
		return nil, shared.NewValidationError(err.Error())
	}

	result := &ItemImportResult{TotalRows: len(rows)}
	rowErrors := csvimport.NewErrorCollection(100)
	seenSKUs := make(map[string]int, len(rows))

	for _, row := range rows {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		sku := row.Get("sku")
		if prev, dup := seenSKUs[sku]; dup && sku != "" {
			rowErrors.Add(csvimport.NewRowError(row.LineNumber, "sku", csvimport.ErrCodeImportDuplicate,
				"duplicate SKU in file, first seen at row "+strconv.Itoa(prev)))
			result.ErrorRows++
			continue
		}
		seenSKUs[sku] = row.LineNumber

		if err := s.importRow(ctx, row, mode, result, rowErrors); err != nil {
			return nil, err
		}
	}

	result.Errors = rowErrors.Errors()
	result.IsTruncated = rowErrors.IsTruncated()
	result.TotalErrors = rowErrors.TotalCount()

	return result, nil
}

// importRow loads one row. Row-level problems are recorded and swallowed;
// only infrastructure failures propagate.
func (s *ItemImportService) importRow(
	ctx context.Context,
	row *csvimport.Row,
	mode ConflictMode,
	result *ItemImportResult,
	rowErrors *csvimport.ErrorCollection,
) error {
	fail := func(column, code, message string) {
		rowErrors.Add(csvimport.NewRowError(row.LineNumber, column, code, message))
		result.ErrorRows++
	}

	sku := row.Get("sku")
	if sku == "" {
		fail("sku", csvimport.ErrCodeImportRequiredField, "sku is required")
		return nil
	}
	name := row.Get("name")
	if name == "" {
		fail("name", csvimport.ErrCodeImportRequiredField, "name is required")
		return nil
	}

	cost := decimal.Zero
	if v := row.Get("cost_per_unit"); v != "" {
		parsed, err := decimal.NewFromString(v)
		if err != nil {
			fail("cost_per_unit", csvimport.ErrCodeImportInvalidType, "invalid decimal value")
			return nil
		}
		if parsed.IsNegative() {
			fail("cost_per_unit", csvimport.ErrCodeImportInvalidRange, "cost cannot be negative")
			return nil
		}
		cost = parsed
	}

	onHand := decimal.Zero
	if v := row.Get("quantity_on_hand"); v != "" {
		parsed, err := decimal.NewFromString(v)
		if err != nil {
			fail("quantity_on_hand", csvimport.ErrCodeImportInvalidType, "invalid decimal value")
			return nil
		}
		if parsed.IsNegative() {
			fail("quantity_on_hand", csvimport.ErrCodeImportInvalidRange, "quantity cannot be negative")
			return nil
		}
		onHand = parsed
	}

	var reorderPoint *decimal.Decimal
	if v := row.Get("reorder_point"); v != "" {
		parsed, err := decimal.NewFromString(v)
		if err != nil || parsed.IsNegative() {
			fail("reorder_point", csvimport.ErrCodeImportInvalidType, "invalid reorder point")
			return nil
		}
		reorderPoint = &parsed
	}

	leadTimeDays := -1
	if v := row.Get("vendor_lead_time_days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			fail("vendor_lead_time_days", csvimport.ErrCodeImportInvalidType, "invalid lead time")
			return nil
		}
		leadTimeDays = parsed
	}

	existing, err := s.items.FindBySKU(ctx, sku)
	if err != nil && !shared.IsNotFound(err) {
		return err
	}

	if existing != nil {
		switch mode {
		case ConflictModeSkip:
			result.SkippedRows++
			return nil
		case ConflictModeFail:
			fail("sku", csvimport.ErrCodeImportDuplicate, "item with this SKU already exists")
			return nil
		}

		existing.Name = name
		existing.Description = row.GetOrDefault("description", existing.Description)
		existing.Category = row.GetOrDefault("category", existing.Category)
		if err := existing.UpdateCost(cost); err != nil {
			return err
		}
		if err := existing.SetOnHand(onHand); err != nil {
			return err
		}
		if reorderPoint != nil {
			existing.ReorderPoint = *reorderPoint
		}
		if vendor := row.Get("vendor_name"); vendor != "" || leadTimeDays >= 0 {
			lead := existing.VendorLeadTimeDays
			if leadTimeDays >= 0 {
				lead = leadTimeDays
			}
			if vendor == "" {
				vendor = existing.VendorName
			}
			if err := existing.SetVendor(vendor, lead); err != nil {
				return err
			}
		}

		if err := s.items.Save(ctx, existing); err != nil {
			return err
		}
		if s.invalidator != nil {
			s.invalidator.InvalidateListPrice(ctx, existing.ID)
		}
		result.UpdatedRows++
		return nil
	}

	item, err := catalog.NewItem(sku, name, row.Get("unit"), cost)
	if err != nil {
		fail("", csvimport.ErrCodeImportCSVParsing, err.Error())
		return nil
	}
	item.Description = row.Get("description")
	item.Category = row.Get("category")
	if err := item.SetOnHand(onHand); err != nil {
		return err
	}
	if reorderPoint != nil {
		item.ReorderPoint = *reorderPoint
	}
	if vendor := row.Get("vendor_name"); vendor != "" || leadTimeDays >= 0 {
		lead := item.VendorLeadTimeDays
		if leadTimeDays >= 0 {
			lead = leadTimeDays
		}
		if err := item.SetVendor(vendor, lead); err != nil {
			return err
		}
	}

	if err := s.items.Save(ctx, item); err != nil {
		return err
	}
	result.ImportedRows++
	return nil
}
