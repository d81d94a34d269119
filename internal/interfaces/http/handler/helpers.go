package handler

import (
	"github.com/machshop/backend/internal/domain/shared"
	"github.com/machshop/backend/internal/interfaces/http/dto"
)

// toSharedFilter converts common list parameters plus handler-specific
// filters into a repository filter. Nil entries in filters are skipped.
func toSharedFilter(req dto.ListRequest, filters map[string]interface{}) shared.Filter {
	f := shared.DefaultFilter()
	if req.Page > 0 {
		f.Page = req.Page
	}
	if req.PageSize > 0 {
		f.PageSize = req.PageSize
	}
	if req.OrderBy != "" {
		f.OrderBy = req.OrderBy
	}
	if req.OrderDir != "" {
		f.OrderDir = req.OrderDir
	}
	f.Search = req.Search
	for key, value := range filters {
		if value == nil {
			continue
		}
		f.Filters[key] = value
	}
	return f
}
