package handler

import "github.com/machshop/backend/internal/interfaces/http/dto"

// APIResponse is the typed response envelope used in OpenAPI annotations.
// The runtime envelope is dto.Response; this variant exists so swag can
// render a concrete data schema per endpoint.
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// CountData carries a bare count, used by the bulk lifecycle endpoints.
type CountData struct {
	Count int64 `json:"count"`
}
