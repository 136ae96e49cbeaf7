package domain

import (
	"context"
	"time"
)

type CatalogService interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id string) error
}

type ListRequest struct {
	Name    string
	HSNCode string
	Active  *bool
	SortBy  string
	OrderBy string
}

type CreateRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	HSNCode     string  `json:"hsn_code"`
	UnitPrice   float64 `json:"unit_price"`
	GSTRate     float64 `json:"gst_rate"`
	Active      *bool   `json:"active"`
}

type UpdateRequest struct {
	ID          string   `json:"id"`
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	HSNCode     *string  `json:"hsn_code,omitempty"`
	UnitPrice   *float64 `json:"unit_price,omitempty"`
	GSTRate     *float64 `json:"gst_rate,omitempty"`
	Active      *bool    `json:"active,omitempty"`
}

type Response struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	HSNCode     string    `json:"hsn_code"`
	UnitPrice   float64   `json:"unit_price"`
	GSTRate     float64   `json:"gst_rate"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
