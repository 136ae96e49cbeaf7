package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Create(ctx context.Context, svc *Service) error
	FindByID(ctx context.Context, id snowflake.ID) (*Service, error)
	List(ctx context.Context, filter ListRequest) ([]Service, error)
	Update(ctx context.Context, svc *Service) error
	Delete(ctx context.Context, id snowflake.ID) error

	// CountReferences reports how many transaction lines point at the
	// service. Non-zero blocks deletion.
	CountReferences(ctx context.Context, id snowflake.ID) (int64, error)
}
