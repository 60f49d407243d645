package repository

import (
	"context"

	"teachshare/internal/domain/model"
)

type ResourceFilter struct {
	Category string
	Search   string // matches title
	Access   string
}

type ResourceRepository interface {
	Save(ctx context.Context, tx Tx, r *model.Resource) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Resource, error)
	List(ctx context.Context, tx Tx, f ResourceFilter, limit, offset int) ([]*model.Resource, int, error)
	IncrementDownloads(ctx context.Context, tx Tx, id string) error
	IncrementViews(ctx context.Context, tx Tx, id string) error
}
