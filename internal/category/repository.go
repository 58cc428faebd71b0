package category

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

// Repository is the category lookup the catalog workflows depend on.
type Repository interface {
	FindByID(ctx context.Context, id string) (*model.Category, error)
}
