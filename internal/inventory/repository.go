package inventory

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

type Repository interface {
	// FindVariantByID returns (nil, nil) when no variant matches.
	FindVariantByID(ctx context.Context, id string) (*model.ProductVariant, error)
	// SaveVariantStock persists the variant's running quantity together
	// with its pending ledger movements in one transaction.
	SaveVariantStock(ctx context.Context, v *model.ProductVariant) error
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)
}
