package product

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

// Repository is the unit of work for the product aggregate: the whole
// graph (product, links, descriptions, variants, attribute values, images
// and pending stock movements) is loaded and saved as one unit.
type Repository interface {
	FindGraphByID(ctx context.Context, id string) (*model.Product, error)
	SaveGraph(ctx context.Context, p *model.Product) error
	Delete(ctx context.Context, id string) error

	// IsSKUUnique checks the candidate against product SKUs AND variant
	// SKUs across the whole catalog, excluding the given product's own.
	IsSKUUnique(ctx context.Context, sku, excludeProductID string) (bool, error)
}
