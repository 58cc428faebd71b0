package attributegroup

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

// Repository loads an attribute group together with its nested attributes
// and options. The group is read-only from the catalog workflows'
// perspective.
type Repository interface {
	FindByID(ctx context.Context, id string) (*model.AttributeGroup, error)
}
