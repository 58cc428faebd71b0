package dto

import (
	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

// CreateProductResult is the success side of the create/update contract:
// the product identity plus the state callers usually echo back.
type CreateProductResult struct {
	ProductID string               `json:"product_id"`
	SKU       string               `json:"sku"`
	Status    model.ProductStatus  `json:"status"`
	Variants  []ProductVariantView `json:"variants,omitempty"`
}

type ProductVariantView struct {
	VariantID   string            `json:"variant_id"`
	SKU         string            `json:"sku"`
	StockStatus model.StockStatus `json:"stock_status"`
	IsDefault   bool              `json:"is_default"`
}

func NewCreateProductResult(p *model.Product) *CreateProductResult {
	result := &CreateProductResult{
		ProductID: p.ID,
		SKU:       p.SKU,
		Status:    p.Status,
	}
	for _, v := range p.Variants {
		result.Variants = append(result.Variants, ProductVariantView{
			VariantID:   v.ID,
			SKU:         v.SKU,
			StockStatus: v.StockStatus,
			IsDefault:   v.IsDefault,
		})
	}
	return result
}
