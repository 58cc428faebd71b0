package dto

import "github.com/shopspring/decimal"

type DescriptionInput struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type AttributeValueInput struct {
	AttributeID       string  `json:"attribute_id"`
	AttributeType     string  `json:"attribute_type"`
	AttributeOptionID *string `json:"attribute_option_id,omitempty"`
	Value             *string `json:"value,omitempty"`
}

type ImageInput struct {
	ImageType string `json:"image_type"`
	Alt       string `json:"alt"`
	URL       string `json:"url"`
	IsDefault bool   `json:"is_default"`
}

type CreateProductInput struct {
	Name              string                `json:"name"`
	SKU               string                `json:"sku"`
	BasePrice         decimal.Decimal       `json:"base_price"`
	SalePrice         *decimal.Decimal      `json:"sale_price,omitempty"`
	Weight            decimal.Decimal       `json:"weight"`
	GroupID           string                `json:"group_id"`
	TaxClass          string                `json:"tax_class"`
	Status            string                `json:"status,omitempty"`
	CategoryID        string                `json:"category_id,omitempty"`
	CollectionIDs     []string              `json:"collection_ids,omitempty"`
	Descriptions      []DescriptionInput    `json:"descriptions,omitempty"`
	VariantSKU        string                `json:"variant_sku,omitempty"`
	PriceOffset       decimal.Decimal       `json:"price_offset"`
	StockQuantity     int                   `json:"stock_quantity"`
	LowStockThreshold int                   `json:"low_stock_threshold"`
	IsActive          *bool                 `json:"is_active,omitempty"`
	IsVisible         *bool                 `json:"is_visible,omitempty"`
	AttributeValues   []AttributeValueInput `json:"attribute_values,omitempty"`
	Images            []ImageInput          `json:"images,omitempty"`
}

// UpdateProductInput mutates only the supplied fields. Nil pointers and
// nil slices leave the corresponding state untouched; an empty non-nil
// slice clears it (collections are reconciled as a set difference, images
// are replaced wholesale, attribute values merge).
type UpdateProductInput struct {
	ID                string                `json:"-"`
	Name              *string               `json:"name,omitempty"`
	SKU               *string               `json:"sku,omitempty"`
	BasePrice         *decimal.Decimal      `json:"base_price,omitempty"`
	SalePrice         *decimal.Decimal      `json:"sale_price,omitempty"`
	Weight            *decimal.Decimal      `json:"weight,omitempty"`
	TaxClass          *string               `json:"tax_class,omitempty"`
	CategoryID        *string               `json:"category_id,omitempty"`
	CollectionIDs     []string              `json:"collection_ids,omitempty"`
	Descriptions      []DescriptionInput    `json:"descriptions,omitempty"`
	VariantSKU        *string               `json:"variant_sku,omitempty"`
	PriceOffset       *decimal.Decimal      `json:"price_offset,omitempty"`
	StockQuantity     *int                  `json:"stock_quantity,omitempty"`
	LowStockThreshold *int                  `json:"low_stock_threshold,omitempty"`
	IsActive          *bool                 `json:"is_active,omitempty"`
	IsVisible         *bool                 `json:"is_visible,omitempty"`
	AttributeValues   []AttributeValueInput `json:"attribute_values,omitempty"`
	Images            []ImageInput          `json:"images,omitempty"`
}
