package model

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fekuna/omnipos-catalog-service/internal/apperror"
)

// StockStatus is derived from quantity and threshold, never set directly.
type StockStatus string

const (
	StockStatusInStock    StockStatus = "InStock"
	StockStatusLowStock   StockStatus = "LowStock"
	StockStatusOutOfStock StockStatus = "OutOfStock"
)

func stockStatusFor(quantity, lowStockThreshold int) StockStatus {
	switch {
	case quantity <= 0:
		return StockStatusOutOfStock
	case quantity <= lowStockThreshold:
		return StockStatusLowStock
	default:
		return StockStatusInStock
	}
}

var (
	priceOffsetMin = decimal.NewFromInt(-10000)
	priceOffsetMax = decimal.NewFromInt(10000)
)

// ProductVariant is one purchasable SKU of a product. Stock quantity is
// the running sum of the variant's ledger; pending (unsaved) movements
// accumulate in Movements until the unit of work persists them.
type ProductVariant struct {
	Auditable
	EventRecorder     `db:"-" json:"-"`
	ProductID         string                  `db:"product_id" json:"product_id"`
	SKU               string                  `db:"sku" json:"sku"`
	PriceOffset       decimal.Decimal         `db:"price_offset" json:"price_offset"`
	StockQuantity     int                     `db:"stock_quantity" json:"stock_quantity"`
	LowStockThreshold int                     `db:"low_stock_threshold" json:"low_stock_threshold"`
	StockStatus       StockStatus             `db:"stock_status" json:"stock_status"`
	IsActive          bool                    `db:"is_active" json:"is_active"`
	IsVisible         bool                    `db:"is_visible" json:"is_visible"`
	IsDefault         bool                    `db:"is_default" json:"is_default"`
	AttributeValues   []VariantAttributeValue `db:"-" json:"attribute_values,omitempty"`
	Movements         []StockMovement         `db:"-" json:"-"`
}

// TotalPrice is the product base price plus this variant's offset.
func (v *ProductVariant) TotalPrice(basePrice decimal.Decimal) decimal.Decimal {
	return basePrice.Add(v.PriceOffset)
}

// AdjustStock validates and appends a ledger movement, updates the running
// quantity by the movement's signed contribution and recomputes the stock
// status. Outbound movements (and negative adjustments) that would drive
// the quantity below zero are rejected.
func (v *ProductVariant) AdjustStock(quantity int, movementType MovementType, referenceID, notes *string) (*StockMovement, error) {
	movement, err := NewStockMovement(v.ID, quantity, movementType, referenceID, notes)
	if err != nil {
		return nil, err
	}

	newQuantity := v.StockQuantity + movement.SignedContribution()
	if newQuantity < 0 {
		return nil, apperror.NewConflict("insufficient_stock", fmt.Sprintf(
			"%s of %d would drive stock of variant %s below zero (current %d)",
			movementType, quantity, v.SKU, v.StockQuantity,
		))
	}

	v.Movements = append(v.Movements, *movement)
	v.StockQuantity = newQuantity
	v.StockStatus = stockStatusFor(v.StockQuantity, v.LowStockThreshold)
	v.Touch()
	v.Record("variant.stock_adjusted", v.ID, StockAdjusted{
		VariantID:    v.ID,
		MovementID:   movement.ID,
		MovementType: movementType,
		Quantity:     quantity,
		NewQuantity:  v.StockQuantity,
		StockStatus:  v.StockStatus,
	})
	return movement, nil
}

// CheckStockAvailability reports whether current stock covers the probe
// quantity. Pure query.
func (v *ProductVariant) CheckStockAvailability(quantity int) (bool, error) {
	if quantity <= 0 {
		return false, apperror.NewValidation("invalid_probe_quantity", "availability probe quantity must be positive")
	}
	return v.StockQuantity >= quantity, nil
}

// SetLowStockThreshold recomputes the derived stock status.
func (v *ProductVariant) SetLowStockThreshold(threshold int) error {
	if threshold < 0 {
		return apperror.NewValidation("invalid_low_stock_threshold", "low stock threshold must not be negative")
	}
	if v.LowStockThreshold == threshold {
		return nil
	}
	v.LowStockThreshold = threshold
	v.StockStatus = stockStatusFor(v.StockQuantity, v.LowStockThreshold)
	v.Touch()
	return nil
}

func (v *ProductVariant) SetAsDefault() {
	if v.IsDefault {
		return
	}
	v.IsDefault = true
	v.Touch()
	v.Record("variant.default_set", v.ID, nil)
}

func (v *ProductVariant) UnsetDefault() {
	if !v.IsDefault {
		return
	}
	v.IsDefault = false
	v.Touch()
	v.Record("variant.default_unset", v.ID, nil)
}

// SetAvailability sets IsActive to the requested value.
func (v *ProductVariant) SetAvailability(isActive bool) {
	if v.IsActive == isActive {
		return
	}
	v.IsActive = isActive
	v.Touch()
	v.Record("variant.availability_changed", v.ID, FlagChanged{VariantID: v.ID, Value: isActive})
}

func (v *ProductVariant) SetVisibility(isVisible bool) {
	if v.IsVisible == isVisible {
		return
	}
	v.IsVisible = isVisible
	v.Touch()
	v.Record("variant.visibility_changed", v.ID, FlagChanged{VariantID: v.ID, Value: isVisible})
}

// StockAdjusted is the payload of variant.stock_adjusted.
type StockAdjusted struct {
	VariantID    string       `json:"variant_id"`
	MovementID   string       `json:"movement_id"`
	MovementType MovementType `json:"movement_type"`
	Quantity     int          `json:"quantity"`
	NewQuantity  int          `json:"new_quantity"`
	StockStatus  StockStatus  `json:"stock_status"`
}

// FlagChanged is the payload of variant availability/visibility events.
type FlagChanged struct {
	VariantID string `json:"variant_id"`
	Value     bool   `json:"value"`
}
