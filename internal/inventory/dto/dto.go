package dto

import (
	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

type StockAdjustResult struct {
	VariantID     string            `json:"variant_id"`
	MovementID    string            `json:"movement_id"`
	StockQuantity int               `json:"stock_quantity"`
	StockStatus   model.StockStatus `json:"stock_status"`
}

type AvailabilityResult struct {
	VariantID     string            `json:"variant_id"`
	Requested     int               `json:"requested"`
	Available     bool              `json:"available"`
	StockQuantity int               `json:"stock_quantity"`
	StockStatus   model.StockStatus `json:"stock_status"`
}
