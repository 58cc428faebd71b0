package dto

// AdjustStockInput is one requested ledger entry. Quantity is the
// unsigned magnitude for typed movements; Adjustment carries its sign.
type AdjustStockInput struct {
	VariantID    string  `json:"variant_id"`
	Quantity     int     `json:"quantity"`
	MovementType string  `json:"movement_type"`
	ReferenceID  *string `json:"reference_id,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}

type MovementFilters struct {
	VariantID    string
	MovementType *string
	Page         int
	PageSize     int
}
