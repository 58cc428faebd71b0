package model

import (
	"fmt"

	"github.com/fekuna/omnipos-catalog-service/internal/apperror"
)

// MovementType classifies a stock ledger entry and determines the sign of
// its contribution to the running quantity.
type MovementType string

const (
	MovementInitial    MovementType = "Initial"
	MovementPurchase   MovementType = "Purchase"
	MovementReturn     MovementType = "Return"
	MovementSale       MovementType = "Sale"
	MovementWaste      MovementType = "Waste"
	MovementLost       MovementType = "Lost"
	MovementAdjustment MovementType = "Adjustment"
)

func (t MovementType) Valid() bool {
	switch t {
	case MovementInitial, MovementPurchase, MovementReturn,
		MovementSale, MovementWaste, MovementLost, MovementAdjustment:
		return true
	}
	return false
}

// Inbound reports whether the type adds stock. Adjustment is neither
// inbound nor outbound; it carries its own sign.
func (t MovementType) Inbound() bool {
	switch t {
	case MovementInitial, MovementPurchase, MovementReturn:
		return true
	}
	return false
}

func (t MovementType) Outbound() bool {
	switch t {
	case MovementSale, MovementWaste, MovementLost:
		return true
	}
	return false
}

// StockMovement is one append-only ledger entry. Quantity holds the
// unsigned magnitude for all types except Adjustment, which carries its
// sign directly. After acceptance a movement only ever changes through
// AppendNotes and LinkReference.
type StockMovement struct {
	Auditable
	VariantID   string       `db:"variant_id" json:"variant_id"`
	Quantity    int          `db:"quantity" json:"quantity"`
	Type        MovementType `db:"movement_type" json:"movement_type"`
	ReferenceID *string      `db:"reference_id" json:"reference_id,omitempty"`
	Notes       *string      `db:"notes" json:"notes,omitempty"`
}

func NewStockMovement(variantID string, quantity int, movementType MovementType, referenceID, notes *string) (*StockMovement, error) {
	if !movementType.Valid() {
		return nil, apperror.NewValidation("invalid_movement_type", fmt.Sprintf("unknown movement type %q", movementType))
	}
	if movementType == MovementAdjustment {
		if quantity == 0 {
			return nil, apperror.NewValidation("invalid_movement_quantity", "adjustment quantity must be non-zero")
		}
	} else if quantity <= 0 {
		return nil, apperror.NewValidation("invalid_movement_quantity", fmt.Sprintf("%s quantity must be a positive magnitude", movementType))
	}
	return &StockMovement{
		Auditable:   NewAuditable(),
		VariantID:   variantID,
		Quantity:    quantity,
		Type:        movementType,
		ReferenceID: referenceID,
		Notes:       notes,
	}, nil
}

// SignedContribution is the movement's effect on the running quantity.
func (m *StockMovement) SignedContribution() int {
	switch {
	case m.Type.Inbound():
		return m.Quantity
	case m.Type.Outbound():
		return -m.Quantity
	default: // Adjustment applies its signed value as-is.
		return m.Quantity
	}
}

func (m *StockMovement) AppendNotes(notes string) {
	if notes == "" {
		return
	}
	if m.Notes == nil || *m.Notes == "" {
		m.Notes = &notes
		return
	}
	combined := *m.Notes + "\n" + notes
	m.Notes = &combined
}

func (m *StockMovement) LinkReference(referenceID string) error {
	if referenceID == "" {
		return apperror.NewValidation("invalid_reference", "reference id must not be empty")
	}
	m.ReferenceID = &referenceID
	return nil
}
