package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-catalog-service/internal/apperror"
)

func newStockedVariant(t *testing.T, quantity, threshold int) *ProductVariant {
	t.Helper()
	v := &ProductVariant{
		Auditable:         NewAuditable(),
		SKU:               "VAR-1",
		LowStockThreshold: threshold,
		StockStatus:       StockStatusOutOfStock,
	}
	if quantity > 0 {
		_, err := v.AdjustStock(quantity, MovementInitial, nil, nil)
		require.NoError(t, err)
	}
	v.DrainEvents()
	return v
}

func TestAdjustStockLedgerRoundTrip(t *testing.T) {
	v := newStockedVariant(t, 10, 5)
	assert.Equal(t, 10, v.StockQuantity)
	assert.Equal(t, StockStatusInStock, v.StockStatus)

	// Negative adjustment carries its own sign.
	m, err := v.AdjustStock(-6, MovementAdjustment, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, -6, m.SignedContribution())
	assert.Equal(t, 4, v.StockQuantity)
	assert.Equal(t, StockStatusLowStock, v.StockStatus)

	// A sale larger than the remaining stock is rejected and leaves the
	// ledger untouched.
	ledgerLen := len(v.Movements)
	_, err = v.AdjustStock(5, MovementSale, nil, nil)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))
	assert.Equal(t, 4, v.StockQuantity)
	assert.Len(t, v.Movements, ledgerLen)

	// Selling exactly the remaining stock drains it to zero.
	_, err = v.AdjustStock(4, MovementSale, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, v.StockQuantity)
	assert.Equal(t, StockStatusOutOfStock, v.StockStatus)
}

func TestAdjustStockQuantityValidation(t *testing.T) {
	v := newStockedVariant(t, 10, 5)

	_, err := v.AdjustStock(0, MovementAdjustment, nil, nil)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = v.AdjustStock(-3, MovementSale, nil, nil)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = v.AdjustStock(3, "Teleport", nil, nil)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestAdjustStockRecordsEvent(t *testing.T) {
	v := newStockedVariant(t, 10, 5)

	m, err := v.AdjustStock(2, MovementPurchase, nil, nil)
	require.NoError(t, err)

	events := v.DrainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "variant.stock_adjusted", events[0].Name)
	payload, ok := events[0].Payload.(StockAdjusted)
	require.True(t, ok)
	assert.Equal(t, m.ID, payload.MovementID)
	assert.Equal(t, 12, payload.NewQuantity)
	assert.Empty(t, v.Events())
}

func TestCheckStockAvailability(t *testing.T) {
	v := newStockedVariant(t, 4, 2)

	ok, err := v.CheckStockAvailability(4)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.CheckStockAvailability(5)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = v.CheckStockAvailability(0)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestSetLowStockThresholdRecomputesStatus(t *testing.T) {
	v := newStockedVariant(t, 4, 2)
	assert.Equal(t, StockStatusInStock, v.StockStatus)

	require.NoError(t, v.SetLowStockThreshold(4))
	assert.Equal(t, StockStatusLowStock, v.StockStatus)

	assert.Error(t, v.SetLowStockThreshold(-1))
}

func TestFlagSettersAreIdempotent(t *testing.T) {
	v := newStockedVariant(t, 1, 0)
	v.IsActive = true

	v.SetAvailability(true)
	assert.Empty(t, v.Events())

	v.SetAvailability(false)
	assert.False(t, v.IsActive)
	v.SetVisibility(true)
	assert.True(t, v.IsVisible)

	events := v.DrainEvents()
	require.Len(t, events, 2)
	assert.Equal(t, "variant.availability_changed", events[0].Name)
	assert.Equal(t, "variant.visibility_changed", events[1].Name)
}
