package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-catalog-service/internal/apperror"
)

func newDraftProduct(t *testing.T) *Product {
	t.Helper()
	p, err := NewProduct("Test Product", "SKU-MAIN", decimal.NewFromInt(100), decimal.Zero, "group-1", TaxClassStandard, "")
	require.NoError(t, err)
	p.DrainEvents()
	return p
}

// newReadyProduct satisfies every activation precondition: one default
// variant with stock, one default image of the Default type.
func newReadyProduct(t *testing.T) *Product {
	t.Helper()
	p := newDraftProduct(t)
	v, err := p.AddVariant("SKU-MAIN-default", decimal.Zero, 2, true, true, true)
	require.NoError(t, err)
	_, err = v.AdjustStock(10, MovementInitial, nil, nil)
	require.NoError(t, err)
	_, err = p.AddImage(ImageDescriptor{Type: ImageTypeDefault, URL: "https://cdn.example.com/main.jpg"}, nil, true)
	require.NoError(t, err)
	p.DrainEvents()
	return p
}

func TestNewProductAccumulatesViolations(t *testing.T) {
	_, err := NewProduct("ab", "x", decimal.NewFromInt(-1), decimal.Zero, "", "Luxury", "Unknown")
	require.Error(t, err)
	assert.ElementsMatch(t, []string{
		"invalid_product_name", "invalid_sku", "invalid_base_price",
		"invalid_group", "invalid_tax_class", "invalid_status",
	}, errCodes(t, err))
}

func TestNewProductDefaultsToDraft(t *testing.T) {
	p := newDraftProduct(t)
	assert.Equal(t, StatusDraft, p.Status)
}

func TestAddVariantDefaultHandover(t *testing.T) {
	p := newDraftProduct(t)

	// The first variant becomes default regardless of the flag.
	first, err := p.AddVariant("VAR-1", decimal.Zero, 0, false, true, true)
	require.NoError(t, err)
	assert.True(t, first.IsDefault)

	second, err := p.AddVariant("VAR-2", decimal.Zero, 0, true, true, true)
	require.NoError(t, err)
	assert.True(t, second.IsDefault)
	assert.False(t, first.IsDefault)
	assert.Same(t, second, p.DefaultVariant())

	require.NoError(t, p.SetDefaultVariant(first.ID))
	assert.True(t, first.IsDefault)
	assert.False(t, second.IsDefault)
}

func TestAddVariantSKUCollisions(t *testing.T) {
	p := newDraftProduct(t)
	_, err := p.AddVariant("VAR-1", decimal.Zero, 0, false, true, true)
	require.NoError(t, err)

	_, err = p.AddVariant("VAR-1", decimal.Zero, 0, false, true, true)
	assert.Contains(t, errCodes(t, err), "duplicate_sku")

	_, err = p.AddVariant("SKU-MAIN", decimal.Zero, 0, false, true, true)
	assert.Contains(t, errCodes(t, err), "duplicate_sku")
}

func TestAddVariantPriceOffsetBounds(t *testing.T) {
	p := newDraftProduct(t)

	_, err := p.AddVariant("VAR-1", decimal.NewFromInt(10001), 0, false, true, true)
	assert.Contains(t, errCodes(t, err), "invalid_price_offset")

	// Base price 100, offset -150 would make the total negative.
	_, err = p.AddVariant("VAR-1", decimal.NewFromInt(-150), 0, false, true, true)
	assert.Contains(t, errCodes(t, err), "negative_variant_price")
}

func TestRemoveVariantDefaultGuard(t *testing.T) {
	p := newDraftProduct(t)
	first, err := p.AddVariant("VAR-1", decimal.Zero, 0, false, true, true)
	require.NoError(t, err)
	second, err := p.AddVariant("VAR-2", decimal.Zero, 0, false, true, true)
	require.NoError(t, err)

	err = p.RemoveVariant(first.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))

	require.NoError(t, p.RemoveVariant(second.ID))
	// The sole remaining variant can go even though it is the default.
	require.NoError(t, p.RemoveVariant(first.ID))
	assert.Empty(t, p.Variants)

	variantIDs, _ := p.DrainRemovals()
	assert.ElementsMatch(t, []string{first.ID, second.ID}, variantIDs)
}

func TestRemoveVariantCascadesVariantImages(t *testing.T) {
	p := newDraftProduct(t)
	v, err := p.AddVariant("VAR-1", decimal.Zero, 0, false, true, true)
	require.NoError(t, err)
	_, err = p.AddImage(ImageDescriptor{Type: ImageTypeDefault, URL: "https://cdn.example.com/a.jpg"}, nil, true)
	require.NoError(t, err)
	scoped, err := p.AddImage(ImageDescriptor{Type: ImageTypeGallery, URL: "https://cdn.example.com/b.jpg"}, &v.ID, false)
	require.NoError(t, err)

	require.NoError(t, p.RemoveVariant(v.ID))
	assert.Len(t, p.Images, 1)

	_, imageIDs := p.DrainRemovals()
	assert.Equal(t, []string{scoped.ID}, imageIDs)
}

func TestUpdateBasePriceRevalidatesVariantTotals(t *testing.T) {
	p := newDraftProduct(t)
	_, err := p.AddVariant("VAR-1", decimal.NewFromInt(-60), 0, false, true, true)
	require.NoError(t, err)

	// 100 -> 50 would leave the variant total at -10.
	newBase := decimal.NewFromInt(50)
	err = p.Update(UpdateProductFields{BasePrice: &newBase})
	assert.Contains(t, errCodes(t, err), "negative_variant_price")
	assert.True(t, p.BasePrice.Equal(decimal.NewFromInt(100)))

	okBase := decimal.NewFromInt(70)
	require.NoError(t, p.Update(UpdateProductFields{BasePrice: &okBase}))
	assert.True(t, p.BasePrice.Equal(okBase))
}

func TestUpdateRejectsSKUCollidingWithOwnVariant(t *testing.T) {
	p := newDraftProduct(t)
	_, err := p.AddVariant("VAR-CUSTOM", decimal.Zero, 0, false, true, true)
	require.NoError(t, err)

	sku := "VAR-CUSTOM"
	err = p.Update(UpdateProductFields{SKU: &sku})
	assert.Contains(t, errCodes(t, err), "duplicate_sku")
	assert.Equal(t, "SKU-MAIN", p.SKU)
}

func TestUpdateLeavesUntouchedFieldsAlone(t *testing.T) {
	p := newDraftProduct(t)
	name := "Renamed Product"
	require.NoError(t, p.Update(UpdateProductFields{Name: &name}))
	assert.Equal(t, "Renamed Product", p.Name)
	assert.Equal(t, "SKU-MAIN", p.SKU)
	assert.Equal(t, TaxClassStandard, p.TaxClass)
}

func TestRenameVariantSKU(t *testing.T) {
	p := newDraftProduct(t)
	v, err := p.AddVariant("VAR-1", decimal.Zero, 0, false, true, true)
	require.NoError(t, err)
	_, err = p.AddVariant("VAR-2", decimal.Zero, 0, false, true, true)
	require.NoError(t, err)

	require.NoError(t, p.RenameVariantSKU(v.ID, "VAR-NEW"))
	assert.Equal(t, "VAR-NEW", v.SKU)

	err = p.RenameVariantSKU(v.ID, "VAR-2")
	assert.Contains(t, errCodes(t, err), "duplicate_sku")
	err = p.RenameVariantSKU(v.ID, "SKU-MAIN")
	assert.Contains(t, errCodes(t, err), "duplicate_sku")
}

func TestAddImageRules(t *testing.T) {
	p := newDraftProduct(t)

	first, err := p.AddImage(ImageDescriptor{Type: ImageTypeGallery, URL: "https://cdn.example.com/a.jpg"}, nil, false)
	require.NoError(t, err)
	assert.True(t, first.IsDefault, "first image is always the default")

	_, err = p.AddImage(ImageDescriptor{Type: ImageTypeGallery, URL: "https://cdn.example.com/a.jpg"}, nil, false)
	assert.Contains(t, errCodes(t, err), "duplicate_image_url")

	unknown := "not-a-variant"
	_, err = p.AddImage(ImageDescriptor{Type: ImageTypeGallery, URL: "https://cdn.example.com/b.jpg"}, &unknown, false)
	assert.Contains(t, errCodes(t, err), "variant_not_found")

	second, err := p.AddImage(ImageDescriptor{Type: ImageTypeDefault, URL: "https://cdn.example.com/c.jpg"}, nil, true)
	require.NoError(t, err)
	assert.True(t, second.IsDefault)
	assert.False(t, p.Images[0].IsDefault)

	err = p.RemoveImage(second.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindConflict), "default image cannot be removed while others exist")
}

func TestAddImageReturnsDetachedCopy(t *testing.T) {
	p := newDraftProduct(t)
	first, err := p.AddImage(ImageDescriptor{Type: ImageTypeDefault, URL: "https://cdn.example.com/0.jpg"}, nil, true)
	require.NoError(t, err)

	// Grow the image slice well past its initial capacity; the returned
	// copy must not alias the backing array.
	for _, url := range []string{
		"https://cdn.example.com/1.jpg",
		"https://cdn.example.com/2.jpg",
		"https://cdn.example.com/3.jpg",
		"https://cdn.example.com/4.jpg",
	} {
		_, err := p.AddImage(ImageDescriptor{Type: ImageTypeGallery, URL: url}, nil, false)
		require.NoError(t, err)
	}

	assert.Equal(t, first.ID, p.Images[0].ID)
	assert.Equal(t, "https://cdn.example.com/0.jpg", first.URL)
}

func TestChangeStatusTransitions(t *testing.T) {
	p := newReadyProduct(t)

	err := p.ChangeStatus(StatusDraft)
	assert.True(t, apperror.IsKind(err, apperror.KindConflict), "same-status transition is rejected")

	err = p.ChangeStatus(StatusDiscontinued)
	assert.True(t, apperror.IsKind(err, apperror.KindConflict), "draft cannot be discontinued")

	require.NoError(t, p.ChangeStatus(StatusActive))
	require.NoError(t, p.ChangeStatus(StatusInactive))
	require.NoError(t, p.ChangeStatus(StatusActive))
	require.NoError(t, p.ChangeStatus(StatusDiscontinued))

	err = p.ChangeStatus(StatusActive)
	assert.True(t, apperror.IsKind(err, apperror.KindConflict), "discontinued is terminal")

	events := p.DrainEvents()
	var statusEvents int
	for _, ev := range events {
		if ev.Name == "product.status_changed" {
			statusEvents++
		}
	}
	assert.Equal(t, 4, statusEvents)
}

func TestActivationPreconditionsAccumulate(t *testing.T) {
	p := newDraftProduct(t)
	err := p.ChangeStatus(StatusActive)
	assert.ElementsMatch(t, []string{"activation_no_variants", "activation_no_images"}, errCodes(t, err))
	assert.Equal(t, StatusDraft, p.Status)
}

func TestActivationPreconditions(t *testing.T) {
	t.Run("variant without stock", func(t *testing.T) {
		p := newReadyProduct(t)
		_, err := p.Variants[0].AdjustStock(10, MovementSale, nil, nil)
		require.NoError(t, err)
		err = p.ChangeStatus(StatusActive)
		assert.Contains(t, errCodes(t, err), "activation_out_of_stock")
	})

	t.Run("no active variant", func(t *testing.T) {
		p := newReadyProduct(t)
		p.Variants[0].SetAvailability(false)
		err := p.ChangeStatus(StatusActive)
		assert.Contains(t, errCodes(t, err), "activation_no_active_variant")
	})

	t.Run("no default variant", func(t *testing.T) {
		p := newReadyProduct(t)
		p.Variants[0].UnsetDefault()
		err := p.ChangeStatus(StatusActive)
		assert.Contains(t, errCodes(t, err), "activation_default_variant")
	})

	t.Run("default image of wrong type", func(t *testing.T) {
		p := newReadyProduct(t)
		p.Images[0].Type = ImageTypeGallery
		err := p.ChangeStatus(StatusActive)
		assert.Contains(t, errCodes(t, err), "activation_default_image_type")
	})

	t.Run("no default image", func(t *testing.T) {
		p := newReadyProduct(t)
		p.Images[0].IsDefault = false
		err := p.ChangeStatus(StatusActive)
		assert.Contains(t, errCodes(t, err), "activation_default_image")
	})
}

func TestCategoryAndCollectionLinks(t *testing.T) {
	p := newDraftProduct(t)

	require.NoError(t, p.AddCategory("cat-1"))
	err := p.AddCategory("cat-1")
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))

	require.NoError(t, p.AddCollection("coll-1"))
	require.NoError(t, p.AddCollection("coll-2"))
	assert.Equal(t, []string{"coll-1", "coll-2"}, p.CollectionIDs())

	require.NoError(t, p.RemoveCollection("coll-1"))
	err = p.RemoveCollection("coll-1")
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestClearImagesBypassesDefaultGuard(t *testing.T) {
	p := newDraftProduct(t)
	a, err := p.AddImage(ImageDescriptor{Type: ImageTypeDefault, URL: "https://cdn.example.com/a.jpg"}, nil, true)
	require.NoError(t, err)
	b, err := p.AddImage(ImageDescriptor{Type: ImageTypeGallery, URL: "https://cdn.example.com/b.jpg"}, nil, false)
	require.NoError(t, err)

	p.ClearImages()
	assert.Empty(t, p.Images)
	_, imageIDs := p.DrainRemovals()
	assert.ElementsMatch(t, []string{a.ID, b.ID}, imageIDs)
}
