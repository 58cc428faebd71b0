package usecase

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-catalog-service/internal/apperror"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/product"
	"github.com/fekuna/omnipos-catalog-service/internal/product/dto"
)

type mockProductRepo struct{ mock.Mock }

func (m *mockProductRepo) FindGraphByID(ctx context.Context, id string) (*model.Product, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*model.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductRepo) SaveGraph(ctx context.Context, p *model.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProductRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockProductRepo) IsSKUUnique(ctx context.Context, sku, excludeProductID string) (bool, error) {
	args := m.Called(ctx, sku, excludeProductID)
	return args.Bool(0), args.Error(1)
}

type mockGroupRepo struct{ mock.Mock }

func (m *mockGroupRepo) FindByID(ctx context.Context, id string) (*model.AttributeGroup, error) {
	args := m.Called(ctx, id)
	if g := args.Get(0); g != nil {
		return g.(*model.AttributeGroup), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockCategoryRepo struct{ mock.Mock }

func (m *mockCategoryRepo) FindByID(ctx context.Context, id string) (*model.Category, error) {
	args := m.Called(ctx, id)
	if c := args.Get(0); c != nil {
		return c.(*model.Category), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockCollectionRepo struct{ mock.Mock }

func (m *mockCollectionRepo) FindIDsIn(ctx context.Context, ids []string) ([]string, error) {
	args := m.Called(ctx, ids)
	if found := args.Get(0); found != nil {
		return found.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

type fixture struct {
	repo        *mockProductRepo
	groups      *mockGroupRepo
	categories  *mockCategoryRepo
	collections *mockCollectionRepo
	uc          product.UseCase
}

func newFixture() *fixture {
	f := &fixture{
		repo:        &mockProductRepo{},
		groups:      &mockGroupRepo{},
		categories:  &mockCategoryRepo{},
		collections: &mockCollectionRepo{},
	}
	f.uc = NewProductUseCase(f.repo, f.groups, f.categories, f.collections, nil, nil, logger.NewNop())
	return f
}

func emptyGroup(t *testing.T) *model.AttributeGroup {
	t.Helper()
	g, err := model.NewAttributeGroup("General")
	require.NoError(t, err)
	return g
}

func createInput() *dto.CreateProductInput {
	return &dto.CreateProductInput{
		Name:              "Test Product",
		SKU:               "SKU-MAIN",
		BasePrice:         decimal.NewFromInt(100),
		Weight:            decimal.NewFromInt(1),
		GroupID:           "group-1",
		TaxClass:          string(model.TaxClassStandard),
		StockQuantity:     10,
		LowStockThreshold: 3,
	}
}

func errCodes(t *testing.T, err error) []string {
	t.Helper()
	require.Error(t, err)
	list := apperror.AsList(err)
	codes := make([]string, 0, len(list.Items))
	for _, item := range list.Items {
		codes = append(codes, item.Code)
	}
	return codes
}

func TestCreateProductHappyPath(t *testing.T) {
	f := newFixture()
	f.repo.On("IsSKUUnique", mock.Anything, "SKU-MAIN", "").Return(true, nil)
	f.groups.On("FindByID", mock.Anything, "group-1").Return(emptyGroup(t), nil)
	f.repo.On("SaveGraph", mock.Anything, mock.AnythingOfType("*model.Product")).Return(nil)

	p, err := f.uc.CreateProduct(context.Background(), createInput())
	require.NoError(t, err)

	assert.Equal(t, model.StatusDraft, p.Status)
	require.Len(t, p.Variants, 1)
	v := p.Variants[0]
	assert.Equal(t, "SKU-MAIN-default", v.SKU, "variant sku is derived when not supplied")
	assert.True(t, v.IsDefault)
	assert.True(t, v.IsActive)
	assert.Equal(t, 10, v.StockQuantity)
	assert.Equal(t, model.StockStatusInStock, v.StockStatus)
	assert.Empty(t, p.Events(), "events are drained after a successful save")
	f.repo.AssertExpectations(t)
}

func TestCreateProductSalePriceExceedsBase(t *testing.T) {
	f := newFixture()
	input := createInput()
	sale := decimal.NewFromInt(150)
	input.SalePrice = &sale

	_, err := f.uc.CreateProduct(context.Background(), input)
	assert.Equal(t, []string{"sale_price_exceeds_base"}, errCodes(t, err))
	f.repo.AssertNotCalled(t, "SaveGraph", mock.Anything, mock.Anything)
}

func TestCreateProductDuplicateSKU(t *testing.T) {
	f := newFixture()
	f.repo.On("IsSKUUnique", mock.Anything, "SKU-MAIN", "").Return(false, nil)

	_, err := f.uc.CreateProduct(context.Background(), createInput())
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))
	f.repo.AssertNotCalled(t, "SaveGraph", mock.Anything, mock.Anything)
}

func TestCreateProductGroupNotFound(t *testing.T) {
	f := newFixture()
	f.repo.On("IsSKUUnique", mock.Anything, "SKU-MAIN", "").Return(true, nil)
	f.groups.On("FindByID", mock.Anything, "group-1").Return(nil, nil)

	_, err := f.uc.CreateProduct(context.Background(), createInput())
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestCreateProductMissingCollections(t *testing.T) {
	f := newFixture()
	f.repo.On("IsSKUUnique", mock.Anything, "SKU-MAIN", "").Return(true, nil)
	f.groups.On("FindByID", mock.Anything, "group-1").Return(emptyGroup(t), nil)
	f.collections.On("FindIDsIn", mock.Anything, []string{"coll-1", "coll-2"}).Return([]string{"coll-1"}, nil)

	input := createInput()
	input.CollectionIDs = []string{"coll-1", "coll-2"}

	_, err := f.uc.CreateProduct(context.Background(), input)
	assert.Equal(t, []string{"collection_not_found"}, errCodes(t, err))
	f.repo.AssertNotCalled(t, "SaveGraph", mock.Anything, mock.Anything)
}

func TestCreateProductCategoryNotFound(t *testing.T) {
	f := newFixture()
	f.repo.On("IsSKUUnique", mock.Anything, "SKU-MAIN", "").Return(true, nil)
	f.groups.On("FindByID", mock.Anything, "group-1").Return(emptyGroup(t), nil)
	f.categories.On("FindByID", mock.Anything, "cat-1").Return(nil, nil)

	input := createInput()
	input.CategoryID = "cat-1"

	_, err := f.uc.CreateProduct(context.Background(), input)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestCreateProductMultipleDefaultImages(t *testing.T) {
	f := newFixture()
	f.repo.On("IsSKUUnique", mock.Anything, "SKU-MAIN", "").Return(true, nil)
	f.groups.On("FindByID", mock.Anything, "group-1").Return(emptyGroup(t), nil)

	input := createInput()
	input.Images = []dto.ImageInput{
		{ImageType: string(model.ImageTypeDefault), URL: "https://cdn.example.com/a.jpg", IsDefault: true},
		{ImageType: string(model.ImageTypeGallery), URL: "https://cdn.example.com/b.jpg", IsDefault: true},
	}

	_, err := f.uc.CreateProduct(context.Background(), input)
	assert.Equal(t, []string{"multiple_default_images"}, errCodes(t, err))
}

func TestCreateProductPromotesFirstImage(t *testing.T) {
	f := newFixture()
	f.repo.On("IsSKUUnique", mock.Anything, "SKU-MAIN", "").Return(true, nil)
	f.groups.On("FindByID", mock.Anything, "group-1").Return(emptyGroup(t), nil)
	f.repo.On("SaveGraph", mock.Anything, mock.Anything).Return(nil)

	input := createInput()
	input.Images = []dto.ImageInput{
		{ImageType: string(model.ImageTypeDefault), URL: "https://cdn.example.com/a.jpg"},
		{ImageType: string(model.ImageTypeGallery), URL: "https://cdn.example.com/b.jpg"},
	}

	p, err := f.uc.CreateProduct(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, p.Images, 2)
	assert.True(t, p.Images[0].IsDefault)
	assert.False(t, p.Images[1].IsDefault)
}

// storedProduct builds a persisted-looking aggregate for update tests.
func storedProduct(t *testing.T) *model.Product {
	t.Helper()
	p, err := model.NewProduct("Stored Product", "SKU-MAIN", decimal.NewFromInt(100), decimal.NewFromInt(1), "group-1", model.TaxClassStandard, "")
	require.NoError(t, err)
	v, err := p.AddVariant("SKU-MAIN-default", decimal.Zero, 3, true, true, true)
	require.NoError(t, err)
	_, err = v.AdjustStock(10, model.MovementInitial, nil, nil)
	require.NoError(t, err)
	p.DrainEvents()
	v.Movements = nil
	return p
}

func TestUpdateProductNotFound(t *testing.T) {
	f := newFixture()
	f.repo.On("FindGraphByID", mock.Anything, "missing").Return(nil, nil)

	_, err := f.uc.UpdateProduct(context.Background(), &dto.UpdateProductInput{ID: "missing"})
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestUpdateProductStockReconciliation(t *testing.T) {
	f := newFixture()
	p := storedProduct(t)
	f.repo.On("FindGraphByID", mock.Anything, p.ID).Return(p, nil)
	f.groups.On("FindByID", mock.Anything, "group-1").Return(emptyGroup(t), nil)
	f.repo.On("SaveGraph", mock.Anything, p).Return(nil)

	target := 4
	updated, err := f.uc.UpdateProduct(context.Background(), &dto.UpdateProductInput{
		ID:            p.ID,
		StockQuantity: &target,
	})
	require.NoError(t, err)

	v := updated.DefaultVariant()
	assert.Equal(t, 4, v.StockQuantity)
	assert.Equal(t, model.StockStatusInStock, v.StockStatus, "quantity 4 stays above the threshold of 3")
	f.repo.AssertExpectations(t)
}

func TestUpdateProductRenamesDerivedVariantSKU(t *testing.T) {
	f := newFixture()
	p := storedProduct(t)
	f.repo.On("FindGraphByID", mock.Anything, p.ID).Return(p, nil)
	f.repo.On("IsSKUUnique", mock.Anything, "SKU-NEW", p.ID).Return(true, nil)
	f.groups.On("FindByID", mock.Anything, "group-1").Return(emptyGroup(t), nil)
	f.repo.On("SaveGraph", mock.Anything, p).Return(nil)

	sku := "SKU-NEW"
	updated, err := f.uc.UpdateProduct(context.Background(), &dto.UpdateProductInput{
		ID:  p.ID,
		SKU: &sku,
	})
	require.NoError(t, err)
	assert.Equal(t, "SKU-NEW", updated.SKU)
	assert.Equal(t, "SKU-NEW-default", updated.DefaultVariant().SKU,
		"derived variant sku follows the product sku")
}

func TestUpdateProductSalePriceCheckedAgainstEffectiveBase(t *testing.T) {
	f := newFixture()
	p := storedProduct(t)
	f.repo.On("FindGraphByID", mock.Anything, p.ID).Return(p, nil)

	sale := decimal.NewFromInt(120)
	_, err := f.uc.UpdateProduct(context.Background(), &dto.UpdateProductInput{
		ID:        p.ID,
		SalePrice: &sale,
	})
	assert.Equal(t, []string{"sale_price_exceeds_base"}, errCodes(t, err))
}

func TestUpdateProductReconcilesCollections(t *testing.T) {
	f := newFixture()
	p := storedProduct(t)
	require.NoError(t, p.AddCollection("coll-1"))
	require.NoError(t, p.AddCollection("coll-2"))
	p.DrainEvents()

	f.repo.On("FindGraphByID", mock.Anything, p.ID).Return(p, nil)
	f.groups.On("FindByID", mock.Anything, "group-1").Return(emptyGroup(t), nil)
	f.collections.On("FindIDsIn", mock.Anything, []string{"coll-3"}).Return([]string{"coll-3"}, nil)
	f.repo.On("SaveGraph", mock.Anything, p).Return(nil)

	updated, err := f.uc.UpdateProduct(context.Background(), &dto.UpdateProductInput{
		ID:            p.ID,
		CollectionIDs: []string{"coll-2", "coll-3"},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"coll-2", "coll-3"}, updated.CollectionIDs())
}

func TestGetProduct(t *testing.T) {
	f := newFixture()
	p := storedProduct(t)
	f.repo.On("FindGraphByID", mock.Anything, p.ID).Return(p, nil)

	got, err := f.uc.GetProduct(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	f.repo.On("FindGraphByID", mock.Anything, "missing").Return(nil, nil)
	_, err = f.uc.GetProduct(context.Background(), "missing")
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestDeleteProduct(t *testing.T) {
	f := newFixture()
	p := storedProduct(t)
	f.repo.On("FindGraphByID", mock.Anything, p.ID).Return(p, nil)
	f.repo.On("Delete", mock.Anything, p.ID).Return(nil)

	require.NoError(t, f.uc.DeleteProduct(context.Background(), p.ID))
	f.repo.AssertExpectations(t)

	// Deleting something already gone is a no-op.
	f.repo.On("FindGraphByID", mock.Anything, "missing").Return(nil, nil)
	require.NoError(t, f.uc.DeleteProduct(context.Background(), "missing"))
	f.repo.AssertNotCalled(t, "Delete", mock.Anything, "missing")
}

func TestChangeStatusPersistsTransition(t *testing.T) {
	f := newFixture()
	p := storedProduct(t)
	_, err := p.AddImage(model.ImageDescriptor{Type: model.ImageTypeDefault, URL: "https://cdn.example.com/a.jpg"}, nil, true)
	require.NoError(t, err)
	p.DrainEvents()

	f.repo.On("FindGraphByID", mock.Anything, p.ID).Return(p, nil)
	f.repo.On("SaveGraph", mock.Anything, p).Return(nil)

	updated, err := f.uc.ChangeStatus(context.Background(), p.ID, model.StatusActive)
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, updated.Status)
	f.repo.AssertExpectations(t)
}

func TestChangeStatusRejectsUnreadyActivation(t *testing.T) {
	f := newFixture()
	p := storedProduct(t) // no images
	f.repo.On("FindGraphByID", mock.Anything, p.ID).Return(p, nil)

	_, err := f.uc.ChangeStatus(context.Background(), p.ID, model.StatusActive)
	assert.Contains(t, errCodes(t, err), "activation_no_images")
	f.repo.AssertNotCalled(t, "SaveGraph", mock.Anything, mock.Anything)
}
