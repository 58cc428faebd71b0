package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fekuna/omnipos-catalog-service/internal/apperror"
	"github.com/fekuna/omnipos-catalog-service/internal/attributegroup"
	"github.com/fekuna/omnipos-catalog-service/internal/category"
	"github.com/fekuna/omnipos-catalog-service/internal/collection"
	"github.com/fekuna/omnipos-catalog-service/internal/events"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/cache"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/product"
	"github.com/fekuna/omnipos-catalog-service/internal/product/dto"
)

const productCacheTTL = 5 * time.Minute

type productUseCase struct {
	repo        product.Repository
	groups      attributegroup.Repository
	categories  category.Repository
	collections collection.Repository
	cache       *cache.RedisClient
	dispatcher  *events.Dispatcher
	logger      logger.ZapLogger
}

func NewProductUseCase(
	repo product.Repository,
	groups attributegroup.Repository,
	categories category.Repository,
	collections collection.Repository,
	cache *cache.RedisClient,
	dispatcher *events.Dispatcher,
	log logger.ZapLogger,
) product.UseCase {
	return &productUseCase{
		repo:        repo,
		groups:      groups,
		categories:  categories,
		collections: collections,
		cache:       cache,
		dispatcher:  dispatcher,
		logger:      log,
	}
}

func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	if input.SalePrice != nil && input.SalePrice.GreaterThan(input.BasePrice) {
		return nil, apperror.NewList(apperror.NewValidation(
			"sale_price_exceeds_base", "sale price must not exceed base price")).ErrOrNil()
	}
	if input.StockQuantity < 0 {
		return nil, apperror.NewList(apperror.NewValidation(
			"invalid_stock_quantity", "starting stock quantity must not be negative")).ErrOrNil()
	}

	// Fail fast on SKU collisions before touching anything else. The
	// store's unique constraints still backstop concurrent creates.
	if err := uc.checkSKUAvailable(ctx, input.SKU, ""); err != nil {
		return nil, err
	}
	if input.VariantSKU != "" && input.VariantSKU != input.SKU {
		if err := uc.checkSKUAvailable(ctx, input.VariantSKU, ""); err != nil {
			return nil, err
		}
	}

	group, err := uc.groups.FindByID(ctx, input.GroupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, apperror.NewNotFound("group_not_found", fmt.Sprintf("attribute group %s does not exist", input.GroupID))
	}

	descriptions, err := buildDescriptions(input.Descriptions)
	if err != nil {
		return nil, err
	}

	p, err := model.NewProduct(
		input.Name, input.SKU, input.BasePrice, input.Weight,
		input.GroupID, model.TaxClass(input.TaxClass), model.ProductStatus(input.Status),
	)
	if err != nil {
		return nil, err
	}
	p.SalePrice = input.SalePrice
	for i := range descriptions {
		descriptions[i].ProductID = p.ID
		p.Descriptions = append(p.Descriptions, descriptions[i])
	}

	if input.CategoryID != "" {
		cat, err := uc.categories.FindByID(ctx, input.CategoryID)
		if err != nil {
			return nil, err
		}
		if cat == nil {
			return nil, apperror.NewNotFound("category_not_found", fmt.Sprintf("category %s does not exist", input.CategoryID))
		}
		if err := p.AddCategory(cat.ID); err != nil {
			return nil, err
		}
	}
	if len(input.CollectionIDs) > 0 {
		if err := uc.attachCollections(ctx, p, input.CollectionIDs); err != nil {
			return nil, err
		}
	}

	variantSKU := input.VariantSKU
	if variantSKU == "" {
		variantSKU = input.SKU + "-default"
	}
	isActive := input.IsActive == nil || *input.IsActive
	isVisible := input.IsVisible == nil || *input.IsVisible

	variant, err := p.AddVariant(variantSKU, input.PriceOffset, input.LowStockThreshold, true, isActive, isVisible)
	if err != nil {
		return nil, err
	}
	if input.StockQuantity > 0 {
		if _, err := variant.AdjustStock(input.StockQuantity, model.MovementInitial, nil, nil); err != nil {
			return nil, err
		}
	}

	if err := variant.ApplyAttributeValues(group, toAssignments(input.AttributeValues)); err != nil {
		return nil, err
	}

	if err := attachImages(p, input.Images); err != nil {
		return nil, err
	}

	if err := uc.repo.SaveGraph(ctx, p); err != nil {
		return nil, err
	}

	uc.dispatcher.Dispatch(ctx, p.DrainEvents())
	go uc.invalidateProductCache(context.Background(), p.ID)
	go uc.dispatcher.SyncProduct(context.Background(), p)

	return p, nil
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error) {
	p, err := uc.repo.FindGraphByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.NewNotFound("product_not_found", fmt.Sprintf("product %s does not exist", input.ID))
	}

	basePrice := p.BasePrice
	if input.BasePrice != nil {
		basePrice = *input.BasePrice
	}
	salePrice := p.SalePrice
	if input.SalePrice != nil {
		salePrice = input.SalePrice
	}
	if salePrice != nil && salePrice.GreaterThan(basePrice) {
		return nil, apperror.NewList(apperror.NewValidation(
			"sale_price_exceeds_base", "sale price must not exceed base price")).ErrOrNil()
	}

	// Uniqueness checks exclude this product's own SKU and variant SKUs.
	if input.SKU != nil && *input.SKU != p.SKU {
		if err := uc.checkSKUAvailable(ctx, *input.SKU, p.ID); err != nil {
			return nil, err
		}
	}
	defaultVariant := p.DefaultVariant()
	if input.VariantSKU != nil && defaultVariant != nil && *input.VariantSKU != defaultVariant.SKU {
		if err := uc.checkSKUAvailable(ctx, *input.VariantSKU, p.ID); err != nil {
			return nil, err
		}
	}

	// The bound attribute group never changes; load it for value checks.
	group, err := uc.groups.FindByID(ctx, p.GroupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, apperror.NewNotFound("group_not_found", fmt.Sprintf("attribute group %s does not exist", p.GroupID))
	}

	oldSKU := p.SKU
	var taxClass *model.TaxClass
	if input.TaxClass != nil {
		tc := model.TaxClass(*input.TaxClass)
		taxClass = &tc
	}
	if err := p.Update(model.UpdateProductFields{
		Name:      input.Name,
		SKU:       input.SKU,
		BasePrice: input.BasePrice,
		SalePrice: input.SalePrice,
		Weight:    input.Weight,
		TaxClass:  taxClass,
	}); err != nil {
		return nil, err
	}

	if defaultVariant != nil {
		switch {
		case input.VariantSKU != nil:
			if err := p.RenameVariantSKU(defaultVariant.ID, *input.VariantSKU); err != nil {
				return nil, err
			}
		case p.SKU != oldSKU && defaultVariant.SKU == oldSKU+"-default":
			// The default variant kept the derived naming convention, so
			// it follows the product SKU automatically.
			if err := p.RenameVariantSKU(defaultVariant.ID, p.SKU+"-default"); err != nil {
				return nil, err
			}
		}

		if input.PriceOffset != nil {
			if err := p.ChangeVariantPriceOffset(defaultVariant.ID, *input.PriceOffset); err != nil {
				return nil, err
			}
		}
		if input.LowStockThreshold != nil {
			if err := defaultVariant.SetLowStockThreshold(*input.LowStockThreshold); err != nil {
				return nil, err
			}
		}
		if input.IsActive != nil {
			defaultVariant.SetAvailability(*input.IsActive)
		}
		if input.IsVisible != nil {
			defaultVariant.SetVisibility(*input.IsVisible)
		}
		if input.StockQuantity != nil {
			if *input.StockQuantity < 0 {
				return nil, apperror.NewList(apperror.NewValidation(
					"invalid_stock_quantity", "stock quantity must not be negative")).ErrOrNil()
			}
			// Quantity is never overwritten directly: the requested level
			// becomes an Adjustment movement carrying the delta.
			if delta := *input.StockQuantity - defaultVariant.StockQuantity; delta != 0 {
				notes := "stock reconciliation from product update"
				if _, err := defaultVariant.AdjustStock(delta, model.MovementAdjustment, nil, &notes); err != nil {
					return nil, err
				}
			}
		}
		if len(input.AttributeValues) > 0 {
			if err := defaultVariant.ApplyAttributeValues(group, toAssignments(input.AttributeValues)); err != nil {
				return nil, err
			}
		}
	}

	if input.CategoryID != nil {
		current := make([]string, 0, len(p.Categories))
		for i := range p.Categories {
			current = append(current, p.Categories[i].CategoryID)
		}
		for _, id := range current {
			if err := p.RemoveCategory(id); err != nil {
				return nil, err
			}
		}
		if *input.CategoryID != "" {
			cat, err := uc.categories.FindByID(ctx, *input.CategoryID)
			if err != nil {
				return nil, err
			}
			if cat == nil {
				return nil, apperror.NewNotFound("category_not_found", fmt.Sprintf("category %s does not exist", *input.CategoryID))
			}
			if err := p.AddCategory(cat.ID); err != nil {
				return nil, err
			}
		}
	}

	if input.CollectionIDs != nil {
		if err := uc.reconcileCollections(ctx, p, input.CollectionIDs); err != nil {
			return nil, err
		}
	}

	if input.Descriptions != nil {
		descriptions, err := buildDescriptions(input.Descriptions)
		if err != nil {
			return nil, err
		}
		p.ClearDescriptions()
		for i := range descriptions {
			descriptions[i].ProductID = p.ID
			p.Descriptions = append(p.Descriptions, descriptions[i])
		}
	}

	// Images are replaced wholesale on update, unlike attribute values
	// which merge.
	if input.Images != nil {
		p.ClearImages()
		if err := attachImages(p, input.Images); err != nil {
			return nil, err
		}
	}

	if err := uc.repo.SaveGraph(ctx, p); err != nil {
		return nil, err
	}

	uc.dispatcher.Dispatch(ctx, p.DrainEvents())
	go uc.invalidateProductCache(context.Background(), p.ID)
	go uc.dispatcher.SyncProduct(context.Background(), p)

	return p, nil
}

func (uc *productUseCase) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	cacheKey := productCacheKey(id)
	if uc.cache != nil {
		if val, err := uc.cache.Client.Get(ctx, cacheKey).Result(); err == nil {
			var cached model.Product
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	p, err := uc.repo.FindGraphByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.NewNotFound("product_not_found", fmt.Sprintf("product %s does not exist", id))
	}

	if uc.cache != nil {
		if data, err := json.Marshal(p); err == nil {
			uc.cache.Client.Set(ctx, cacheKey, data, productCacheTTL)
		}
	}
	return p, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, id string) error {
	p, err := uc.repo.FindGraphByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return nil // Already deleted
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}

	go uc.invalidateProductCache(context.Background(), id)
	go uc.dispatcher.RemoveProduct(context.Background(), id)
	return nil
}

func (uc *productUseCase) ChangeStatus(ctx context.Context, id string, status model.ProductStatus) (*model.Product, error) {
	p, err := uc.repo.FindGraphByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.NewNotFound("product_not_found", fmt.Sprintf("product %s does not exist", id))
	}

	if err := p.ChangeStatus(status); err != nil {
		return nil, err
	}
	if err := uc.repo.SaveGraph(ctx, p); err != nil {
		return nil, err
	}

	uc.dispatcher.Dispatch(ctx, p.DrainEvents())
	go uc.invalidateProductCache(context.Background(), p.ID)
	go uc.dispatcher.SyncProduct(context.Background(), p)

	return p, nil
}

func (uc *productUseCase) checkSKUAvailable(ctx context.Context, sku, excludeProductID string) error {
	unique, err := uc.repo.IsSKUUnique(ctx, sku, excludeProductID)
	if err != nil {
		return err
	}
	if !unique {
		return apperror.NewConflict("duplicate_sku", fmt.Sprintf("sku %s is already in use by a product or variant", sku))
	}
	return nil
}

// attachCollections verifies that every requested collection exists
// before attaching any of them.
func (uc *productUseCase) attachCollections(ctx context.Context, p *model.Product, ids []string) error {
	ids = dedupe(ids)
	found, err := uc.collections.FindIDsIn(ctx, ids)
	if err != nil {
		return err
	}
	if missing := difference(ids, found); len(missing) > 0 {
		errs := apperror.NewList()
		for _, id := range missing {
			errs.Add(apperror.NewNotFound("collection_not_found", fmt.Sprintf("collection %s does not exist", id)))
		}
		return errs.ErrOrNil()
	}
	for _, id := range ids {
		if err := p.AddCollection(id); err != nil {
			// Existence was just verified; anything failing here is a
			// race, not bad input.
			return apperror.NewFailure("collection_attach_failed", fmt.Sprintf("failed to attach collection %s", id), err)
		}
	}
	return nil
}

func (uc *productUseCase) reconcileCollections(ctx context.Context, p *model.Product, requested []string) error {
	requested = dedupe(requested)
	current := p.CollectionIDs()

	toAdd := difference(requested, current)
	if len(toAdd) > 0 {
		found, err := uc.collections.FindIDsIn(ctx, toAdd)
		if err != nil {
			return err
		}
		if missing := difference(toAdd, found); len(missing) > 0 {
			errs := apperror.NewList()
			for _, id := range missing {
				errs.Add(apperror.NewNotFound("collection_not_found", fmt.Sprintf("collection %s does not exist", id)))
			}
			return errs.ErrOrNil()
		}
	}

	for _, id := range difference(current, requested) {
		if err := p.RemoveCollection(id); err != nil {
			return err
		}
	}
	for _, id := range toAdd {
		if err := p.AddCollection(id); err != nil {
			return apperror.NewFailure("collection_attach_failed", fmt.Sprintf("failed to attach collection %s", id), err)
		}
	}
	return nil
}

func (uc *productUseCase) invalidateProductCache(ctx context.Context, productID string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Client.Del(ctx, productCacheKey(productID)).Err(); err != nil {
		uc.logger.Warn("failed to invalidate product cache", zap.String("product_id", productID), zap.Error(err))
	}
}

func productCacheKey(id string) string {
	return "catalog:product:" + id
}

// buildDescriptions validates every block independently and reports all
// violations together.
func buildDescriptions(inputs []dto.DescriptionInput) ([]model.ProductDescription, error) {
	errs := apperror.NewList()
	descriptions := make([]model.ProductDescription, 0, len(inputs))
	for _, in := range inputs {
		desc, err := model.NewProductDescription(model.DescriptionType(in.Type), in.Value)
		if err != nil {
			errs.Add(apperror.AsList(err).Items...)
			continue
		}
		descriptions = append(descriptions, *desc)
	}
	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}
	return descriptions, nil
}

// attachImages enforces the default-image rules of the create contract:
// more than one marked default fails, none marked promotes the first.
func attachImages(p *model.Product, inputs []dto.ImageInput) error {
	if len(inputs) == 0 {
		return nil
	}

	defaults := 0
	for _, in := range inputs {
		if in.IsDefault {
			defaults++
		}
	}
	if defaults > 1 {
		return apperror.NewList(apperror.NewValidation(
			"multiple_default_images", "at most one image may be marked default")).ErrOrNil()
	}

	errs := apperror.NewList()
	for i, in := range inputs {
		isDefault := in.IsDefault
		if defaults == 0 && i == 0 {
			isDefault = true
		}
		if _, err := p.AddImage(model.ImageDescriptor{
			Type: model.ImageType(in.ImageType),
			Alt:  in.Alt,
			URL:  in.URL,
		}, nil, isDefault); err != nil {
			errs.Add(apperror.AsList(err).Items...)
		}
	}
	return errs.ErrOrNil()
}

func toAssignments(inputs []dto.AttributeValueInput) []model.AttributeAssignment {
	assignments := make([]model.AttributeAssignment, 0, len(inputs))
	for _, in := range inputs {
		assignments = append(assignments, model.AttributeAssignment{
			AttributeID: in.AttributeID,
			Kind:        model.AttributeKind(in.AttributeType),
			OptionID:    in.AttributeOptionID,
			Value:       in.Value,
		})
	}
	return assignments
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// difference returns the elements of a that are not in b.
func difference(a, b []string) []string {
	inB := make(map[string]struct{}, len(b))
	for _, id := range b {
		inB[id] = struct{}{}
	}
	var out []string
	for _, id := range a {
		if _, ok := inB[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
