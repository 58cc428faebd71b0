package model

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fekuna/omnipos-catalog-service/internal/apperror"
)

type ProductStatus string

const (
	StatusDraft        ProductStatus = "Draft"
	StatusActive       ProductStatus = "Active"
	StatusInactive     ProductStatus = "Inactive"
	StatusDiscontinued ProductStatus = "Discontinued"
)

func (s ProductStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusInactive, StatusDiscontinued:
		return true
	}
	return false
}

type TaxClass string

const (
	TaxClassStandard TaxClass = "Standard"
	TaxClassReduced  TaxClass = "Reduced"
	TaxClassZero     TaxClass = "Zero"
	TaxClassExempt   TaxClass = "Exempt"
)

func (t TaxClass) Valid() bool {
	switch t {
	case TaxClassStandard, TaxClassReduced, TaxClassZero, TaxClassExempt:
		return true
	}
	return false
}

type ImageType string

const (
	ImageTypeDefault   ImageType = "Default"
	ImageTypeThumbnail ImageType = "Thumbnail"
	ImageTypeGallery   ImageType = "Gallery"
)

func (t ImageType) Valid() bool {
	switch t {
	case ImageTypeDefault, ImageTypeThumbnail, ImageTypeGallery:
		return true
	}
	return false
}

// ImageDescriptor is the embedded media descriptor of a product image.
type ImageDescriptor struct {
	Type      ImageType `db:"image_type" json:"image_type"`
	Alt       string    `db:"alt" json:"alt"`
	URL       string    `db:"url" json:"url"`
	MimeType  *string   `db:"mime_type" json:"mime_type,omitempty"`
	Width     *int      `db:"width" json:"width,omitempty"`
	Height    *int      `db:"height" json:"height,omitempty"`
	SizeBytes *int64    `db:"size_bytes" json:"size_bytes,omitempty"`
}

// ProductImage belongs to a product; a nil VariantID means product-level.
type ProductImage struct {
	Auditable
	ProductID       string  `db:"product_id" json:"product_id"`
	VariantID       *string `db:"variant_id" json:"variant_id,omitempty"`
	ImageDescriptor `json:"descriptor"`
	IsDefault       bool `db:"is_default" json:"is_default"`
}

type ProductCategory struct {
	Auditable
	ProductID  string `db:"product_id" json:"product_id"`
	CategoryID string `db:"category_id" json:"category_id"`
}

type ProductCollection struct {
	Auditable
	ProductID    string `db:"product_id" json:"product_id"`
	CollectionID string `db:"collection_id" json:"collection_id"`
}

type DescriptionType string

const (
	DescriptionShort          DescriptionType = "Short"
	DescriptionLong           DescriptionType = "Long"
	DescriptionFeatures       DescriptionType = "Features"
	DescriptionSpecifications DescriptionType = "Specifications"
)

func (t DescriptionType) Valid() bool {
	switch t {
	case DescriptionShort, DescriptionLong, DescriptionFeatures, DescriptionSpecifications:
		return true
	}
	return false
}

type ProductDescription struct {
	Auditable
	ProductID string          `db:"product_id" json:"product_id"`
	Type      DescriptionType `db:"description_type" json:"description_type"`
	Value     string          `db:"value" json:"value"`
}

func NewProductDescription(descriptionType DescriptionType, value string) (*ProductDescription, error) {
	errs := apperror.NewList()
	if !descriptionType.Valid() {
		errs.Add(apperror.NewValidation("invalid_description_type", fmt.Sprintf("unknown description type %q", descriptionType)))
	}
	if value == "" {
		errs.Add(apperror.NewValidation("invalid_description_value", "description value must not be empty"))
	}
	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}
	return &ProductDescription{
		Auditable: NewAuditable(),
		Type:      descriptionType,
		Value:     value,
	}, nil
}

// Product is the aggregate root: the sole mutation surface for product
// identity, categorization, variant set, image set and lifecycle status.
type Product struct {
	Auditable
	EventRecorder `db:"-" json:"-"`
	Name          string               `db:"name" json:"name"`
	SKU           string               `db:"sku" json:"sku"`
	BasePrice     decimal.Decimal      `db:"base_price" json:"base_price"`
	SalePrice     *decimal.Decimal     `db:"sale_price" json:"sale_price,omitempty"`
	Weight        decimal.Decimal      `db:"weight" json:"weight"`
	TaxClass      TaxClass             `db:"tax_class" json:"tax_class"`
	Status        ProductStatus        `db:"status" json:"status"`
	GroupID       string               `db:"group_id" json:"group_id"`
	Categories    []ProductCategory    `db:"-" json:"categories,omitempty"`
	Collections   []ProductCollection  `db:"-" json:"collections,omitempty"`
	Descriptions  []ProductDescription `db:"-" json:"descriptions,omitempty"`
	Variants      []*ProductVariant    `db:"-" json:"variants,omitempty"`
	Images        []ProductImage       `db:"-" json:"images,omitempty"`

	removedVariantIDs []string
	removedImageIDs   []string
}

// NewProduct validates all scalar fields and seeds the status at Draft
// when none is given. All field violations are reported together.
func NewProduct(name, sku string, basePrice, weight decimal.Decimal, groupID string, taxClass TaxClass, status ProductStatus) (*Product, error) {
	errs := apperror.NewList()
	if len(name) < 3 || len(name) > 100 {
		errs.Add(apperror.NewValidation("invalid_product_name", "product name must be between 3 and 100 characters"))
	}
	errs.Add(validateSKU(sku)...)
	if basePrice.IsNegative() {
		errs.Add(apperror.NewValidation("invalid_base_price", "base price must not be negative"))
	}
	if weight.IsNegative() {
		errs.Add(apperror.NewValidation("invalid_weight", "weight must not be negative"))
	}
	if groupID == "" {
		errs.Add(apperror.NewValidation("invalid_group", "attribute group id is required"))
	}
	if !taxClass.Valid() {
		errs.Add(apperror.NewValidation("invalid_tax_class", fmt.Sprintf("unknown tax class %q", taxClass)))
	}
	if status == "" {
		status = StatusDraft
	} else if !status.Valid() {
		errs.Add(apperror.NewValidation("invalid_status", fmt.Sprintf("unknown product status %q", status)))
	}
	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}

	p := &Product{
		Auditable: NewAuditable(),
		Name:      name,
		SKU:       sku,
		BasePrice: basePrice,
		Weight:    weight,
		TaxClass:  taxClass,
		Status:    status,
		GroupID:   groupID,
	}
	p.Record("product.created", p.ID, ProductCreated{ProductID: p.ID, SKU: p.SKU, Name: p.Name})
	return p, nil
}

func validateSKU(sku string) []*apperror.Error {
	if len(sku) < 3 || len(sku) > 50 {
		return []*apperror.Error{apperror.NewValidation("invalid_sku", "sku must be between 3 and 50 characters")}
	}
	if !codeRe.MatchString(sku) {
		return []*apperror.Error{apperror.NewValidation("invalid_sku", "sku may only contain letters, digits, '-' and '_'")}
	}
	return nil
}

// UpdateProductFields carries the scalar mutations of an update; nil
// fields are left untouched. The attribute group is deliberately absent:
// group reassignment is not permitted.
type UpdateProductFields struct {
	Name      *string
	SKU       *string
	BasePrice *decimal.Decimal
	SalePrice *decimal.Decimal
	Weight    *decimal.Decimal
	TaxClass  *TaxClass
}

// Update mutates only the supplied fields. A base price change re-checks
// that every existing variant's total price stays non-negative and fails
// the whole update otherwise.
func (p *Product) Update(fields UpdateProductFields) error {
	errs := apperror.NewList()
	if fields.Name != nil && (len(*fields.Name) < 3 || len(*fields.Name) > 100) {
		errs.Add(apperror.NewValidation("invalid_product_name", "product name must be between 3 and 100 characters"))
	}
	if fields.SKU != nil {
		errs.Add(validateSKU(*fields.SKU)...)
		// The catalog-wide uniqueness check upstream excludes this
		// product's own variants, so the aggregate guards that side.
		for _, v := range p.Variants {
			if v.SKU == *fields.SKU {
				errs.Add(apperror.NewConflict("duplicate_sku", fmt.Sprintf(
					"product sku %s collides with variant sku %s", *fields.SKU, v.SKU,
				)))
				break
			}
		}
	}
	if fields.Weight != nil && fields.Weight.IsNegative() {
		errs.Add(apperror.NewValidation("invalid_weight", "weight must not be negative"))
	}
	if fields.TaxClass != nil && !fields.TaxClass.Valid() {
		errs.Add(apperror.NewValidation("invalid_tax_class", fmt.Sprintf("unknown tax class %q", *fields.TaxClass)))
	}
	if fields.BasePrice != nil {
		if fields.BasePrice.IsNegative() {
			errs.Add(apperror.NewValidation("invalid_base_price", "base price must not be negative"))
		} else {
			for _, v := range p.Variants {
				if v.TotalPrice(*fields.BasePrice).IsNegative() {
					errs.Add(apperror.NewConflict("negative_variant_price", fmt.Sprintf(
						"base price %s would make variant %s total price negative", fields.BasePrice, v.SKU,
					)))
				}
			}
		}
	}
	if fields.SalePrice != nil && fields.SalePrice.IsNegative() {
		errs.Add(apperror.NewValidation("invalid_sale_price", "sale price must not be negative"))
	}
	if err := errs.ErrOrNil(); err != nil {
		return err
	}

	if fields.Name != nil {
		p.Name = *fields.Name
	}
	if fields.SKU != nil {
		p.SKU = *fields.SKU
	}
	if fields.BasePrice != nil {
		p.BasePrice = *fields.BasePrice
	}
	if fields.SalePrice != nil {
		p.SalePrice = fields.SalePrice
	}
	if fields.Weight != nil {
		p.Weight = *fields.Weight
	}
	if fields.TaxClass != nil {
		p.TaxClass = *fields.TaxClass
	}
	p.Touch()
	p.Record("product.updated", p.ID, ProductUpdated{ProductID: p.ID, SKU: p.SKU})
	return nil
}

func (p *Product) AddCategory(categoryID string) error {
	if categoryID == "" {
		return apperror.NewValidation("invalid_category", "category id must not be empty")
	}
	for i := range p.Categories {
		if p.Categories[i].CategoryID == categoryID {
			return apperror.NewConflict("duplicate_category", fmt.Sprintf("category %s is already associated", categoryID))
		}
	}
	link := ProductCategory{Auditable: NewAuditable(), ProductID: p.ID, CategoryID: categoryID}
	p.Categories = append(p.Categories, link)
	p.Touch()
	p.Record("product.category_added", p.ID, LinkChanged{ProductID: p.ID, TargetID: categoryID})
	return nil
}

func (p *Product) RemoveCategory(categoryID string) error {
	for i := range p.Categories {
		if p.Categories[i].CategoryID == categoryID {
			p.Categories = append(p.Categories[:i], p.Categories[i+1:]...)
			p.Touch()
			p.Record("product.category_removed", p.ID, LinkChanged{ProductID: p.ID, TargetID: categoryID})
			return nil
		}
	}
	return apperror.NewNotFound("category_not_associated", fmt.Sprintf("category %s is not associated with product %s", categoryID, p.ID))
}

func (p *Product) AddCollection(collectionID string) error {
	if collectionID == "" {
		return apperror.NewValidation("invalid_collection", "collection id must not be empty")
	}
	for i := range p.Collections {
		if p.Collections[i].CollectionID == collectionID {
			return apperror.NewConflict("duplicate_collection", fmt.Sprintf("collection %s is already associated", collectionID))
		}
	}
	link := ProductCollection{Auditable: NewAuditable(), ProductID: p.ID, CollectionID: collectionID}
	p.Collections = append(p.Collections, link)
	p.Touch()
	p.Record("product.collection_added", p.ID, LinkChanged{ProductID: p.ID, TargetID: collectionID})
	return nil
}

func (p *Product) RemoveCollection(collectionID string) error {
	for i := range p.Collections {
		if p.Collections[i].CollectionID == collectionID {
			p.Collections = append(p.Collections[:i], p.Collections[i+1:]...)
			p.Touch()
			p.Record("product.collection_removed", p.ID, LinkChanged{ProductID: p.ID, TargetID: collectionID})
			return nil
		}
	}
	return apperror.NewNotFound("collection_not_associated", fmt.Sprintf("collection %s is not associated with product %s", collectionID, p.ID))
}

// CollectionIDs returns the currently associated collection ids.
func (p *Product) CollectionIDs() []string {
	ids := make([]string, 0, len(p.Collections))
	for i := range p.Collections {
		ids = append(ids, p.Collections[i].CollectionID)
	}
	return ids
}

func (p *Product) AddDescription(descriptionType DescriptionType, value string) error {
	desc, err := NewProductDescription(descriptionType, value)
	if err != nil {
		return err
	}
	desc.ProductID = p.ID
	p.Descriptions = append(p.Descriptions, *desc)
	p.Touch()
	return nil
}

// ClearDescriptions drops all description blocks; updates rebuild them
// from the submission.
func (p *Product) ClearDescriptions() {
	p.Descriptions = nil
}

// AddVariant creates a variant owned by this product. The first variant
// always becomes the default; a later variant added with isDefault=true
// takes the default flag over from its siblings.
func (p *Product) AddVariant(sku string, priceOffset decimal.Decimal, lowStockThreshold int, isDefault, isActive, isVisible bool) (*ProductVariant, error) {
	errs := apperror.NewList()
	errs.Add(validateSKU(sku)...)
	if priceOffset.LessThan(priceOffsetMin) || priceOffset.GreaterThan(priceOffsetMax) {
		errs.Add(apperror.NewValidation("invalid_price_offset", "price offset must be between -10000 and 10000"))
	} else if p.BasePrice.Add(priceOffset).IsNegative() {
		errs.Add(apperror.NewValidation("negative_variant_price", "base price plus offset must not be negative"))
	}
	if lowStockThreshold < 0 {
		errs.Add(apperror.NewValidation("invalid_low_stock_threshold", "low stock threshold must not be negative"))
	}
	if sku == p.SKU {
		errs.Add(apperror.NewConflict("duplicate_sku", fmt.Sprintf("variant sku %s collides with the product sku", sku)))
	}
	for _, v := range p.Variants {
		if v.SKU == sku {
			errs.Add(apperror.NewConflict("duplicate_sku", fmt.Sprintf("variant sku %s already exists", sku)))
			break
		}
	}
	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}

	if len(p.Variants) == 0 {
		isDefault = true
	}
	if isDefault {
		for _, v := range p.Variants {
			v.UnsetDefault()
		}
	}

	variant := &ProductVariant{
		Auditable:         NewAuditable(),
		ProductID:         p.ID,
		SKU:               sku,
		PriceOffset:       priceOffset,
		StockQuantity:     0,
		LowStockThreshold: lowStockThreshold,
		StockStatus:       StockStatusOutOfStock,
		IsActive:          isActive,
		IsVisible:         isVisible,
		IsDefault:         isDefault,
	}
	p.Variants = append(p.Variants, variant)
	p.Touch()
	p.Record("product.variant_added", p.ID, VariantChanged{ProductID: p.ID, VariantID: variant.ID, SKU: sku})
	return variant, nil
}

// RemoveVariant refuses to drop the sole default variant while siblings
// remain; re-designate the default first. The last variant can always go.
func (p *Product) RemoveVariant(variantID string) error {
	idx := -1
	for i, v := range p.Variants {
		if v.ID == variantID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return apperror.NewNotFound("variant_not_found", fmt.Sprintf("variant %s does not belong to product %s", variantID, p.ID))
	}
	if p.Variants[idx].IsDefault && len(p.Variants) > 1 {
		return apperror.NewConflict("default_variant_removal", "cannot remove the default variant while other variants exist")
	}

	removed := p.Variants[idx]
	p.Variants = append(p.Variants[:idx], p.Variants[idx+1:]...)
	p.removedVariantIDs = append(p.removedVariantIDs, removed.ID)
	// Variant-scoped images go with the variant.
	kept := p.Images[:0]
	for _, img := range p.Images {
		if img.VariantID != nil && *img.VariantID == removed.ID {
			p.removedImageIDs = append(p.removedImageIDs, img.ID)
			continue
		}
		kept = append(kept, img)
	}
	p.Images = kept
	p.Touch()
	p.Record("product.variant_removed", p.ID, VariantChanged{ProductID: p.ID, VariantID: removed.ID, SKU: removed.SKU})
	return nil
}

func (p *Product) SetDefaultVariant(variantID string) error {
	target := p.VariantByID(variantID)
	if target == nil {
		return apperror.NewNotFound("variant_not_found", fmt.Sprintf("variant %s does not belong to product %s", variantID, p.ID))
	}
	for _, v := range p.Variants {
		if v.ID != variantID {
			v.UnsetDefault()
		}
	}
	target.SetAsDefault()
	p.Touch()
	return nil
}

// RenameVariantSKU changes a variant's SKU, enforcing the same format and
// collision rules as AddVariant.
func (p *Product) RenameVariantSKU(variantID, sku string) error {
	target := p.VariantByID(variantID)
	if target == nil {
		return apperror.NewNotFound("variant_not_found", fmt.Sprintf("variant %s does not belong to product %s", variantID, p.ID))
	}
	if target.SKU == sku {
		return nil
	}
	errs := apperror.NewList()
	errs.Add(validateSKU(sku)...)
	if sku == p.SKU {
		errs.Add(apperror.NewConflict("duplicate_sku", fmt.Sprintf("variant sku %s collides with the product sku", sku)))
	}
	for _, v := range p.Variants {
		if v.ID != variantID && v.SKU == sku {
			errs.Add(apperror.NewConflict("duplicate_sku", fmt.Sprintf("variant sku %s already exists", sku)))
			break
		}
	}
	if err := errs.ErrOrNil(); err != nil {
		return err
	}
	target.SKU = sku
	target.Touch()
	p.Touch()
	return nil
}

// ChangeVariantPriceOffset revalidates the offset range and the combined
// price against the current base price.
func (p *Product) ChangeVariantPriceOffset(variantID string, priceOffset decimal.Decimal) error {
	target := p.VariantByID(variantID)
	if target == nil {
		return apperror.NewNotFound("variant_not_found", fmt.Sprintf("variant %s does not belong to product %s", variantID, p.ID))
	}
	if priceOffset.LessThan(priceOffsetMin) || priceOffset.GreaterThan(priceOffsetMax) {
		return apperror.NewValidation("invalid_price_offset", "price offset must be between -10000 and 10000")
	}
	if p.BasePrice.Add(priceOffset).IsNegative() {
		return apperror.NewValidation("negative_variant_price", "base price plus offset must not be negative")
	}
	if target.PriceOffset.Equal(priceOffset) {
		return nil
	}
	target.PriceOffset = priceOffset
	target.Touch()
	p.Touch()
	return nil
}

// ClearImages drops the whole image set, bypassing the default-image
// removal guard; updates replace the set wholesale and re-establish a
// single default afterwards.
func (p *Product) ClearImages() {
	for i := range p.Images {
		p.removedImageIDs = append(p.removedImageIDs, p.Images[i].ID)
	}
	p.Images = nil
	p.Touch()
}

func (p *Product) VariantByID(variantID string) *ProductVariant {
	for _, v := range p.Variants {
		if v.ID == variantID {
			return v
		}
	}
	return nil
}

func (p *Product) VariantBySKU(sku string) *ProductVariant {
	for _, v := range p.Variants {
		if v.SKU == sku {
			return v
		}
	}
	return nil
}

func (p *Product) DefaultVariant() *ProductVariant {
	for _, v := range p.Variants {
		if v.IsDefault {
			return v
		}
	}
	return nil
}

// AddImage enforces URL uniqueness per product and, when a variant id is
// supplied, that the variant actually belongs to this product. The first
// image always becomes the default. The returned image is a copy; later
// mutations go through the aggregate by id.
func (p *Product) AddImage(descriptor ImageDescriptor, variantID *string, isDefault bool) (ProductImage, error) {
	errs := apperror.NewList()
	if !descriptor.Type.Valid() {
		errs.Add(apperror.NewValidation("invalid_image_type", fmt.Sprintf("unknown image type %q", descriptor.Type)))
	}
	if descriptor.URL == "" {
		errs.Add(apperror.NewValidation("invalid_image_url", "image url must not be empty"))
	}
	if len(descriptor.Alt) > 125 {
		errs.Add(apperror.NewValidation("invalid_image_alt", "image alt text must not exceed 125 characters"))
	}
	for i := range p.Images {
		if p.Images[i].URL == descriptor.URL {
			errs.Add(apperror.NewConflict("duplicate_image_url", fmt.Sprintf("image url %s already exists on product %s", descriptor.URL, p.ID)))
			break
		}
	}
	if variantID != nil && *variantID != "" && p.VariantByID(*variantID) == nil {
		errs.Add(apperror.NewNotFound("variant_not_found", fmt.Sprintf("variant %s does not belong to product %s", *variantID, p.ID)))
	}
	if err := errs.ErrOrNil(); err != nil {
		return ProductImage{}, err
	}

	if len(p.Images) == 0 {
		isDefault = true
	}
	if isDefault {
		for i := range p.Images {
			p.Images[i].IsDefault = false
		}
	}

	image := ProductImage{
		Auditable:       NewAuditable(),
		ProductID:       p.ID,
		VariantID:       variantID,
		ImageDescriptor: descriptor,
		IsDefault:       isDefault,
	}
	p.Images = append(p.Images, image)
	p.Touch()
	p.Record("product.image_added", p.ID, ImageChanged{ProductID: p.ID, ImageID: image.ID, URL: descriptor.URL})
	return image, nil
}

func (p *Product) RemoveImage(imageID string) error {
	idx := -1
	for i := range p.Images {
		if p.Images[i].ID == imageID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return apperror.NewNotFound("image_not_found", fmt.Sprintf("image %s does not belong to product %s", imageID, p.ID))
	}
	if p.Images[idx].IsDefault && len(p.Images) > 1 {
		return apperror.NewConflict("default_image_removal", "cannot remove the default image while other images exist")
	}

	removed := p.Images[idx]
	p.Images = append(p.Images[:idx], p.Images[idx+1:]...)
	p.removedImageIDs = append(p.removedImageIDs, removed.ID)
	p.Touch()
	p.Record("product.image_removed", p.ID, ImageChanged{ProductID: p.ID, ImageID: removed.ID, URL: removed.URL})
	return nil
}

func (p *Product) SetDefaultImage(imageID string) error {
	idx := -1
	for i := range p.Images {
		if p.Images[i].ID == imageID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return apperror.NewNotFound("image_not_found", fmt.Sprintf("image %s does not belong to product %s", imageID, p.ID))
	}
	for i := range p.Images {
		p.Images[i].IsDefault = i == idx
	}
	p.Touch()
	p.Record("product.default_image_changed", p.ID, ImageChanged{ProductID: p.ID, ImageID: imageID, URL: p.Images[idx].URL})
	return nil
}

func (p *Product) DefaultImage() *ProductImage {
	for i := range p.Images {
		if p.Images[i].IsDefault {
			return &p.Images[i]
		}
	}
	return nil
}

// ChangeStatus drives the lifecycle state machine. Transitions to the
// current status are always rejected; Discontinued is terminal and only
// reachable from Active or Inactive; activating checks the full set of
// catalog-readiness preconditions and reports every unmet one.
func (p *Product) ChangeStatus(newStatus ProductStatus) error {
	if !newStatus.Valid() {
		return apperror.NewValidation("invalid_status", fmt.Sprintf("unknown product status %q", newStatus))
	}
	if newStatus == p.Status {
		return apperror.NewConflict("invalid_status_transition", fmt.Sprintf("product is already %s", p.Status))
	}
	if p.Status == StatusDiscontinued {
		return apperror.NewConflict("invalid_status_transition", "a discontinued product cannot change status")
	}

	switch newStatus {
	case StatusActive:
		if err := p.activationErrors().ErrOrNil(); err != nil {
			return err
		}
	case StatusDiscontinued:
		if p.Status != StatusActive && p.Status != StatusInactive {
			return apperror.NewConflict("invalid_status_transition", fmt.Sprintf("cannot discontinue a %s product", p.Status))
		}
	}

	previous := p.Status
	p.Status = newStatus
	p.Touch()
	p.Record("product.status_changed", p.ID, StatusChanged{ProductID: p.ID, From: previous, To: newStatus})
	return nil
}

func (p *Product) activationErrors() *apperror.List {
	errs := apperror.NewList()
	if len(p.Variants) == 0 {
		errs.Add(apperror.NewConflict("activation_no_variants", "an active product needs at least one variant"))
	}
	if len(p.Images) == 0 {
		errs.Add(apperror.NewConflict("activation_no_images", "an active product needs at least one image"))
	}

	activeCount, defaultCount := 0, 0
	for _, v := range p.Variants {
		if v.IsActive {
			activeCount++
		}
		if v.IsDefault {
			defaultCount++
		}
		if v.StockQuantity <= 0 {
			errs.Add(apperror.NewConflict("activation_out_of_stock", fmt.Sprintf("variant %s has no stock", v.SKU)))
		}
	}
	if len(p.Variants) > 0 {
		if activeCount == 0 {
			errs.Add(apperror.NewConflict("activation_no_active_variant", "an active product needs at least one active variant"))
		}
		if defaultCount != 1 {
			errs.Add(apperror.NewConflict("activation_default_variant", "an active product needs exactly one default variant"))
		}
	}

	if len(p.Images) > 0 {
		defaultImages := 0
		for i := range p.Images {
			if p.Images[i].IsDefault {
				defaultImages++
			}
		}
		switch {
		case defaultImages != 1:
			errs.Add(apperror.NewConflict("activation_default_image", "an active product needs exactly one default image"))
		case p.DefaultImage().Type != ImageTypeDefault:
			errs.Add(apperror.NewConflict("activation_default_image_type", fmt.Sprintf(
				"the default image must be of type %s", ImageTypeDefault,
			)))
		}
	}
	return errs
}

// DrainEvents empties the product's pending events and those of its
// variants, preserving recording order per recorder.
func (p *Product) DrainEvents() []Event {
	events := p.EventRecorder.DrainEvents()
	for _, v := range p.Variants {
		events = append(events, v.EventRecorder.DrainEvents()...)
	}
	return events
}

// DrainRemovals returns and clears the ids of entities removed from the
// aggregate since it was loaded; the unit of work deletes those rows.
func (p *Product) DrainRemovals() (variantIDs, imageIDs []string) {
	variantIDs, imageIDs = p.removedVariantIDs, p.removedImageIDs
	p.removedVariantIDs, p.removedImageIDs = nil, nil
	return variantIDs, imageIDs
}

type ProductCreated struct {
	ProductID string `json:"product_id"`
	SKU       string `json:"sku"`
	Name      string `json:"name"`
}

type ProductUpdated struct {
	ProductID string `json:"product_id"`
	SKU       string `json:"sku"`
}

type StatusChanged struct {
	ProductID string        `json:"product_id"`
	From      ProductStatus `json:"from"`
	To        ProductStatus `json:"to"`
}

type VariantChanged struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id"`
	SKU       string `json:"sku"`
}

type ImageChanged struct {
	ProductID string `json:"product_id"`
	ImageID   string `json:"image_id"`
	URL       string `json:"url"`
}

type LinkChanged struct {
	ProductID string `json:"product_id"`
	TargetID  string `json:"target_id"`
}
