package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	pkgerrors "github.com/pkg/errors"

	"github.com/fekuna/omnipos-catalog-service/internal/apperror"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindGraphByID(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	err := r.DB.GetContext(ctx, &p,
		`SELECT * FROM products WHERE id = $1 AND deleted_at IS NULL LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(err, "product.FindGraphByID")
	}

	if err := r.DB.SelectContext(ctx, &p.Categories,
		`SELECT * FROM product_categories WHERE product_id = $1`, id); err != nil {
		return nil, pkgerrors.Wrap(err, "product.FindGraphByID categories")
	}
	if err := r.DB.SelectContext(ctx, &p.Collections,
		`SELECT * FROM product_collections WHERE product_id = $1`, id); err != nil {
		return nil, pkgerrors.Wrap(err, "product.FindGraphByID collections")
	}
	if err := r.DB.SelectContext(ctx, &p.Descriptions,
		`SELECT * FROM product_descriptions WHERE product_id = $1`, id); err != nil {
		return nil, pkgerrors.Wrap(err, "product.FindGraphByID descriptions")
	}
	if err := r.DB.SelectContext(ctx, &p.Images,
		`SELECT * FROM product_images WHERE product_id = $1 ORDER BY created_at ASC`, id); err != nil {
		return nil, pkgerrors.Wrap(err, "product.FindGraphByID images")
	}

	var variants []model.ProductVariant
	err = r.DB.SelectContext(ctx, &variants,
		`SELECT * FROM product_variants WHERE product_id = $1 AND deleted_at IS NULL ORDER BY created_at ASC`, id)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "product.FindGraphByID variants")
	}

	if len(variants) > 0 {
		variantIDs := make([]string, 0, len(variants))
		for i := range variants {
			variantIDs = append(variantIDs, variants[i].ID)
		}
		query, args, err := sqlx.In(
			`SELECT * FROM variant_attribute_values WHERE variant_id IN (?)`, variantIDs)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "product.FindGraphByID attribute values")
		}
		query = r.DB.Rebind(query)

		var values []model.VariantAttributeValue
		if err := r.DB.SelectContext(ctx, &values, query, args...); err != nil {
			return nil, pkgerrors.Wrap(err, "product.FindGraphByID attribute values")
		}
		byVariant := make(map[string][]model.VariantAttributeValue)
		for _, v := range values {
			byVariant[v.VariantID] = append(byVariant[v.VariantID], v)
		}
		for i := range variants {
			variants[i].AttributeValues = byVariant[variants[i].ID]
		}
	}

	p.Variants = make([]*model.ProductVariant, len(variants))
	for i := range variants {
		p.Variants[i] = &variants[i]
	}
	return &p, nil
}

// SaveGraph persists the whole aggregate in one transaction. Link tables,
// descriptions and images are rewritten from the aggregate state; variants
// and attribute values are upserted, removed variants deleted, pending
// stock movements appended.
func (r *PGRepository) SaveGraph(ctx context.Context, p *model.Product) (err error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return pkgerrors.Wrap(err, "product.SaveGraph begin")
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = r.upsertProduct(ctx, tx, p); err != nil {
		return translateError(err, "product.SaveGraph product")
	}

	removedVariantIDs, removedImageIDs := p.DrainRemovals()
	if len(removedVariantIDs) > 0 {
		var query string
		var args []interface{}
		query, args, err = sqlx.In(`DELETE FROM product_variants WHERE id IN (?)`, removedVariantIDs)
		if err != nil {
			return pkgerrors.Wrap(err, "product.SaveGraph removed variants")
		}
		if _, err = tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
			return pkgerrors.Wrap(err, "product.SaveGraph removed variants")
		}
	}
	_ = removedImageIDs // images are rewritten wholesale below

	for _, v := range p.Variants {
		if err = r.upsertVariant(ctx, tx, v); err != nil {
			return translateError(err, "product.SaveGraph variant")
		}
		for i := range v.AttributeValues {
			if err = r.upsertAttributeValue(ctx, tx, &v.AttributeValues[i]); err != nil {
				return translateError(err, "product.SaveGraph attribute value")
			}
		}
		for i := range v.Movements {
			if err = r.insertMovement(ctx, tx, &v.Movements[i]); err != nil {
				return translateError(err, "product.SaveGraph movement")
			}
		}
		v.Movements = nil
	}

	if err = r.rewriteLinks(ctx, tx, p); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return translateError(err, "product.SaveGraph commit")
	}
	return nil
}

func (r *PGRepository) upsertProduct(ctx context.Context, tx *sqlx.Tx, p *model.Product) error {
	// group_id is intentionally absent from the update set: the bound
	// attribute group never changes after creation.
	query := `
        INSERT INTO products (
            id, name, sku, base_price, sale_price, weight, tax_class, status,
            group_id, created_at, updated_at, deleted_at
        )
        VALUES (
            :id, :name, :sku, :base_price, :sale_price, :weight, :tax_class, :status,
            :group_id, :created_at, :updated_at, :deleted_at
        )
        ON CONFLICT (id) DO UPDATE SET
            name = EXCLUDED.name,
            sku = EXCLUDED.sku,
            base_price = EXCLUDED.base_price,
            sale_price = EXCLUDED.sale_price,
            weight = EXCLUDED.weight,
            tax_class = EXCLUDED.tax_class,
            status = EXCLUDED.status,
            updated_at = EXCLUDED.updated_at,
            deleted_at = EXCLUDED.deleted_at
    `
	_, err := tx.NamedExecContext(ctx, query, p)
	return err
}

func (r *PGRepository) upsertVariant(ctx context.Context, tx *sqlx.Tx, v *model.ProductVariant) error {
	query := `
        INSERT INTO product_variants (
            id, product_id, sku, price_offset, stock_quantity, low_stock_threshold,
            stock_status, is_active, is_visible, is_default, created_at, updated_at, deleted_at
        )
        VALUES (
            :id, :product_id, :sku, :price_offset, :stock_quantity, :low_stock_threshold,
            :stock_status, :is_active, :is_visible, :is_default, :created_at, :updated_at, :deleted_at
        )
        ON CONFLICT (id) DO UPDATE SET
            sku = EXCLUDED.sku,
            price_offset = EXCLUDED.price_offset,
            stock_quantity = EXCLUDED.stock_quantity,
            low_stock_threshold = EXCLUDED.low_stock_threshold,
            stock_status = EXCLUDED.stock_status,
            is_active = EXCLUDED.is_active,
            is_visible = EXCLUDED.is_visible,
            is_default = EXCLUDED.is_default,
            updated_at = EXCLUDED.updated_at,
            deleted_at = EXCLUDED.deleted_at
    `
	_, err := tx.NamedExecContext(ctx, query, v)
	return err
}

func (r *PGRepository) upsertAttributeValue(ctx context.Context, tx *sqlx.Tx, v *model.VariantAttributeValue) error {
	query := `
        INSERT INTO variant_attribute_values (
            id, variant_id, attribute_id, attribute_option_id, value, kind,
            created_at, updated_at, deleted_at
        )
        VALUES (
            :id, :variant_id, :attribute_id, :attribute_option_id, :value, :kind,
            :created_at, :updated_at, :deleted_at
        )
        ON CONFLICT (id) DO UPDATE SET
            attribute_option_id = EXCLUDED.attribute_option_id,
            value = EXCLUDED.value,
            kind = EXCLUDED.kind,
            updated_at = EXCLUDED.updated_at
    `
	_, err := tx.NamedExecContext(ctx, query, v)
	return err
}

func (r *PGRepository) insertMovement(ctx context.Context, tx *sqlx.Tx, m *model.StockMovement) error {
	query := `
        INSERT INTO stock_movements (
            id, variant_id, quantity, movement_type, reference_id, notes,
            created_at, updated_at, deleted_at
        )
        VALUES (
            :id, :variant_id, :quantity, :movement_type, :reference_id, :notes,
            :created_at, :updated_at, :deleted_at
        )
    `
	_, err := tx.NamedExecContext(ctx, query, m)
	return err
}

func (r *PGRepository) rewriteLinks(ctx context.Context, tx *sqlx.Tx, p *model.Product) error {
	rewrites := []struct {
		table  string
		insert string
		rows   func() []interface{}
	}{
		{
			table: "product_categories",
			insert: `INSERT INTO product_categories (id, product_id, category_id, created_at, updated_at)
                     VALUES (:id, :product_id, :category_id, :created_at, :updated_at)`,
			rows: func() []interface{} {
				rows := make([]interface{}, 0, len(p.Categories))
				for i := range p.Categories {
					rows = append(rows, &p.Categories[i])
				}
				return rows
			},
		},
		{
			table: "product_collections",
			insert: `INSERT INTO product_collections (id, product_id, collection_id, created_at, updated_at)
                     VALUES (:id, :product_id, :collection_id, :created_at, :updated_at)`,
			rows: func() []interface{} {
				rows := make([]interface{}, 0, len(p.Collections))
				for i := range p.Collections {
					rows = append(rows, &p.Collections[i])
				}
				return rows
			},
		},
		{
			table: "product_descriptions",
			insert: `INSERT INTO product_descriptions (id, product_id, description_type, value, created_at, updated_at)
                     VALUES (:id, :product_id, :description_type, :value, :created_at, :updated_at)`,
			rows: func() []interface{} {
				rows := make([]interface{}, 0, len(p.Descriptions))
				for i := range p.Descriptions {
					rows = append(rows, &p.Descriptions[i])
				}
				return rows
			},
		},
		{
			table: "product_images",
			insert: `INSERT INTO product_images (id, product_id, variant_id, image_type, alt, url, mime_type,
                         width, height, size_bytes, is_default, created_at, updated_at)
                     VALUES (:id, :product_id, :variant_id, :image_type, :alt, :url, :mime_type,
                         :width, :height, :size_bytes, :is_default, :created_at, :updated_at)`,
			rows: func() []interface{} {
				rows := make([]interface{}, 0, len(p.Images))
				for i := range p.Images {
					rows = append(rows, &p.Images[i])
				}
				return rows
			},
		},
	}

	for _, rw := range rewrites {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+rw.table+` WHERE product_id = $1`, p.ID); err != nil {
			return pkgerrors.Wrapf(err, "product.SaveGraph clear %s", rw.table)
		}
		for _, row := range rw.rows() {
			if _, err := tx.NamedExecContext(ctx, rw.insert, row); err != nil {
				return translateError(err, "product.SaveGraph "+rw.table)
			}
		}
	}
	return nil
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE products SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`,
		id, time.Now())
	if err != nil {
		return pkgerrors.Wrap(err, "product.Delete")
	}
	return nil
}

func (r *PGRepository) IsSKUUnique(ctx context.Context, sku, excludeProductID string) (bool, error) {
	var exists bool
	query := `
        SELECT EXISTS (
            SELECT 1 FROM products
            WHERE sku = $1 AND deleted_at IS NULL AND id <> $2
        ) OR EXISTS (
            SELECT 1 FROM product_variants v
            JOIN products p ON p.id = v.product_id
            WHERE v.sku = $1 AND v.deleted_at IS NULL AND p.id <> $2
        )
    `
	if err := r.DB.GetContext(ctx, &exists, query, sku, excludeProductID); err != nil {
		return false, pkgerrors.Wrap(err, "product.IsSKUUnique")
	}
	return !exists, nil
}

// translateError maps unique-constraint violations to Conflict errors:
// per the concurrency model the store's constraints are the last line of
// defense against racing creates, and the caller retries on conflict.
func translateError(err error, op string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		switch pqErr.Constraint {
		case "products_sku_key", "product_variants_sku_key":
			return apperror.NewConflict("duplicate_sku", "sku was claimed concurrently, retry the request")
		case "product_images_product_id_url_key":
			return apperror.NewConflict("duplicate_image_url", "image url already exists for this product")
		default:
			return apperror.NewConflict("constraint_violation", pqErr.Detail)
		}
	}
	return pkgerrors.Wrap(err, op)
}
