package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	pkgerrors "github.com/pkg/errors"

	"github.com/fekuna/omnipos-catalog-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindVariantByID(ctx context.Context, id string) (*model.ProductVariant, error) {
	var v model.ProductVariant
	err := r.DB.GetContext(ctx, &v,
		`SELECT * FROM product_variants WHERE id = $1 AND deleted_at IS NULL LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(err, "inventory.FindVariantByID")
	}
	return &v, nil
}

func (r *PGRepository) SaveVariantStock(ctx context.Context, v *model.ProductVariant) (err error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return pkgerrors.Wrap(err, "inventory.SaveVariantStock begin")
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	_, err = tx.NamedExecContext(ctx, `
        UPDATE product_variants SET
            stock_quantity = :stock_quantity,
            stock_status = :stock_status,
            low_stock_threshold = :low_stock_threshold,
            updated_at = :updated_at
        WHERE id = :id
    `, v)
	if err != nil {
		return pkgerrors.Wrap(err, "inventory.SaveVariantStock variant")
	}

	for i := range v.Movements {
		_, err = tx.NamedExecContext(ctx, `
            INSERT INTO stock_movements (
                id, variant_id, quantity, movement_type, reference_id, notes,
                created_at, updated_at, deleted_at
            )
            VALUES (
                :id, :variant_id, :quantity, :movement_type, :reference_id, :notes,
                :created_at, :updated_at, :deleted_at
            )
        `, &v.Movements[i])
		if err != nil {
			return pkgerrors.Wrap(err, "inventory.SaveVariantStock movement")
		}
	}
	v.Movements = nil

	if err = tx.Commit(); err != nil {
		return pkgerrors.Wrap(err, "inventory.SaveVariantStock commit")
	}
	return nil
}

func (r *PGRepository) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error) {
	where := `WHERE variant_id = $1 AND deleted_at IS NULL`
	args := []interface{}{filters.VariantID}
	if filters.MovementType != nil {
		where += fmt.Sprintf(` AND movement_type = $%d`, len(args)+1)
		args = append(args, *filters.MovementType)
	}

	var total int
	if err := r.DB.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM stock_movements `+where, args...); err != nil {
		return nil, 0, pkgerrors.Wrap(err, "inventory.ListMovements count")
	}

	page := filters.Page
	if page < 1 {
		page = 1
	}
	pageSize := filters.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	args = append(args, pageSize, (page-1)*pageSize)

	movements := []model.StockMovement{}
	query := fmt.Sprintf(
		`SELECT * FROM stock_movements %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)-1, len(args))
	if err := r.DB.SelectContext(ctx, &movements, query, args...); err != nil {
		return nil, 0, pkgerrors.Wrap(err, "inventory.ListMovements")
	}
	return movements, total, nil
}
