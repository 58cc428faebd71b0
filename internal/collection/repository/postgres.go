package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	pkgerrors "github.com/pkg/errors"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindIDsIn(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return []string{}, nil
	}

	query, args, err := sqlx.In(`SELECT id FROM collections WHERE id IN (?) AND deleted_at IS NULL`, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "collection.FindIDsIn")
	}
	query = r.DB.Rebind(query)

	var found []string
	if err := r.DB.SelectContext(ctx, &found, query, args...); err != nil {
		return nil, pkgerrors.Wrap(err, "collection.FindIDsIn")
	}
	return found, nil
}
