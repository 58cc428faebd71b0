package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	pkgerrors "github.com/pkg/errors"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/cache"
)

const schemaCacheTTL = 5 * time.Minute

// PGRepository loads attribute-group schemas. Schemas are read-mostly, so
// loaded groups are cached in redis for a short TTL.
type PGRepository struct {
	DB    *sqlx.DB
	cache *cache.RedisClient
}

func NewPGRepository(db *sqlx.DB, cache *cache.RedisClient) *PGRepository {
	return &PGRepository{DB: db, cache: cache}
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.AttributeGroup, error) {
	cacheKey := fmt.Sprintf("catalog:schema:%s", id)
	if r.cache != nil {
		if val, err := r.cache.Client.Get(ctx, cacheKey).Result(); err == nil {
			var group model.AttributeGroup
			if err := json.Unmarshal([]byte(val), &group); err == nil {
				return &group, nil
			}
		}
	}

	var group model.AttributeGroup
	err := r.DB.GetContext(ctx, &group,
		`SELECT * FROM attribute_groups WHERE id = $1 AND deleted_at IS NULL LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(err, "attributegroup.FindByID")
	}

	err = r.DB.SelectContext(ctx, &group.Attributes, `
        SELECT a.*
        FROM catalog_attributes a
        JOIN attribute_group_links l ON l.attribute_id = a.id
        WHERE l.group_id = $1 AND a.deleted_at IS NULL
        ORDER BY l.sort_order ASC
    `, id)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "attributegroup.FindByID attributes")
	}

	if len(group.Attributes) > 0 {
		attrIDs := make([]string, 0, len(group.Attributes))
		for i := range group.Attributes {
			attrIDs = append(attrIDs, group.Attributes[i].ID)
		}

		query, args, err := sqlx.In(
			`SELECT * FROM attribute_options WHERE attribute_id IN (?) AND deleted_at IS NULL ORDER BY created_at ASC`,
			attrIDs,
		)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "attributegroup.FindByID options")
		}
		query = r.DB.Rebind(query)

		var options []model.AttributeOption
		if err := r.DB.SelectContext(ctx, &options, query, args...); err != nil {
			return nil, pkgerrors.Wrap(err, "attributegroup.FindByID options")
		}

		byAttr := make(map[string][]model.AttributeOption, len(attrIDs))
		for _, opt := range options {
			byAttr[opt.AttributeID] = append(byAttr[opt.AttributeID], opt)
		}
		for i := range group.Attributes {
			group.Attributes[i].Options = byAttr[group.Attributes[i].ID]
		}
	}

	if r.cache != nil {
		if data, err := json.Marshal(&group); err == nil {
			r.cache.Client.Set(ctx, cacheKey, data, schemaCacheTTL)
		}
	}
	return &group, nil
}
