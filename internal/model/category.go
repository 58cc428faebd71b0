package model

// Category is a lookup entity from the workflows' point of view: the
// create/update workflows only verify existence before linking.
type Category struct {
	Auditable
	ParentID    *string `db:"parent_id" json:"parent_id"` // Nullable
	Name        string  `db:"name" json:"name"`
	Description *string `db:"description" json:"description"`
	SortOrder   int     `db:"sort_order" json:"sort_order"`
	IsActive    bool    `db:"is_active" json:"is_active"`
}

// Collection is a curated product grouping; like Category it is only a
// lookup for the catalog workflows.
type Collection struct {
	Auditable
	Name        string  `db:"name" json:"name"`
	Description *string `db:"description" json:"description"`
	IsActive    bool    `db:"is_active" json:"is_active"`
}
