package model

import (
	"fmt"
	"regexp"

	"github.com/fekuna/omnipos-catalog-service/internal/apperror"
)

// AttributeKind is the closed set of value kinds a catalog attribute can
// take. Option-based kinds draw their values from the attribute's option
// list; value-based kinds carry free text validated per kind.
type AttributeKind string

const (
	AttributeKindText     AttributeKind = "Text"
	AttributeKindNumber   AttributeKind = "Number"
	AttributeKindBoolean  AttributeKind = "Boolean"
	AttributeKindDateTime AttributeKind = "DateTime"
	AttributeKindDecimal  AttributeKind = "Decimal"
	AttributeKindCheckbox AttributeKind = "Checkbox"
	AttributeKindDropdown AttributeKind = "Dropdown"
	AttributeKindSelect   AttributeKind = "Select"
	AttributeKindSwatch   AttributeKind = "Swatch"
	AttributeKindNone     AttributeKind = "None"
)

func (k AttributeKind) Valid() bool {
	switch k {
	case AttributeKindText, AttributeKindNumber, AttributeKindBoolean,
		AttributeKindDateTime, AttributeKindDecimal, AttributeKindCheckbox,
		AttributeKindDropdown, AttributeKindSelect, AttributeKindSwatch,
		AttributeKindNone:
		return true
	}
	return false
}

func (k AttributeKind) IsOptionBased() bool {
	switch k {
	case AttributeKindDropdown, AttributeKindSelect, AttributeKindSwatch:
		return true
	}
	return false
}

var codeRe = regexp.MustCompile(`^[A-Za-z0-9-_]+$`)

// AttributeOption is one selectable value of an option-based attribute.
// AttributeCode is denormalized from the owning attribute.
type AttributeOption struct {
	Auditable
	AttributeID   string `db:"attribute_id" json:"attribute_id"`
	Value         string `db:"value" json:"value"`
	AttributeCode string `db:"attribute_code" json:"attribute_code"`
}

// CatalogAttribute defines one dynamic attribute: its code, kind, whether
// a value is mandatory, and (for option-based kinds) the option set.
type CatalogAttribute struct {
	Auditable
	Code       string            `db:"code" json:"code"`
	Name       string            `db:"name" json:"name"`
	Kind       AttributeKind     `db:"kind" json:"kind"`
	IsRequired bool              `db:"is_required" json:"is_required"`
	SortOrder  int               `db:"sort_order" json:"sort_order"`
	Options    []AttributeOption `db:"-" json:"options,omitempty"`
}

func NewCatalogAttribute(code, name string, kind AttributeKind, isRequired bool) (*CatalogAttribute, error) {
	errs := apperror.NewList()
	if len(code) < 3 || len(code) > 50 {
		errs.Add(apperror.NewValidation("invalid_attribute_code", "attribute code must be between 3 and 50 characters"))
	} else if !codeRe.MatchString(code) {
		errs.Add(apperror.NewValidation("invalid_attribute_code", "attribute code may only contain letters, digits, '-' and '_'"))
	}
	if name == "" {
		errs.Add(apperror.NewValidation("invalid_attribute_name", "attribute name is required"))
	}
	if !kind.Valid() {
		errs.Add(apperror.NewValidation("invalid_attribute_kind", fmt.Sprintf("unknown attribute kind %q", kind)))
	}
	if kind.IsOptionBased() {
		// A fresh attribute has no options yet; it must start value-based
		// (typically None) and switch kinds once options exist.
		errs.Add(apperror.NewValidation("attribute_options_missing", "an attribute cannot be created with an option-based kind before options exist"))
	}
	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}
	return &CatalogAttribute{
		Auditable:  NewAuditable(),
		Code:       code,
		Name:       name,
		Kind:       kind,
		IsRequired: isRequired,
	}, nil
}

// ChangeKind moves the attribute to a new kind. Switching to an
// option-based kind requires at least one option; switching away is always
// allowed even while options remain.
func (a *CatalogAttribute) ChangeKind(kind AttributeKind) error {
	if !kind.Valid() {
		return apperror.NewValidation("invalid_attribute_kind", fmt.Sprintf("unknown attribute kind %q", kind))
	}
	if kind.IsOptionBased() && len(a.Options) == 0 {
		return apperror.NewValidation("attribute_options_missing", fmt.Sprintf("attribute %s has no options for kind %s", a.Code, kind))
	}
	a.Kind = kind
	a.Touch()
	return nil
}

// AddOption appends a new option and returns a copy of it.
func (a *CatalogAttribute) AddOption(value string) (AttributeOption, error) {
	if value == "" || len(value) > 100 {
		return AttributeOption{}, apperror.NewValidation("invalid_option_value", "option value must be between 1 and 100 characters")
	}
	for i := range a.Options {
		if a.Options[i].Value == value {
			return AttributeOption{}, apperror.NewConflict("duplicate_option", fmt.Sprintf("option %q already exists for attribute %s", value, a.Code))
		}
	}
	opt := AttributeOption{
		Auditable:     NewAuditable(),
		AttributeID:   a.ID,
		Value:         value,
		AttributeCode: a.Code,
	}
	a.Options = append(a.Options, opt)
	a.Touch()
	return opt, nil
}

func (a *CatalogAttribute) OptionByID(id string) *AttributeOption {
	for i := range a.Options {
		if a.Options[i].ID == id {
			return &a.Options[i]
		}
	}
	return nil
}

// AttributeGroup binds a product to its attribute schema: an ordered set
// of catalog attributes.
type AttributeGroup struct {
	Auditable
	Name       string             `db:"name" json:"name"`
	Attributes []CatalogAttribute `db:"-" json:"attributes,omitempty"`
}

func NewAttributeGroup(name string) (*AttributeGroup, error) {
	if len(name) < 3 || len(name) > 100 {
		return nil, apperror.NewValidation("invalid_group_name", "attribute group name must be between 3 and 100 characters")
	}
	return &AttributeGroup{
		Auditable: NewAuditable(),
		Name:      name,
	}, nil
}

func (g *AttributeGroup) AttributeByID(id string) *CatalogAttribute {
	for i := range g.Attributes {
		if g.Attributes[i].ID == id {
			return &g.Attributes[i]
		}
	}
	return nil
}

func (g *AttributeGroup) RequiredAttributes() []*CatalogAttribute {
	var required []*CatalogAttribute
	for i := range g.Attributes {
		if g.Attributes[i].IsRequired {
			required = append(required, &g.Attributes[i])
		}
	}
	return required
}
