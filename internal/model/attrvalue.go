package model

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fekuna/omnipos-catalog-service/internal/apperror"
)

// VariantAttributeValue is one dynamic attribute assignment on a variant.
// Kind records the attribute's kind at the time of assignment.
type VariantAttributeValue struct {
	Auditable
	VariantID         string        `db:"variant_id" json:"variant_id"`
	AttributeID       string        `db:"attribute_id" json:"attribute_id"`
	AttributeOptionID *string       `db:"attribute_option_id" json:"attribute_option_id,omitempty"`
	Value             *string       `db:"value" json:"value,omitempty"`
	Kind              AttributeKind `db:"kind" json:"kind"`
}

// AttributeAssignment is a caller-supplied (attribute, value) tuple to be
// validated against the product's attribute group before assignment.
type AttributeAssignment struct {
	AttributeID string
	Kind        AttributeKind
	OptionID    *string
	Value       *string
}

// ApplyAttributeValues runs the four validation classes in fixed order and
// only then merges the assignments into the variant's value set. Each
// class reports all of its violations together; the first failing class
// aborts before the next one runs.
//
// Merge semantics: an assignment matching an existing attribute id updates
// that record in place, others are inserted. Attributes absent from the
// submission are never implicitly removed.
func (v *ProductVariant) ApplyAttributeValues(group *AttributeGroup, assignments []AttributeAssignment) error {
	// 1. Required-attribute coverage.
	errs := apperror.NewList()
	for _, attr := range group.RequiredAttributes() {
		if v.hasAttributeValue(attr.ID) || containsAssignment(assignments, attr.ID) {
			continue
		}
		errs.Add(apperror.NewValidation("required_attribute_missing", fmt.Sprintf(
			"required attribute %s (%s) is missing", attr.ID, attr.Code,
		)))
	}
	if err := errs.ErrOrNil(); err != nil {
		return err
	}

	// 2. Schema membership: one group-level error, not one per id.
	for _, a := range assignments {
		if group.AttributeByID(a.AttributeID) == nil {
			return apperror.NewList(apperror.NewValidation("attribute_not_in_group", fmt.Sprintf(
				"attribute %s does not belong to group %s", a.AttributeID, group.Name,
			))).ErrOrNil()
		}
	}

	// 3. Per-value shape.
	errs = apperror.NewList()
	for _, a := range assignments {
		attr := group.AttributeByID(a.AttributeID)
		if a.Kind != attr.Kind {
			errs.Add(apperror.NewValidation("attribute_kind_mismatch", fmt.Sprintf(
				"attribute %s has kind %s, got %s", attr.Code, attr.Kind, a.Kind,
			)))
			continue
		}
		if item := validateAssignmentShape(attr, a); item != nil {
			errs.Add(item)
		}
	}
	if err := errs.ErrOrNil(); err != nil {
		return err
	}

	// 4. Duplicate detection.
	errs = apperror.NewList()
	seen := make(map[string]int, len(assignments))
	for _, a := range assignments {
		seen[a.AttributeID]++
	}
	for _, a := range assignments {
		if seen[a.AttributeID] > 1 {
			errs.Add(apperror.NewValidation("duplicate_attribute", fmt.Sprintf(
				"attribute %s appears more than once", a.AttributeID,
			)))
			seen[a.AttributeID] = 0 // report each duplicated id once
		}
	}
	if err := errs.ErrOrNil(); err != nil {
		return err
	}

	for _, a := range assignments {
		v.upsertAttributeValue(a)
	}
	return nil
}

func (v *ProductVariant) hasAttributeValue(attributeID string) bool {
	for i := range v.AttributeValues {
		if v.AttributeValues[i].AttributeID == attributeID {
			return true
		}
	}
	return false
}

func (v *ProductVariant) upsertAttributeValue(a AttributeAssignment) {
	for i := range v.AttributeValues {
		if v.AttributeValues[i].AttributeID == a.AttributeID {
			v.AttributeValues[i].AttributeOptionID = a.OptionID
			v.AttributeValues[i].Value = a.Value
			v.AttributeValues[i].Kind = a.Kind
			v.AttributeValues[i].Touch()
			return
		}
	}
	v.AttributeValues = append(v.AttributeValues, VariantAttributeValue{
		Auditable:         NewAuditable(),
		VariantID:         v.ID,
		AttributeID:       a.AttributeID,
		AttributeOptionID: a.OptionID,
		Value:             a.Value,
		Kind:              a.Kind,
	})
}

func containsAssignment(assignments []AttributeAssignment, attributeID string) bool {
	for _, a := range assignments {
		if a.AttributeID == attributeID {
			return true
		}
	}
	return false
}

func validateAssignmentShape(attr *CatalogAttribute, a AttributeAssignment) *apperror.Error {
	if attr.Kind.IsOptionBased() {
		if a.Value != nil && *a.Value != "" {
			return apperror.NewValidation("value_not_supported", fmt.Sprintf(
				"attribute %s: value not supported for option type", attr.Code,
			))
		}
		if a.OptionID == nil || *a.OptionID == "" {
			return apperror.NewValidation("option_required", fmt.Sprintf(
				"attribute %s requires an option id", attr.Code,
			))
		}
		if attr.OptionByID(*a.OptionID) == nil {
			return apperror.NewValidation("invalid_option", fmt.Sprintf(
				"option %s does not belong to attribute %s", *a.OptionID, attr.Code,
			))
		}
		return nil
	}

	if a.OptionID != nil && *a.OptionID != "" {
		return apperror.NewValidation("option_not_supported", fmt.Sprintf(
			"attribute %s: option id not supported for value type", attr.Code,
		))
	}
	if a.Value == nil || *a.Value == "" {
		return apperror.NewValidation("value_required", fmt.Sprintf(
			"attribute %s requires a value", attr.Code,
		))
	}

	value := *a.Value
	switch attr.Kind {
	case AttributeKindNumber:
		if _, err := strconv.Atoi(value); err != nil {
			return apperror.NewValidation("invalid_number_format", fmt.Sprintf(
				"attribute %s: invalid number format %q", attr.Code, value,
			))
		}
	case AttributeKindBoolean:
		if value != "true" && value != "false" {
			return apperror.NewValidation("invalid_boolean_format", fmt.Sprintf(
				"attribute %s: boolean value must be true or false, got %q", attr.Code, value,
			))
		}
	case AttributeKindDateTime:
		if _, err := time.Parse(time.RFC3339, value); err != nil {
			return apperror.NewValidation("invalid_datetime_format", fmt.Sprintf(
				"attribute %s: invalid timestamp %q", attr.Code, value,
			))
		}
	case AttributeKindDecimal:
		if _, err := decimal.NewFromString(value); err != nil {
			return apperror.NewValidation("invalid_decimal_format", fmt.Sprintf(
				"attribute %s: invalid decimal %q", attr.Code, value,
			))
		}
	}
	// Text, Checkbox and None accept any non-empty text.
	return nil
}
