package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-catalog-service/internal/apperror"
)

func strPtr(s string) *string { return &s }

// apparelGroup has a required option-based "color" attribute with one
// option and an optional numeric "pack-size" attribute.
func apparelGroup(t *testing.T) *AttributeGroup {
	t.Helper()
	group, err := NewAttributeGroup("Apparel")
	require.NoError(t, err)

	color, err := NewCatalogAttribute("color", "Color", AttributeKindNone, true)
	require.NoError(t, err)
	_, err = color.AddOption("Red")
	require.NoError(t, err)
	require.NoError(t, color.ChangeKind(AttributeKindDropdown))

	packSize, err := NewCatalogAttribute("pack-size", "Pack Size", AttributeKindNumber, false)
	require.NoError(t, err)

	group.Attributes = append(group.Attributes, *color, *packSize)
	return group
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

func TestApplyAttributeValuesRequiredCoverage(t *testing.T) {
	group := apparelGroup(t)
	v := newStockedVariant(t, 1, 0)

	err := v.ApplyAttributeValues(group, nil)
	assert.Equal(t, []string{"required_attribute_missing"}, errCodes(t, err))
	assert.Empty(t, v.AttributeValues)
}

func TestApplyAttributeValuesRequiredCoverageRunsFirst(t *testing.T) {
	group := apparelGroup(t)
	v := newStockedVariant(t, 1, 0)

	// The shape of pack-size is also broken, but required coverage fails
	// first and aborts before shape checks run.
	err := v.ApplyAttributeValues(group, []AttributeAssignment{
		{AttributeID: group.Attributes[1].ID, Kind: AttributeKindNumber, Value: strPtr("abc")},
	})
	assert.Equal(t, []string{"required_attribute_missing"}, errCodes(t, err))
}

func TestApplyAttributeValuesUnknownAttribute(t *testing.T) {
	group := apparelGroup(t)
	v := newStockedVariant(t, 1, 0)
	colorID := group.Attributes[0].ID
	optionID := group.Attributes[0].Options[0].ID

	err := v.ApplyAttributeValues(group, []AttributeAssignment{
		{AttributeID: colorID, Kind: AttributeKindDropdown, OptionID: &optionID},
		{AttributeID: "nope", Kind: AttributeKindText, Value: strPtr("x")},
	})
	assert.Equal(t, []string{"attribute_not_in_group"}, errCodes(t, err))
}

func TestApplyAttributeValuesShapeChecks(t *testing.T) {
	group := apparelGroup(t)
	colorID := group.Attributes[0].ID
	optionID := group.Attributes[0].Options[0].ID
	packID := group.Attributes[1].ID

	cases := []struct {
		name       string
		assignment AttributeAssignment
		code       string
	}{
		{
			name:       "free text on option attribute",
			assignment: AttributeAssignment{AttributeID: colorID, Kind: AttributeKindDropdown, Value: strPtr("Red")},
			code:       "value_not_supported",
		},
		{
			name:       "missing option id",
			assignment: AttributeAssignment{AttributeID: colorID, Kind: AttributeKindDropdown},
			code:       "option_required",
		},
		{
			name:       "foreign option id",
			assignment: AttributeAssignment{AttributeID: colorID, Kind: AttributeKindDropdown, OptionID: strPtr("other")},
			code:       "invalid_option",
		},
		{
			name:       "kind mismatch",
			assignment: AttributeAssignment{AttributeID: colorID, Kind: AttributeKindText, Value: strPtr("Red")},
			code:       "attribute_kind_mismatch",
		},
		{
			name:       "option id on value attribute",
			assignment: AttributeAssignment{AttributeID: packID, Kind: AttributeKindNumber, OptionID: &optionID, Value: strPtr("3")},
			code:       "option_not_supported",
		},
		{
			name:       "missing value",
			assignment: AttributeAssignment{AttributeID: packID, Kind: AttributeKindNumber},
			code:       "value_required",
		},
		{
			name:       "bad number",
			assignment: AttributeAssignment{AttributeID: packID, Kind: AttributeKindNumber, Value: strPtr("abc")},
			code:       "invalid_number_format",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := newStockedVariant(t, 1, 0)
			assignments := []AttributeAssignment{tc.assignment}
			// Keep required coverage satisfied when the case exercises
			// the optional attribute.
			if tc.assignment.AttributeID != colorID {
				assignments = append(assignments, AttributeAssignment{
					AttributeID: colorID, Kind: AttributeKindDropdown, OptionID: &optionID,
				})
			}
			err := v.ApplyAttributeValues(group, assignments)
			assert.Contains(t, errCodes(t, err), tc.code)
			assert.Empty(t, v.AttributeValues)
		})
	}
}

func TestApplyAttributeValuesValueKindFormats(t *testing.T) {
	group, err := NewAttributeGroup("Formats")
	require.NoError(t, err)
	boolAttr, err := NewCatalogAttribute("refurbished", "Refurbished", AttributeKindBoolean, false)
	require.NoError(t, err)
	dateAttr, err := NewCatalogAttribute("released-at", "Released At", AttributeKindDateTime, false)
	require.NoError(t, err)
	decAttr, err := NewCatalogAttribute("screen-size", "Screen Size", AttributeKindDecimal, false)
	require.NoError(t, err)
	group.Attributes = append(group.Attributes, *boolAttr, *dateAttr, *decAttr)

	v := newStockedVariant(t, 1, 0)
	err = v.ApplyAttributeValues(group, []AttributeAssignment{
		{AttributeID: boolAttr.ID, Kind: AttributeKindBoolean, Value: strPtr("yes")},
		{AttributeID: dateAttr.ID, Kind: AttributeKindDateTime, Value: strPtr("tomorrow")},
		{AttributeID: decAttr.ID, Kind: AttributeKindDecimal, Value: strPtr("6..1")},
	})
	assert.ElementsMatch(t,
		[]string{"invalid_boolean_format", "invalid_datetime_format", "invalid_decimal_format"},
		errCodes(t, err))

	err = v.ApplyAttributeValues(group, []AttributeAssignment{
		{AttributeID: boolAttr.ID, Kind: AttributeKindBoolean, Value: strPtr("true")},
		{AttributeID: dateAttr.ID, Kind: AttributeKindDateTime, Value: strPtr("2025-03-01T10:00:00Z")},
		{AttributeID: decAttr.ID, Kind: AttributeKindDecimal, Value: strPtr("6.1")},
	})
	require.NoError(t, err)
	assert.Len(t, v.AttributeValues, 3)
}

func TestApplyAttributeValuesDuplicateDetection(t *testing.T) {
	group := apparelGroup(t)
	v := newStockedVariant(t, 1, 0)
	colorID := group.Attributes[0].ID
	optionID := group.Attributes[0].Options[0].ID

	err := v.ApplyAttributeValues(group, []AttributeAssignment{
		{AttributeID: colorID, Kind: AttributeKindDropdown, OptionID: &optionID},
		{AttributeID: colorID, Kind: AttributeKindDropdown, OptionID: &optionID},
	})
	// One report per duplicated id, not per occurrence.
	assert.Equal(t, []string{"duplicate_attribute"}, errCodes(t, err))
}

func TestApplyAttributeValuesMerge(t *testing.T) {
	group := apparelGroup(t)
	v := newStockedVariant(t, 1, 0)
	color := group.Attributes[0]
	optionID := color.Options[0].ID

	require.NoError(t, v.ApplyAttributeValues(group, []AttributeAssignment{
		{AttributeID: color.ID, Kind: AttributeKindDropdown, OptionID: &optionID},
	}))
	require.Len(t, v.AttributeValues, 1)
	firstID := v.AttributeValues[0].ID

	// A later submission touching only pack-size inserts it and leaves
	// the color assignment in place.
	require.NoError(t, v.ApplyAttributeValues(group, []AttributeAssignment{
		{AttributeID: group.Attributes[1].ID, Kind: AttributeKindNumber, Value: strPtr("3")},
	}))
	require.Len(t, v.AttributeValues, 2)

	// Re-submitting color updates the record in place.
	require.NoError(t, v.ApplyAttributeValues(group, []AttributeAssignment{
		{AttributeID: color.ID, Kind: AttributeKindDropdown, OptionID: &optionID},
	}))
	require.Len(t, v.AttributeValues, 2)
	assert.Equal(t, firstID, v.AttributeValues[0].ID)
}
