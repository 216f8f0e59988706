package vehicle

import (
	"reflect"
	"strings"
)

// Attribute field names shared by sources, the merge engine and cached
// records. Sources populate a subset; the merge engine reconciles them
// field by field.
const (
	FieldMake           = "make"
	FieldModel          = "model"
	FieldYear           = "year"
	FieldTrim           = "trim"
	FieldEngine         = "engine"
	FieldPlant          = "plant"
	FieldBodyStyle      = "body_style"
	FieldFuelType       = "fuel_type"
	FieldTransmission   = "transmission"
	FieldManufacturer   = "manufacturer"
	FieldCountry        = "country"
	FieldDimensions     = "dimensions"
	FieldSeating        = "seating"
	FieldPricing        = "pricing"
	FieldMileage        = "mileage"
	FieldValidation     = "validation"
	FieldAdditionalInfo = "additional_info"
)

// StandardFields are the per-field reconciled attributes, in their canonical
// order. Special fields (dimensions, seating, pricing, mileage), validation
// and additional_info follow their own merge rules.
var StandardFields = []string{
	FieldMake, FieldModel, FieldYear, FieldTrim, FieldEngine, FieldPlant,
	FieldBodyStyle, FieldFuelType, FieldTransmission, FieldManufacturer,
	FieldCountry,
}

// SpecialFields are sourced exclusively from the commercial report provider.
var SpecialFields = []string{
	FieldDimensions, FieldSeating, FieldPricing, FieldMileage,
}

// IsEmpty is the single definition of field emptiness used across the
// engine: nil, an empty or whitespace-only string, or an empty
// map/slice/array. Anything else is a present value.
func IsEmpty(v any) bool {
	if v == nil {
		return true
	}
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val) == ""
	case map[string]any:
		return len(val) == 0
	case map[string]string:
		return len(val) == 0
	case []any:
		return len(val) == 0
	case []string:
		return len(val) == 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return rv.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
