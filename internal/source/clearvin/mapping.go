package clearvin

import (
	"strconv"
	"strings"

	"github.com/Shekel-Africa/vin-package-sub000/pkg/vehicle"
)

// translatedKeys maps report vehicle-block keys onto canonical attribute
// names. Anything else in the block lands in additional_info.
var translatedKeys = map[string]string{
	"make":         vehicle.FieldMake,
	"model":        vehicle.FieldModel,
	"year":         vehicle.FieldYear,
	"trim":         vehicle.FieldTrim,
	"engine":       vehicle.FieldEngine,
	"made_in":      vehicle.FieldCountry,
	"plant":        vehicle.FieldPlant,
	"body_style":   vehicle.FieldBodyStyle,
	"fuel_type":    vehicle.FieldFuelType,
	"transmission": vehicle.FieldTransmission,
	"manufacturer": vehicle.FieldManufacturer,
	"dimensions":   vehicle.FieldDimensions,
	"seating":      vehicle.FieldSeating,
}

func mapReport(env reportEnvelope) map[string]any {
	data := make(map[string]any, len(env.Report.Vehicle)+2)
	extra := map[string]any{}

	for key, value := range env.Report.Vehicle {
		if vehicle.IsEmpty(value) {
			continue
		}
		field, ok := translatedKeys[key]
		if !ok {
			extra[key] = value
			continue
		}
		if field == vehicle.FieldYear {
			value = normalizeYear(value)
		}
		data[field] = value
	}

	if !vehicle.IsEmpty(env.Report.Pricing) {
		data[vehicle.FieldPricing] = env.Report.Pricing
	}
	if !vehicle.IsEmpty(env.Report.Mileage) {
		data[vehicle.FieldMileage] = env.Report.Mileage
	}
	if len(extra) > 0 {
		data[vehicle.FieldAdditionalInfo] = extra
	}
	return data
}

// normalizeYear turns JSON numbers and digit strings into ints so the year
// field compares equal no matter which source produced it.
func normalizeYear(v any) any {
	switch year := v.(type) {
	case float64:
		return int(year)
	case int:
		return year
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(year)); err == nil {
			return n
		}
	}
	return v
}
