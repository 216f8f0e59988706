package nhtsa

import (
	"strconv"
	"strings"

	"github.com/Shekel-Africa/vin-package-sub000/pkg/vehicle"
)

// consumedKeys are vPIC fields mapped onto standard record fields; every
// other non-blank field lands in additional_info.
var consumedKeys = map[string]bool{
	"Make":               true,
	"Model":              true,
	"ModelYear":          true,
	"Trim":               true,
	"EngineModel":        true,
	"DisplacementL":      true,
	"EngineCylinders":    true,
	"PlantCity":          true,
	"PlantCountry":       true,
	"BodyClass":          true,
	"FuelTypePrimary":    true,
	"TransmissionStyle":  true,
	"TransmissionSpeeds": true,
	"Manufacturer":       true,
	"ErrorCode":          true,
	"ErrorText":          true,
}

// mapVPICRecord turns one flat vPIC result row into the standard attribute
// set.
func mapVPICRecord(rec map[string]string) map[string]any {
	data := map[string]any{}

	setString(data, vehicle.FieldMake, rec["Make"])
	setString(data, vehicle.FieldModel, rec["Model"])
	setYear(data, rec["ModelYear"])
	setString(data, vehicle.FieldTrim, rec["Trim"])
	setString(data, vehicle.FieldEngine, engineDescription(rec))
	setString(data, vehicle.FieldPlant, plantDescription(rec))
	setString(data, vehicle.FieldBodyStyle, rec["BodyClass"])
	setString(data, vehicle.FieldFuelType, rec["FuelTypePrimary"])
	setString(data, vehicle.FieldTransmission, transmissionDescription(rec))
	setString(data, vehicle.FieldManufacturer, rec["Manufacturer"])
	setString(data, vehicle.FieldCountry, rec["PlantCountry"])

	data[vehicle.FieldValidation] = validationBlock(rec["ErrorCode"], rec["ErrorText"])

	extra := map[string]any{}
	for key, value := range rec {
		if consumedKeys[key] || strings.TrimSpace(value) == "" {
			continue
		}
		extra[key] = value
	}
	if len(extra) > 0 {
		data[vehicle.FieldAdditionalInfo] = extra
	}

	return data
}

// validationBlock reports validity the way vPIC does: error code "0" (or
// blank) means the VIN decoded cleanly.
func validationBlock(code, text string) map[string]any {
	code = strings.TrimSpace(code)
	text = strings.TrimSpace(text)

	block := map[string]any{
		"error_code": nil,
		"error_text": nil,
		"is_valid":   code == "" || code == "0",
	}
	if code != "" {
		block["error_code"] = code
	}
	if text != "" {
		block["error_text"] = text
	}
	return block
}

func engineDescription(rec map[string]string) string {
	var parts []string
	if model := strings.TrimSpace(rec["EngineModel"]); model != "" {
		parts = append(parts, model)
	}
	if disp := strings.TrimSpace(rec["DisplacementL"]); disp != "" {
		parts = append(parts, disp+"L")
	}
	if cyl := strings.TrimSpace(rec["EngineCylinders"]); cyl != "" {
		parts = append(parts, cyl+"cyl")
	}
	return strings.Join(parts, " ")
}

func plantDescription(rec map[string]string) string {
	var parts []string
	if city := strings.TrimSpace(rec["PlantCity"]); city != "" {
		parts = append(parts, city)
	}
	if country := strings.TrimSpace(rec["PlantCountry"]); country != "" {
		parts = append(parts, country)
	}
	return strings.Join(parts, ", ")
}

func transmissionDescription(rec map[string]string) string {
	style := strings.TrimSpace(rec["TransmissionStyle"])
	speeds := strings.TrimSpace(rec["TransmissionSpeeds"])
	switch {
	case style == "" && speeds == "":
		return ""
	case speeds == "":
		return style
	case style == "":
		return speeds + "-speed"
	default:
		return style + " (" + speeds + "-speed)"
	}
}

func setString(data map[string]any, field, value string) {
	if v := strings.TrimSpace(value); v != "" {
		data[field] = v
	}
}

// setYear stores the model year as an int when vPIC sends a number, else
// keeps the raw string.
func setYear(data map[string]any, raw string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return
	}
	if year, err := strconv.Atoi(raw); err == nil {
		data[vehicle.FieldYear] = year
		return
	}
	data[vehicle.FieldYear] = raw
}
