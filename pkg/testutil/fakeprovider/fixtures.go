package fakeprovider

// Canned payloads for the documented Honda test VIN 1HGCM82633A004352.
// Flow-level and CLI tests share them so field-merge assertions line up
// across suites.

// AccordVPICRow is a trimmed flat-format result row for the test VIN.
func AccordVPICRow() map[string]string {
	return map[string]string{
		"Make":               "HONDA",
		"Model":              "Accord",
		"ModelYear":          "2003",
		"Trim":               "EX-V6",
		"BodyClass":          "Coupe",
		"EngineModel":        "J30A4",
		"DisplacementL":      "3.0",
		"EngineCylinders":    "6",
		"FuelTypePrimary":    "Gasoline",
		"TransmissionStyle":  "Automatic",
		"TransmissionSpeeds": "5",
		"Manufacturer":       "AMERICAN HONDA MOTOR CO., INC.",
		"PlantCity":          "MARYSVILLE",
		"PlantCountry":       "UNITED STATES (USA)",
		"VehicleType":        "PASSENGER CAR",
		"ErrorCode":          "0",
		"ErrorText":          "0 - VIN decoded clean. Check Digit (9th position) is correct",
	}
}

// AccordReport is the paid-provider report for the same VIN. It carries the
// fields only that provider knows: dimensions, seating, pricing, mileage.
func AccordReport() Report {
	return Report{
		Vehicle: map[string]any{
			"make":       "Honda",
			"model":      "Accord",
			"year":       2003,
			"trim":       "EX V6",
			"engine":     "3.0L V6 SOHC 24V",
			"made_in":    "United States",
			"body_style": "Coupe",
			"dimensions": map[string]any{
				"length_in": 187.6,
				"width_in":  71.3,
				"height_in": 55.7,
			},
			"seating":    "5",
			"drive_type": "FWD",
		},
		Pricing: map[string]any{
			"average": 4850,
			"below":   3200,
			"above":   6400,
		},
		Mileage: map[string]any{
			"last_reported": 145200,
			"average_yearly": map[string]any{
				"2021": 9100,
				"2022": 8400,
			},
		},
	}
}
