package vehicle

// Validation is the outcome of validating a raw identifier. Immutable once
// constructed.
type Validation struct {
	Valid  bool
	Reason string
}

// Ok returns a passing validation outcome.
func Ok() Validation {
	return Validation{Valid: true}
}

// Invalid returns a failing validation outcome with a human-readable reason.
func Invalid(reason string) Validation {
	return Validation{Valid: false, Reason: reason}
}

// Validate decides whether raw input is a structurally valid VIN or chassis
// number. Input is normalized (trimmed, uppercased) first. Chassis-shaped
// input is valid on shape alone; everything else must pass the 17-character
// VIN rules, including the region-dependent ISO 3779 check digit.
func Validate(raw string) Validation {
	normalized := Normalize(raw)
	if normalized == "" {
		return Invalid("identifier is empty")
	}
	if isChassisShape(normalized) {
		return Ok()
	}
	return validateVIN(normalized)
}
