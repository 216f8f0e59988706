// Package vehicle defines the domain primitives of the decoding engine:
// vehicle identifiers (17-character VINs and Japanese chassis numbers),
// their validation rules, and the attribute field names shared by sources
// and the merge engine.
//
// Identifiers are validated at parse time and immutable afterwards, so the
// rest of the engine never re-checks structure.
package vehicle

import (
	"strings"

	dErrors "github.com/Shekel-Africa/vin-package-sub000/pkg/domain-errors"
)

// Kind is the closed set of identifier kinds the engine understands.
type Kind string

const (
	// KindVIN is a 17-character ISO 3779 vehicle identification number.
	KindVIN Kind = "vin"
	// KindChassisNumber is a Japanese domestic chassis number of the form
	// MODEL_CODE-SERIAL (no check digit, no encoded model year).
	KindChassisNumber Kind = "japanese_chassis_number"
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// Identifier is a normalized, validated vehicle identifier. The zero value
// is not a valid identifier; construct one through ParseIdentifier.
type Identifier struct {
	value string
	kind  Kind
}

// ParseIdentifier normalizes raw input (trim, uppercase), classifies it as a
// VIN or a chassis number and validates it. Malformed input is rejected with
// an invalid_input domain error carrying the validation reason.
func ParseIdentifier(raw string) (Identifier, error) {
	normalized := Normalize(raw)
	outcome := Validate(normalized)
	if !outcome.Valid {
		return Identifier{}, dErrors.New(dErrors.CodeInvalidInput, outcome.Reason)
	}
	kind := KindVIN
	if isChassisShape(normalized) {
		kind = KindChassisNumber
	}
	return Identifier{value: normalized, kind: kind}, nil
}

// MustParseIdentifier is ParseIdentifier for tests and seed data; it panics
// on malformed input.
func MustParseIdentifier(raw string) Identifier {
	id, err := ParseIdentifier(raw)
	if err != nil {
		panic(err)
	}
	return id
}

// Normalize uppercases and trims raw identifier input. Validation and kind
// classification always operate on the normalized form.
func Normalize(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// String returns the normalized identifier value.
func (i Identifier) String() string {
	return i.value
}

// Kind returns the identifier kind.
func (i Identifier) Kind() Kind {
	return i.kind
}

// IsZero reports whether the identifier was never parsed.
func (i Identifier) IsZero() bool {
	return i.value == ""
}

// WMI returns the World Manufacturer Identifier (characters 1-3) of a VIN,
// or "" for chassis numbers.
func (i Identifier) WMI() string {
	if i.kind != KindVIN || len(i.value) != vinLength {
		return ""
	}
	return i.value[0:3]
}

// VDS returns the Vehicle Descriptor Section (characters 4-9) of a VIN.
func (i Identifier) VDS() string {
	if i.kind != KindVIN || len(i.value) != vinLength {
		return ""
	}
	return i.value[3:9]
}

// VIS returns the Vehicle Identifier Section (characters 10-17) of a VIN.
func (i Identifier) VIS() string {
	if i.kind != KindVIN || len(i.value) != vinLength {
		return ""
	}
	return i.value[9:17]
}

// YearCode returns the model-year code character (position 10) of a VIN,
// or 0 for chassis numbers.
func (i Identifier) YearCode() byte {
	if i.kind != KindVIN || len(i.value) != vinLength {
		return 0
	}
	return i.value[9]
}

// Masked returns the identifier with its serial portion replaced by '*',
// for logs and audit payloads. VINs keep WMI+VDS and the year/plant codes;
// chassis numbers keep the model code.
func (i Identifier) Masked() string {
	switch i.kind {
	case KindVIN:
		if len(i.value) != vinLength {
			return i.value
		}
		return i.value[:11] + strings.Repeat("*", 6)
	case KindChassisNumber:
		head, _, ok := strings.Cut(i.value, "-")
		if !ok {
			return i.value
		}
		return head + "-" + strings.Repeat("*", len(i.value)-len(head)-1)
	default:
		return i.value
	}
}
