package vehicle

import "strings"

const (
	chassisMinLength = 9
	chassisMaxLength = 14
	modelCodeMinLen  = 2
	modelCodeMaxLen  = 6
	serialMinLen     = 6
	serialMaxLen     = 7
)

// ChassisParts are the two components of a Japanese chassis number.
type ChassisParts struct {
	ModelCode    string
	SerialNumber string
}

// isChassisShape reports whether a normalized candidate has the chassis
// number shape: exactly one hyphen, 9-14 total characters, a 2-6 character
// alphanumeric model code and a 6-7 digit serial. Chassis numbers carry no
// check digit, so shape is the whole validation.
func isChassisShape(s string) bool {
	if strings.Count(s, "-") != 1 {
		return false
	}
	if len(s) < chassisMinLength || len(s) > chassisMaxLength {
		return false
	}
	head, tail, _ := strings.Cut(s, "-")
	if len(head) < modelCodeMinLen || len(head) > modelCodeMaxLen {
		return false
	}
	if len(tail) < serialMinLen || len(tail) > serialMaxLen {
		return false
	}
	for i := 0; i < len(head); i++ {
		if !isAlphanumeric(head[i]) {
			return false
		}
	}
	for i := 0; i < len(tail); i++ {
		if tail[i] < '0' || tail[i] > '9' {
			return false
		}
	}
	return true
}

func isAlphanumeric(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// ParseChassis normalizes raw input and splits it into model code and
// serial number. The second return value is false when the input is not a
// structurally valid chassis number.
func ParseChassis(raw string) (ChassisParts, bool) {
	normalized := Normalize(raw)
	if !isChassisShape(normalized) {
		return ChassisParts{}, false
	}
	head, tail, _ := strings.Cut(normalized, "-")
	return ChassisParts{ModelCode: head, SerialNumber: tail}, true
}
