// Package refdata holds the reference tables the local decoder consults:
// country by first VIN character, WMI to manufacturer, model-year codes and
// the Japanese model-code database.
//
// The built-in tables are process-wide, loaded once and never mutated.
// Learned WMI entries live in a separate per-instance overlay (see Learned)
// so built-in knowledge and runtime-acquired knowledge never blur.
package refdata

import (
	"strings"
	"sync"
)

// Tables is the immutable built-in reference data set.
type Tables struct {
	countryByFirstChar map[byte]string
	makeByWMI          map[string]string
	jdmModels          map[string]JDMModel
}

// JDMModel is one entry of the Japanese model-code database.
type JDMModel struct {
	Make  string
	Model string
}

var (
	loadOnce sync.Once
	loaded   *Tables
)

// Load returns the process-wide reference tables, building them on first
// use. The returned value is shared and must be treated as read-only.
func Load() *Tables {
	loadOnce.Do(func() {
		loaded = &Tables{
			countryByFirstChar: builtinCountries,
			makeByWMI:          builtinWMIs,
			jdmModels:          builtinJDMModels,
		}
	})
	return loaded
}

// CountryForFirstChar resolves the build country class from the first
// identifier character.
func (t *Tables) CountryForFirstChar(c byte) (string, bool) {
	country, ok := t.countryByFirstChar[c]
	return country, ok
}

// MakeForWMI resolves a World Manufacturer Identifier (exact three
// characters) to a manufacturer name.
func (t *Tables) MakeForWMI(wmi string) (string, bool) {
	name, ok := t.makeByWMI[strings.ToUpper(wmi)]
	return name, ok
}

// KnownWMI reports whether the built-in table contains the WMI. Learned
// overlays use this to guarantee they never shadow a built-in entry.
func (t *Tables) KnownWMI(wmi string) bool {
	_, ok := t.makeByWMI[strings.ToUpper(wmi)]
	return ok
}

// JDMModelForCode resolves a chassis model code to its make and model.
// Exact matches win; otherwise the longest known prefix of the code is
// used, since serial ranges share a code family (JZA80, JZA81, ...).
func (t *Tables) JDMModelForCode(code string) (JDMModel, bool) {
	code = strings.ToUpper(code)
	if m, ok := t.jdmModels[code]; ok {
		return m, true
	}
	for l := len(code) - 1; l >= 2; l-- {
		if m, ok := t.jdmModels[code[:l]]; ok {
			return m, true
		}
	}
	return JDMModel{}, false
}

// YearForCode resolves the model-year code at VIN position 10. VIN year
// codes repeat on a 30-year cycle; position 7 disambiguates: a letter there
// indicates the 2010+ cycle, a digit the 1980-2009 cycle. Digit codes 1-9
// are unambiguous (2001-2009). Returns false for characters that are not
// year codes (0, I, O, Q, U, Z).
func YearForCode(code byte, position7 byte) (int, bool) {
	if code >= '1' && code <= '9' {
		return 2000 + int(code-'0'), true
	}
	offset, ok := yearLetterOffsets[code]
	if !ok {
		return 0, false
	}
	if position7 >= 'A' && position7 <= 'Z' {
		return 2010 + offset, true
	}
	return 1980 + offset, true
}
