package vehicle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/Shekel-Africa/vin-package-sub000/pkg/domain-errors"
)

func TestParseIdentifier(t *testing.T) {
	t.Run("classifies a VIN", func(t *testing.T) {
		id, err := ParseIdentifier("1HGCM82633A004352")
		require.NoError(t, err)
		assert.Equal(t, KindVIN, id.Kind())
		assert.Equal(t, "1HGCM82633A004352", id.String())
		assert.False(t, id.IsZero())
	})

	t.Run("classifies a chassis number", func(t *testing.T) {
		id, err := ParseIdentifier("JZA80-1004956")
		require.NoError(t, err)
		assert.Equal(t, KindChassisNumber, id.Kind())
	})

	t.Run("normalizes before classifying", func(t *testing.T) {
		id, err := ParseIdentifier("  1hgcm82633a004352 ")
		require.NoError(t, err)
		assert.Equal(t, "1HGCM82633A004352", id.String())
	})

	t.Run("rejects malformed input with invalid_input", func(t *testing.T) {
		_, err := ParseIdentifier("not-a-vin")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("zero identifier", func(t *testing.T) {
		var id Identifier
		assert.True(t, id.IsZero())
		assert.Empty(t, id.WMI())
		assert.Zero(t, id.YearCode())
	})
}

func TestIdentifierMasked(t *testing.T) {
	t.Run("VIN keeps WMI, VDS and year code", func(t *testing.T) {
		id := MustParseIdentifier("1HGCM82633A004352")
		assert.Equal(t, "1HGCM82633A******", id.Masked())
	})

	t.Run("chassis number keeps the model code", func(t *testing.T) {
		id := MustParseIdentifier("JZA80-1004956")
		assert.Equal(t, "JZA80-*******", id.Masked())
	})
}

func TestIsEmpty(t *testing.T) {
	tests := []struct {
		name  string
		value any
		empty bool
	}{
		{name: "nil", value: nil, empty: true},
		{name: "empty string", value: "", empty: true},
		{name: "whitespace string", value: "   \t", empty: true},
		{name: "empty any map", value: map[string]any{}, empty: true},
		{name: "empty string map", value: map[string]string{}, empty: true},
		{name: "empty slice", value: []any{}, empty: true},
		{name: "nil typed pointer", value: (*int)(nil), empty: true},
		{name: "value string", value: "Toyota", empty: false},
		{name: "zero int is a present value", value: 0, empty: false},
		{name: "false is a present value", value: false, empty: false},
		{name: "populated map", value: map[string]any{"k": "v"}, empty: false},
		{name: "populated slice", value: []string{"x"}, empty: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.empty, IsEmpty(tt.value))
		})
	}
}
