package source_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Shekel-Africa/vin-package-sub000/internal/source"
	"github.com/Shekel-Africa/vin-package-sub000/pkg/vehicle"
)

func TestNewFailureCarriesReasonAndEmptyData(t *testing.T) {
	res := source.NewFailure(source.NameNHTSA, "connection refused", source.Metadata{Timestamp: time.Now()})

	assert.False(t, res.Success)
	assert.Equal(t, "connection refused", res.Err)
	assert.NotNil(t, res.Data)
	assert.Empty(t, res.Data)
}

func TestNewFailureDefaultsReason(t *testing.T) {
	res := source.NewFailure(source.NameNHTSA, "", source.Metadata{})

	assert.NotEmpty(t, res.Err, "a failed result must never have an empty reason")
}

func TestNewSuccessNormalizesNilData(t *testing.T) {
	res := source.NewSuccess(source.NameLocal, nil, source.Metadata{})

	assert.True(t, res.Success)
	assert.NotNil(t, res.Data)
	assert.Empty(t, res.Err)
}

func TestNewSuccessKeepsData(t *testing.T) {
	data := map[string]any{vehicle.FieldMake: "Honda", vehicle.FieldYear: 2003}
	res := source.NewSuccess(source.NameLocal, data, source.Metadata{ExecutionTime: 2 * time.Millisecond})

	assert.Equal(t, "Honda", res.Data[vehicle.FieldMake])
	assert.Equal(t, 2003, res.Data[vehicle.FieldYear])
	assert.Equal(t, 2*time.Millisecond, res.Metadata.ExecutionTime)
}
