package merge_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/Shekel-Africa/vin-package-sub000/internal/merge"
	"github.com/Shekel-Africa/vin-package-sub000/internal/source"
	dErrors "github.com/Shekel-Africa/vin-package-sub000/pkg/domain-errors"
	"github.com/Shekel-Africa/vin-package-sub000/pkg/vehicle"
)

func success(name string, data map[string]any) source.Result {
	return source.NewSuccess(name, data, source.Metadata{
		ExecutionTime: 10 * time.Millisecond,
		Timestamp:     time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	})
}

func successAt(name string, data map[string]any, ts time.Time) source.Result {
	return source.NewSuccess(name, data, source.Metadata{
		ExecutionTime: 10 * time.Millisecond,
		Timestamp:     ts,
	})
}

type MergeSuite struct {
	suite.Suite
	ctx context.Context
}

func TestMergeSuite(t *testing.T) {
	suite.Run(t, new(MergeSuite))
}

func (s *MergeSuite) SetupTest() {
	s.ctx = context.Background()
}

func (s *MergeSuite) TestParseStrategy() {
	for _, raw := range []string{"priority", "best_effort", "complete"} {
		parsed, err := merge.ParseStrategy(raw)
		s.NoError(err)
		s.Equal(raw, string(parsed))
	}

	_, err := merge.ParseStrategy("newest_first")
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *MergeSuite) TestEmptyInputYieldsEmptyRecord() {
	m := merge.New()

	s.Empty(m.Merge(s.ctx, nil))

	failed := source.NewFailure(source.NameNHTSA, "upstream down", source.Metadata{})
	s.Empty(m.Merge(s.ctx, []source.Result{failed}))
}

func (s *MergeSuite) TestSingleResultPassesThrough() {
	m := merge.New()
	res := success(source.NameLocal, map[string]any{
		vehicle.FieldMake:    "Honda",
		vehicle.FieldCountry: "United States",
	})

	rec := m.Merge(s.ctx, []source.Result{res})

	s.Equal("Honda", rec[vehicle.FieldMake])
	s.NotContains(rec, vehicle.FieldValidation, "single-result merges do not synthesize validation")

	md, ok := rec[merge.FieldCacheMetadata].(merge.CacheMetadata)
	s.Require().True(ok)
	s.Equal([]string{source.NameLocal}, md.Sources)

	rec[vehicle.FieldMake] = "mutated"
	s.Equal("Honda", res.Data[vehicle.FieldMake], "merging must not alias source data")
}

func (s *MergeSuite) TestPriorityPrefersTableOrder() {
	m := merge.New()
	results := []source.Result{
		success(source.NameLocal, map[string]any{vehicle.FieldMake: "X"}),
		success(source.NameNHTSA, map[string]any{
			vehicle.FieldMake: "Y",
			vehicle.FieldTrim: "LX",
		}),
		success(source.NameClearVIN, map[string]any{vehicle.FieldTrim: "EX-V6"}),
	}

	rec := m.Merge(s.ctx, results)

	s.Equal("Y", rec[vehicle.FieldMake], "the public decoder outranks local tables")
	s.Equal("EX-V6", rec[vehicle.FieldTrim], "the report provider outranks the public decoder for trim")
}

func (s *MergeSuite) TestPriorityFallsBackToSuppliedOrder() {
	m := merge.New()
	results := []source.Result{
		success("scraper_a", map[string]any{vehicle.FieldCountry: "Japan"}),
		success("scraper_b", map[string]any{vehicle.FieldCountry: "Germany"}),
	}

	rec := m.Merge(s.ctx, results)

	s.Equal("Japan", rec[vehicle.FieldCountry], "unlisted sources resolve in supplied order")
}

func (s *MergeSuite) TestSpecialFieldsExclusiveToReportProvider() {
	m := merge.New()
	pricing := map[string]any{"retail_usd": 4200}

	rec := m.Merge(s.ctx, []source.Result{
		success(source.NameNHTSA, map[string]any{
			vehicle.FieldMake:    "HONDA",
			vehicle.FieldPricing: pricing,
		}),
		success(source.NameLocal, map[string]any{vehicle.FieldMake: "Honda"}),
	})
	s.NotContains(rec, vehicle.FieldPricing, "pricing only ever comes from the report provider")

	rec = m.Merge(s.ctx, []source.Result{
		success(source.NameNHTSA, map[string]any{vehicle.FieldMake: "HONDA"}),
		success(source.NameClearVIN, map[string]any{vehicle.FieldPricing: pricing}),
	})
	s.Equal(pricing, rec[vehicle.FieldPricing])
}

func (s *MergeSuite) TestValidationDefaultsWhenAbsent() {
	m := merge.New()

	rec := m.Merge(s.ctx, []source.Result{
		success(source.NameLocal, map[string]any{vehicle.FieldMake: "Honda"}),
		success(source.NameClearVIN, map[string]any{vehicle.FieldModel: "Accord"}),
	})

	validation, ok := rec[vehicle.FieldValidation].(map[string]any)
	s.Require().True(ok)
	s.Nil(validation["error_code"])
	s.Nil(validation["error_text"])
	s.Equal(true, validation["is_valid"])
}

func (s *MergeSuite) TestValidationPrefersPublicDecoder() {
	m := merge.New()
	fromNHTSA := map[string]any{"error_code": "0", "is_valid": true}
	fromLocal := map[string]any{"error_code": nil, "is_valid": false}

	rec := m.Merge(s.ctx, []source.Result{
		success(source.NameLocal, map[string]any{vehicle.FieldValidation: fromLocal}),
		success(source.NameNHTSA, map[string]any{vehicle.FieldValidation: fromNHTSA}),
	})
	s.Equal(fromNHTSA, rec[vehicle.FieldValidation])

	rec = m.Merge(s.ctx, []source.Result{
		success(source.NameLocal, map[string]any{vehicle.FieldValidation: fromLocal}),
		success(source.NameClearVIN, map[string]any{vehicle.FieldModel: "Accord"}),
	})
	s.Equal(fromLocal, rec[vehicle.FieldValidation], "any source's validation beats the default")
}

func (s *MergeSuite) TestAdditionalInfoUnionLaterWins() {
	m := merge.New()

	rec := m.Merge(s.ctx, []source.Result{
		success(source.NameLocal, map[string]any{
			vehicle.FieldAdditionalInfo: map[string]any{"wmi": "1HG", "shared": "a"},
		}),
		success(source.NameNHTSA, map[string]any{
			vehicle.FieldAdditionalInfo: map[string]any{"vehicle_type": "PASSENGER CAR", "shared": "b"},
		}),
	})

	info, ok := rec[vehicle.FieldAdditionalInfo].(map[string]any)
	s.Require().True(ok)
	s.Equal("1HG", info["wmi"])
	s.Equal("PASSENGER CAR", info["vehicle_type"])
	s.Equal("b", info["shared"], "later sources win additional_info collisions")
}

func (s *MergeSuite) TestBestEffortKeepsFirstNonEmpty() {
	m := merge.New(merge.WithStrategy(merge.StrategyBestEffort))

	rec := m.Merge(s.ctx, []source.Result{
		success(source.NameLocal, map[string]any{
			vehicle.FieldMake:  "Toyota",
			vehicle.FieldModel: nil,
			vehicle.FieldTrim:  "   ",
		}),
		success(source.NameNHTSA, map[string]any{
			vehicle.FieldMake:  "Mazda",
			vehicle.FieldModel: "Camry",
			vehicle.FieldYear:  "2021",
			vehicle.FieldTrim:  "LE",
		}),
	})

	s.Equal("Toyota", rec[vehicle.FieldMake], "first non-empty value is never overwritten")
	s.Equal("Camry", rec[vehicle.FieldModel])
	s.Equal("2021", rec[vehicle.FieldYear])
	s.Equal("LE", rec[vehicle.FieldTrim], "whitespace-only values do not count as present")
}

func (s *MergeSuite) TestCompleteBasesOnRichestSource() {
	m := merge.New(merge.WithStrategy(merge.StrategyComplete))

	rec := m.Merge(s.ctx, []source.Result{
		success(source.NameLocal, map[string]any{
			vehicle.FieldMake:    "Honda",
			vehicle.FieldCountry: "United States",
		}),
		success(source.NameNHTSA, map[string]any{
			vehicle.FieldMake:      "HONDA",
			vehicle.FieldModel:     "Accord",
			vehicle.FieldYear:      2003,
			vehicle.FieldBodyStyle: "Coupe",
		}),
	})

	s.Equal("HONDA", rec[vehicle.FieldMake], "the richest source is the base record")
	s.Equal("Accord", rec[vehicle.FieldModel])
	s.Equal("United States", rec[vehicle.FieldCountry], "gaps fill from the remaining sources")
}

func (s *MergeSuite) TestNewestWinsByTimestamp() {
	m := merge.New(merge.WithNewest(true))
	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	rec := m.Merge(s.ctx, []source.Result{
		successAt(source.NameNHTSA, map[string]any{vehicle.FieldMake: "Stale"}, older),
		successAt(source.NameLocal, map[string]any{vehicle.FieldMake: "Fresh"}, newer),
	})
	s.Equal("Fresh", rec[vehicle.FieldMake], "the greatest timestamp outranks the static table")

	rec = m.Merge(s.ctx, []source.Result{
		successAt("scraper_a", map[string]any{vehicle.FieldMake: "First"}, older),
		successAt("scraper_b", map[string]any{vehicle.FieldMake: "Second"}, older),
	})
	s.Equal("First", rec[vehicle.FieldMake], "timestamp ties keep supplied order")
}

func (s *MergeSuite) TestCacheMetadataAggregates() {
	m := merge.New()
	first := source.NewSuccess(source.NameNHTSA, map[string]any{vehicle.FieldMake: "HONDA"},
		source.Metadata{ExecutionTime: 10 * time.Millisecond, Attempts: 1})
	second := source.NewSuccess(source.NameLocal, map[string]any{vehicle.FieldCountry: "United States"},
		source.Metadata{ExecutionTime: 25 * time.Millisecond, CacheHit: true})

	rec := m.Merge(s.ctx, []source.Result{first, second})

	md, ok := rec[merge.FieldCacheMetadata].(merge.CacheMetadata)
	s.Require().True(ok)
	s.Equal([]string{source.NameNHTSA, source.NameLocal}, md.Sources)
	s.Equal(35*time.Millisecond, md.TotalExecutionTime)
	s.Equal(1, md.SourceMetadata[source.NameNHTSA].Attempts)
	s.True(md.SourceMetadata[source.NameLocal].CacheHit)
}

func (s *MergeSuite) TestFailedResultsDoNotContribute() {
	m := merge.New()

	rec := m.Merge(s.ctx, []source.Result{
		success(source.NameLocal, map[string]any{vehicle.FieldMake: "Honda"}),
		source.NewFailure(source.NameNHTSA, "upstream down", source.Metadata{}),
	})

	s.Equal("Honda", rec[vehicle.FieldMake])
	md, ok := rec[merge.FieldCacheMetadata].(merge.CacheMetadata)
	s.Require().True(ok)
	s.Equal([]string{source.NameLocal}, md.Sources)
}

func (s *MergeSuite) TestFieldPriorityOverride() {
	m := merge.New(merge.WithFieldPriorities(map[string][]string{
		vehicle.FieldMake: {source.NameLocal, source.NameNHTSA},
	}))

	rec := m.Merge(s.ctx, []source.Result{
		success(source.NameNHTSA, map[string]any{
			vehicle.FieldMake:  "HONDA",
			vehicle.FieldModel: "Accord",
		}),
		success(source.NameLocal, map[string]any{vehicle.FieldMake: "Honda"}),
	})

	s.Equal("Honda", rec[vehicle.FieldMake], "the override applies to the named field")
	s.Equal("Accord", rec[vehicle.FieldModel], "other fields keep the default table")
}
