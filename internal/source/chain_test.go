package source_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/Shekel-Africa/vin-package-sub000/internal/source"
	dErrors "github.com/Shekel-Africa/vin-package-sub000/pkg/domain-errors"
	"github.com/Shekel-Africa/vin-package-sub000/pkg/vehicle"
)

// stubSource is a scriptable source for chain tests.
type stubSource struct {
	name     string
	priority int
	enabled  atomic.Bool
	handles  bool
	succeeds bool
	delay    time.Duration
	calls    atomic.Int32
}

func newStub(name string, priority int, succeeds bool) *stubSource {
	s := &stubSource{
		name:     name,
		priority: priority,
		handles:  true,
		succeeds: succeeds,
	}
	s.enabled.Store(true)
	return s
}

func (s *stubSource) Name() string     { return s.name }
func (s *stubSource) Priority() int    { return s.priority }
func (s *stubSource) Enabled() bool    { return s.enabled.Load() }
func (s *stubSource) SetEnabled(v bool) { s.enabled.Store(v) }

func (s *stubSource) CanHandle(vehicle.Identifier) bool { return s.handles }

func (s *stubSource) Decode(_ context.Context, _ vehicle.Identifier) source.Result {
	s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	md := source.Metadata{Timestamp: time.Now(), ExecutionTime: s.delay}
	if s.succeeds {
		return source.NewSuccess(s.name, map[string]any{vehicle.FieldMake: "Make-" + s.name}, md)
	}
	return source.NewFailure(s.name, "stub failure", md)
}

type ChainSuite struct {
	suite.Suite
	chain *source.Chain
	id    vehicle.Identifier
}

func TestChainSuite(t *testing.T) {
	suite.Run(t, new(ChainSuite))
}

func (s *ChainSuite) SetupTest() {
	s.chain = source.NewChain()
	s.id = vehicle.MustParseIdentifier("1HGCM82633A004352")
}

func (s *ChainSuite) TestFailFastStopsAtFirstSuccess() {
	a := newStub("a", 1, false)
	b := newStub("b", 2, true)
	c := newStub("c", 3, true)
	for _, src := range []*stubSource{a, b, c} {
		s.Require().NoError(s.chain.Add(src))
	}

	result := s.chain.Execute(context.Background(), s.id, source.StrategyFailFast)

	s.Require().Len(result.Successes, 1)
	s.Equal("b", result.Successes[0].Source)
	s.Require().Len(result.Failures, 1)
	s.Equal("a", result.Failures[0].Source)
	s.Equal(int32(0), c.calls.Load(), "sources after the first success must never run")
	s.Equal(source.StrategyFailFast, result.Strategy)
	s.True(result.HasSuccess())
	s.Equal(2, result.Attempted())
}

func (s *ChainSuite) TestCollectAllRunsEverySource() {
	a := newStub("a", 1, false)
	b := newStub("b", 2, true)
	c := newStub("c", 3, true)
	for _, src := range []*stubSource{a, b, c} {
		s.Require().NoError(s.chain.Add(src))
	}

	result := s.chain.Execute(context.Background(), s.id, source.StrategyCollectAll)

	s.Require().Len(result.Successes, 2)
	s.Require().Len(result.Failures, 1)
	s.Equal("a", result.Failures[0].Source)
	s.Equal(int32(1), a.calls.Load())
	s.Equal(int32(1), b.calls.Load())
	s.Equal(int32(1), c.calls.Load())
}

func (s *ChainSuite) TestCollectAllKeepsChainOrder() {
	// b finishes last but must still come first in the successes.
	b := newStub("b", 1, true)
	b.delay = 30 * time.Millisecond
	c := newStub("c", 2, true)

	s.Require().NoError(s.chain.Add(b))
	s.Require().NoError(s.chain.Add(c))

	result := s.chain.Execute(context.Background(), s.id, source.StrategyCollectAll)

	s.Require().Len(result.Successes, 2)
	s.Equal("b", result.Successes[0].Source)
	s.Equal("c", result.Successes[1].Source)
}

func (s *ChainSuite) TestEmptyChainReturnsEmptyResult() {
	result := s.chain.Execute(context.Background(), s.id, source.StrategyFailFast)

	s.False(result.HasSuccess())
	s.Zero(result.Attempted())
	s.Equal(source.StrategyFailFast, result.Strategy)
}

func (s *ChainSuite) TestCanHandleSkipsSilently() {
	skipped := newStub("skipped", 1, true)
	skipped.handles = false
	b := newStub("b", 2, true)

	s.Require().NoError(s.chain.Add(skipped))
	s.Require().NoError(s.chain.Add(b))

	result := s.chain.Execute(context.Background(), s.id, source.StrategyCollectAll)

	s.Equal(int32(0), skipped.calls.Load())
	s.Empty(result.Failures, "a skip is not a failure")
	s.Require().Len(result.Successes, 1)
	s.Equal("b", result.Successes[0].Source)
}

func (s *ChainSuite) TestDisableExcludesSource() {
	a := newStub("a", 1, true)
	b := newStub("b", 2, true)
	s.Require().NoError(s.chain.Add(a))
	s.Require().NoError(s.chain.Add(b))

	s.True(s.chain.Disable("a"))

	result := s.chain.Execute(context.Background(), s.id, source.StrategyFailFast)
	s.Require().Len(result.Successes, 1)
	s.Equal("b", result.Successes[0].Source)
	s.Equal(int32(0), a.calls.Load())

	s.True(s.chain.Enable("a"))
	result = s.chain.Execute(context.Background(), s.id, source.StrategyFailFast)
	s.Require().Len(result.Successes, 1)
	s.Equal("a", result.Successes[0].Source)

	s.False(s.chain.Disable("missing"))
}

func (s *ChainSuite) TestEnabledSourcesSortedByPriority() {
	low := newStub("low", 30, true)
	high := newStub("high", 1, true)
	mid := newStub("mid", 10, true)
	for _, src := range []*stubSource{low, high, mid} {
		s.Require().NoError(s.chain.Add(src))
	}

	var names []string
	for _, src := range s.chain.EnabledSources() {
		names = append(names, src.Name())
	}
	s.Equal([]string{"high", "mid", "low"}, names)
}

func (s *ChainSuite) TestSortByPriorityIsStable() {
	first := newStub("first", 5, true)
	second := newStub("second", 5, true)
	s.Require().NoError(s.chain.Add(first))
	s.Require().NoError(s.chain.Add(second))

	s.chain.SortByPriority()

	s.Equal([]string{"first", "second"}, s.chain.Names())
}

func (s *ChainSuite) TestReorder() {
	a := newStub("a", 1, true)
	b := newStub("b", 2, true)
	c := newStub("c", 3, true)
	for _, src := range []*stubSource{a, b, c} {
		s.Require().NoError(s.chain.Add(src))
	}

	s.chain.Reorder([]string{"c", "missing", "a"})

	s.Equal([]string{"c", "a", "b"}, s.chain.Names(),
		"listed sources lead in given order, unlisted keep existing order")
}

func (s *ChainSuite) TestRemove() {
	a := newStub("a", 1, true)
	s.Require().NoError(s.chain.Add(a))

	s.True(s.chain.Remove("a"))
	s.False(s.chain.Remove("a"))
	s.Empty(s.chain.Names())
}

func (s *ChainSuite) TestAddDuplicateConflicts() {
	s.Require().NoError(s.chain.Add(newStub("dup", 1, true)))

	err := s.chain.Add(newStub("dup", 2, true))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}
