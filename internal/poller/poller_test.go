package poller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/KevinKickass/OpenPanelCore/internal/measure"
	"github.com/KevinKickass/OpenPanelCore/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeLookup is a scriptable measure.Lookup. Set block to delay Latest
// until the channel is closed, simulating a slow endpoint.
type fakeLookup struct {
	mu     sync.Mutex
	point  *measure.Point
	err    error
	series []measure.Point
	calls  int
	block  chan struct{}
}

func (f *fakeLookup) Latest(ctx context.Context, _ types.Binding) (*measure.Point, error) {
	f.mu.Lock()
	f.calls++
	point, err, block := f.point, f.err, f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return point, err
}

func (f *fakeLookup) Series(ctx context.Context, _ types.Binding, _ time.Duration, _ int) ([]measure.Point, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.series, f.err
}

func (f *fakeLookup) set(point *measure.Point, err error) {
	f.mu.Lock()
	f.point = point
	f.err = err
	f.mu.Unlock()
}

func (f *fakeLookup) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func numberWidget() types.Widget {
	return types.Widget{
		ID:   "w1",
		Type: types.WidgetTypeNumber,
		Name: "Temperatur",
		Binding: types.Binding{
			PlantID:     "plant-1",
			TerminalID:  "terminal-7",
			MeasurandID: "temp",
		},
		Layout: types.GridCell{I: "w1", W: 3, H: 2},
		Number: &types.NumberPayload{},
	}
}

func waitForUpdate(t *testing.T, ch <-chan PollState) PollState {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("no poll update received")
		return PollState{}
	}
}

func TestPoller_ScalarTickPublishesValue(t *testing.T) {
	ts := time.Now().Truncate(time.Second)
	lookup := &fakeLookup{point: &measure.Point{Value: 42.5, Unit: "°C", Timestamp: ts}}

	p := NewPoller(numberWidget(), 50*time.Millisecond, lookup, zap.NewNop())
	updates := make(chan PollState, 16)
	p.SetUpdateFunc(func(s PollState) { updates <- s })

	require.NoError(t, p.Start())
	defer p.Stop()

	state := waitForUpdate(t, updates)
	assert.Equal(t, "w1", state.WidgetID)
	assert.True(t, state.HasValue)
	assert.Equal(t, 42.5, state.Value)
	assert.Equal(t, "°C", state.Unit)
	assert.False(t, state.Stale)
	assert.False(t, state.NoData)
}

func TestPoller_ErrorKeepsLastGoodValue(t *testing.T) {
	lookup := &fakeLookup{point: &measure.Point{Value: 10, Unit: "bar", Timestamp: time.Now()}}

	p := NewPoller(numberWidget(), 30*time.Millisecond, lookup, zap.NewNop())
	updates := make(chan PollState, 16)
	p.SetUpdateFunc(func(s PollState) { updates <- s })

	require.NoError(t, p.Start())
	defer p.Stop()

	first := waitForUpdate(t, updates)
	require.True(t, first.HasValue)

	lookup.set(nil, errors.New("connection refused"))

	var stale PollState
	for {
		stale = waitForUpdate(t, updates)
		if stale.Stale {
			break
		}
	}

	// The last good value survives the failure; only the flags change.
	assert.True(t, stale.HasValue)
	assert.Equal(t, 10.0, stale.Value)
	assert.Equal(t, "connection refused", stale.LastError)
}

func TestPoller_NoDataFlagOnEmptyResult(t *testing.T) {
	lookup := &fakeLookup{point: nil}

	p := NewPoller(numberWidget(), 50*time.Millisecond, lookup, zap.NewNop())
	updates := make(chan PollState, 16)
	p.SetUpdateFunc(func(s PollState) { updates <- s })

	require.NoError(t, p.Start())
	defer p.Stop()

	state := waitForUpdate(t, updates)
	assert.True(t, state.NoData)
	assert.False(t, state.HasValue)
	assert.False(t, state.Stale)
}

func TestPoller_StaleResponseDroppedAfterStop(t *testing.T) {
	block := make(chan struct{})
	lookup := &fakeLookup{
		point: &measure.Point{Value: 99, Timestamp: time.Now()},
		block: block,
	}

	p := NewPoller(numberWidget(), time.Hour, lookup, zap.NewNop())
	updates := make(chan PollState, 16)
	p.SetUpdateFunc(func(s PollState) { updates <- s })

	require.NoError(t, p.Start())

	// Stop while the first fetch is still in flight, then release it.
	done := make(chan struct{})
	go func() {
		p.Stop()
		close(done)
	}()
	time.Sleep(50 * time.Millisecond)
	close(block)
	<-done

	select {
	case s := <-updates:
		t.Fatalf("update published after stop: %+v", s)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPoller_StopPreventsFurtherFetches(t *testing.T) {
	lookup := &fakeLookup{point: &measure.Point{Value: 1, Timestamp: time.Now()}}

	p := NewPoller(numberWidget(), 20*time.Millisecond, lookup, zap.NewNop())
	require.NoError(t, p.Start())

	time.Sleep(60 * time.Millisecond)
	p.Stop()
	assert.False(t, p.IsRunning())

	calls := lookup.callCount()
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, calls, lookup.callCount())
}

func TestPoller_RestartAfterStop(t *testing.T) {
	lookup := &fakeLookup{point: &measure.Point{Value: 7, Timestamp: time.Now()}}

	p := NewPoller(numberWidget(), 20*time.Millisecond, lookup, zap.NewNop())
	updates := make(chan PollState, 16)
	p.SetUpdateFunc(func(s PollState) { updates <- s })

	require.NoError(t, p.Start())
	waitForUpdate(t, updates)
	p.Stop()
	require.False(t, p.IsRunning())
	for len(updates) > 0 {
		<-updates
	}

	// The restarted loop has to keep ticking, not exit after one round.
	require.NoError(t, p.Start())
	defer p.Stop()
	require.True(t, p.IsRunning())

	waitForUpdate(t, updates)
	waitForUpdate(t, updates)
}

func TestMergeSeries_UnionTimestampAxis(t *testing.T) {
	t0 := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Minute)
	t2 := t0.Add(2 * time.Minute)

	primary := []measure.Point{
		{Value: 1, Unit: "kW", Timestamp: t0},
		{Value: 2, Unit: "kW", Timestamp: t2},
	}
	comparison := []measure.Point{
		{Value: 5, Unit: "kW", Timestamp: t1},
		{Value: 6, Unit: "kW", Timestamp: t2},
	}

	set := mergeSeries([][]measure.Point{primary, comparison})

	require.Equal(t, []time.Time{t0, t1, t2}, set.Labels)
	require.Len(t, set.Values, 2)

	// Series without a sample at a label carry nil, not zero.
	require.NotNil(t, set.Values[0][0])
	assert.Equal(t, 1.0, *set.Values[0][0])
	assert.Nil(t, set.Values[0][1])
	require.NotNil(t, set.Values[0][2])
	assert.Equal(t, 2.0, *set.Values[0][2])

	assert.Nil(t, set.Values[1][0])
	require.NotNil(t, set.Values[1][1])
	assert.Equal(t, 5.0, *set.Values[1][1])

	assert.Equal(t, []string{"kW", "kW"}, set.Units)
}

func TestMergeSeries_Empty(t *testing.T) {
	set := mergeSeries([][]measure.Point{nil})
	assert.Empty(t, set.Labels)
}
