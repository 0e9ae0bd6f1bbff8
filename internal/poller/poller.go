package poller

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/KevinKickass/OpenPanelCore/internal/measure"
	"github.com/KevinKickass/OpenPanelCore/internal/types"
	"go.uber.org/zap"
)

// UpdateFunc receives a PollState copy after every completed tick.
type UpdateFunc func(PollState)

// Poller keeps one widget's live data fresh. Each widget gets its own
// ticker loop so a slow or failing endpoint cannot delay its neighbours.
// Ticks are serialized within the loop; a new fetch does not start until
// the previous tick has been fully processed.
type Poller struct {
	widget          types.Widget
	interval        time.Duration
	seriesWindow    time.Duration
	seriesMaxPoints int
	lookup          measure.Lookup
	onUpdate        UpdateFunc
	logger          *zap.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
	mu       sync.Mutex

	stateMu sync.RWMutex
	state   PollState
}

func NewPoller(widget types.Widget, interval time.Duration, lookup measure.Lookup, logger *zap.Logger) *Poller {
	return &Poller{
		widget:          widget,
		interval:        interval,
		seriesWindow:    time.Hour,
		seriesMaxPoints: 500,
		lookup:          lookup,
		logger:          logger,
		stopChan:        make(chan struct{}),
		state:           PollState{WidgetID: widget.ID},
	}
}

// SetSeriesBounds limits the window and point count of graph fetches.
func (p *Poller) SetSeriesBounds(window time.Duration, maxPoints int) {
	p.seriesWindow = window
	p.seriesMaxPoints = maxPoints
}

// SetUpdateFunc registers the tick callback. Must be called before Start.
func (p *Poller) SetUpdateFunc(f UpdateFunc) {
	p.onUpdate = f
}

// Widget returns the binding snapshot this poller was started with.
func (p *Poller) Widget() types.Widget {
	return p.widget
}

// Start startet das zyklische Polling
func (p *Poller) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return nil
	}

	p.running = true
	p.ctx, p.cancel = context.WithCancel(context.Background())
	// Stop closed the previous channel, a restart needs a fresh one.
	p.stopChan = make(chan struct{})
	p.wg.Add(1)

	go p.pollLoop()

	p.logger.Info("Poller started",
		zap.String("widget", p.widget.ID),
		zap.String("type", string(p.widget.Type)),
		zap.Duration("interval", p.interval))

	return nil
}

// Stop stoppt das Polling und bricht laufende Fetches ab. Nach der
// Rückkehr feuert kein Tick mehr und kein Update-Callback.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	p.cancel()
	close(p.stopChan)
	p.wg.Wait()

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	p.logger.Info("Poller stopped", zap.String("widget", p.widget.ID))
}

// IsRunning gibt an ob Poller läuft
func (p *Poller) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// State returns a copy of the current poll state.
func (p *Poller) State() PollState {
	p.stateMu.RLock()
	defer p.stateMu.RUnlock()
	return p.state
}

func (p *Poller) pollLoop() {
	defer p.wg.Done()

	// First tick immediately, not one interval late.
	p.tick()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopChan:
			return
		case <-ticker.C:
			p.tick()
		}
	}
}

func (p *Poller) tick() {
	ctx, cancel := context.WithTimeout(p.ctx, p.interval)
	defer cancel()

	switch p.widget.Type {
	case types.WidgetTypeNumber, types.WidgetTypeGauge:
		p.tickScalar(ctx)
	case types.WidgetTypeGraph:
		p.tickSeries(ctx)
	case types.WidgetTypeDatagrid:
		p.tickDatagrid(ctx)
	case types.WidgetTypeText, types.WidgetTypeImage:
		// static content, nothing to fetch
		return
	}
}

func (p *Poller) tickScalar(ctx context.Context) {
	point, err := p.lookup.Latest(ctx, p.widget.Binding)

	// Stale-response guard: the poller was stopped while the fetch was
	// in flight. The widget may be deleted or rebound; drop the result.
	if p.ctx.Err() != nil {
		return
	}

	p.stateMu.Lock()
	if err != nil {
		p.state.Stale = true
		p.state.LastError = err.Error()
		p.logger.Warn("Poll failed",
			zap.String("widget", p.widget.ID),
			zap.Error(err))
	} else if point == nil {
		p.state.NoData = true
		p.state.Stale = false
		p.state.LastError = ""
	} else {
		p.state.HasValue = true
		p.state.Value = point.Value
		p.state.Unit = point.Unit
		p.state.Timestamp = point.Timestamp
		p.state.NoData = false
		p.state.Stale = false
		p.state.LastError = ""
	}
	p.state.UpdatedAt = time.Now()
	snapshot := p.state
	p.stateMu.Unlock()

	p.publish(snapshot)
}

// tickSeries fetches the primary series plus up to MaxComparisonSeries
// comparison series in parallel and merges them on a shared label axis.
func (p *Poller) tickSeries(ctx context.Context) {
	bindings := []types.Binding{p.widget.Binding}
	if p.widget.Graph != nil {
		extra := p.widget.Graph.Series
		if len(extra) > types.MaxComparisonSeries {
			extra = extra[:types.MaxComparisonSeries]
		}
		bindings = append(bindings, extra...)
	}

	results := make([][]measure.Point, len(bindings))
	errs := make([]error, len(bindings))

	var wg sync.WaitGroup
	for i, b := range bindings {
		wg.Add(1)
		go func(i int, b types.Binding) {
			defer wg.Done()
			results[i], errs[i] = p.lookup.Series(ctx, b, p.seriesWindow, p.seriesMaxPoints)
		}(i, b)
	}
	wg.Wait()

	if p.ctx.Err() != nil {
		return
	}

	var firstErr error
	for _, err := range errs {
		if err != nil {
			firstErr = err
			break
		}
	}

	p.stateMu.Lock()
	if firstErr != nil {
		p.state.Stale = true
		p.state.LastError = firstErr.Error()
		p.logger.Warn("Series poll failed",
			zap.String("widget", p.widget.ID),
			zap.Error(firstErr))
	} else {
		merged := mergeSeries(results)
		empty := len(merged.Labels) == 0
		if !empty {
			p.state.Series = merged
		}
		p.state.NoData = empty
		p.state.Stale = false
		p.state.LastError = ""
	}
	p.state.UpdatedAt = time.Now()
	snapshot := p.state
	p.stateMu.Unlock()

	p.publish(snapshot)
}

func (p *Poller) tickDatagrid(ctx context.Context) {
	if p.widget.Datagrid == nil {
		return
	}
	bindings := p.widget.Datagrid.Cells

	cells := make([]CellState, len(bindings))
	var tickErr error
	for i, b := range bindings {
		if !b.Live() {
			continue
		}
		point, err := p.lookup.Latest(ctx, b)
		if err != nil {
			tickErr = err
			break
		}
		if point != nil {
			cells[i] = CellState{
				HasValue:  true,
				Value:     point.Value,
				Unit:      point.Unit,
				Timestamp: point.Timestamp,
			}
		}
	}

	if p.ctx.Err() != nil {
		return
	}

	p.stateMu.Lock()
	if tickErr != nil {
		p.state.Stale = true
		p.state.LastError = tickErr.Error()
		p.logger.Warn("Datagrid poll failed",
			zap.String("widget", p.widget.ID),
			zap.Error(tickErr))
	} else {
		p.state.Cells = cells
		p.state.NoData = len(cells) == 0
		p.state.Stale = false
		p.state.LastError = ""
	}
	p.state.UpdatedAt = time.Now()
	snapshot := p.state
	p.stateMu.Unlock()

	p.publish(snapshot)
}

func (p *Poller) publish(snapshot PollState) {
	if p.onUpdate == nil {
		return
	}
	// Re-check liveness right before handing the result out.
	if p.ctx.Err() != nil {
		return
	}
	p.onUpdate(snapshot)
}

// mergeSeries aligns multiple sample series on the union of their
// timestamps, ascending. Series without a sample at a label get nil.
func mergeSeries(series [][]measure.Point) *SeriesSet {
	labelSet := make(map[time.Time]struct{})
	for _, s := range series {
		for _, pt := range s {
			labelSet[pt.Timestamp] = struct{}{}
		}
	}

	labels := make([]time.Time, 0, len(labelSet))
	for ts := range labelSet {
		labels = append(labels, ts)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i].Before(labels[j]) })

	index := make(map[time.Time]int, len(labels))
	for i, ts := range labels {
		index[ts] = i
	}

	values := make([][]*float64, len(series))
	units := make([]string, len(series))
	for si, s := range series {
		row := make([]*float64, len(labels))
		for _, pt := range s {
			v := pt.Value
			row[index[pt.Timestamp]] = &v
			if units[si] == "" {
				units[si] = pt.Unit
			}
		}
		values[si] = row
	}

	return &SeriesSet{Labels: labels, Values: values, Units: units}
}
