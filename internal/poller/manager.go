package poller

import (
	"context"
	"reflect"
	"sync"

	"github.com/KevinKickass/OpenPanelCore/internal/config"
	"github.com/KevinKickass/OpenPanelCore/internal/measure"
	"github.com/KevinKickass/OpenPanelCore/internal/types"
	"go.uber.org/zap"
)

// Manager owns one Poller per live widget. The session tells it which
// widgets exist; the manager reconciles its poller set against that,
// stopping pollers for deleted widgets and restarting pollers whose
// binding changed.
type Manager struct {
	lookup   measure.Lookup
	cfg      config.PollerConfig
	pollers  map[string]*Poller
	onUpdate UpdateFunc
	mu       sync.RWMutex
	logger   *zap.Logger
}

func NewManager(lookup measure.Lookup, cfg config.PollerConfig, logger *zap.Logger) *Manager {
	return &Manager{
		lookup:  lookup,
		cfg:     cfg,
		pollers: make(map[string]*Poller),
		logger:  logger,
	}
}

// SetUpdateFunc registers the callback invoked after every widget tick.
func (m *Manager) SetUpdateFunc(f UpdateFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onUpdate = f
}

// Track starts (or restarts) the poller for a widget. A widget whose
// binding changed gets a fresh poller; the old one is stopped first so
// its in-flight fetches are aborted and cannot write under the new
// binding.
func (m *Manager) Track(w types.Widget) {
	if !pollable(w) {
		m.Forget(w.ID)
		return
	}

	m.mu.Lock()
	existing, ok := m.pollers[w.ID]
	if ok && sameBinding(existing.Widget(), w) {
		m.mu.Unlock()
		return
	}
	onUpdate := m.onUpdate
	m.mu.Unlock()

	if ok {
		existing.Stop()
	}

	p := NewPoller(w, m.cfg.IntervalFor(w.Type), m.lookup, m.logger)
	p.SetSeriesBounds(m.cfg.SeriesWindow, m.cfg.SeriesMaxPoints)
	if onUpdate != nil {
		p.SetUpdateFunc(onUpdate)
	}

	m.mu.Lock()
	m.pollers[w.ID] = p
	m.mu.Unlock()

	if err := p.Start(); err != nil {
		m.logger.Error("Failed to start poller",
			zap.String("widget", w.ID),
			zap.Error(err))
	}
}

// Forget stops and removes the poller for a widget. Its PollState is
// dropped with it.
func (m *Manager) Forget(id string) {
	m.mu.Lock()
	p, ok := m.pollers[id]
	if ok {
		delete(m.pollers, id)
	}
	m.mu.Unlock()

	if ok {
		p.Stop()
	}
}

// Sync reconciles the poller set against a widget collection: pollers
// for widgets no longer present are stopped, new or rebound widgets get
// fresh pollers.
func (m *Manager) Sync(widgets []types.Widget) {
	current := make(map[string]struct{}, len(widgets))
	for _, w := range widgets {
		current[w.ID] = struct{}{}
	}

	m.mu.RLock()
	var orphaned []string
	for id := range m.pollers {
		if _, ok := current[id]; !ok {
			orphaned = append(orphaned, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range orphaned {
		m.Forget(id)
	}
	for _, w := range widgets {
		m.Track(w)
	}
}

// StopAll stops every poller. Used on session teardown so no timer keeps
// firing after navigation away.
func (m *Manager) StopAll(ctx context.Context) error {
	m.mu.Lock()
	pollers := make([]*Poller, 0, len(m.pollers))
	for _, p := range m.pollers {
		pollers = append(pollers, p)
	}
	m.pollers = make(map[string]*Poller)
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		for _, p := range pollers {
			p.Stop()
		}
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns the poll state for one widget.
func (m *Manager) State(id string) (PollState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.pollers[id]
	if !ok {
		return PollState{}, false
	}
	return p.State(), true
}

// States returns a snapshot of every tracked widget's poll state.
func (m *Manager) States() map[string]PollState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]PollState, len(m.pollers))
	for id, p := range m.pollers {
		out[id] = p.State()
	}
	return out
}

// Count returns the number of running pollers.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.pollers)
}

// pollable reports whether a widget carries a live binding worth polling.
func pollable(w types.Widget) bool {
	switch w.Type {
	case types.WidgetTypeNumber, types.WidgetTypeGauge:
		return w.Binding.Live()
	case types.WidgetTypeGraph:
		return w.Binding.Live()
	case types.WidgetTypeDatagrid:
		if w.Datagrid == nil {
			return false
		}
		for _, b := range w.Datagrid.Cells {
			if b.Live() {
				return true
			}
		}
		return false
	case types.WidgetTypeText, types.WidgetTypeImage:
		return false
	}
	return false
}

// sameBinding reports whether a widget's live-data inputs are unchanged,
// so its running poller can be kept.
func sameBinding(a, b types.Widget) bool {
	if a.Binding != b.Binding || a.Type != b.Type {
		return false
	}
	switch a.Type {
	case types.WidgetTypeGraph:
		var as, bs []types.Binding
		if a.Graph != nil {
			as = a.Graph.Series
		}
		if b.Graph != nil {
			bs = b.Graph.Series
		}
		return reflect.DeepEqual(as, bs)
	case types.WidgetTypeDatagrid:
		var ac, bc []types.Binding
		if a.Datagrid != nil {
			ac = a.Datagrid.Cells
		}
		if b.Datagrid != nil {
			bc = b.Datagrid.Cells
		}
		return reflect.DeepEqual(ac, bc)
	case types.WidgetTypeNumber, types.WidgetTypeText,
		types.WidgetTypeGauge, types.WidgetTypeImage:
		return true
	}
	return true
}
