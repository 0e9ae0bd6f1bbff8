package session

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/KevinKickass/OpenPanelCore/internal/layout"
	"github.com/KevinKickass/OpenPanelCore/internal/poller"
	"github.com/KevinKickass/OpenPanelCore/internal/settings"
	"github.com/KevinKickass/OpenPanelCore/internal/types"
	"github.com/KevinKickass/OpenPanelCore/internal/widgets"
	"go.uber.org/zap"
)

// Gateway is the persistence collaborator for whole-dashboard documents.
// Create refuses a claimed name with StateConflictError; Update overwrites
// the named document.
type Gateway interface {
	List(ctx context.Context) ([]types.DashboardSummary, error)
	Load(ctx context.Context, name string) (*types.Dashboard, error)
	Active(ctx context.Context) (*types.Dashboard, error)
	Create(ctx context.Context, d *types.Dashboard) error
	Update(ctx context.Context, name string, widgets []types.Widget) error
	Publish(ctx context.Context, name string) error
	Delete(ctx context.Context, name string) error
}

// Session orchestrates one operator's dashboard composition: the widget
// collection, the layout, the dirty-state comparison against the last
// saved snapshot, and the draft/published lifecycle. All mutations go
// through the session's own handlers (single writer); pollers write only
// into their own PollState, never into Widget records.
type Session struct {
	logger    *zap.Logger
	gateway   Gateway
	pollers   *poller.Manager
	templates settings.Store
	defaults  types.Settings

	mu            sync.RWMutex
	state         State
	name          string
	widgets       []types.Widget
	baseline      []types.Widget
	published     bool
	editMode      bool
	lastSaved     time.Time
	onStateChange func(prev, next State)
}

func NewSession(
	logger *zap.Logger,
	gateway Gateway,
	pollers *poller.Manager,
	templates settings.Store,
) *Session {
	return &Session{
		logger:    logger,
		gateway:   gateway,
		pollers:   pollers,
		templates: templates,
		defaults:  settings.MustDefaults(),
		state:     StateEmpty,
	}
}

// Templates exposes the global template store. It is not dashboard-scoped
// and survives NewDashboard.
func (s *Session) Templates() settings.Store {
	return s.templates
}

// SetStateChangeFunc registers the callback fired after every lifecycle
// transition. Must be set before the session takes traffic; the callback
// must not call back into the session.
func (s *Session) SetStateChangeFunc(f func(prev, next State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onStateChange = f
}

func (s *Session) notifyState(prev, next State) {
	if prev == next {
		return
	}
	s.mu.RLock()
	f := s.onStateChange
	s.mu.RUnlock()
	if f != nil {
		f(prev, next)
	}
}

// NewDashboard resets the session to an empty draft. Widgets, name and
// per-widget overrides go; saved templates stay (global store). All
// pollers are stopped so no timer outlives its widget.
func (s *Session) NewDashboard() {
	s.mu.Lock()
	prev := s.state
	s.state = StateEmpty
	s.name = ""
	s.widgets = nil
	s.baseline = nil
	s.published = false
	s.editMode = false
	s.lastSaved = time.Time{}
	s.mu.Unlock()

	s.pollers.Sync(nil)

	s.logger.Info("Session reset to empty dashboard")
	s.notifyState(prev, StateEmpty)
}

// Load replaces the session content with a persisted dashboard and
// snapshots it as the clean baseline.
func (s *Session) Load(ctx context.Context, name string) error {
	d, err := s.gateway.Load(ctx, name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	prev := s.state
	s.name = d.Name
	s.widgets = cloneWidgets(d.Widgets)
	s.baseline = cloneWidgets(d.Widgets)
	s.published = d.IsPublished
	s.editMode = false
	s.lastSaved = d.UpdatedAt
	if d.IsPublished {
		s.state = StatePublished
	} else {
		s.state = StateSaved
	}
	next := s.state
	widgetsCopy := cloneWidgets(s.widgets)
	s.mu.Unlock()

	s.pollers.Sync(widgetsCopy)

	s.logger.Info("Dashboard loaded",
		zap.String("name", name),
		zap.Int("widgets", len(widgetsCopy)),
		zap.Bool("published", d.IsPublished))

	s.notifyState(prev, next)
	return nil
}

// AddWidget creates a widget of the given type, styles it with resolved
// defaults, appends it below existing content and starts its poller.
func (s *Session) AddWidget(t types.WidgetType, req widgets.CreateRequest) (*types.Widget, error) {
	w, err := widgets.CreateWidget(t, req)
	if err != nil {
		return nil, err
	}
	w.Settings = settings.Resolve(s.defaults, nil, nil)

	s.mu.Lock()
	prev := s.state
	s.widgets = layout.Append(s.widgets, *w)
	added := s.widgets[len(s.widgets)-1]
	s.recomputeLocked()
	next := s.state
	s.mu.Unlock()

	s.pollers.Track(added)

	s.logger.Info("Widget added",
		zap.String("widget", added.ID),
		zap.String("type", string(t)))

	s.notifyState(prev, next)
	return &added, nil
}

// DeleteWidget removes the widget and its layout cell atomically and
// stops its poller, so no stale fetch can write to the dead id.
func (s *Session) DeleteWidget(id string) error {
	s.mu.Lock()
	remaining, ok := layout.Remove(s.widgets, id)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("widget not found: %s", id)
	}
	prev := s.state
	s.widgets = remaining
	s.recomputeLocked()
	next := s.state
	s.mu.Unlock()

	s.pollers.Forget(id)

	s.logger.Info("Widget deleted", zap.String("widget", id))
	s.notifyState(prev, next)
	return nil
}

// ApplyBinding rebind's a widget's measurement reference. The running
// poller is replaced; in-flight fetches against the old binding are
// aborted and discarded.
func (s *Session) ApplyBinding(id string, b types.Binding) error {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("widget not found: %s", id)
	}
	prev := s.state
	s.widgets[idx].Binding = b
	updated := s.widgets[idx]
	s.recomputeLocked()
	next := s.state
	s.mu.Unlock()

	s.pollers.Track(updated)
	s.notifyState(prev, next)
	return nil
}

// ApplySettings resolves defaults, an optional named template and an
// optional override, and stores the resolved copy on the widget.
func (s *Session) ApplySettings(ctx context.Context, id string, templateName string, override *types.Settings) error {
	var tpl *types.Settings
	if templateName != "" {
		t, err := s.templates.Get(ctx, templateName)
		if err != nil {
			return err
		}
		tpl = &t.Settings
	}

	resolved := settings.Resolve(s.defaults, tpl, override)

	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("widget not found: %s", id)
	}
	prev := s.state
	s.widgets[idx].Settings = resolved
	s.recomputeLocked()
	next := s.state
	s.mu.Unlock()

	s.notifyState(prev, next)
	return nil
}

// ApplySettingsToType styles every widget of one type in a single
// all-or-nothing pass, keeping the dirty flag recomputation simple.
func (s *Session) ApplySettingsToType(ctx context.Context, t types.WidgetType, templateName string, override *types.Settings) (int, error) {
	if !t.Valid() {
		return 0, fmt.Errorf("unknown widget type: %s", t)
	}

	var tpl *types.Settings
	if templateName != "" {
		tmpl, err := s.templates.Get(ctx, templateName)
		if err != nil {
			return 0, err
		}
		tpl = &tmpl.Settings
	}

	resolved := settings.Resolve(s.defaults, tpl, override)

	s.mu.Lock()
	prev := s.state
	styled := cloneWidgets(s.widgets)
	count := 0
	for i := range styled {
		if styled[i].Type == t {
			styled[i].Settings = resolved
			count++
		}
	}
	s.widgets = styled
	s.recomputeLocked()
	next := s.state
	s.mu.Unlock()

	s.notifyState(prev, next)
	return count, nil
}

// ApplyLayoutChange commits a layout proposal from the rendering surface.
// Cells are clamped to the grid before they reach committed state.
func (s *Session) ApplyLayoutChange(raw []types.GridCell) {
	s.mu.Lock()
	prev := s.state
	s.widgets = layout.ApplyLayoutChange(s.widgets, raw)
	s.recomputeLocked()
	next := s.state
	s.mu.Unlock()

	s.notifyState(prev, next)
}

// Save validates and persists the current widget collection. A missing
// name must be supplied on the first save; saving under a new name while
// one is set creates a new dashboard (rename is save-as-new). Transport
// failures leave the session unchanged.
func (s *Session) Save(ctx context.Context, name string) error {
	s.mu.RLock()
	currentName := s.name
	widgetsCopy := cloneWidgets(s.widgets)
	s.mu.RUnlock()

	target := currentName
	if name != "" {
		target = name
	}
	if target == "" {
		verr := &types.ValidationError{}
		verr.Add("name", "dashboard name is required")
		return verr
	}

	if failures := widgets.ValidateAll(widgetsCopy); len(failures) > 0 {
		verr := &types.ValidationError{}
		for id, err := range failures {
			verr.Add(id, err.Error())
		}
		return verr
	}

	creating := currentName == "" || target != currentName
	if creating {
		err := s.gateway.Create(ctx, &types.Dashboard{Name: target, Widgets: widgetsCopy})
		if err != nil {
			return err
		}
	} else {
		if err := s.gateway.Update(ctx, target, widgetsCopy); err != nil {
			return err
		}
	}

	s.mu.Lock()
	prev := s.state
	s.name = target
	s.baseline = cloneWidgets(s.widgets)
	s.lastSaved = time.Now()
	if creating {
		s.published = false
	}
	s.recomputeLocked()
	next := s.state
	s.mu.Unlock()

	s.notifyState(prev, next)

	s.logger.Info("Dashboard saved",
		zap.String("name", target),
		zap.Int("widgets", len(widgetsCopy)),
		zap.Bool("created", creating))

	return nil
}

// Publish marks the saved dashboard as the one the Viewer renders. Only
// legal from Saved with a name set; a second publish without an
// intervening unpublish is refused before any gateway call.
func (s *Session) Publish(ctx context.Context) error {
	s.mu.RLock()
	state := s.state
	name := s.name
	published := s.published
	dirty := s.hasChangesLocked()
	s.mu.RUnlock()

	if name == "" {
		return &types.StateConflictError{Message: "cannot publish: dashboard has no name"}
	}
	if published {
		return &types.StateConflictError{Message: "cannot publish: dashboard already published"}
	}
	if state != StateSaved || dirty {
		return &types.StateConflictError{
			Message: fmt.Sprintf("cannot publish: dashboard must be saved (current: %s)", state),
		}
	}

	if err := s.gateway.Publish(ctx, name); err != nil {
		return err
	}

	s.mu.Lock()
	prev := s.state
	s.published = true
	s.state = StatePublished
	s.baseline = cloneWidgets(s.widgets)
	s.mu.Unlock()

	s.notifyState(prev, StatePublished)
	s.logger.Info("Dashboard published", zap.String("name", name))
	return nil
}

// ToggleEditMode switches a published dashboard between the read-only
// render and the composition surface. Persisted state is untouched.
func (s *Session) ToggleEditMode() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePublished {
		return &types.StateConflictError{
			Message: fmt.Sprintf("cannot toggle edit mode: dashboard not published (current: %s)", s.state),
		}
	}
	s.editMode = !s.editMode
	return nil
}

// Delete removes the loaded dashboard from the gateway and resets the
// session. If it was the published one the viewer is left with no active
// dashboard; nothing is auto-promoted.
func (s *Session) Delete(ctx context.Context) error {
	s.mu.RLock()
	name := s.name
	s.mu.RUnlock()

	if name == "" {
		return &types.StateConflictError{Message: "cannot delete: no dashboard loaded"}
	}

	if err := s.gateway.Delete(ctx, name); err != nil {
		return err
	}

	s.logger.Info("Dashboard deleted", zap.String("name", name))
	s.NewDashboard()
	return nil
}

// HasChanges reports whether the widget collection differs from the last
// persisted snapshot, by deep comparison, order-insensitive.
func (s *Session) HasChanges() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasChangesLocked()
}

// Widgets returns a copy of the current widget collection.
func (s *Session) Widgets() []types.Widget {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneWidgets(s.widgets)
}

// PollStates returns the current live values for every tracked widget.
func (s *Session) PollStates() map[string]poller.PollState {
	return s.pollers.States()
}

// GetStatus returns the session snapshot.
func (s *Session) GetStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		State:       s.state,
		Name:        s.name,
		WidgetCount: len(s.widgets),
		HasChanges:  s.hasChangesLocked(),
		IsPublished: s.published,
		EditMode:    s.editMode,
		LastSaved:   s.lastSaved,
	}
}

// Close tears the session down: all pollers stop and abort their
// in-flight fetches.
func (s *Session) Close(ctx context.Context) error {
	return s.pollers.StopAll(ctx)
}

func (s *Session) indexLocked(id string) int {
	for i := range s.widgets {
		if s.widgets[i].ID == id {
			return i
		}
	}
	return -1
}

// recomputeLocked derives the lifecycle state after a mutation. Edits
// keep a published dashboard in Published (with the dirty flag up); an
// unsaved session with content is a Draft.
func (s *Session) recomputeLocked() {
	switch {
	case s.name == "" && len(s.widgets) == 0:
		s.state = StateEmpty
	case s.name == "":
		s.state = StateDraft
	case s.published:
		s.state = StatePublished
	case s.hasChangesLocked():
		s.state = StateDraft
	default:
		s.state = StateSaved
	}
}

func (s *Session) hasChangesLocked() bool {
	if len(s.widgets) != len(s.baseline) {
		return true
	}
	base := make(map[string]types.Widget, len(s.baseline))
	for _, w := range s.baseline {
		base[w.ID] = w
	}
	for _, w := range s.widgets {
		b, ok := base[w.ID]
		if !ok || !reflect.DeepEqual(w, b) {
			return true
		}
	}
	return false
}

func cloneWidgets(in []types.Widget) []types.Widget {
	if in == nil {
		return nil
	}
	out := make([]types.Widget, len(in))
	for i, w := range in {
		out[i] = cloneWidget(w)
	}
	return out
}

// cloneWidget copies the widget including its payload pointers so a
// snapshot cannot alias live state.
func cloneWidget(w types.Widget) types.Widget {
	if w.Number != nil {
		n := *w.Number
		w.Number = &n
	}
	if w.Text != nil {
		t := *w.Text
		w.Text = &t
	}
	if w.Image != nil {
		img := *w.Image
		w.Image = &img
	}
	if w.Gauge != nil {
		g := *w.Gauge
		g.Ranges = append([]types.GaugeRange(nil), w.Gauge.Ranges...)
		w.Gauge = &g
	}
	if w.Graph != nil {
		g := *w.Graph
		g.Series = append([]types.Binding(nil), w.Graph.Series...)
		w.Graph = &g
	}
	if w.Datagrid != nil {
		d := *w.Datagrid
		d.Cells = append([]types.Binding(nil), w.Datagrid.Cells...)
		w.Datagrid = &d
	}
	return w
}
