package widgets

import (
	"fmt"

	"github.com/KevinKickass/OpenPanelCore/internal/types"
)

// Validate checks a widget against the per-type save rules. Errors are
// field-scoped; one message per invalid field.
func Validate(w *types.Widget) error {
	verr := &types.ValidationError{}

	validateLayout(w.Layout, verr)

	switch w.Type {
	case types.WidgetTypeText:
		if w.Text == nil || w.Text.Content == "" {
			verr.Add("text_content", "text content is required")
		}
	case types.WidgetTypeNumber:
		requireBinding(w.Binding, verr)
		requireName(w.Name, verr)
		if w.Number != nil && w.Number.Decimals < 0 {
			verr.Add("decimals", "decimals must not be negative")
		}
	case types.WidgetTypeGauge:
		requireBinding(w.Binding, verr)
		requireName(w.Name, verr)
		validateGauge(w.Gauge, verr)
	case types.WidgetTypeGraph:
		if w.Binding.PlantID == "" {
			verr.Add("plant", "plant is required")
		}
		if w.Binding.TerminalID == "" {
			verr.Add("terminal", "terminal is required")
		}
		requireName(w.Name, verr)
		validateGraph(w.Graph, verr)
	case types.WidgetTypeImage:
		// no required fields
	case types.WidgetTypeDatagrid:
		validateDatagrid(w.Datagrid, verr)
	default:
		verr.Add("type", fmt.Sprintf("unknown widget type: %s", w.Type))
	}

	return verr.Err()
}

func requireBinding(b types.Binding, verr *types.ValidationError) {
	if b.PlantID == "" {
		verr.Add("plant", "plant is required")
	}
	if b.TerminalID == "" {
		verr.Add("terminal", "terminal is required")
	}
	if b.MeasurandID == "" {
		verr.Add("measurement", "measurement is required")
	}
}

func requireName(name string, verr *types.ValidationError) {
	if name == "" {
		verr.Add("name", "name is required")
	}
}

func validateLayout(cell types.GridCell, verr *types.ValidationError) {
	if cell.W < 1 || cell.H < 1 {
		verr.Add("layout", "width and height must be at least 1")
	}
	if cell.X+cell.W > types.GridColumns {
		verr.Add("layout", fmt.Sprintf("cell exceeds %d-column grid", types.GridColumns))
	}
	if cell.Y < 0 {
		verr.Add("layout", "row must not be negative")
	}
}

// validateGauge enforces the scale invariant: exactly three ranges, each
// ascending, contiguous, and together spanning [MinRange, MaxRange].
func validateGauge(g *types.GaugePayload, verr *types.ValidationError) {
	if g == nil {
		verr.Add("gauge", "gauge configuration is required")
		return
	}
	if g.MinRange >= g.MaxRange {
		verr.Add("min_range", "min range must be less than max range")
	}
	if len(g.Ranges) != 3 {
		verr.Add("ranges", "exactly 3 ranges are required")
		return
	}
	for i, r := range g.Ranges {
		if r.Start >= r.End {
			verr.Add("ranges", fmt.Sprintf("range %d start must be less than end", i))
		}
	}
	if g.Ranges[0].Start != g.MinRange {
		verr.Add("ranges", "first range must start at min range")
	}
	if g.Ranges[2].End != g.MaxRange {
		verr.Add("ranges", "last range must end at max range")
	}
	for i := 0; i < 2; i++ {
		if g.Ranges[i].End != g.Ranges[i+1].Start {
			verr.Add("ranges", fmt.Sprintf("gap between range %d and %d (%v to %v)",
				i, i+1, g.Ranges[i].End, g.Ranges[i+1].Start))
		}
	}
}

func validateGraph(g *types.GraphPayload, verr *types.ValidationError) {
	if g == nil || g.GraphType == "" {
		verr.Add("graph_type", "graph type is required")
		return
	}
	switch g.GraphType {
	case types.GraphTypeLine, types.GraphTypeBar, types.GraphTypeArea:
	default:
		verr.Add("graph_type", fmt.Sprintf("unknown graph type: %s", g.GraphType))
	}
	if len(g.Series) > types.MaxComparisonSeries {
		verr.Add("series", fmt.Sprintf("at most %d comparison series allowed", types.MaxComparisonSeries))
	}
	if g.Decimals < 0 {
		verr.Add("decimals", "decimals must not be negative")
	}
	if g.ResetInterval < 0 {
		verr.Add("reset_interval", "reset interval must not be negative")
	}
	if g.ThresholdPct < 0 || g.ThresholdPct > 100 {
		verr.Add("threshold_pct", "threshold must be between 0 and 100")
	}
}

func validateDatagrid(d *types.DatagridPayload, verr *types.ValidationError) {
	if d == nil {
		verr.Add("datagrid", "datagrid configuration is required")
		return
	}
	if d.Rows <= 0 {
		verr.Add("rows", "rows must be greater than 0")
	}
	if d.Columns <= 0 {
		verr.Add("columns", "columns must be greater than 0")
	}
}

// ValidateAll validates every widget in a collection and returns one
// ValidationError per failing widget, keyed by widget id. Valid widgets
// are unaffected by their neighbours' failures.
func ValidateAll(widgets []types.Widget) map[string]error {
	failures := make(map[string]error)
	for i := range widgets {
		if err := Validate(&widgets[i]); err != nil {
			failures[widgets[i].ID] = err
		}
	}
	return failures
}
