package widgets

import (
	"github.com/KevinKickass/OpenPanelCore/internal/types"
	"github.com/google/uuid"
)

// CreateRequest carries the operator's input for a new widget. Only the
// fields relevant to the requested type are read.
type CreateRequest struct {
	Name    string        `json:"name,omitempty"`
	Binding types.Binding `json:"binding"`

	TextContent string `json:"text_content,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`

	Decimals      int     `json:"decimals,omitempty"`
	ResetInterval int     `json:"reset_interval,omitempty"`
	ThresholdPct  float64 `json:"threshold_pct,omitempty"`

	GraphType types.GraphType `json:"graph_type,omitempty"`
	Series    []types.Binding `json:"series,omitempty"`

	MinRange *float64           `json:"min_range,omitempty"`
	MaxRange *float64           `json:"max_range,omitempty"`
	Ranges   []types.GaugeRange `json:"ranges,omitempty"`

	Rows    int             `json:"rows,omitempty"`
	Columns int             `json:"columns,omitempty"`
	Cells   []types.Binding `json:"cells,omitempty"`
}

// CreateWidget builds a widget of the given type with type-appropriate
// defaults and validates the required binding fields. The layout cell has
// Y=0; the caller appends it below existing content before committing.
func CreateWidget(t types.WidgetType, req CreateRequest) (*types.Widget, error) {
	if !t.Valid() {
		verr := &types.ValidationError{}
		verr.Add("type", "unknown widget type")
		return nil, verr
	}

	id := uuid.New().String()
	w := &types.Widget{
		ID:      id,
		Type:    t,
		Name:    req.Name,
		Binding: req.Binding,
		Layout:  defaultCell(id, t),
	}

	switch t {
	case types.WidgetTypeNumber:
		w.Number = &types.NumberPayload{Decimals: req.Decimals}
	case types.WidgetTypeText:
		w.Text = &types.TextPayload{Content: req.TextContent}
	case types.WidgetTypeImage:
		w.Image = &types.ImagePayload{URL: req.ImageURL}
	case types.WidgetTypeGraph:
		gt := req.GraphType
		if gt == "" {
			gt = types.GraphTypeLine
		}
		w.Graph = &types.GraphPayload{
			GraphType:     gt,
			Series:        req.Series,
			Decimals:      req.Decimals,
			ResetInterval: req.ResetInterval,
			ThresholdPct:  req.ThresholdPct,
		}
	case types.WidgetTypeGauge:
		w.Gauge = gaugeDefaults(req)
	case types.WidgetTypeDatagrid:
		w.Datagrid = &types.DatagridPayload{
			Rows:    req.Rows,
			Columns: req.Columns,
			Cells:   req.Cells,
		}
	}

	if err := Validate(w); err != nil {
		return nil, err
	}

	return w, nil
}

// gaugeDefaults fills an unspecified gauge with a 0-100 scale split into
// three equal ranges.
func gaugeDefaults(req CreateRequest) *types.GaugePayload {
	min, max := 0.0, 100.0
	if req.MinRange != nil {
		min = *req.MinRange
	}
	if req.MaxRange != nil {
		max = *req.MaxRange
	}

	ranges := req.Ranges
	if len(ranges) == 0 && max > min {
		third := (max - min) / 3
		ranges = []types.GaugeRange{
			{Start: min, End: min + third, Color: "#4caf50"},
			{Start: min + third, End: min + 2*third, Color: "#ff9800"},
			{Start: min + 2*third, End: max, Color: "#f44336"},
		}
	}

	return &types.GaugePayload{MinRange: min, MaxRange: max, Ranges: ranges}
}

func defaultCell(id string, t types.WidgetType) types.GridCell {
	switch t {
	case types.WidgetTypeGraph:
		return types.GridCell{I: id, X: 0, Y: 0, W: 6, H: 3}
	case types.WidgetTypeDatagrid:
		return types.GridCell{I: id, X: 0, Y: 0, W: 4, H: 3}
	case types.WidgetTypeNumber, types.WidgetTypeText,
		types.WidgetTypeGauge, types.WidgetTypeImage:
		return types.GridCell{I: id, X: 0, Y: 0, W: 3, H: 2}
	}
	return types.GridCell{I: id, X: 0, Y: 0, W: 3, H: 2}
}

// ApplyLayoutPatch returns a copy of the widget with the patched cell.
// The stable key is preserved; only position and size change.
func ApplyLayoutPatch(w types.Widget, patch types.GridCell) types.Widget {
	w.Layout.X = patch.X
	w.Layout.Y = patch.Y
	w.Layout.W = patch.W
	w.Layout.H = patch.H
	return w
}
