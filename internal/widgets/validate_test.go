package widgets

import (
	"testing"

	"github.com/KevinKickass/OpenPanelCore/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gaugeWidget(ranges []types.GaugeRange) *types.Widget {
	return &types.Widget{
		ID:      "g1",
		Type:    types.WidgetTypeGauge,
		Name:    "Druck",
		Binding: liveBinding(),
		Layout:  types.GridCell{I: "g1", W: 3, H: 2},
		Gauge: &types.GaugePayload{
			MinRange: 0,
			MaxRange: 100,
			Ranges:   ranges,
		},
	}
}

func TestValidate_GaugeContiguousRanges(t *testing.T) {
	w := gaugeWidget([]types.GaugeRange{
		{Start: 0, End: 33, Color: "#4caf50"},
		{Start: 33, End: 66, Color: "#ff9800"},
		{Start: 66, End: 100, Color: "#f44336"},
	})

	assert.NoError(t, Validate(w))
}

func TestValidate_GaugeRangeGap(t *testing.T) {
	w := gaugeWidget([]types.GaugeRange{
		{Start: 0, End: 30},
		{Start: 40, End: 66},
		{Start: 66, End: 100},
	})

	var verr *types.ValidationError
	require.ErrorAs(t, Validate(w), &verr)
}

func TestValidate_GaugeWrongRangeCount(t *testing.T) {
	w := gaugeWidget([]types.GaugeRange{
		{Start: 0, End: 50},
		{Start: 50, End: 100},
	})

	require.Error(t, Validate(w))
}

func TestValidate_GaugeNotSpanningScale(t *testing.T) {
	w := gaugeWidget([]types.GaugeRange{
		{Start: 10, End: 40},
		{Start: 40, End: 70},
		{Start: 70, End: 100},
	})

	var verr *types.ValidationError
	require.ErrorAs(t, Validate(w), &verr)
	assert.Contains(t, verr.Error(), "first range must start at min range")
}

func TestValidate_LayoutExceedsGrid(t *testing.T) {
	w := &types.Widget{
		ID:     "t1",
		Type:   types.WidgetTypeText,
		Layout: types.GridCell{I: "t1", X: 10, W: 4, H: 2},
		Text:   &types.TextPayload{Content: "Halle 3"},
	}

	var verr *types.ValidationError
	require.ErrorAs(t, Validate(w), &verr)
}

func TestValidate_DatagridDimensions(t *testing.T) {
	w := &types.Widget{
		ID:       "d1",
		Type:     types.WidgetTypeDatagrid,
		Layout:   types.GridCell{I: "d1", W: 4, H: 3},
		Datagrid: &types.DatagridPayload{Rows: 0, Columns: 2},
	}

	require.Error(t, Validate(w))

	w.Datagrid.Rows = 3
	assert.NoError(t, Validate(w))
}

func TestValidateAll_IsolatesFailures(t *testing.T) {
	good := types.Widget{
		ID:     "ok",
		Type:   types.WidgetTypeText,
		Layout: types.GridCell{I: "ok", W: 3, H: 2},
		Text:   &types.TextPayload{Content: "Linie 1"},
	}
	bad := types.Widget{
		ID:     "broken",
		Type:   types.WidgetTypeNumber,
		Layout: types.GridCell{I: "broken", W: 3, H: 2},
		Number: &types.NumberPayload{},
	}

	failures := ValidateAll([]types.Widget{good, bad})

	require.Len(t, failures, 1)
	assert.Contains(t, failures, "broken")
}
