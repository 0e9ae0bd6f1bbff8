package layout

import (
	"testing"

	"github.com/KevinKickass/OpenPanelCore/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func widgetAt(id string, x, y, w, h int) types.Widget {
	return types.Widget{
		ID:     id,
		Type:   types.WidgetTypeText,
		Layout: types.GridCell{I: id, X: x, Y: y, W: w, H: h},
		Text:   &types.TextPayload{Content: id},
	}
}

func TestClamp_KeepsCellInsideGrid(t *testing.T) {
	cases := []struct {
		name string
		in   types.GridCell
		want types.GridCell
	}{
		{
			name: "oversized width",
			in:   types.GridCell{I: "a", X: 0, Y: 0, W: 20, H: 2},
			want: types.GridCell{I: "a", X: 0, Y: 0, W: 12, H: 2},
		},
		{
			name: "pushed past right edge",
			in:   types.GridCell{I: "a", X: 10, Y: 1, W: 4, H: 2},
			want: types.GridCell{I: "a", X: 8, Y: 1, W: 4, H: 2},
		},
		{
			name: "negative origin",
			in:   types.GridCell{I: "a", X: -3, Y: -1, W: 3, H: 2},
			want: types.GridCell{I: "a", X: 0, Y: 0, W: 3, H: 2},
		},
		{
			name: "zero size",
			in:   types.GridCell{I: "a", X: 2, Y: 0, W: 0, H: 0},
			want: types.GridCell{I: "a", X: 2, Y: 0, W: 1, H: 1},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Clamp(tc.in)
			assert.Equal(t, tc.want, got)
			assert.GreaterOrEqual(t, got.X, 0)
			assert.LessOrEqual(t, got.X+got.W, types.GridColumns)
		})
	}
}

func TestNextRow_BelowLowestWidget(t *testing.T) {
	assert.Equal(t, 0, NextRow(nil))

	widgets := []types.Widget{
		widgetAt("a", 0, 0, 3, 2),
		widgetAt("b", 3, 1, 3, 4),
		widgetAt("c", 6, 0, 3, 2),
	}
	assert.Equal(t, 5, NextRow(widgets))
}

func TestAppend_PlacesBelowExisting(t *testing.T) {
	widgets := []types.Widget{widgetAt("a", 0, 0, 6, 3)}

	widgets = Append(widgets, widgetAt("b", 0, 0, 3, 2))

	require.Len(t, widgets, 2)
	assert.Equal(t, 3, widgets[1].Layout.Y)
}

func TestApplyLayoutChange_DoesNotMutateInput(t *testing.T) {
	widgets := []types.Widget{widgetAt("a", 0, 0, 3, 2)}

	out := ApplyLayoutChange(widgets, []types.GridCell{{I: "a", X: 4, Y: 2, W: 3, H: 2}})

	assert.Equal(t, 0, widgets[0].Layout.X)
	assert.Equal(t, 4, out[0].Layout.X)
	assert.Equal(t, 2, out[0].Layout.Y)
}

func TestApplyLayoutChange_IgnoresUnknownKeys(t *testing.T) {
	widgets := []types.Widget{widgetAt("a", 0, 0, 3, 2)}

	out := ApplyLayoutChange(widgets, []types.GridCell{
		{I: "ghost", X: 1, Y: 1, W: 2, H: 2},
	})

	require.Len(t, out, 1)
	assert.Equal(t, widgets[0].Layout, out[0].Layout)
}

func TestApplyLayoutChange_ClampsProposal(t *testing.T) {
	widgets := []types.Widget{widgetAt("a", 0, 0, 3, 2)}

	out := ApplyLayoutChange(widgets, []types.GridCell{
		{I: "a", X: 11, Y: 0, W: 6, H: 2},
	})

	assert.Equal(t, 6, out[0].Layout.X)
	assert.Equal(t, 6, out[0].Layout.W)
}

func TestRemove_DropsWidgetAndCellTogether(t *testing.T) {
	widgets := []types.Widget{
		widgetAt("a", 0, 0, 3, 2),
		widgetAt("b", 3, 0, 3, 2),
	}

	out, ok := Remove(widgets, "a")
	require.True(t, ok)
	require.Len(t, out, 1)
	assert.Equal(t, "b", out[0].ID)

	out, ok = Remove(out, "missing")
	assert.False(t, ok)
	assert.Len(t, out, 1)
}
