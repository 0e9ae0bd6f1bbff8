package widgets

import (
	"testing"

	"github.com/KevinKickass/OpenPanelCore/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_AcceptsWellFormedDocument(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	w, err := CreateWidget(types.WidgetTypeNumber, CreateRequest{
		Name:    "Temperatur",
		Binding: liveBinding(),
	})
	require.NoError(t, err)

	d := &types.Dashboard{Name: "Linie 1", Widgets: []types.Widget{*w}}
	assert.NoError(t, v.ValidateDashboard(d))
}

func TestValidator_RejectsCellOutsideGrid(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	err = v.ValidateDocument([]byte(`{
		"name": "Linie 1",
		"widgets": [{
			"id": "w1",
			"type": "number",
			"layout": {"i": "w1", "x": 15, "y": 0, "w": 3, "h": 2}
		}]
	}`))
	require.Error(t, err)
}

func TestValidator_RejectsUnknownWidgetType(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	err = v.ValidateDocument([]byte(`{
		"name": "Linie 1",
		"widgets": [{
			"id": "w1",
			"type": "sparkline",
			"layout": {"i": "w1", "x": 0, "y": 0, "w": 3, "h": 2}
		}]
	}`))
	require.Error(t, err)
}

func TestValidator_RejectsMissingName(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	require.Error(t, v.ValidateDocument([]byte(`{"widgets": []}`)))
	require.Error(t, v.ValidateDocument([]byte(`{"name": "", "widgets": []}`)))
}

func TestValidator_RejectsMalformedJSON(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	require.Error(t, v.ValidateDocument([]byte(`{not json`)))
}
