package settings

import (
	"context"
	"testing"

	"github.com/KevinKickass/OpenPanelCore/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults_FullyKeyed(t *testing.T) {
	d, err := Defaults()
	require.NoError(t, err)

	assert.NotEmpty(t, d.TitleColor)
	assert.NotEmpty(t, d.ValueFontFamily)
	assert.NotZero(t, d.TitleFontSize)
	assert.NotZero(t, d.ValueFontSize)
	assert.NotEmpty(t, d.Background)
}

func TestResolve_Precedence(t *testing.T) {
	defaults := MustDefaults()
	template := &types.Settings{
		TitleColor:    "#ff0000",
		ValueFontSize: 40,
	}
	override := &types.Settings{
		TitleColor: "#0000ff",
	}

	resolved := Resolve(defaults, template, override)

	// Override wins over template wins over defaults, per field.
	assert.Equal(t, "#0000ff", resolved.TitleColor)
	assert.Equal(t, 40, resolved.ValueFontSize)
	assert.Equal(t, defaults.Background, resolved.Background)
	assert.Equal(t, defaults.TitleFontFamily, resolved.TitleFontFamily)
}

func TestResolve_NilLayersFallThrough(t *testing.T) {
	defaults := MustDefaults()

	assert.Equal(t, defaults, Resolve(defaults, nil, nil))

	override := &types.Settings{BorderWidth: 3}
	resolved := Resolve(defaults, nil, override)
	assert.Equal(t, 3, resolved.BorderWidth)
	assert.Equal(t, defaults.BorderColor, resolved.BorderColor)
}

func TestResolve_ZeroFieldMeansUnset(t *testing.T) {
	defaults := MustDefaults()
	template := &types.Settings{ValueColor: "#123456"}

	resolved := Resolve(defaults, template, &types.Settings{})

	// Empty override changes nothing compared to the template layer.
	assert.Equal(t, "#123456", resolved.ValueColor)
	assert.Equal(t, defaults.TitleFontSize, resolved.TitleFontSize)
}

func TestMemoryStore_DuplicateNameCaseInsensitive(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, types.Template{Name: "Alarmfarben"}))

	err := store.Save(ctx, types.Template{Name: "alarmfarben"})
	var verr *types.ValidationError
	require.ErrorAs(t, err, &verr)

	err = store.Save(ctx, types.Template{Name: "Alarmfarben"})
	require.ErrorAs(t, err, &verr)
}

func TestMemoryStore_GetIsCaseInsensitive(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	tpl := types.Template{
		Name:     "Nachtmodus",
		Settings: types.Settings{Background: "#000000"},
	}
	require.NoError(t, store.Save(ctx, tpl))

	got, err := store.Get(ctx, "NACHTMODUS")
	require.NoError(t, err)
	assert.Equal(t, "Nachtmodus", got.Name)
	assert.Equal(t, "#000000", got.Settings.Background)
}

func TestMemoryStore_DeleteLeavesResolvedCopiesAlone(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	tpl := types.Template{
		Name:     "Warnung",
		Settings: types.Settings{TitleColor: "#ff9800"},
	}
	require.NoError(t, store.Save(ctx, tpl))

	// A widget keeps the resolved record, not a reference.
	resolved := Resolve(MustDefaults(), &tpl.Settings, nil)

	require.NoError(t, store.Delete(ctx, "warnung"))
	_, err := store.Get(ctx, "Warnung")
	require.Error(t, err)

	assert.Equal(t, "#ff9800", resolved.TitleColor)
}

func TestMemoryStore_ListSorted(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, types.Template{Name: "Zebra"}))
	require.NoError(t, store.Save(ctx, types.Template{Name: "Alpha"}))

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Alpha", list[0].Name)
	assert.Equal(t, "Zebra", list[1].Name)
}
