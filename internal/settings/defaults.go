package settings

import (
	"fmt"

	_ "embed"

	"github.com/KevinKickass/OpenPanelCore/internal/types"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Defaults returns the base Settings layer every resolution starts from.
// The record is fully keyed; no field is left at its zero value.
func Defaults() (types.Settings, error) {
	var s types.Settings
	if err := yaml.Unmarshal(defaultsYAML, &s); err != nil {
		return types.Settings{}, fmt.Errorf("failed to parse default settings: %w", err)
	}
	return s, nil
}

// MustDefaults is Defaults for wiring paths where the embedded document
// is known good.
func MustDefaults() types.Settings {
	s, err := Defaults()
	if err != nil {
		panic(err)
	}
	return s
}
