package settings

import (
	"github.com/KevinKickass/OpenPanelCore/internal/types"
)

// Resolve merges defaults, an optional template and an optional widget
// override into one concrete Settings record. Precedence is left to
// right: override wins over template wins over defaults, per field.
// A zero field means "not set by this layer".
func Resolve(defaults types.Settings, template, override *types.Settings) types.Settings {
	out := defaults
	if template != nil {
		merge(&out, *template)
	}
	if override != nil {
		merge(&out, *override)
	}
	return out
}

func merge(dst *types.Settings, src types.Settings) {
	dst.TitleColor = pickStr(dst.TitleColor, src.TitleColor)
	dst.TitleFontFamily = pickStr(dst.TitleFontFamily, src.TitleFontFamily)
	dst.TitleFontSize = pickInt(dst.TitleFontSize, src.TitleFontSize)
	dst.TitleFontWeight = pickStr(dst.TitleFontWeight, src.TitleFontWeight)
	dst.TitleFontStyle = pickStr(dst.TitleFontStyle, src.TitleFontStyle)
	dst.TitleTextDecoration = pickStr(dst.TitleTextDecoration, src.TitleTextDecoration)

	dst.ValueColor = pickStr(dst.ValueColor, src.ValueColor)
	dst.ValueFontFamily = pickStr(dst.ValueFontFamily, src.ValueFontFamily)
	dst.ValueFontSize = pickInt(dst.ValueFontSize, src.ValueFontSize)
	dst.ValueFontWeight = pickStr(dst.ValueFontWeight, src.ValueFontWeight)
	dst.ValueFontStyle = pickStr(dst.ValueFontStyle, src.ValueFontStyle)
	dst.ValueTextDecoration = pickStr(dst.ValueTextDecoration, src.ValueTextDecoration)

	dst.BorderColor = pickStr(dst.BorderColor, src.BorderColor)
	dst.BorderWidth = pickInt(dst.BorderWidth, src.BorderWidth)
	dst.BorderRadius = pickInt(dst.BorderRadius, src.BorderRadius)
	dst.Background = pickStr(dst.Background, src.Background)
}

func pickStr(current, next string) string {
	if next != "" {
		return next
	}
	return current
}

func pickInt(current, next int) int {
	if next != 0 {
		return next
	}
	return current
}
