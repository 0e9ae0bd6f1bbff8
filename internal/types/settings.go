package types

// Settings is the flat style record applied to a widget. Every field is
// part of the record; resolution over defaults/template/override is a
// per-field last-writer-wins merge (zero value = not set by that layer).
type Settings struct {
	TitleColor          string `json:"title_color,omitempty" yaml:"title_color"`
	TitleFontFamily     string `json:"title_font_family,omitempty" yaml:"title_font_family"`
	TitleFontSize       int    `json:"title_font_size,omitempty" yaml:"title_font_size"`
	TitleFontWeight     string `json:"title_font_weight,omitempty" yaml:"title_font_weight"`
	TitleFontStyle      string `json:"title_font_style,omitempty" yaml:"title_font_style"`
	TitleTextDecoration string `json:"title_text_decoration,omitempty" yaml:"title_text_decoration"`

	ValueColor          string `json:"value_color,omitempty" yaml:"value_color"`
	ValueFontFamily     string `json:"value_font_family,omitempty" yaml:"value_font_family"`
	ValueFontSize       int    `json:"value_font_size,omitempty" yaml:"value_font_size"`
	ValueFontWeight     string `json:"value_font_weight,omitempty" yaml:"value_font_weight"`
	ValueFontStyle      string `json:"value_font_style,omitempty" yaml:"value_font_style"`
	ValueTextDecoration string `json:"value_text_decoration,omitempty" yaml:"value_text_decoration"`

	BorderColor  string `json:"border_color,omitempty" yaml:"border_color"`
	BorderWidth  int    `json:"border_width,omitempty" yaml:"border_width"`
	BorderRadius int    `json:"border_radius,omitempty" yaml:"border_radius"`
	Background   string `json:"background,omitempty" yaml:"background"`
}

// Template is a named, independently persisted Settings snapshot.
// Widgets store a resolved copy after apply, never a reference, so
// deleting a template does not affect widgets styled from it.
type Template struct {
	Name     string   `json:"name"`
	Settings Settings `json:"settings"`
}
