package poller

import (
	"time"
)

// SeriesSet is the merged result of a graph tick: comparison series
// aligned on the union of their timestamps. A nil value means the series
// has no sample at that label; gaps are not interpolated.
type SeriesSet struct {
	Labels []time.Time  `json:"labels"`
	Values [][]*float64 `json:"values"`
	Units  []string     `json:"units"`
}

// CellState is the latest sample for one datagrid cell.
type CellState struct {
	HasValue  bool      `json:"has_value"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// PollState is the runtime-only cache of a widget's live data. It is
// owned by the widget's poller and dropped with it; it is never
// persisted and never written back into the Widget record.
//
// On a transport error the previous good value stays and Stale is set;
// on "no data" the previous value also stays and NoData is set. The two
// outcomes render differently but neither clears state.
type PollState struct {
	WidgetID string `json:"widget_id"`

	HasValue  bool      `json:"has_value"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`

	Series *SeriesSet  `json:"series,omitempty"`
	Cells  []CellState `json:"cells,omitempty"`

	NoData    bool      `json:"no_data,omitempty"`
	Stale     bool      `json:"stale,omitempty"`
	LastError string    `json:"last_error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}
