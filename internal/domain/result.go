package domain

import (
	"encoding/json"
	"fmt"
)

// Result is the response envelope of a render. Field names are part of the wire contract.
type Result struct {
	Success     bool          `json:"success"`
	Type        ChartType     `json:"type"`
	Columns     []Column      `json:"columns"`
	Key         string        `json:"key"`
	Data        []ResultRow   `json:"data"`
	Text        string        `json:"text,omitempty"`
	Heading     Heading       `json:"heading"`
	H1          string        `json:"h1,omitempty"`
	H2          string        `json:"h2,omitempty"`
	NoHeader    bool          `json:"noHeader,omitempty"`
	Subheading  string        `json:"subheading,omitempty"`
	LastUpdated string        `json:"lastUpdated"`
	Timestamp   int64         `json:"timestamp"`
	Classes     string        `json:"classes"`
	GraphType   string        `json:"graph_type"`
	Extra       *Extra        `json:"extra,omitempty"`
	OutOfDate   bool          `json:"outofdate,omitempty"`
	Time        float64       `json:"time"`
	Request     *GraphRequest `json:"request,omitempty"`
	Diagnostics *Diagnostics  `json:"diagnostics,omitempty"`
}

// Heading carries the display heading of a graph.
type Heading struct {
	Label string            `json:"label"`
	Args  map[string]string `json:"args,omitempty"`
	URL   string            `json:"url,omitempty"`
	Title string            `json:"title"`
}

// ExtraKind names the call-to-action offered with a no-data result.
type ExtraKind string

// Call-to-action kinds
const (
	ExtraAddAccounts   ExtraKind = "add_accounts"
	ExtraAddCurrencies ExtraKind = "add_currencies"
)

// Extra is the call-to-action block of a no-data result.
type Extra struct {
	Kind  ExtraKind `json:"kind"`
	Label string    `json:"label"`
	URL   string    `json:"url"`
}

// Diagnostics are only emitted in debug mode.
type Diagnostics struct {
	RowsFetched    int `json:"rows_fetched"`
	RowsAfterDelta int `json:"rows_after_delta"`
	RowsDiscarded  int `json:"rows_discarded"`
}

// ResultRow is one positional output row. It always serializes as a JSON array
// [key, v1, v2, ...] with null for missing cells.
type ResultRow struct {
	Key    string
	Values []*float64
}

// MarshalJSON implements json.Marshaler.
func (r ResultRow) MarshalJSON() ([]byte, error) {
	cells := make([]any, 0, len(r.Values)+1)
	cells = append(cells, r.Key)
	for _, v := range r.Values {
		if v == nil {
			cells = append(cells, nil)
			continue
		}
		cells = append(cells, *v)
	}
	return json.Marshal(cells)
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *ResultRow) UnmarshalJSON(data []byte) error {
	var cells []*json.RawMessage
	if err := json.Unmarshal(data, &cells); err != nil {
		return err
	}
	if len(cells) == 0 || cells[0] == nil {
		return fmt.Errorf("result row: missing key")
	}
	if err := json.Unmarshal(*cells[0], &r.Key); err != nil {
		return fmt.Errorf("result row key: %w", err)
	}
	r.Values = make([]*float64, len(cells)-1)
	for i, c := range cells[1:] {
		if c == nil {
			continue
		}
		var v float64
		if err := json.Unmarshal(*c, &v); err != nil {
			return fmt.Errorf("result row cell %d: %w", i, err)
		}
		r.Values[i] = &v
	}
	return nil
}
