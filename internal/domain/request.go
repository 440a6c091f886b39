package domain

import "strconv"

// MaxDays is the sentinel day window meaning "as far back as we keep data".
const MaxDays = 366

// DeltaMode selects the period-over-period transform applied to a series.
type DeltaMode string

// Delta modes
const (
	DeltaNone     DeltaMode = ""
	DeltaAbsolute DeltaMode = "absolute"
	DeltaPercent  DeltaMode = "percent"
)

// ParseDeltaMode validates a raw delta parameter. "none" is accepted as an alias of DeltaNone.
func ParseDeltaMode(s string) (DeltaMode, error) {
	switch s {
	case "", "none":
		return DeltaNone, nil
	case string(DeltaAbsolute):
		return DeltaAbsolute, nil
	case string(DeltaPercent):
		return DeltaPercent, nil
	default:
		return DeltaNone, InvalidArgument("unknown delta mode %q", s)
	}
}

// TechnicalSpec describes one technical indicator to compute.
type TechnicalSpec struct {
	Type   string `json:"type"`
	Period int    `json:"period"`
}

// GraphRequest is the sole input of a render and of its cache key.
// It is built once from external input and never mutated afterwards.
type GraphRequest struct {
	GraphType    string         `json:"graph_type"`
	Arg0         string         `json:"arg0,omitempty"`
	Arg0Resolved string         `json:"arg0_resolved,omitempty"`
	Days         int            `json:"days,omitempty"`
	Delta        DeltaMode      `json:"delta,omitempty"`
	Technical    *TechnicalSpec `json:"technical,omitempty"`
	UserID       int64          `json:"user_id,omitempty"`
	UserHash     string         `json:"user_hash,omitempty"`
	NoCache      bool           `json:"no_cache,omitempty"`
}

// HasUser reports whether the request carries a user identity.
func (r GraphRequest) HasUser() bool {
	return r.UserID != 0
}

// HasTechnical reports whether a technical indicator was requested.
func (r GraphRequest) HasTechnical() bool {
	return r.Technical != nil && r.Technical.Type != ""
}

// UserIDString returns the user id as used in cache keys ("" when absent).
func (r GraphRequest) UserIDString() string {
	if r.UserID == 0 {
		return ""
	}
	return strconv.FormatInt(r.UserID, 10)
}

// TechnicalType returns the indicator type or "".
func (r GraphRequest) TechnicalType() string {
	if r.Technical == nil {
		return ""
	}
	return r.Technical.Type
}

// TechnicalPeriodString returns the indicator period as used in cache keys ("" when absent).
func (r GraphRequest) TechnicalPeriodString() string {
	if !r.HasTechnical() {
		return ""
	}
	return strconv.Itoa(r.Technical.Period)
}
