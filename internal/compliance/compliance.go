// Package compliance derives the displayed compliance status of contract
// clauses and aggregates it into the summary banner statistics.
package compliance

import (
	"math"
	"strings"
)

// Status is the compliance classification of a clause.
type Status string

const (
	Compliant    Status = "compliant"
	Warning      Status = "warning"
	NonCompliant Status = "non_compliant"
)

// ParseStatus normalizes a backend status string. Unknown or empty values
// return ok=false.
func ParseStatus(s string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(strings.ReplaceAll(s, "-", "_"))) {
	case "compliant":
		return Compliant, true
	case "warning":
		return Warning, true
	case "non_compliant", "noncompliant":
		return NonCompliant, true
	}
	return "", false
}

// FromValidity maps a boolean validity judgment to a status.
func FromValidity(valid bool) Status {
	if valid {
		return Compliant
	}
	return NonCompliant
}

// Inputs are the clause fields that feed status resolution. A nil pointer
// or empty string means "not set".
type Inputs struct {
	ExpertOverride          *bool
	UserConfirmed           bool
	RawStatus               string
	ReviewedStatus          string
	ReviewedSuggestionValid *bool
}

// Effective resolves the status shown for a clause. Precedence, highest
// first: expert override, user confirmation (raw status), the AI-reviewed
// suggestion status, the AI-reviewed suggestion validity, and finally the
// raw status. A missing status defaults to compliant; an unrecognised one
// counts as non-compliant.
func Effective(in Inputs) Status {
	if in.ExpertOverride != nil {
		return FromValidity(*in.ExpertOverride)
	}
	if in.UserConfirmed {
		return rawOrCompliant(in.RawStatus)
	}
	if strings.TrimSpace(in.ReviewedStatus) != "" {
		return orNonCompliant(in.ReviewedStatus)
	}
	if in.ReviewedSuggestionValid != nil {
		return FromValidity(*in.ReviewedSuggestionValid)
	}
	return rawOrCompliant(in.RawStatus)
}

func rawOrCompliant(raw string) Status {
	if strings.TrimSpace(raw) == "" {
		return Compliant
	}
	return orNonCompliant(raw)
}

func orNonCompliant(s string) Status {
	if st, ok := ParseStatus(s); ok {
		return st
	}
	return NonCompliant
}

// Stats summarizes a clause list.
type Stats struct {
	Total        int `json:"total"`
	Compliant    int `json:"compliant"`
	Warning      int `json:"warning"`
	NonCompliant int `json:"non_compliant"`

	// Percentage is the share of compliant clauses, 0 when there are none.
	Percentage float64 `json:"percentage"`
}

// Compute counts statuses. The three buckets always sum to Total.
func Compute(statuses []Status) Stats {
	var st Stats
	for _, s := range statuses {
		st.Total++
		switch s {
		case Compliant:
			st.Compliant++
		case Warning:
			st.Warning++
		default:
			st.NonCompliant++
		}
	}
	if st.Total > 0 {
		st.Percentage = float64(st.Compliant) / float64(st.Total) * 100
	}
	return st
}

// RoundedPercentage is the percentage as displayed.
func (s Stats) RoundedPercentage() int {
	return int(math.Round(s.Percentage))
}

// Headline is the banner title bucket.
type Headline string

const (
	HeadlineFull    Headline = "full"
	HeadlinePartial Headline = "partial"
	HeadlineNon     Headline = "non"
)

// HeadlineFor returns "full" only when every clause is compliant.
func HeadlineFor(percentage float64) Headline {
	switch {
	case percentage >= 100:
		return HeadlineFull
	case percentage >= 50:
		return HeadlinePartial
	default:
		return HeadlineNon
	}
}

// Tone is the banner colour band.
type Tone string

const (
	ToneGood    Tone = "good"
	ToneCaution Tone = "caution"
	ToneBad     Tone = "bad"
)

// ToneFor maps a percentage to its colour band: 80 and above is good,
// 50 and above is caution.
func ToneFor(percentage float64) Tone {
	switch {
	case percentage >= 80:
		return ToneGood
	case percentage >= 50:
		return ToneCaution
	default:
		return ToneBad
	}
}

// Filter restricts a clause list to one status.
type Filter string

const (
	FilterAll          Filter = "all"
	FilterCompliant    Filter = "compliant"
	FilterWarning      Filter = "warning"
	FilterNonCompliant Filter = "non-compliant"
)

// Filters lists the filter tabs in display order.
var Filters = []Filter{FilterAll, FilterCompliant, FilterWarning, FilterNonCompliant}

// ParseFilter accepts a filter name, defaulting to all.
func ParseFilter(s string) Filter {
	switch Filter(strings.ToLower(strings.TrimSpace(s))) {
	case FilterCompliant:
		return FilterCompliant
	case FilterWarning:
		return FilterWarning
	case FilterNonCompliant, "non_compliant":
		return FilterNonCompliant
	}
	return FilterAll
}

// Match reports whether a clause with status s passes the filter.
func (f Filter) Match(s Status) bool {
	switch f {
	case FilterCompliant:
		return s == Compliant
	case FilterWarning:
		return s == Warning
	case FilterNonCompliant:
		return s == NonCompliant
	}
	return true
}
