// Package analytics is the demand analytics engine: filtering, categorical
// aggregation, monthly time series, forecasting and descriptive summaries.
//
// Every function is pure over an already-fetched record slice. Nothing here
// reads the wall clock, performs I/O or mutates its input.
package analytics

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/bantay/internal/models"
)

// TimeWindow selects records by creation time relative to the evaluation instant.
type TimeWindow string

// Time windows.
const (
	WindowNone      TimeWindow = ""
	WindowToday     TimeWindow = "today"
	WindowThisWeek  TimeWindow = "this_week"
	WindowThisMonth TimeWindow = "this_month"
	WindowThisYear  TimeWindow = "this_year"
	WindowCustom    TimeWindow = "custom"
)

// PriorityFlag selects records whose subject carries a priority-sector flag.
type PriorityFlag string

// Priority flags.
const (
	PriorityNone       PriorityFlag = ""
	PriorityPWD        PriorityFlag = "pwd"
	PriorityFourPs     PriorityFlag = "four_ps"
	PrioritySoloParent PriorityFlag = "solo_parent"
)

// AgeMode controls how AgeFilter.Value is compared.
type AgeMode string

// Age modes.
const (
	AgeAny     AgeMode = ""
	AgeExact   AgeMode = "exact"
	AgeAtLeast AgeMode = "at_least"
)

// AgeFilter matches a subject age exactly or as an open-ended "N or above".
type AgeFilter struct {
	Mode  AgeMode `json:"mode,omitempty"`
	Value int     `json:"value,omitempty"`
}

// Criteria is a conjunction of optional predicates. Zero values mean
// "no filter" and are skipped entirely.
type Criteria struct {
	Window TimeWindow `json:"window,omitempty"`
	// Month and Year only apply to WindowCustom; zero means any.
	Month time.Month `json:"month,omitempty"`
	Year  int        `json:"year,omitempty"`

	Status     models.Status `json:"status,omitempty"`
	Category   string        `json:"category,omitempty"`
	Zone       string        `json:"zone,omitempty"`
	Gender     string        `json:"gender,omitempty"`
	Employment string        `json:"employment,omitempty"`
	Priority   PriorityFlag  `json:"priority,omitempty"`
	Age        AgeFilter     `json:"age,omitempty"`
}

// Custom returns criteria for a custom month/year window. Pass 0 for either
// part to leave it open.
func Custom(month time.Month, year int) Criteria {
	return Criteria{Window: WindowCustom, Month: month, Year: year}
}

// Validate rejects enum values and ranges that Filter would silently treat
// as impossible matches. Callers decoding user input should run it first.
func (c Criteria) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Window, validation.In(
			WindowNone, WindowToday, WindowThisWeek, WindowThisMonth, WindowThisYear, WindowCustom)),
		validation.Field(&c.Month, validation.Min(time.January), validation.Max(time.December)),
		validation.Field(&c.Year, validation.Min(1), validation.Max(9999)),
		validation.Field(&c.Priority, validation.In(
			PriorityNone, PriorityPWD, PriorityFourPs, PrioritySoloParent)),
		validation.Field(&c.Age, validation.By(validateAge)),
	)
}

func validateAge(v any) error {
	a, _ := v.(AgeFilter)
	switch a.Mode {
	case AgeAny:
		return nil
	case AgeExact, AgeAtLeast:
		if a.Value < 0 || a.Value > 150 {
			return fmt.Errorf("age %d out of range", a.Value)
		}
		return nil
	default:
		return fmt.Errorf("unknown age mode %q", a.Mode)
	}
}
