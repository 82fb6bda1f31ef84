package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/starford/bantay/internal/analytics"
	"github.com/starford/bantay/internal/models"
)

// ParseCriteria maps query parameters (or MCP tool arguments) onto
// analytics.Criteria:
//
//	window      today | this_week | this_month | this_year | custom
//	month, year custom window bounds; either one alone implies window=custom
//	status, category, zone, gender, employment
//	priority    pwd | four_ps | solo_parent
//	age         integer; age_mode exact (default) | at_least
//	age_min     shorthand for age=N&age_mode=at_least
//
// Values are syntax-checked here; Criteria.Validate checks ranges.
func ParseCriteria(q url.Values) (analytics.Criteria, error) {
	c := analytics.Criteria{
		Window:     analytics.TimeWindow(strings.ToLower(strings.TrimSpace(q.Get("window")))),
		Status:     models.NormalizeStatus(q.Get("status")),
		Category:   strings.TrimSpace(q.Get("category")),
		Zone:       strings.TrimSpace(q.Get("zone")),
		Gender:     strings.TrimSpace(q.Get("gender")),
		Employment: strings.TrimSpace(q.Get("employment")),
		Priority:   analytics.PriorityFlag(strings.ToLower(strings.TrimSpace(q.Get("priority")))),
	}

	if v := q.Get("month"); v != "" {
		m, err := parseMonth(v)
		if err != nil {
			return c, err
		}
		c.Month = m
	}
	if v := q.Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return c, fmt.Errorf("year: %q is not a number", v)
		}
		c.Year = y
	}
	if c.Window == analytics.WindowNone && (c.Month != 0 || c.Year != 0) {
		c.Window = analytics.WindowCustom
	}

	switch {
	case q.Get("age_min") != "":
		n, err := strconv.Atoi(q.Get("age_min"))
		if err != nil {
			return c, fmt.Errorf("age_min: %q is not a number", q.Get("age_min"))
		}
		c.Age = analytics.AgeFilter{Mode: analytics.AgeAtLeast, Value: n}
	case q.Get("age") != "":
		n, err := strconv.Atoi(q.Get("age"))
		if err != nil {
			return c, fmt.Errorf("age: %q is not a number", q.Get("age"))
		}
		mode := analytics.AgeMode(strings.ToLower(q.Get("age_mode")))
		if mode == "" {
			mode = analytics.AgeExact
		}
		c.Age = analytics.AgeFilter{Mode: mode, Value: n}
	}
	return c, nil
}

// parseMonth accepts 1-12 or an English month name or abbreviation.
func parseMonth(v string) (time.Month, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return time.Month(n), nil
	}
	name := strings.ToLower(strings.TrimSpace(v))
	for m := time.January; m <= time.December; m++ {
		full := strings.ToLower(m.String())
		if name == full || (len(name) >= 3 && strings.HasPrefix(full, name)) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("month: %q is not a month", v)
}

// intParam reads an optional integer query parameter.
func intParam(q url.Values, key string, def int) (int, error) {
	v := q.Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", key, v)
	}
	return n, nil
}

// yearsParam reads a comma separated year list, e.g. years=2024,2025.
func yearsParam(q url.Values) ([]int, error) {
	raw := q.Get("years")
	if raw == "" {
		return nil, nil
	}
	var out []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		y, err := strconv.Atoi(part)
		if err != nil || y < 1 || y > 9999 {
			return nil, fmt.Errorf("years: %q is not a year", part)
		}
		out = append(out, y)
	}
	return out, nil
}
