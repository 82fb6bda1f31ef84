package analytics

import (
	"time"

	"github.com/starford/bantay/internal/models"
)

// predicate reports whether a record passes one criterion.
type predicate func(r *models.Record) bool

// Filter returns the records matching every set option of c, preserving
// input order. now is the evaluation instant for relative windows; its
// location decides calendar boundaries. Unmatched criteria yield an empty,
// non-nil slice.
func Filter(records []models.Record, c Criteria, now time.Time) []models.Record {
	preds := c.predicates(now)
	out := make([]models.Record, 0, len(records))
	for i := range records {
		if matchAll(&records[i], preds) {
			out = append(out, records[i])
		}
	}
	return out
}

func matchAll(r *models.Record, preds []predicate) bool {
	for _, p := range preds {
		if !p(r) {
			return false
		}
	}
	return true
}

// predicates builds only the checks that are actually set, so a record with
// a missing attribute is never excluded by an option the caller left empty.
func (c Criteria) predicates(now time.Time) []predicate {
	var preds []predicate

	if w := windowPredicate(c, now); w != nil {
		preds = append(preds, w)
	}
	if c.Status != "" {
		want := models.NormalizeStatus(string(c.Status))
		preds = append(preds, func(r *models.Record) bool { return r.Status == want })
	}
	if c.Category != "" {
		preds = append(preds, func(r *models.Record) bool { return r.Category == c.Category })
	}
	if c.Zone != "" {
		want := models.Capitalize(c.Zone)
		preds = append(preds, func(r *models.Record) bool { return models.Capitalize(r.Subject.Zone) == want })
	}
	if c.Gender != "" {
		want := models.Capitalize(c.Gender)
		preds = append(preds, func(r *models.Record) bool { return models.Capitalize(r.Subject.Gender) == want })
	}
	if c.Employment != "" {
		want := models.Capitalize(c.Employment)
		preds = append(preds, func(r *models.Record) bool {
			return models.Capitalize(r.Subject.Employment) == want
		})
	}
	switch c.Priority {
	case PriorityPWD:
		preds = append(preds, func(r *models.Record) bool { return r.Subject.PWD })
	case PriorityFourPs:
		preds = append(preds, func(r *models.Record) bool { return r.Subject.FourPs })
	case PrioritySoloParent:
		preds = append(preds, func(r *models.Record) bool { return r.Subject.SoloParent })
	}
	switch c.Age.Mode {
	case AgeExact:
		v := c.Age.Value
		preds = append(preds, func(r *models.Record) bool { return r.Subject.Age != nil && *r.Subject.Age == v })
	case AgeAtLeast:
		v := c.Age.Value
		preds = append(preds, func(r *models.Record) bool { return r.Subject.Age != nil && *r.Subject.Age >= v })
	}
	return preds
}

func windowPredicate(c Criteria, now time.Time) predicate {
	loc := now.Location()
	switch c.Window {
	case WindowToday:
		start := startOfDay(now)
		return between(start, start.AddDate(0, 0, 1))
	case WindowThisWeek:
		// Calendar weeks start on Sunday.
		start := startOfDay(now).AddDate(0, 0, -int(now.Weekday()))
		return between(start, start.AddDate(0, 0, 7))
	case WindowThisMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		return between(start, start.AddDate(0, 1, 0))
	case WindowThisYear:
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc)
		return between(start, start.AddDate(1, 0, 0))
	case WindowCustom:
		if c.Month == 0 && c.Year == 0 {
			return nil
		}
		return func(r *models.Record) bool {
			t := r.CreatedAt.In(loc)
			if c.Year != 0 && t.Year() != c.Year {
				return false
			}
			return c.Month == 0 || t.Month() == c.Month
		}
	default:
		return nil
	}
}

// between matches creation instants in [start, end).
func between(start, end time.Time) predicate {
	return func(r *models.Record) bool {
		return !r.CreatedAt.Before(start) && r.CreatedAt.Before(end)
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
