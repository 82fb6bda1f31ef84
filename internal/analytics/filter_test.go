package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/bantay/internal/models"
)

func ids(records []models.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestFilter_NoCriteriaKeepsEverythingInOrder(t *testing.T) {
	records := []models.Record{
		rec(at(2025, 3, 1, 9)),
		rec(at(2024, 1, 1, 9)),
		rec(at(2025, 1, 1, 9), withSubject(models.Subject{})),
	}
	got := Filter(records, Criteria{}, at(2025, 6, 11, 12))
	assert.Equal(t, ids(records), ids(got))
}

func TestFilter_TimeWindows(t *testing.T) {
	now := at(2025, time.June, 11, 15) // Wednesday
	records := []models.Record{
		rec(at(2025, time.June, 11, 0)),      // 0 today
		rec(at(2025, time.June, 10, 23)),     // 1 yesterday, this week
		rec(at(2025, time.June, 8, 0)),       // 2 Sunday, week start
		rec(at(2025, time.June, 7, 23)),      // 3 Saturday before
		rec(at(2025, time.June, 14, 23)),     // 4 Saturday, end of week
		rec(at(2025, time.June, 15, 0)),      // 5 next Sunday
		rec(at(2025, time.June, 1, 0)),       // 6 this month
		rec(at(2025, time.May, 31, 23)),      // 7 last month
		rec(at(2025, time.January, 1, 0)),    // 8 this year
		rec(at(2024, time.December, 31, 23)), // 9 last year
	}
	pick := func(idx ...int) []string {
		out := make([]string, len(idx))
		for i, j := range idx {
			out[i] = records[j].ID
		}
		return out
	}

	cases := []struct {
		name string
		c    Criteria
		want []string
	}{
		{"today", Criteria{Window: WindowToday}, pick(0)},
		{"this week", Criteria{Window: WindowThisWeek}, pick(0, 1, 2, 4)},
		{"this month", Criteria{Window: WindowThisMonth}, pick(0, 1, 2, 3, 4, 5, 6)},
		{"this year", Criteria{Window: WindowThisYear}, pick(0, 1, 2, 3, 4, 5, 6, 7, 8)},
		{"custom month and year", Custom(time.May, 2025), pick(7)},
		{"custom year only", Custom(0, 2024), pick(9)},
		{"custom month only", Custom(time.December, 0), pick(9)},
		{"custom open", Custom(0, 0), ids(records)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ids(Filter(records, tc.c, now)))
		})
	}
}

func TestFilter_WindowUsesEvaluationLocation(t *testing.T) {
	// 2025-06-10 17:00 UTC is already 2025-06-11 01:00 in Manila.
	r := rec(time.Date(2025, time.June, 10, 17, 0, 0, 0, time.UTC))
	now := at(2025, time.June, 11, 12)
	got := Filter([]models.Record{r}, Criteria{Window: WindowToday}, now)
	assert.Len(t, got, 1)

	got = Filter([]models.Record{r}, Criteria{Window: WindowToday}, now.UTC())
	assert.Empty(t, got)
}

func TestFilter_CategoricalAndNormalised(t *testing.T) {
	now := at(2025, 6, 11, 12)
	a := rec(at(2025, 1, 2, 9), withStatus(models.StatusApproved), withSubject(models.Subject{
		Zone: "PUROK 3", Gender: "female", Employment: "self-employed",
	}))
	b := rec(at(2025, 1, 3, 9), withCategory("Barangay ID"), withSubject(models.Subject{
		Zone: "purok 3", Gender: "Male", Employment: "Employed",
	}))
	records := []models.Record{a, b}

	assert.Equal(t, []string{a.ID}, ids(Filter(records, Criteria{Status: models.StatusApproved}, now)))
	assert.Equal(t, []string{b.ID}, ids(Filter(records, Criteria{Category: "Barangay ID"}, now)))
	assert.Equal(t, []string{a.ID, b.ID}, ids(Filter(records, Criteria{Zone: "Purok 3"}, now)))
	assert.Equal(t, []string{a.ID}, ids(Filter(records, Criteria{Gender: "FEMALE"}, now)))
	assert.Equal(t, []string{a.ID}, ids(Filter(records, Criteria{Employment: "Self-Employed"}, now)))
	assert.Empty(t, Filter(records, Criteria{Zone: "Purok 3", Gender: "female", Status: models.StatusPending}, now))
}

func TestFilter_StatusSpellings(t *testing.T) {
	now := at(2025, 6, 11, 12)
	c := rec(at(2025, 2, 4, 9), withKind(models.KindCase),
		withStatus(models.ResolveStatus(models.KindCase, "On-Going", models.StatusFlags{})))
	records := []models.Record{c, rec(at(2025, 2, 5, 9))}

	for _, s := range []models.Status{"on-going", "On-Going", " ONGOING "} {
		assert.Equal(t, []string{c.ID}, ids(Filter(records, Criteria{Status: s}, now)), s)
	}
}

func TestFilter_PriorityAndAge(t *testing.T) {
	now := at(2025, 6, 11, 12)
	pwd := rec(at(2025, 1, 1, 9), withSubject(models.Subject{PWD: true, Age: age(24)}))
	fourPs := rec(at(2025, 1, 1, 9), withSubject(models.Subject{FourPs: true, Age: age(40)}))
	solo := rec(at(2025, 1, 1, 9), withSubject(models.Subject{SoloParent: true, Age: age(19)}))
	noAge := rec(at(2025, 1, 1, 9), withSubject(models.Subject{}))
	records := []models.Record{pwd, fourPs, solo, noAge}

	assert.Equal(t, []string{pwd.ID}, ids(Filter(records, Criteria{Priority: PriorityPWD}, now)))
	assert.Equal(t, []string{fourPs.ID}, ids(Filter(records, Criteria{Priority: PriorityFourPs}, now)))
	assert.Equal(t, []string{solo.ID}, ids(Filter(records, Criteria{Priority: PrioritySoloParent}, now)))

	exact := Criteria{Age: AgeFilter{Mode: AgeExact, Value: 19}}
	assert.Equal(t, []string{solo.ID}, ids(Filter(records, exact, now)))

	cutoff := Criteria{Age: AgeFilter{Mode: AgeAtLeast, Value: models.AgeCutoff}}
	assert.Equal(t, []string{pwd.ID, fourPs.ID}, ids(Filter(records, cutoff, now)))
}

func TestFilter_UnsetOptionsDoNotExcludeMissingAttributes(t *testing.T) {
	r := rec(at(2025, 1, 1, 9), withSubject(models.Subject{}))
	got := Filter([]models.Record{r}, Criteria{Window: WindowThisYear}, at(2025, 2, 1, 0))
	assert.Len(t, got, 1)
}

func TestFilter_Idempotent(t *testing.T) {
	records := seriesRecords(Period{2024, time.November}, 3, 1, 4, 1, 5)
	c := Criteria{Window: WindowCustom, Year: 2025, Zone: "purok 1"}
	now := at(2025, 6, 1, 0)

	first := Filter(records, c, now)
	second := Filter(records, c, now)
	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

func TestFilter_NoMatchIsEmptyNotNil(t *testing.T) {
	got := Filter([]models.Record{rec(at(2025, 1, 1, 9))}, Criteria{Category: "Nope"}, at(2025, 1, 2, 0))
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCriteria_Validate(t *testing.T) {
	require.NoError(t, Criteria{}.Validate())
	require.NoError(t, Custom(time.March, 2025).Validate())
	require.NoError(t, Criteria{Priority: PriorityPWD, Age: AgeFilter{Mode: AgeAtLeast, Value: 24}}.Validate())

	assert.Error(t, Criteria{Window: "fortnight"}.Validate())
	assert.Error(t, Criteria{Window: WindowCustom, Month: 13}.Validate())
	assert.Error(t, Criteria{Priority: "senior"}.Validate())
	assert.Error(t, Criteria{Age: AgeFilter{Mode: "around", Value: 3}}.Validate())
	assert.Error(t, Criteria{Age: AgeFilter{Mode: AgeExact, Value: -1}}.Validate())
}
