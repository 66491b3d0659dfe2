package utils

import (
	"strconv"
	"testing"
	"time"
)

func TestResolveWeek_KnownLabels(t *testing.T) {
	cases := []struct {
		label string
		start string
	}{
		{"2025-W36", "2025-09-01"},
		{"2025-W1", "2024-12-30"},
		{"2025-W01", "2024-12-30"},
		{"2026-W1", "2025-12-29"},
		{"2020-W53", "2020-12-28"}, // 2020 is a 53-week ISO year
		{"2024-W1", "2024-01-01"},
	}
	for _, tc := range cases {
		w, err := ResolveWeek(tc.label, nil)
		if err != nil {
			t.Fatalf("ResolveWeek(%q) error: %v", tc.label, err)
		}
		if got := w.Start.Format("2006-01-02"); got != tc.start {
			t.Fatalf("ResolveWeek(%q) start expected %s, got %s", tc.label, tc.start, got)
		}
		if !w.End.Equal(w.Start.AddDate(0, 0, 7)) {
			t.Fatalf("ResolveWeek(%q) end is not start+7d", tc.label)
		}
	}
}

func TestResolveWeek_AlwaysMondayUTC(t *testing.T) {
	for year := 2019; year <= 2030; year++ {
		for week := 1; week <= 53; week++ {
			label := strconv.Itoa(year) + "-W" + strconv.Itoa(week)
			w, err := ResolveWeek(label, nil)
			if err != nil {
				// Week 53 only exists in some years.
				if week == 53 && err == ErrorInvalidWeekFormat {
					continue
				}
				t.Fatalf("ResolveWeek(%q) error: %v", label, err)
			}
			if w.Start.Weekday() != time.Monday {
				t.Fatalf("ResolveWeek(%q) start %s is not a Monday", label, w.Start)
			}
			if h, m, s := w.Start.Clock(); h != 0 || m != 0 || s != 0 {
				t.Fatalf("ResolveWeek(%q) start %s is not midnight", label, w.Start)
			}
			if w.Start.Location() != time.UTC {
				t.Fatalf("ResolveWeek(%q) start not UTC", label)
			}
			if isoYear, isoWeek := w.Start.ISOWeek(); isoYear != year || isoWeek != week {
				t.Fatalf("ResolveWeek(%q) resolved to ISO %d-W%d", label, isoYear, isoWeek)
			}
		}
	}
}

func TestResolveWeek_InvalidLabels(t *testing.T) {
	for _, label := range []string{"", "2025W36", "2025-W0", "2025-W54", "25-W10", "2025-W123", "2025-w36", "abcd-W10"} {
		if _, err := ResolveWeek(label, nil); err != ErrorInvalidWeekFormat {
			t.Fatalf("ResolveWeek(%q) expected ErrorInvalidWeekFormat, got %v", label, err)
		}
	}
	// Week 53 in a 52-week year.
	if _, err := ResolveWeek("2025-W53", nil); err != ErrorInvalidWeekFormat {
		t.Fatalf("ResolveWeek(2025-W53) expected ErrorInvalidWeekFormat, got %v", err)
	}
}

func TestResolveWeek_ExplicitStartWins(t *testing.T) {
	start := time.Date(2025, 9, 3, 14, 30, 0, 0, time.FixedZone("X", 3600))
	w, err := ResolveWeek("2025-W36", &start)
	if err != nil {
		t.Fatalf("ResolveWeek error: %v", err)
	}
	expected := time.Date(2025, 9, 3, 0, 0, 0, 0, time.UTC)
	if !w.Start.Equal(expected) {
		t.Fatalf("expected start %s, got %s", expected, w.Start)
	}
	if !w.End.Equal(expected.AddDate(0, 0, 7)) {
		t.Fatalf("expected end %s, got %s", expected.AddDate(0, 0, 7), w.End)
	}
}

func TestWeekWindow_Boundaries(t *testing.T) {
	w, err := ResolveWeek("2025-W36", nil)
	if err != nil {
		t.Fatalf("ResolveWeek error: %v", err)
	}
	monday := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	nextMonday := monday.AddDate(0, 0, 7)
	if !w.Contains(monday) {
		t.Fatal("week start Monday should be inside the window")
	}
	if w.Contains(nextMonday) {
		t.Fatal("following Monday (exclusive end) should be outside the window")
	}
	if !w.Contains(nextMonday.Add(-time.Second)) {
		t.Fatal("Sunday 23:59:59 should be inside the window")
	}
}

func TestPaidDayIndex(t *testing.T) {
	monday := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	expected := []int{0, 1, 2, 3, 4, 5, -1}
	for i, want := range expected {
		if got := PaidDayIndex(monday.AddDate(0, 0, i)); got != want {
			t.Fatalf("PaidDayIndex(monday+%d) expected %d, got %d", i, want, got)
		}
	}
}
