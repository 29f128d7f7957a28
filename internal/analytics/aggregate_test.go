package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/asapfoodtrailer/dealerd/internal/models"
)

// A fixed Thursday so weekly bucket alignment is deterministic.
var testNow = time.Date(2026, 8, 27, 15, 30, 0, 0, time.UTC)

func event(ts, path, device, source, city string) models.Event {
	return models.Event{
		PagePath:   path,
		DeviceType: device,
		Source:     source,
		City:       city,
		Timestamp:  ts,
	}
}

func TestAggregateEmpty(t *testing.T) {
	s := Aggregate(nil, testNow, DefaultWindowDays)

	if s.TotalViews != 0 {
		t.Errorf("TotalViews = %d, want 0", s.TotalViews)
	}
	if s.TodayViews != 0 {
		t.Errorf("TodayViews = %d, want 0", s.TodayViews)
	}
	if s.ConversionRate != 0 {
		t.Errorf("ConversionRate = %v, want 0", s.ConversionRate)
	}
	for i, v := range s.DailyViews.Data {
		if v != 0 {
			t.Errorf("daily bucket %d = %d, want 0", i, v)
		}
	}
	for i, v := range s.WeeklyViews.Data {
		if v != 0 {
			t.Errorf("weekly bucket %d = %d, want 0", i, v)
		}
	}
	if len(s.WeeklyViews.Labels) != 4 {
		t.Errorf("weekly labels = %d, want 4", len(s.WeeklyViews.Labels))
	}
}

func TestAggregateSingleLeadEventToday(t *testing.T) {
	events := []models.Event{
		event(testNow.Format(time.RFC3339), "/api/leads/x", "mobile", "google", "Houston"),
	}
	s := Aggregate(events, testNow, DefaultWindowDays)

	if s.TotalViews != 1 {
		t.Errorf("TotalViews = %d, want 1", s.TotalViews)
	}
	if s.TodayViews != 1 {
		t.Errorf("TodayViews = %d, want 1", s.TodayViews)
	}
	if s.ConversionRate != 100.0 {
		t.Errorf("ConversionRate = %v, want 100", s.ConversionRate)
	}
	// Today's event also lands in week bucket 0, the last emitted.
	if got := s.WeeklyViews.Data[3]; got != 1 {
		t.Errorf("current week bucket = %d, want 1", got)
	}
}

func TestAggregateKeepsTimestampOffsetDate(t *testing.T) {
	// 02:00+03:00 is 23:00 UTC the previous day; the event still belongs
	// to the calendar date it was stamped with.
	events := []models.Event{
		event("2026-08-27T02:00:00+03:00", "/catalog", "mobile", "google", "Houston"),
	}
	s := Aggregate(events, testNow, DefaultWindowDays)

	if s.TodayViews != 1 {
		t.Errorf("TodayViews = %d, want 1", s.TodayViews)
	}
	if got := s.DailyViews.Data[len(s.DailyViews.Data)-1]; got != 1 {
		t.Errorf("today's daily bucket = %d, want 1", got)
	}
}

func TestAggregateUnparseableTimestamp(t *testing.T) {
	events := []models.Event{
		event("not-a-date", "/catalog", "mobile", "google", "Houston"),
		event("", "/catalog", "desktop", "facebook", "Austin"),
	}
	s := Aggregate(events, testNow, DefaultWindowDays)

	// Unparseable events count toward the total but nothing else.
	if s.TotalViews != 2 {
		t.Errorf("TotalViews = %d, want 2", s.TotalViews)
	}
	for i, v := range s.DailyViews.Data {
		if v != 0 {
			t.Errorf("daily bucket %d = %d, want 0", i, v)
		}
	}
	for i, v := range s.WeeklyViews.Data {
		if v != 0 {
			t.Errorf("weekly bucket %d = %d, want 0", i, v)
		}
	}
	if len(s.Devices.Labels) != 0 {
		t.Errorf("devices = %v, want empty", s.Devices.Labels)
	}
	if len(s.Sources.Labels) != 0 {
		t.Errorf("sources = %v, want empty", s.Sources.Labels)
	}
	if len(s.TopCities.Labels) != 0 {
		t.Errorf("cities = %v, want empty", s.TopCities.Labels)
	}
	if s.TopPages.Len() != 0 {
		t.Errorf("pages len = %d, want 0", s.TopPages.Len())
	}
}

func TestAggregateDailyLabels(t *testing.T) {
	for _, days := range []int{7, 30, 90} {
		s := Aggregate(nil, testNow, days)

		want := days
		if want > 30 {
			want = 30
		}
		if len(s.DailyViews.Labels) != want {
			t.Fatalf("days=%d: labels = %d, want %d", days, len(s.DailyViews.Labels), want)
		}
		// Chronologically ascending, ending today.
		last := s.DailyViews.Labels[len(s.DailyViews.Labels)-1]
		if last != testNow.Format("2006-01-02") {
			t.Errorf("days=%d: last label = %q, want today", days, last)
		}
		for i := 1; i < len(s.DailyViews.Labels); i++ {
			if s.DailyViews.Labels[i] <= s.DailyViews.Labels[i-1] {
				t.Errorf("days=%d: labels not ascending at %d", days, i)
			}
		}
	}
}

func TestAggregateWeeklyAlignment(t *testing.T) {
	s := Aggregate(nil, testNow, DefaultWindowDays)

	// 2026-08-27 is a Thursday; its week starts Monday 2026-08-24.
	if got := s.WeeklyViews.Labels[3]; got != "Week 08/24" {
		t.Errorf("current week label = %q, want \"Week 08/24\"", got)
	}
	if got := s.WeeklyViews.Labels[0]; got != "Week 08/03" {
		t.Errorf("oldest week label = %q, want \"Week 08/03\"", got)
	}
}

func TestAggregateFirstSeenOrder(t *testing.T) {
	ts := testNow.Format(time.RFC3339)
	events := []models.Event{
		event(ts, "/a", "desktop", "facebook", "Austin"),
		event(ts, "/b", "mobile", "google", "Houston"),
		event(ts, "/c", "mobile", "google", "Houston"),
		event(ts, "/d", "mobile", "direct", "Houston"),
	}
	s := Aggregate(events, testNow, DefaultWindowDays)

	// Breakdown order is first occurrence, never sorted by count.
	wantDevices := []string{"desktop", "mobile"}
	for i, l := range wantDevices {
		if s.Devices.Labels[i] != l {
			t.Errorf("devices[%d] = %q, want %q", i, s.Devices.Labels[i], l)
		}
	}
	if s.Devices.Data[0] != 1 || s.Devices.Data[1] != 3 {
		t.Errorf("device counts = %v, want [1 3]", s.Devices.Data)
	}
	wantSources := []string{"facebook", "google", "direct"}
	for i, l := range wantSources {
		if s.Sources.Labels[i] != l {
			t.Errorf("sources[%d] = %q, want %q", i, s.Sources.Labels[i], l)
		}
	}
}

func TestAggregateTopCitiesAndPages(t *testing.T) {
	ts := testNow.Format(time.RFC3339)
	var events []models.Event
	// 12 cities; "city-00" seen 3 times, "city-01" twice, rest once.
	for i := 0; i < 12; i++ {
		events = append(events, event(ts, fmt.Sprintf("/p%d", i), "mobile", "google", fmt.Sprintf("city-%02d", i)))
	}
	events = append(events,
		event(ts, "/p0", "mobile", "google", "city-00"),
		event(ts, "/p0", "mobile", "google", "city-00"),
		event(ts, "/p1", "mobile", "google", "city-01"),
	)
	s := Aggregate(events, testNow, DefaultWindowDays)

	if len(s.TopCities.Labels) != 10 {
		t.Fatalf("top cities = %d, want 10", len(s.TopCities.Labels))
	}
	if s.TopCities.Labels[0] != "city-00" || s.TopCities.Data[0] != 3 {
		t.Errorf("top city = %q/%d, want city-00/3", s.TopCities.Labels[0], s.TopCities.Data[0])
	}
	if s.TopCities.Labels[1] != "city-01" || s.TopCities.Data[1] != 2 {
		t.Errorf("second city = %q/%d, want city-01/2", s.TopCities.Labels[1], s.TopCities.Data[1])
	}
	// Ties keep first-seen order.
	if s.TopCities.Labels[2] != "city-02" {
		t.Errorf("third city = %q, want city-02", s.TopCities.Labels[2])
	}
	if s.TopPages.Len() != 10 {
		t.Fatalf("top pages = %d, want 10", s.TopPages.Len())
	}
	top := s.TopPages.Oldest()
	if top.Key != "/p0" || top.Value != 3 {
		t.Errorf("top page = %q/%d, want /p0/3", top.Key, top.Value)
	}
}

func TestAggregateOldEventsOutsideBuckets(t *testing.T) {
	old := testNow.AddDate(0, 0, -45).Format(time.RFC3339)
	events := []models.Event{
		event(old, "/catalog", "desktop", "referral", "Dallas"),
	}
	s := Aggregate(events, testNow, DefaultWindowDays)

	if s.TotalViews != 1 {
		t.Errorf("TotalViews = %d, want 1", s.TotalViews)
	}
	for i, v := range s.DailyViews.Data {
		if v != 0 {
			t.Errorf("daily bucket %d = %d, want 0", i, v)
		}
	}
	for i, v := range s.WeeklyViews.Data {
		if v != 0 {
			t.Errorf("weekly bucket %d = %d, want 0", i, v)
		}
	}
	// Breakdowns are all-time: the old event still counts there.
	if len(s.Devices.Labels) != 1 || s.Devices.Data[0] != 1 {
		t.Errorf("devices = %v/%v, want 1 desktop", s.Devices.Labels, s.Devices.Data)
	}
}

func TestAggregateFutureEventSkipsWeekBuckets(t *testing.T) {
	future := testNow.AddDate(0, 0, 10).Format(time.RFC3339)
	events := []models.Event{
		event(future, "/catalog", "mobile", "direct", "Houston"),
	}
	s := Aggregate(events, testNow, DefaultWindowDays)

	for i, v := range s.WeeklyViews.Data {
		if v != 0 {
			t.Errorf("weekly bucket %d = %d, want 0", i, v)
		}
	}
	if s.TodayViews != 0 {
		t.Errorf("TodayViews = %d, want 0", s.TodayViews)
	}
}

func TestAggregateConversionRounding(t *testing.T) {
	ts := testNow.Format(time.RFC3339)
	events := []models.Event{
		event(ts, "/api/leads", "mobile", "google", "Houston"),
		event(ts, "/catalog", "mobile", "google", "Houston"),
		event(ts, "/catalog", "mobile", "google", "Houston"),
	}
	s := Aggregate(events, testNow, DefaultWindowDays)

	// 1/3 of 100, rounded to two decimals.
	if s.ConversionRate != 33.33 {
		t.Errorf("ConversionRate = %v, want 33.33", s.ConversionRate)
	}
}
