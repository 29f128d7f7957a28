// Package analytics turns a raw page-view event log into the fixed-shape
// dashboard summary. Aggregate is a pure function: no storage, no clock
// access, no side effects.
package analytics

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/asapfoodtrailer/dealerd/internal/models"
	"github.com/asapfoodtrailer/dealerd/internal/store"
)

// DefaultWindowDays is the dashboard's default lookback window.
const DefaultWindowDays = 30

// maxDailyLabels caps the daily series regardless of the requested window.
const maxDailyLabels = 30

// leadPathPrefix marks an event as a lead submission for the conversion rate.
const leadPathPrefix = "/api/leads"

// Series is a pair of parallel label/value sequences for chart rendering.
type Series struct {
	Labels []string `json:"labels"`
	Data   []int    `json:"data"`
}

// Summary is the dashboard payload.
//
// Daily and weekly series are chronological (oldest first). Device and source
// breakdowns are in first-seen order, not sorted by count. TopCities and
// TopPages are the ten highest counts, descending, ties broken by first-seen
// order; TopPages marshals as an ordered label→count mapping.
type Summary struct {
	TotalViews     int                                 `json:"total_views"`
	TodayViews     int                                 `json:"today_views"`
	ConversionRate float64                             `json:"conversion_rate"`
	DailyViews     Series                              `json:"daily_views"`
	WeeklyViews    Series                              `json:"weekly_views"`
	Devices        Series                              `json:"devices"`
	Sources        Series                              `json:"sources"`
	TopCities      Series                              `json:"top_cities"`
	TopPages       *orderedmap.OrderedMap[string, int] `json:"top_pages"`
}

// Aggregate buckets events into the dashboard summary relative to now.
//
// TotalViews is the length of the raw input list, counted before any per-event
// skip: an event with a missing or unparseable timestamp still counts toward
// the total but contributes to no bucket and no breakdown counter.
func Aggregate(events []models.Event, now time.Time, days int) *Summary {
	now = now.UTC()
	today := dateOf(now)

	nDaily := days
	if nDaily > maxDailyLabels {
		nDaily = maxDailyLabels
	}

	// Daily buckets, newest first; reversed on emission.
	dailyKeys := make([]string, 0, nDaily)
	daily := make(map[string]int, nDaily)
	for i := 0; i < nDaily; i++ {
		key := isoDate(today.AddDate(0, 0, -i))
		dailyKeys = append(dailyKeys, key)
		daily[key] = 0
	}

	// Four weekly buckets aligned to the most recent Monday, newest first.
	weeklyKeys := make([]string, 0, 4)
	weekly := make(map[string]int, 4)
	for i := 0; i < 4; i++ {
		weeklyKeys = append(weeklyKeys, weekLabel(today, i))
		weekly[weeklyKeys[i]] = 0
	}

	devices := orderedmap.New[string, int]()
	sources := orderedmap.New[string, int]()
	cities := orderedmap.New[string, int]()
	pages := orderedmap.New[string, int]()

	for _, ev := range events {
		if ev.Timestamp == "" {
			continue
		}
		ts, err := store.ParseEventTime(ev.Timestamp)
		if err != nil {
			continue
		}
		// Calendar date in the timestamp's own offset, not UTC.
		eventDate := dateOf(ts)

		if key := isoDate(eventDate); hasKey(daily, key) {
			daily[key]++
		}

		daysAgo := daysBetween(eventDate, today)
		weekIndex := floorDiv(daysAgo, 7)
		if weekIndex < 4 {
			if label := weekLabel(today, weekIndex); hasKey(weekly, label) {
				weekly[label]++
			}
		}

		// All-time breakdowns, independent of the date window.
		bump(devices, orDefault(ev.DeviceType, "unknown"))
		bump(sources, orDefault(ev.Source, "direct"))
		bump(cities, orDefault(ev.City, "Unknown"))
		bump(pages, orDefault(ev.PagePath, "/"))
	}

	total := len(events)
	leadCount := 0
	for _, ev := range events {
		if strings.HasPrefix(ev.PagePath, leadPathPrefix) {
			leadCount++
		}
	}
	conversion := 0.0
	if total > 0 {
		conversion = round2(float64(leadCount) / float64(total) * 100)
	}

	return &Summary{
		TotalViews:     total,
		TodayViews:     daily[isoDate(today)],
		ConversionRate: conversion,
		DailyViews:     reversedSeries(dailyKeys, daily),
		WeeklyViews:    reversedSeries(weeklyKeys, weekly),
		Devices:        counterSeries(devices),
		Sources:        counterSeries(sources),
		TopCities:      topSeries(cities, 10),
		TopPages:       topMap(pages, 10),
	}
}

// dateOf truncates t to midnight UTC.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func isoDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// weekLabel is "Week MM/DD" for the Monday starting week n, counting back
// from the week containing today.
func weekLabel(today time.Time, n int) string {
	start := today.AddDate(0, 0, -(mondayWeekday(today) + 7*n))
	return fmt.Sprintf("Week %02d/%02d", int(start.Month()), start.Day())
}

// mondayWeekday returns the Monday-based weekday (Monday=0 … Sunday=6).
func mondayWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// floorDiv divides rounding toward negative infinity, so future-dated events
// (negative day deltas) land on week indexes that no bucket label matches.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func hasKey(m map[string]int, k string) bool {
	_, ok := m[k]
	return ok
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func bump(m *orderedmap.OrderedMap[string, int], key string) {
	if v, ok := m.Get(key); ok {
		m.Set(key, v+1)
	} else {
		m.Set(key, 1)
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// reversedSeries emits newest-first bucket keys in chronological order.
func reversedSeries(keys []string, buckets map[string]int) Series {
	s := Series{
		Labels: make([]string, len(keys)),
		Data:   make([]int, len(keys)),
	}
	for i, k := range keys {
		j := len(keys) - 1 - i
		s.Labels[j] = k
		s.Data[j] = buckets[k]
	}
	return s
}

// counterSeries emits a counter in first-seen order.
func counterSeries(m *orderedmap.OrderedMap[string, int]) Series {
	s := Series{Labels: []string{}, Data: []int{}}
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		s.Labels = append(s.Labels, pair.Key)
		s.Data = append(s.Data, pair.Value)
	}
	return s
}

type counted struct {
	key   string
	count int
}

// topN returns the n highest counts, descending, first-seen order breaking
// ties.
func topN(m *orderedmap.OrderedMap[string, int], n int) []counted {
	all := make([]counted, 0, m.Len())
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		all = append(all, counted{key: pair.Key, count: pair.Value})
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].count > all[j].count
	})
	if len(all) > n {
		all = all[:n]
	}
	return all
}

func topSeries(m *orderedmap.OrderedMap[string, int], n int) Series {
	s := Series{Labels: []string{}, Data: []int{}}
	for _, c := range topN(m, n) {
		s.Labels = append(s.Labels, c.key)
		s.Data = append(s.Data, c.count)
	}
	return s
}

func topMap(m *orderedmap.OrderedMap[string, int], n int) *orderedmap.OrderedMap[string, int] {
	out := orderedmap.New[string, int]()
	for _, c := range topN(m, n) {
		out.Set(c.key, c.count)
	}
	return out
}
