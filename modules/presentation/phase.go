package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spotifreak/spotifreak/l3"
)

const sunriseSunsetEndpoint = "https://api.sunrise-sunset.org/json"

// determinePhase implements spec.md §4.5.2. now must already be in the
// local time zone the phase schedule should be evaluated against.
func determinePhase(opts *PhasesOptions, now time.Time, doc *docState, logger l3.Logger, httpClient *http.Client) string {
	if opts == nil || opts.Mode == "none" {
		return "default"
	}

	switch opts.Mode {
	case "custom":
		schedule := buildCustomSchedule(opts.Custom, now)
		return phaseFromSchedule(schedule, now)

	case "sunrise_sunset":
		if opts.Sunrise == nil {
			return "default"
		}
		today := now.Format("2006-01-02")
		if doc.PhaseSchedule.Date != today {
			schedule, err := fetchSunriseSchedule(*opts.Sunrise, now, httpClient)
			if err != nil {
				logger.WarnF("presentation: sunrise/sunset fetch failed: %v", err)
				return "default"
			}
			times := make(map[string]string, len(schedule))
			for phase, t := range schedule {
				times[phase] = t.Format(timeLayout)
			}
			doc.PhaseSchedule = phaseScheduleDoc{Date: today, Times: times}
		}
		schedule := make(map[string]time.Time, len(doc.PhaseSchedule.Times))
		for phase, raw := range doc.PhaseSchedule.Times {
			t, err := time.Parse(timeLayout, raw)
			if err != nil {
				continue
			}
			schedule[phase] = t
		}
		if len(schedule) == 0 {
			return "default"
		}
		return phaseFromSchedule(schedule, now)

	default:
		return "default"
	}
}

func buildCustomSchedule(phases []CustomPhase, now time.Time) map[string]time.Time {
	schedule := make(map[string]time.Time, len(phases))
	for _, p := range phases {
		parts := strings.SplitN(p.Start, ":", 2)
		if len(parts) != 2 {
			continue
		}
		hour, err1 := strconv.Atoi(parts[0])
		minute, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil {
			continue
		}
		schedule[p.Name] = time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	}
	return schedule
}

// phaseFromSchedule picks the phase whose [start_i, start_{i+1}) window
// contains now, treating the last window as wrapping past midnight.
func phaseFromSchedule(schedule map[string]time.Time, now time.Time) string {
	if len(schedule) == 0 {
		return "default"
	}
	type entry struct {
		name  string
		start time.Time
	}
	entries := make([]entry, 0, len(schedule))
	for name, start := range schedule {
		entries = append(entries, entry{name, start})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].start.Before(entries[j].start) })

	const daySeconds = 86400.0
	for i, e := range entries {
		next := entries[(i+1)%len(entries)]
		interval := next.start.Sub(e.start).Seconds()
		if interval <= 0 {
			interval += daySeconds
		}
		delta := now.Sub(e.start).Seconds()
		if delta < 0 {
			delta += daySeconds
		}
		if delta >= 0 && delta < interval {
			return e.name
		}
	}
	return entries[len(entries)-1].name
}

type sunriseSunsetResponse struct {
	Status  string `json:"status"`
	Results struct {
		Sunrise string `json:"sunrise"`
		Sunset  string `json:"sunset"`
	} `json:"results"`
}

func fetchSunriseSchedule(opts SunriseOptions, now time.Time, httpClient *http.Client) (map[string]time.Time, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	q := url.Values{
		"lat":       {fmt.Sprintf("%f", opts.Latitude)},
		"lng":       {fmt.Sprintf("%f", opts.Longitude)},
		"formatted": {"0"},
	}
	req, err := http.NewRequest(http.MethodGet, sunriseSunsetEndpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed sunriseSunsetResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}
	if parsed.Status != "OK" {
		return nil, fmt.Errorf("sunrise-sunset API returned status %q", parsed.Status)
	}

	sunriseUTC, err := time.Parse(time.RFC3339, parsed.Results.Sunrise)
	if err != nil {
		return nil, err
	}
	sunsetUTC, err := time.Parse(time.RFC3339, parsed.Results.Sunset)
	if err != nil {
		return nil, err
	}
	loc := now.Location()
	sunrise := sunriseUTC.In(loc)
	sunset := sunsetUTC.In(loc)

	return map[string]time.Time{
		"morning": sunrise,
		"day":     sunrise.Add(time.Duration(opts.MorningDurationHours * float64(time.Hour))),
		"evening": sunset.Add(-time.Duration(opts.EveningDurationHours * float64(time.Hour))),
		"night":   sunset.Add(time.Duration(opts.NightOffsetHours * float64(time.Hour))),
	}, nil
}
