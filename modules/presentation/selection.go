package presentation

import (
	"math/rand"
	"strconv"
)

// selectCandidate implements spec.md §4.5.5: strategy dispatch, dedupe
// retry, and the cross-feature grouping cache.
func selectCandidate(featureName string, opts FeatureOptions, fs *featureDoc, doc *docState, candidates []candidate, buckets *bucketSet, phase string, rng *rand.Rand) string {
	groupKey := opts.Selection.GroupKey
	var group *groupDoc
	groupCacheKey := ""
	if groupKey != "" {
		group = doc.Groups[groupKey]
		if group == nil {
			group = &groupDoc{Feature: fs, Cache: map[string]string{}}
			doc.Groups[groupKey] = group
		}
		if group.Cache == nil {
			group.Cache = map[string]string{}
		}
		groupCacheKey = groupRunKey(phase, doc.GlobalRunCount)
		if v, ok := group.Cache[groupCacheKey]; ok {
			return v
		}
	}

	var value string
	switch opts.Selection.Mode {
	case "random":
		value = selectRandom(candidates, fs, opts.Selection, rng)
	case "weighted_random":
		value = selectWeightedRandom(candidates, fs, opts.Selection, rng)
	case "round_robin":
		value = selectRoundRobin(buckets, candidates, fs)
	default:
		value = selectSequential(candidates, fs, opts.Selection, rng, false)
	}
	if value == "" {
		return ""
	}

	if opts.Selection.DedupeWindow > 0 && inHistory(value, fs.History, opts.Selection.DedupeWindow) {
		switch opts.Selection.Mode {
		case "random", "weighted_random":
			if alt := selectRandomAlternative(candidates, fs.History, opts.Selection.DedupeWindow, rng); alt != "" {
				value = alt
			}
		case "sequential":
			value = selectSequential(candidates, fs, opts.Selection, rng, true)
		}
	}

	if group != nil {
		group.Cache[groupCacheKey] = value
	}

	return value
}

func groupRunKey(phase string, runCount int) string {
	return phase + "#" + strconv.Itoa(runCount)
}

func inHistory(value string, history []string, window int) bool {
	start := len(history) - window
	if start < 0 {
		start = 0
	}
	for _, h := range history[start:] {
		if h == value {
			return true
		}
	}
	return false
}

func selectSequential(candidates []candidate, fs *featureDoc, sel FeatureSelection, rng *rand.Rand, forceNext bool) string {
	n := len(candidates)
	if n == 0 {
		return ""
	}
	cursor := fs.Cursor
	direction := fs.Direction
	if direction == 0 {
		direction = 1
	}

	switch sel.RestartPolicy {
	case "random_restart":
		if cursor >= n || cursor < 0 {
			cursor = rng.Intn(n)
		}
	case "bounce":
		if cursor >= n || cursor < 0 {
			direction = -direction
			cursor += direction
			if cursor < 0 {
				cursor = 0
			}
			if cursor > n-1 {
				cursor = n - 1
			}
		}
	default: // loop
		cursor = ((cursor % n) + n) % n
	}

	if forceNext {
		cursor = (cursor + 1) % n
	}

	value := candidates[cursor].value
	fs.Cursor = cursor + direction
	fs.Direction = direction
	return value
}

func selectRandom(candidates []candidate, fs *featureDoc, sel FeatureSelection, rng *rand.Rand) string {
	if len(candidates) == 0 {
		return ""
	}
	choice := candidates[rng.Intn(len(candidates))].value
	if sel.DedupeWindow > 0 {
		for attempts := 0; attempts < 5 && inHistory(choice, fs.History, sel.DedupeWindow); attempts++ {
			choice = candidates[rng.Intn(len(candidates))].value
		}
	}
	return choice
}

func selectRandomAlternative(candidates []candidate, history []string, window int, rng *rand.Rand) string {
	start := len(history) - window
	if start < 0 {
		start = 0
	}
	recent := history[start:]
	var pool []string
	for _, c := range candidates {
		if !contains(recent, c.value) {
			pool = append(pool, c.value)
		}
	}
	if len(pool) == 0 {
		return ""
	}
	return pool[rng.Intn(len(pool))]
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

func selectWeightedRandom(candidates []candidate, fs *featureDoc, sel FeatureSelection, rng *rand.Rand) string {
	if len(candidates) == 0 {
		return ""
	}
	var total float64
	for _, c := range candidates {
		total += c.weight
	}
	if total <= 0 {
		return selectRandom(candidates, fs, sel, rng)
	}
	pick := rng.Float64() * total
	var upto float64
	for _, c := range candidates {
		upto += c.weight
		if pick <= upto {
			return c.value
		}
	}
	return candidates[len(candidates)-1].value
}

func selectRoundRobin(buckets *bucketSet, candidates []candidate, fs *featureDoc) string {
	if len(candidates) == 0 {
		return ""
	}
	if buckets == nil || buckets.len() == 0 {
		return candidates[((fs.Cursor%len(candidates))+len(candidates))%len(candidates)].value
	}

	cycle := buckets.order
	if !stringsEqual(fs.RoundRobinCycle, cycle) {
		fs.RoundRobinCycle = append([]string(nil), cycle...)
		fs.RoundRobinPointer = 0
		fs.RoundRobinIndices = map[string]int{}
	}
	if fs.RoundRobinIndices == nil {
		fs.RoundRobinIndices = map[string]int{}
	}

	pointer := fs.RoundRobinPointer
	for i := 0; i < len(cycle); i++ {
		sourceID := cycle[pointer%len(cycle)]
		entries := buckets.items[sourceID]
		idx := fs.RoundRobinIndices[sourceID]
		if len(entries) > 0 {
			value := entries[idx%len(entries)]
			fs.RoundRobinIndices[sourceID] = idx + 1
			fs.RoundRobinPointer = pointer + 1
			return value
		}
		pointer++
	}
	return candidates[0].value
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
