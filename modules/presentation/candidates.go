package presentation

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spotifreak/spotifreak/fsutils"
)

// candidate is one asset option with its source weight and bucket id,
// grounded on original_source's AssetCandidate.
type candidate struct {
	value    string
	weight   float64
	sourceID string
}

// collectCandidates assembles the ordered candidate list for a feature at
// the given phase (spec.md §4.5.3). baseDir anchors relative folder
// sources. rng drives shuffle-on-load.
func collectCandidates(featureName string, opts FeatureOptions, phase string, baseDir string, doc *docState, rng *rand.Rand) ([]candidate, *bucketSet) {
	sources := append([]AssetSource(nil), opts.Sources[phase]...)
	if phase != "default" {
		sources = append(sources, opts.Sources["default"]...)
	}

	var candidates []candidate
	var fallbacks []candidate
	buckets := newBucketSet()

	for i, src := range sources {
		sourceID := fmt.Sprintf("%s:%s:%d:%s:%s", featureName, phase, i, src.Type, orDash(src.Path))
		items := loadSourceAssets(sourceID, src, baseDir, doc, rng)
		if len(items) == 0 {
			continue
		}
		if src.ShuffleOnLoad && len(items) > 1 {
			rng.Shuffle(len(items), func(a, b int) { items[a], items[b] = items[b], items[a] })
		}
		if src.MaxItems != nil && len(items) > *src.MaxItems {
			items = items[:*src.MaxItems]
		}

		weight := src.Weight
		if weight == 0 {
			weight = 1
		}

		if src.Type == "fallback" {
			for _, item := range items {
				fallbacks = append(fallbacks, candidate{value: item, weight: weight, sourceID: sourceID})
			}
			continue
		}

		for _, item := range items {
			buckets.append(sourceID, item)
			candidates = append(candidates, candidate{value: item, weight: weight, sourceID: sourceID})
		}
	}

	if len(candidates) == 0 && len(fallbacks) > 0 {
		fallbackBuckets := newBucketSet()
		for _, c := range fallbacks {
			fallbackBuckets.append(c.sourceID, c.value)
		}
		return fallbacks, fallbackBuckets
	}

	return candidates, buckets
}

// bucketSet groups candidate values by source id while preserving the
// order sources were declared in, since round_robin cycles buckets in
// that order rather than map iteration order.
type bucketSet struct {
	order []string
	items map[string][]string
}

func newBucketSet() *bucketSet {
	return &bucketSet{items: map[string][]string{}}
}

func (b *bucketSet) append(sourceID, value string) {
	if _, ok := b.items[sourceID]; !ok {
		b.order = append(b.order, sourceID)
	}
	b.items[sourceID] = append(b.items[sourceID], value)
}

func (b *bucketSet) len() int { return len(b.order) }

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func loadSourceAssets(cacheKey string, src AssetSource, baseDir string, doc *docState, rng *rand.Rand) []string {
	switch src.Type {
	case "list", "fallback":
		return append([]string(nil), src.Items...)

	case "folder":
		ttl := 300
		if src.CacheTTLSeconds != nil {
			ttl = *src.CacheTTLSeconds
		}
		now := time.Now().Unix()
		if cached, ok := doc.SourceCache[cacheKey]; ok && ttl > 0 {
			if now-cached.Timestamp <= int64(ttl) {
				return append([]string(nil), cached.Items...)
			}
		}

		folder := src.Path
		if folder != "" && !filepath.IsAbs(folder) {
			folder = filepath.Join(baseDir, folder)
		}
		pattern := src.Pattern
		if pattern == "" {
			pattern = "*"
		}

		paths := scanFolder(folder, pattern, src.Recursive)
		rel := make([]string, 0, len(paths))
		for _, p := range paths {
			if r, err := filepath.Rel(baseDir, p); err == nil {
				rel = append(rel, r)
			} else {
				rel = append(rel, p)
			}
		}
		doc.SourceCache[cacheKey] = sourceCache{Timestamp: now, Items: rel}
		return rel

	default:
		return nil
	}
}

func scanFolder(folder, pattern string, recursive bool) []string {
	if !fsutils.DirExists(folder) {
		return nil
	}

	var out []string
	if !recursive {
		matches, _ := filepath.Glob(filepath.Join(folder, pattern))
		sort.Strings(matches)
		for _, m := range matches {
			if fi, err := os.Stat(m); err == nil && !fi.IsDir() {
				out = append(out, m)
			}
		}
		return out
	}

	filepath.Walk(folder, func(path string, fi os.FileInfo, err error) error {
		if err != nil || fi.IsDir() {
			return nil
		}
		if ok, _ := filepath.Match(pattern, filepath.Base(path)); ok {
			out = append(out, path)
		}
		return nil
	})
	sort.Strings(out)
	return out
}
