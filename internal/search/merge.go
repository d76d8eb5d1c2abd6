package search

import (
	"sort"

	"github.com/quiltdata/quiltmcp/internal/catalog"
)

// backendWeight is the fixed cross-backend score weight §4.6 mandates.
var backendWeight = map[string]float64{
	"elasticsearch": 1.0,
	"graphql":       0.9,
	"s3":            0.6,
}

// Normalize rescales each hit's native score to [0,1] within its own
// backend's batch, then applies the backend's fixed weight. Native scores
// arrive with backend-specific ranges (ES uses an unbounded BM25 score);
// normalizing per-batch before weighting keeps the weight meaningful.
func Normalize(hits []catalog.SearchHit) []catalog.SearchHit {
	maxByBackend := map[string]float64{}
	for _, h := range hits {
		if h.Score > maxByBackend[h.Backend] {
			maxByBackend[h.Backend] = h.Score
		}
	}
	out := make([]catalog.SearchHit, len(hits))
	for i, h := range hits {
		max := maxByBackend[h.Backend]
		normalized := 0.0
		if max > 0 {
			normalized = h.Score / max
		}
		h.Score = normalized * backendWeight[h.Backend]
		out[i] = h
	}
	return out
}

// Dedupe collapses hits sharing a DedupeKey to the highest-scoring
// instance, per §4.6's "(kind, physical_uri | (registry,name,top_hash))"
// identity rule.
func Dedupe(hits []catalog.SearchHit) []catalog.SearchHit {
	best := map[string]catalog.SearchHit{}
	order := []string{}
	for _, h := range hits {
		key := h.DedupeKey()
		existing, ok := best[key]
		if !ok {
			order = append(order, key)
			best[key] = h
			continue
		}
		if h.Score > existing.Score {
			best[key] = h
		}
	}
	out := make([]catalog.SearchHit, 0, len(order))
	for _, k := range order {
		out = append(out, best[k])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// CollapsePackageScope folds entry (object) hits into their parent package
// hit when scope=package and type=both: manifest (package) matches are
// boosted 2.0x, and each package hit gathers its matched entries (capped
// at 100) rather than the two queries staying as separate result lists.
func CollapsePackageScope(packageHits, entryHits []catalog.SearchHit) []catalog.SearchHit {
	byPkg := map[string]*catalog.SearchHit{}
	order := []string{}
	for _, h := range packageHits {
		h := h
		h.Score *= 2.0
		key := h.Registry + "|" + h.Name
		byPkg[key] = &h
		order = append(order, key)
	}
	for _, e := range entryHits {
		key := e.Registry + "|" + e.Name
		pkg, ok := byPkg[key]
		if !ok {
			h := catalog.SearchHit{Kind: catalog.HitPackage, Registry: e.Registry, Name: e.Name, Score: e.Score, Backend: e.Backend}
			byPkg[key] = &h
			order = append(order, key)
			pkg = &h
		}
		if len(pkg.MatchedEntries) < 100 {
			pkg.MatchedEntries = append(pkg.MatchedEntries, e.MatchedEntries...)
			if len(pkg.MatchedEntries) > 100 {
				pkg.MatchedEntries = pkg.MatchedEntries[:100]
			}
		}
	}
	out := make([]catalog.SearchHit, 0, len(order))
	seen := map[string]bool{}
	for _, k := range order {
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, *byPkg[k])
	}
	return out
}
