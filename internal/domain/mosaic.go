package domain

import "log/slog"

// OverlapOptions controls error tolerance in overlap scans and mosaic
// assembly. With Tolerant set, failing geometry operations are skipped
// with a warning instead of aborting; otherwise the original error
// propagates. An explicit value, threaded through every call, so behavior
// is deterministic and testable.
type OverlapOptions struct {
	Tolerant bool         // Skip failing geometry operations
	Logger   *slog.Logger // Warning destination, defaults to slog.Default
}

func (o OverlapOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// BestOverlapPair finds the pair of footprints with the largest pairwise
// overlap area, scanning every pair once. Returns (nil, nil) when no pair
// overlaps. Each intersection test dominates cost; the scan is O(n²) with
// no shortcut.
func BestOverlapPair(footprints []*Footprint, opts OverlapOptions) (*Footprint, *Footprint, error) {
	var first, second *Footprint
	bestArea := 0.0
	for i := 0; i < len(footprints)-1; i++ {
		match, area, err := footprints[i].FindBestOverlap(footprints[i+1:], opts)
		if err != nil {
			return nil, nil, err
		}
		if match != nil && area > bestArea {
			first = footprints[i]
			second = match
			bestArea = area
		}
	}
	return first, second, nil
}

// MosaicResult is the outcome of a mosaic assembly.
type MosaicResult struct {
	Footprint *Footprint // Merged region, nil when no seed pair exists
	Included  []string   // Source ids in inclusion order
	Excluded  []string   // Source ids that could not be attached
}

// BuildMosaic greedily assembles a mosaic from a footprint collection.
//
// Seeding: the pair with the largest pairwise overlap is unioned into the
// initial mosaic. If no pair overlaps, the result is "no mosaic" with
// empty inclusion and exclusion lists.
//
// Growing: while candidates remain, the one with the largest overlap
// against the current mosaic is unioned in and recorded as included. When
// no remaining candidate overlaps, all of them are recorded as excluded.
// A failing union excludes the candidate and continues when opts.Tolerant
// is set; otherwise it aborts the assembly. The pool shrinks by exactly
// one candidate per iteration, so the loop always terminates.
func BuildMosaic(footprints []*Footprint, opts OverlapOptions) (*MosaicResult, error) {
	seed1, seed2, err := BestOverlapPair(footprints, opts)
	if err != nil {
		return nil, err
	}
	if seed1 == nil {
		return &MosaicResult{Included: []string{}, Excluded: []string{}}, nil
	}

	mosaic, err := seed1.Union(seed2)
	if err != nil {
		return nil, err
	}
	included := []string{seed1.RoughID(), seed2.RoughID()}
	excluded := []string{}

	remaining := make([]*Footprint, 0, len(footprints)-2)
	for _, f := range footprints {
		if f != seed1 && f != seed2 {
			remaining = append(remaining, f)
		}
	}

	for len(remaining) > 0 {
		next, _, err := mosaic.FindBestOverlap(remaining, opts)
		if err != nil {
			return nil, err
		}
		if next == nil {
			for _, f := range remaining {
				excluded = append(excluded, f.RoughID())
			}
			break
		}
		grown, err := mosaic.Union(next)
		if err != nil {
			if !opts.Tolerant {
				return nil, err
			}
			opts.logger().Warn("union failed, excluding footprint from mosaic",
				"mosaic", mosaic.RoughID(),
				"candidate", next.RoughID(),
				"error", err)
			excluded = append(excluded, next.RoughID())
		} else {
			mosaic = grown
			included = append(included, next.RoughID())
		}
		remaining = removeFootprint(remaining, next)
	}

	return &MosaicResult{Footprint: mosaic, Included: included, Excluded: excluded}, nil
}

// removeFootprint drops one footprint from the pool by identity.
func removeFootprint(pool []*Footprint, target *Footprint) []*Footprint {
	out := pool[:0]
	for _, f := range pool {
		if f != target {
			out = append(out, f)
		}
	}
	return out
}
