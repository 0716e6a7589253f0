package fusion

import "time"

// Result is the published outcome of one fusion cycle. Associations preserves
// input order, one entry per detection; DistancesM maps detection ID to fused
// distance in meters, with unfused detections absent.
type Result struct {
	DistancesM   map[int]float64
	Associations []Association
}

// CycleStats summarizes one fusion cycle.
type CycleStats struct {
	TotalDetections int
	FusedDetections int
	// FusionRate is FusedDetections over TotalDetections, 0 when there were
	// no detections.
	FusionRate float64
	Latency    time.Duration
}

// Aggregate builds the per-cycle result and statistics from the association
// engine's output. It is pure: aggregating the same associations twice yields
// identical outputs.
func Aggregate(associations []Association, start, end time.Time) (Result, CycleStats) {
	result := Result{
		DistancesM:   make(map[int]float64, len(associations)),
		Associations: associations,
	}
	fused := 0
	for _, a := range associations {
		if a.Fused {
			result.DistancesM[a.Detection.ID] = a.DistanceM
			fused++
		}
	}

	stats := CycleStats{
		TotalDetections: len(associations),
		FusedDetections: fused,
		Latency:         end.Sub(start),
	}
	if stats.TotalDetections > 0 {
		stats.FusionRate = float64(fused) / float64(stats.TotalDetections)
	}
	return result, stats
}
