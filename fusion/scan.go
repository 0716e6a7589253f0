package fusion

import "sort"

// RangeSample is one raw measurement from the range scanner: signal quality,
// angle in degrees with whatever origin the scanner delivers, and distance in
// the scanner's native units.
type RangeSample struct {
	Quality  int
	AngleDeg float64
	Distance float64
}

// ValidPoint is a range sample that survived filtering, with its angle
// normalized to [0, 360) and its distance converted to meters.
type ValidPoint struct {
	AngleDeg  float64
	DistanceM float64
}

// ScanFilter holds the parameters NormalizeScan filters one scan cycle with.
type ScanFilter struct {
	QualityThreshold int
	MinDistanceM     float64
	MaxDistanceM     float64
	// UnitToMeters converts the scanner's native distance unit into meters,
	// e.g. 0.001 for a scanner reporting millimeters.
	UnitToMeters float64
}

// NormalizeScan filters one scan cycle down to its valid points, sorted by
// ascending angle. Samples at or below the quality threshold or with a
// converted distance outside [MinDistanceM, MaxDistanceM] are dropped. The
// sort is stable, so equal angles keep their original scan order. An empty or
// fully discarded input yields an empty set, not an error.
func NormalizeScan(samples []RangeSample, filter ScanFilter) []ValidPoint {
	points := make([]ValidPoint, 0, len(samples))
	for _, sample := range samples {
		if sample.Quality <= filter.QualityThreshold {
			continue
		}
		distanceM := sample.Distance * filter.UnitToMeters
		if distanceM < filter.MinDistanceM || distanceM > filter.MaxDistanceM {
			continue
		}
		points = append(points, ValidPoint{
			AngleDeg:  wrap360(sample.AngleDeg),
			DistanceM: distanceM,
		})
	}

	// The association engine's window search requires ascending angles.
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].AngleDeg < points[j].AngleDeg
	})
	return points
}
