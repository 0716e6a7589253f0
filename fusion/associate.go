package fusion

import (
	"math"
	"sort"
)

// Association is the fusion outcome for a single detection. DistanceM and
// PointAngleDeg are only meaningful when Fused is true.
type Association struct {
	Detection         Detection
	CameraBearingDeg  float64
	ScannerBearingDeg float64
	Fused             bool
	DistanceM         float64
	PointAngleDeg     float64
}

// Associate matches each bearing against the valid points of the latest scan.
// Points must be sorted by ascending angle (NormalizeScan's output). For each
// bearing the transformed scanner bearing opens a window of +-toleranceDeg,
// wrapping across the 0/360 seam; the candidate minimizing the circular
// angular difference wins, with exact ties broken by the lower point angle.
// The selected distance is re-validated against [minDistanceM, maxDistanceM]
// since the window may admit points normalized under stale parameters. One
// result per bearing, in input order; no I/O, deterministic.
func Associate(
	bearings []Bearing,
	points []ValidPoint,
	transform Transform,
	toleranceDeg, minDistanceM, maxDistanceM float64,
) []Association {
	results := make([]Association, 0, len(bearings))
	for _, b := range bearings {
		scannerBearing := transform(b.Degrees)
		assoc := Association{
			Detection:         b.Detection,
			CameraBearingDeg:  b.Degrees,
			ScannerBearingDeg: scannerBearing,
		}
		if idx, ok := nearestPoint(points, scannerBearing, toleranceDeg); ok {
			point := points[idx]
			if point.DistanceM >= minDistanceM && point.DistanceM <= maxDistanceM {
				assoc.Fused = true
				assoc.DistanceM = point.DistanceM
				assoc.PointAngleDeg = point.AngleDeg
			}
		}
		results = append(results, assoc)
	}
	return results
}

// nearestPoint returns the index of the point closest in circular angle to
// targetDeg among those within toleranceDeg of it.
func nearestPoint(points []ValidPoint, targetDeg, toleranceDeg float64) (int, bool) {
	if len(points) == 0 {
		return 0, false
	}

	best := -1
	consider := func(i int) {
		if best == -1 {
			best = i
			return
		}
		diff := angularDiff(points[i].AngleDeg, targetDeg)
		bestDiff := angularDiff(points[best].AngleDeg, targetDeg)
		if diff < bestDiff || (diff == bestDiff && points[i].AngleDeg < points[best].AngleDeg) {
			best = i
		}
	}

	lo := wrap360(targetDeg - toleranceDeg)
	hi := wrap360(targetDeg + toleranceDeg)
	switch {
	case toleranceDeg*2 >= 360:
		// Window covers the full circle.
		for i := range points {
			consider(i)
		}
	case lo <= hi:
		visitSegment(points, lo, hi, consider)
	default:
		// Window crosses the 0/360 seam: search it as two segments.
		visitSegment(points, lo, 360, consider)
		visitSegment(points, 0, hi, consider)
	}

	if best == -1 {
		return 0, false
	}
	return best, true
}

// visitSegment visits the indices of all points with angle in [lo, hi],
// locating the lower edge by binary search so the cost stays sub-linear in
// the total scan size.
func visitSegment(points []ValidPoint, lo, hi float64, visit func(int)) {
	start := sort.Search(len(points), func(i int) bool { return points[i].AngleDeg >= lo })
	for i := start; i < len(points) && points[i].AngleDeg <= hi; i++ {
		visit(i)
	}
}

// angularDiff is the circular distance in degrees between two angles.
func angularDiff(a, b float64) float64 {
	diff := math.Abs(a - b)
	if diff > 180 {
		diff = 360 - diff
	}
	return diff
}
