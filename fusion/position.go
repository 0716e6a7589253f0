package fusion

import (
	"math"

	"github.com/golang/geo/r3"
)

// ObjectPositions computes camera-frame positions for the fused associations
// of a cycle, keyed by detection ID. Each position comes from the matched
// scan point's measured angle and distance. The scanner measures in a
// horizontal plane, so Z is always zero; the baseline offset between the two
// sensors is removed along the angular offset direction.
func ObjectPositions(associations []Association, params Params) map[int]r3.Vector {
	positions := make(map[int]r3.Vector, len(associations))
	offsetRad := params.AngularOffsetDeg * math.Pi / 180
	for _, a := range associations {
		if !a.Fused {
			continue
		}
		angleRad := a.PointAngleDeg * math.Pi / 180
		positions[a.Detection.ID] = r3.Vector{
			X: a.DistanceM*math.Cos(angleRad) - params.BaselineOffsetM*math.Cos(offsetRad),
			Y: a.DistanceM*math.Sin(angleRad) - params.BaselineOffsetM*math.Sin(offsetRad),
			Z: 0,
		}
	}
	return positions
}
