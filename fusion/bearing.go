// Package fusion implements the camera/LIDAR fusion engine: it converts
// pixel-space detections into angular bearings, normalizes raw range scans,
// associates bearings with range points under a calibrated offset, and
// aggregates per-cycle fusion statistics.
package fusion

import "github.com/pkg/errors"

// ErrInvalidFrameWidth denotes that a non-positive camera frame width was configured.
var ErrInvalidFrameWidth = errors.New("camera frame width must be greater than zero")

// Detection is a single object reported by the detector for one camera frame.
// The bounding box is in pixel coordinates with XMax > XMin and YMax > YMin.
type Detection struct {
	ID         int
	Label      string
	Confidence float64
	XMin       float64
	YMin       float64
	XMax       float64
	YMax       float64
}

// Bearing pairs a detection with its horizontal angle in degrees relative to
// the camera's optical axis: zero at the image center, positive to the right.
type Bearing struct {
	Detection Detection
	Degrees   float64
}

// ExtractBearings converts each detection's bounding box into a horizontal
// bearing using a linear pinhole approximation over the camera's field of
// view. Output order and cardinality match the input; an empty detection list
// yields an empty output. Returns ErrInvalidFrameWidth when frameWidthPx <= 0.
func ExtractBearings(detections []Detection, frameWidthPx int, fovDeg float64) ([]Bearing, error) {
	if frameWidthPx <= 0 {
		return nil, errors.Wrapf(ErrInvalidFrameWidth, "got %d", frameWidthPx)
	}

	width := float64(frameWidthPx)
	bearings := make([]Bearing, 0, len(detections))
	for _, d := range detections {
		centerX := (d.XMin + d.XMax) / 2
		bearings = append(bearings, Bearing{
			Detection: d,
			Degrees:   (centerX - width/2) * fovDeg / width,
		})
	}
	return bearings, nil
}
