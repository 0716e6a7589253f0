// Package inject provides dependency injected structures for mocking interfaces.
package inject

import (
	"context"

	s "github.com/viam-modules/camera-lidar-fusion/sensors"
)

// TimedDetector is an injected TimedDetector.
type TimedDetector struct {
	s.Detector
	NameFunc                 func() string
	DataFrequencyHzFunc      func() int
	TimedDetectorReadingFunc func(ctx context.Context) (s.TimedDetectorReadingResponse, error)
}

// Name calls the injected Name or the real version.
func (td *TimedDetector) Name() string {
	if td.NameFunc == nil {
		return td.Detector.Name()
	}
	return td.NameFunc()
}

// DataFrequencyHz calls the injected DataFrequencyHz or the real version.
func (td *TimedDetector) DataFrequencyHz() int {
	if td.DataFrequencyHzFunc == nil {
		return td.Detector.DataFrequencyHz()
	}
	return td.DataFrequencyHzFunc()
}

// TimedDetectorReading calls the injected TimedDetectorReading or the real version.
func (td *TimedDetector) TimedDetectorReading(ctx context.Context) (s.TimedDetectorReadingResponse, error) {
	if td.TimedDetectorReadingFunc == nil {
		return td.Detector.TimedDetectorReading(ctx)
	}
	return td.TimedDetectorReadingFunc(ctx)
}
