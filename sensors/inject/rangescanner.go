package inject

import (
	"context"

	s "github.com/viam-modules/camera-lidar-fusion/sensors"
)

// TimedRangeScanner is an injected TimedRangeScanner.
type TimedRangeScanner struct {
	s.RangeScanner
	NameFunc                     func() string
	DataFrequencyHzFunc          func() int
	TimedRangeScannerReadingFunc func(ctx context.Context) (s.TimedRangeScannerReadingResponse, error)
}

// Name calls the injected Name or the real version.
func (trs *TimedRangeScanner) Name() string {
	if trs.NameFunc == nil {
		return trs.RangeScanner.Name()
	}
	return trs.NameFunc()
}

// DataFrequencyHz calls the injected DataFrequencyHz or the real version.
func (trs *TimedRangeScanner) DataFrequencyHz() int {
	if trs.DataFrequencyHzFunc == nil {
		return trs.RangeScanner.DataFrequencyHz()
	}
	return trs.DataFrequencyHzFunc()
}

// TimedRangeScannerReading calls the injected TimedRangeScannerReading or the real version.
func (trs *TimedRangeScanner) TimedRangeScannerReading(ctx context.Context) (s.TimedRangeScannerReadingResponse, error) {
	if trs.TimedRangeScannerReadingFunc == nil {
		return trs.RangeScanner.TimedRangeScannerReading(ctx)
	}
	return trs.TimedRangeScannerReadingFunc(ctx)
}
