package sensors

import (
	"context"
	"math"
	"time"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"
	"go.viam.com/rdk/components/camera"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/pointcloud"
	"go.viam.com/rdk/resource"

	"github.com/viam-modules/camera-lidar-fusion/fusion"
)

// maxScanQuality is reported for points whose cloud carries no per-point value.
const maxScanQuality = 63

// TimedRangeScanner describes a range scanner that reports the time the scan is from.
type TimedRangeScanner interface {
	Name() string
	DataFrequencyHz() int
	TimedRangeScannerReading(ctx context.Context) (TimedRangeScannerReadingResponse, error)
}

// TimedRangeScannerReadingResponse represents a raw scan with the time it was taken.
type TimedRangeScannerReadingResponse struct {
	Samples     []fusion.RangeSample
	ReadingTime time.Time
}

// RangeScanner represents a 2-D range scanner backed by a PCD camera.
type RangeScanner struct {
	name            string
	dataFrequencyHz int
	Scanner         camera.Camera
}

// Name returns the name of the range scanner.
func (scanner RangeScanner) Name() string {
	return scanner.name
}

// DataFrequencyHz returns the data rate in hz of the range scanner.
func (scanner RangeScanner) DataFrequencyHz() int {
	return scanner.dataFrequencyHz
}

// TimedRangeScannerReading returns polar samples converted from the scanner's
// point cloud and the time the reading is from. Angles come from the XY plane
// and distances stay in the scanner's native unit.
func (scanner RangeScanner) TimedRangeScannerReading(ctx context.Context) (TimedRangeScannerReadingResponse, error) {
	readingPc, err := scanner.Scanner.NextPointCloud(ctx)
	if err != nil {
		return TimedRangeScannerReadingResponse{}, errors.Wrap(err, "NextPointCloud error")
	}
	readingTime := time.Now().UTC()

	samples := make([]fusion.RangeSample, 0, readingPc.Size())
	readingPc.Iterate(0, 0, func(p r3.Vector, d pointcloud.Data) bool {
		quality := maxScanQuality
		if d != nil && d.HasValue() {
			quality = d.Value()
		}
		samples = append(samples, fusion.RangeSample{
			Quality:  quality,
			AngleDeg: math.Atan2(p.Y, p.X) * 180 / math.Pi,
			Distance: math.Hypot(p.X, p.Y),
		})
		return true
	})

	return TimedRangeScannerReadingResponse{Samples: samples, ReadingTime: readingTime}, nil
}

// NewRangeScanner returns a new RangeScanner.
func NewRangeScanner(
	ctx context.Context,
	deps resource.Dependencies,
	cameraName string,
	dataFrequencyHz int,
	logger logging.Logger,
) (TimedRangeScanner, error) {
	_, span := trace.StartSpan(ctx, "camlidarfusion::sensors::NewRangeScanner")
	defer span.End()
	scanner, err := camera.FromDependencies(deps, cameraName)
	if err != nil {
		return RangeScanner{}, errors.Wrapf(err, "error getting range scanner %v for fusion service", cameraName)
	}

	// The camera provided in the 'scanner' field must support PCD.
	properties, err := scanner.Properties(ctx)
	if err != nil {
		return RangeScanner{}, errors.Wrapf(err, "error getting range scanner properties %v for fusion service", cameraName)
	}

	if !properties.SupportsPCD {
		return RangeScanner{}, errors.New("configuring range scanner error: " +
			"'scanner' must support PCD")
	}

	return RangeScanner{
		name:            cameraName,
		dataFrequencyHz: dataFrequencyHz,
		Scanner:         scanner,
	}, nil
}
