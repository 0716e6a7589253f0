package sensors

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opencensus.io/trace"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/resource"
	"go.viam.com/rdk/services/vision"

	"github.com/viam-modules/camera-lidar-fusion/fusion"
)

// TimedDetector describes a detector that reports the time its detections are from.
type TimedDetector interface {
	Name() string
	DataFrequencyHz() int
	TimedDetectorReading(ctx context.Context) (TimedDetectorReadingResponse, error)
}

// TimedDetectorReadingResponse represents a set of camera detections with the
// time they were taken.
type TimedDetectorReadingResponse struct {
	Detections  []fusion.Detection
	ReadingTime time.Time
}

// Detector represents a vision service detecting objects on a camera stream.
type Detector struct {
	name            string
	cameraName      string
	dataFrequencyHz int
	minConfidence   float64
	Detector        vision.Service
}

// Name returns the name of the detector.
func (det Detector) Name() string {
	return det.name
}

// DataFrequencyHz returns the data rate in hz of the detector.
func (det Detector) DataFrequencyHz() int {
	return det.dataFrequencyHz
}

// TimedDetectorReading returns the current detections on the configured camera
// and the time the reading is from. Detections below the minimum confidence are
// dropped, and the surviving detections are assigned dense ids in order.
func (det Detector) TimedDetectorReading(ctx context.Context) (TimedDetectorReadingResponse, error) {
	visionDetections, err := det.Detector.DetectionsFromCamera(ctx, det.cameraName, map[string]interface{}{})
	if err != nil {
		return TimedDetectorReadingResponse{}, errors.Wrap(err, "DetectionsFromCamera error")
	}
	readingTime := time.Now().UTC()

	detections := make([]fusion.Detection, 0, len(visionDetections))
	for _, visionDetection := range visionDetections {
		if visionDetection.Score() < det.minConfidence {
			continue
		}
		boundingBox := visionDetection.BoundingBox()
		if boundingBox == nil {
			continue
		}
		detections = append(detections, fusion.Detection{
			ID:         len(detections),
			Label:      visionDetection.Label(),
			Confidence: visionDetection.Score(),
			XMin:       float64(boundingBox.Min.X),
			YMin:       float64(boundingBox.Min.Y),
			XMax:       float64(boundingBox.Max.X),
			YMax:       float64(boundingBox.Max.Y),
		})
	}

	return TimedDetectorReadingResponse{Detections: detections, ReadingTime: readingTime}, nil
}

// NewDetector returns a new Detector.
func NewDetector(
	ctx context.Context,
	deps resource.Dependencies,
	detectorName string,
	cameraName string,
	dataFrequencyHz int,
	minConfidence float64,
	logger logging.Logger,
) (TimedDetector, error) {
	_, span := trace.StartSpan(ctx, "camlidarfusion::sensors::NewDetector")
	defer span.End()
	visionService, err := vision.FromDependencies(deps, detectorName)
	if err != nil {
		return Detector{}, errors.Wrapf(err, "error getting detector %v for fusion service", detectorName)
	}

	return Detector{
		name:            detectorName,
		cameraName:      cameraName,
		dataFrequencyHz: dataFrequencyHz,
		minConfidence:   minConfidence,
		Detector:        visionService,
	}, nil
}
