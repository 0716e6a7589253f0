// Package camlidarfusion implements fusion of camera object detections with
// range scanner distances, exposed as a sensor component.
package camlidarfusion

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.opencensus.io/trace"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
	"go.viam.com/rdk/components/sensor"
	viamgrpc "go.viam.com/rdk/grpc"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/resource"

	vcConfig "github.com/viam-modules/camera-lidar-fusion/config"
	"github.com/viam-modules/camera-lidar-fusion/fusion"
	"github.com/viam-modules/camera-lidar-fusion/sensorprocess"
	s "github.com/viam-modules/camera-lidar-fusion/sensors"
)

// Model is the model name of the camera lidar fusion sensor.
var (
	Model = resource.NewModel("viam", "fusion", "camera-lidar")
	// ErrClosed denotes that a method was called on a closed fusion resource.
	ErrClosed = errors.Errorf("resource (%s) is closed", Model.String())
)

const (
	sensorValidationMaxTimeoutSec = 30
	sensorValidationIntervalSec   = 1
)

// DoCommand keys understood by the fusion service.
const (
	SetAngularOffsetKey  = "set_angular_offset"
	SetBaselineOffsetKey = "set_baseline_offset"
	SetCameraFOVKey      = "set_camera_fov"
	GetCalibrationKey    = "get_calibration"
	ObjectPositionsKey   = "object_positions"
)

func init() {
	resource.RegisterComponent(sensor.API, Model, resource.Registration[sensor.Sensor, *vcConfig.Config]{
		Constructor: func(
			ctx context.Context,
			deps resource.Dependencies,
			c resource.Config,
			logger logging.Logger,
		) (sensor.Sensor, error) {
			return New(ctx, deps, c, logger, nil, nil)
		},
	})
}

func initSensorProcesses(cancelCtx context.Context, fusionSvc *FusionService) {
	spConfig := sensorprocess.Config{
		Engine:       fusionSvc.engine,
		Detector:     fusionSvc.detector,
		Scanner:      fusionSvc.scanner,
		FusionRateHz: fusionSvc.fusionRateHz,
		Verbose:      fusionSvc.verbose,
		Logger:       fusionSvc.logger,
	}

	fusionSvc.sensorProcessWorkers.Add(1)
	go func() {
		defer fusionSvc.sensorProcessWorkers.Done()
		spConfig.StartDetector(cancelCtx)
	}()

	fusionSvc.sensorProcessWorkers.Add(1)
	go func() {
		defer fusionSvc.sensorProcessWorkers.Done()
		spConfig.StartScanner(cancelCtx)
	}()

	fusionSvc.sensorProcessWorkers.Add(1)
	go func() {
		defer fusionSvc.sensorProcessWorkers.Done()
		spConfig.StartFusion(cancelCtx)
	}()
}

// New returns a new camera lidar fusion sensor for the given robot.
func New(
	ctx context.Context,
	deps resource.Dependencies,
	c resource.Config,
	logger logging.Logger,
	testTimedDetectorOverride s.TimedDetector,
	testTimedRangeScannerOverride s.TimedRangeScanner,
) (sensor.Sensor, error) {
	ctx, span := trace.StartSpan(ctx, "camlidarfusion::fusionService::New")
	defer span.End()

	svcConfig, err := resource.NativeConfig[*vcConfig.Config](c)
	if err != nil {
		return nil, err
	}

	optionalConfigParams, err := vcConfig.GetOptionalParameters(svcConfig, logger)
	if err != nil {
		return nil, err
	}

	engine, err := fusion.NewEngine(fusion.Settings{
		FrameWidthPx: svcConfig.FrameWidthPx,
		ToleranceDeg: optionalConfigParams.ToleranceDeg,
		Filter: fusion.ScanFilter{
			QualityThreshold: optionalConfigParams.QualityThreshold,
			MinDistanceM:     optionalConfigParams.MinDistanceM,
			MaxDistanceM:     optionalConfigParams.MaxDistanceM,
			UnitToMeters:     optionalConfigParams.UnitToMeters,
		},
	}, fusion.Params{
		AngularOffsetDeg: svcConfig.AngularOffsetDeg,
		BaselineOffsetM:  svcConfig.BaselineOffsetM,
		CameraFOVDeg:     optionalConfigParams.CameraFOVDeg,
	})
	if err != nil {
		return nil, err
	}

	timedDetector := testTimedDetectorOverride
	if timedDetector == nil {
		if timedDetector, err = s.NewDetector(ctx, deps, svcConfig.Detector, svcConfig.Camera,
			optionalConfigParams.CameraFrequencyHz, svcConfig.MinConfidence, logger); err != nil {
			return nil, err
		}
	}

	timedScanner := testTimedRangeScannerOverride
	if timedScanner == nil {
		if timedScanner, err = s.NewRangeScanner(ctx, deps, svcConfig.Scanner,
			optionalConfigParams.ScannerFrequencyHz, logger); err != nil {
			return nil, err
		}
	}

	cancelSensorProcessCtx, cancelSensorProcessFunc := context.WithCancel(context.Background())

	fusionSvc := &FusionService{
		Named:                   c.ResourceName().AsNamed(),
		detector:                timedDetector,
		scanner:                 timedScanner,
		engine:                  engine,
		fusionRateHz:            optionalConfigParams.ScannerFrequencyHz,
		verbose:                 logger.Level() == zapcore.DebugLevel,
		cancelSensorProcessFunc: cancelSensorProcessFunc,
		logger:                  logger,
	}

	defer func() {
		if err != nil {
			logger.Errorw("New() hit error, closing...", "error", err)
			if err := fusionSvc.Close(ctx); err != nil {
				logger.Errorw("error closing out after error", "error", err)
			}
		}
	}()

	// A source that is not ready yet is degraded, not fatal. The polling
	// loops keep retrying and fusion publishes unfused results meanwhile.
	if validationErr := s.ValidateGetDetectorData(
		cancelSensorProcessCtx,
		timedDetector,
		time.Duration(sensorValidationMaxTimeoutSec)*time.Second,
		time.Duration(sensorValidationIntervalSec)*time.Second,
		logger); validationErr != nil {
		logger.Warnw("detector is not returning detections yet, proceeding", "error", validationErr)
	}

	if validationErr := s.ValidateGetRangeScannerData(
		cancelSensorProcessCtx,
		timedScanner,
		time.Duration(sensorValidationMaxTimeoutSec)*time.Second,
		time.Duration(sensorValidationIntervalSec)*time.Second,
		logger); validationErr != nil {
		logger.Warnw("range scanner is not returning scans yet, proceeding", "error", validationErr)
	}

	initSensorProcesses(cancelSensorProcessCtx, fusionSvc)

	return fusionSvc, nil
}

// FusionService is the structure of the fusion sensor.
type FusionService struct {
	resource.Named
	resource.AlwaysRebuild
	mu     sync.Mutex
	closed bool

	detector s.TimedDetector
	scanner  s.TimedRangeScanner
	engine   *fusion.Engine

	fusionRateHz int
	verbose      bool

	cancelSensorProcessFunc func()
	logger                  logging.Logger
	sensorProcessWorkers    sync.WaitGroup
}

// Readings returns the latest published fusion result as a flat reading map.
func (fusionSvc *FusionService) Readings(ctx context.Context, extra map[string]interface{}) (map[string]interface{}, error) {
	_, span := trace.StartSpan(ctx, "camlidarfusion::FusionService::Readings")
	defer span.End()
	if fusionSvc.closed {
		fusionSvc.logger.Warn("Readings called after closed")
		return nil, ErrClosed
	}

	result, stats, published := fusionSvc.engine.Latest()

	detections := make([]interface{}, 0, len(result.Associations))
	for _, association := range result.Associations {
		detection := map[string]interface{}{
			"id":          association.Detection.ID,
			"label":       association.Detection.Label,
			"confidence":  association.Detection.Confidence,
			"bearing_deg": association.CameraBearingDeg,
			"fused":       association.Fused,
			"bounding_box": map[string]interface{}{
				"x_min": association.Detection.XMin,
				"y_min": association.Detection.YMin,
				"x_max": association.Detection.XMax,
				"y_max": association.Detection.YMax,
			},
		}
		if association.Fused {
			detection["distance_m"] = association.DistanceM
			detection["scanner_bearing_deg"] = association.ScannerBearingDeg
		}
		detections = append(detections, detection)
	}

	return map[string]interface{}{
		"published":        published,
		"total_detections": stats.TotalDetections,
		"fused_detections": stats.FusedDetections,
		"fusion_rate":      stats.FusionRate,
		"latency_ms":       float64(stats.Latency.Microseconds()) / 1000.0,
		"detections":       detections,
	}, nil
}

func calibrationReading(params fusion.Params) map[string]interface{} {
	return map[string]interface{}{
		"angular_offset_deg": params.AngularOffsetDeg,
		"baseline_offset_m":  params.BaselineOffsetM,
		"camera_fov_deg":     params.CameraFOVDeg,
	}
}

// DoCommand receives arbitrary commands. It supports runtime recalibration of
// the angular offset, baseline offset and camera fov, reading the current
// calibration back, and computing planar positions for the latest result.
func (fusionSvc *FusionService) DoCommand(ctx context.Context, req map[string]interface{}) (map[string]interface{}, error) {
	_, span := trace.StartSpan(ctx, "camlidarfusion::FusionService::DoCommand")
	defer span.End()
	if fusionSvc.closed {
		fusionSvc.logger.Warn("DoCommand called after closed")
		return nil, ErrClosed
	}

	resp := map[string]interface{}{}
	var errs error

	params := fusionSvc.engine.Params()
	paramsUpdated := false

	if val, ok := req[SetAngularOffsetKey]; ok {
		if offset, ok := val.(float64); ok {
			params.AngularOffsetDeg = offset
			paramsUpdated = true
		} else {
			errs = multierr.Append(errs, errors.Errorf("%s: expected a number, got %v", SetAngularOffsetKey, val))
		}
	}

	if val, ok := req[SetBaselineOffsetKey]; ok {
		if offset, ok := val.(float64); ok {
			params.BaselineOffsetM = offset
			paramsUpdated = true
		} else {
			errs = multierr.Append(errs, errors.Errorf("%s: expected a number, got %v", SetBaselineOffsetKey, val))
		}
	}

	if val, ok := req[SetCameraFOVKey]; ok {
		if fov, ok := val.(float64); ok {
			params.CameraFOVDeg = fov
			paramsUpdated = true
		} else {
			errs = multierr.Append(errs, errors.Errorf("%s: expected a number, got %v", SetCameraFOVKey, val))
		}
	}

	if paramsUpdated && errs == nil {
		if err := fusionSvc.engine.SetParams(params); err != nil {
			errs = multierr.Append(errs, err)
		} else {
			fusionSvc.logger.Infow("calibration updated",
				"angular_offset_deg", params.AngularOffsetDeg,
				"baseline_offset_m", params.BaselineOffsetM,
				"camera_fov_deg", params.CameraFOVDeg)
			resp["calibration"] = calibrationReading(params)
		}
	}

	if _, ok := req[GetCalibrationKey]; ok {
		resp["calibration"] = calibrationReading(fusionSvc.engine.Params())
	}

	if _, ok := req[ObjectPositionsKey]; ok {
		result, _, _ := fusionSvc.engine.Latest()
		positions := fusion.ObjectPositions(result.Associations, fusionSvc.engine.Params())
		positionReadings := make([]interface{}, 0, len(positions))
		for _, association := range result.Associations {
			position, ok := positions[association.Detection.ID]
			if !ok {
				continue
			}
			positionReadings = append(positionReadings, map[string]interface{}{
				"id":    association.Detection.ID,
				"label": association.Detection.Label,
				"x":     position.X,
				"y":     position.Y,
				"z":     position.Z,
			})
		}
		resp[ObjectPositionsKey] = positionReadings
	}

	if errs != nil {
		return nil, errs
	}
	if len(resp) == 0 {
		return nil, viamgrpc.UnimplementedError
	}
	return resp, nil
}

// Close out of all fusion related processes.
func (fusionSvc *FusionService) Close(ctx context.Context) error {
	fusionSvc.mu.Lock()
	defer fusionSvc.mu.Unlock()

	if fusionSvc.closed {
		fusionSvc.logger.Warn("Close() called multiple times")
		return nil
	}

	fusionSvc.logger.Info("Closing camera lidar fusion module")

	// stop sensor process workers
	fusionSvc.cancelSensorProcessFunc()
	fusionSvc.sensorProcessWorkers.Wait()
	fusionSvc.closed = true

	fusionSvc.logger.Info("Closing complete")
	return nil
}
