// Package sensors wraps the detector and range scanner resources used by the fusion service.
package sensors

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opencensus.io/trace"
	"go.viam.com/rdk/logging"
	goutils "go.viam.com/utils"
)

// ValidateGetDetectorData checks every sensorValidationInterval whether the provided
// detector returned a valid timed reading until either success or
// sensorValidationMaxTimeout has elapsed.
// Returns an error if no valid detector readings were returned.
func ValidateGetDetectorData(
	ctx context.Context,
	detector TimedDetector,
	sensorValidationMaxTimeout time.Duration,
	sensorValidationInterval time.Duration,
	logger logging.Logger,
) error {
	ctx, span := trace.StartSpan(ctx, "camlidarfusion::sensors::ValidateGetDetectorData")
	defer span.End()

	startTime := time.Now().UTC()

	for {
		_, err := detector.TimedDetectorReading(ctx)
		if err == nil {
			break
		}

		logger.Debugw("ValidateGetDetectorData hit error: ", "error", err)
		if time.Since(startTime) >= sensorValidationMaxTimeout {
			return errors.Wrap(err, "ValidateGetDetectorData timeout")
		}
		if !goutils.SelectContextOrWait(ctx, sensorValidationInterval) {
			return ctx.Err()
		}
	}

	return nil
}

// ValidateGetRangeScannerData checks every sensorValidationInterval whether the provided
// range scanner returned a valid timed reading until either success or
// sensorValidationMaxTimeout has elapsed.
// Returns an error if no valid scanner readings were returned.
func ValidateGetRangeScannerData(
	ctx context.Context,
	scanner TimedRangeScanner,
	sensorValidationMaxTimeout time.Duration,
	sensorValidationInterval time.Duration,
	logger logging.Logger,
) error {
	ctx, span := trace.StartSpan(ctx, "camlidarfusion::sensors::ValidateGetRangeScannerData")
	defer span.End()

	startTime := time.Now().UTC()

	for {
		_, err := scanner.TimedRangeScannerReading(ctx)
		if err == nil {
			break
		}

		logger.Debugw("ValidateGetRangeScannerData hit error: ", "error", err)
		if time.Since(startTime) >= sensorValidationMaxTimeout {
			return errors.Wrap(err, "ValidateGetRangeScannerData timeout")
		}
		if !goutils.SelectContextOrWait(ctx, sensorValidationInterval) {
			return ctx.Err()
		}
	}

	return nil
}
