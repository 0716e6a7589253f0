// Package sensors_test implements tests for sensors.
package sensors_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"go.viam.com/rdk/logging"
	"go.viam.com/test"

	s "github.com/viam-modules/camera-lidar-fusion/sensors"
	"github.com/viam-modules/camera-lidar-fusion/sensors/inject"
)

const (
	sensorValidationMaxTimeout = 50 * time.Millisecond
	sensorValidationInterval   = 10 * time.Millisecond
)

func TestValidateGetDetectorData(t *testing.T) {
	logger := logging.NewTestLogger(t)
	ctx := context.Background()

	goodDetector := &inject.TimedDetector{
		TimedDetectorReadingFunc: func(ctx context.Context) (s.TimedDetectorReadingResponse, error) {
			return s.TimedDetectorReadingResponse{ReadingTime: time.Now().UTC()}, nil
		},
	}
	erroringDetector := &inject.TimedDetector{
		TimedDetectorReadingFunc: func(ctx context.Context) (s.TimedDetectorReadingResponse, error) {
			return s.TimedDetectorReadingResponse{}, errors.New(s.InvalidSensorTestErrMsg)
		},
	}

	t.Run("returns nil if a detector reading succeeds immediately", func(t *testing.T) {
		err := s.ValidateGetDetectorData(ctx, goodDetector, sensorValidationMaxTimeout, sensorValidationInterval, logger)
		test.That(t, err, test.ShouldBeNil)
	})

	t.Run("returns nil if a detector reading succeeds within the timeout", func(t *testing.T) {
		calls := 0
		warmingUpDetector := &inject.TimedDetector{
			TimedDetectorReadingFunc: func(ctx context.Context) (s.TimedDetectorReadingResponse, error) {
				calls++
				if calls == 1 {
					return s.TimedDetectorReadingResponse{}, errors.New("warming up")
				}
				return s.TimedDetectorReadingResponse{ReadingTime: time.Now().UTC()}, nil
			},
		}
		err := s.ValidateGetDetectorData(ctx, warmingUpDetector, sensorValidationMaxTimeout, sensorValidationInterval, logger)
		test.That(t, err, test.ShouldBeNil)
	})

	t.Run("returns an error if no detector reading succeeds by the timeout", func(t *testing.T) {
		err := s.ValidateGetDetectorData(ctx, erroringDetector, sensorValidationMaxTimeout, sensorValidationInterval, logger)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "ValidateGetDetectorData timeout")
	})

	t.Run("returns the context error if the context was canceled", func(t *testing.T) {
		cancelCtx, cancelFunc := context.WithCancel(context.Background())
		cancelFunc()
		err := s.ValidateGetDetectorData(cancelCtx, erroringDetector, time.Minute, sensorValidationInterval, logger)
		test.That(t, err, test.ShouldBeError, context.Canceled)
	})
}

func TestValidateGetRangeScannerData(t *testing.T) {
	logger := logging.NewTestLogger(t)
	ctx := context.Background()

	goodScanner := &inject.TimedRangeScanner{
		TimedRangeScannerReadingFunc: func(ctx context.Context) (s.TimedRangeScannerReadingResponse, error) {
			return s.TimedRangeScannerReadingResponse{ReadingTime: time.Now().UTC()}, nil
		},
	}
	erroringScanner := &inject.TimedRangeScanner{
		TimedRangeScannerReadingFunc: func(ctx context.Context) (s.TimedRangeScannerReadingResponse, error) {
			return s.TimedRangeScannerReadingResponse{}, errors.New(s.InvalidSensorTestErrMsg)
		},
	}

	t.Run("returns nil if a scanner reading succeeds immediately", func(t *testing.T) {
		err := s.ValidateGetRangeScannerData(ctx, goodScanner, sensorValidationMaxTimeout, sensorValidationInterval, logger)
		test.That(t, err, test.ShouldBeNil)
	})

	t.Run("returns an error if no scanner reading succeeds by the timeout", func(t *testing.T) {
		err := s.ValidateGetRangeScannerData(ctx, erroringScanner, sensorValidationMaxTimeout, sensorValidationInterval, logger)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "ValidateGetRangeScannerData timeout")
	})

	t.Run("returns the context error if the context was canceled", func(t *testing.T) {
		cancelCtx, cancelFunc := context.WithCancel(context.Background())
		cancelFunc()
		err := s.ValidateGetRangeScannerData(cancelCtx, erroringScanner, time.Minute, sensorValidationInterval, logger)
		test.That(t, err, test.ShouldBeError, context.Canceled)
	})
}
