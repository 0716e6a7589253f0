package sensors_test

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/pkg/errors"
	"go.viam.com/rdk/logging"
	"go.viam.com/test"

	s "github.com/viam-modules/camera-lidar-fusion/sensors"
)

func TestNewRangeScanner(t *testing.T) {
	logger := logging.NewTestLogger(t)
	ctx := context.Background()

	t.Run("no scanner provided", func(t *testing.T) {
		scanner, detector := s.NoScanner, s.NoDetector
		actualScanner, err := s.NewRangeScanner(ctx, s.SetupDeps(scanner, detector),
			string(scanner), testDataFrequencyHz, logger)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "error getting range scanner")
		test.That(t, actualScanner, test.ShouldResemble, s.RangeScanner{})
	})

	t.Run("failed scanner creation with non-existing resource", func(t *testing.T) {
		scanner, detector := s.GibberishScanner, s.NoDetector
		actualScanner, err := s.NewRangeScanner(ctx, s.SetupDeps(scanner, detector),
			string(scanner), testDataFrequencyHz, logger)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "gibberish_scanner")
		test.That(t, actualScanner, test.ShouldResemble, s.RangeScanner{})
	})

	t.Run("failed scanner creation without PCD support", func(t *testing.T) {
		scanner, detector := s.ScannerWithInvalidProperties, s.NoDetector
		actualScanner, err := s.NewRangeScanner(ctx, s.SetupDeps(scanner, detector),
			string(scanner), testDataFrequencyHz, logger)
		test.That(t, err, test.ShouldBeError,
			errors.New("configuring range scanner error: 'scanner' must support PCD"))
		test.That(t, actualScanner, test.ShouldResemble, s.RangeScanner{})
	})

	t.Run("successful scanner creation", func(t *testing.T) {
		scanner, detector := s.GoodScanner, s.NoDetector
		actualScanner, err := s.NewRangeScanner(ctx, s.SetupDeps(scanner, detector),
			string(scanner), testDataFrequencyHz, logger)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, actualScanner.Name(), test.ShouldEqual, string(scanner))
		test.That(t, actualScanner.DataFrequencyHz(), test.ShouldEqual, testDataFrequencyHz)
	})
}

func TestTimedRangeScannerReading(t *testing.T) {
	logger := logging.NewTestLogger(t)
	ctx := context.Background()

	t.Run("scanner errors are wrapped and returned", func(t *testing.T) {
		scanner, detector := s.ScannerWithErroringFunctions, s.NoDetector
		erroringScanner, err := s.NewRangeScanner(ctx, s.SetupDeps(scanner, detector),
			string(scanner), testDataFrequencyHz, logger)
		test.That(t, err, test.ShouldBeNil)

		_, err = erroringScanner.TimedRangeScannerReading(ctx)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "NextPointCloud error")
		test.That(t, err.Error(), test.ShouldContainSubstring, s.InvalidSensorTestErrMsg)
	})

	t.Run("pointcloud points become polar samples", func(t *testing.T) {
		scanner, detector := s.GoodScanner, s.NoDetector
		goodScanner, err := s.NewRangeScanner(ctx, s.SetupDeps(scanner, detector),
			string(scanner), testDataFrequencyHz, logger)
		test.That(t, err, test.ShouldBeNil)

		beforeReading := time.Now().UTC()
		res, err := goodScanner.TimedRangeScannerReading(ctx)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, len(res.Samples), test.ShouldEqual, 3)
		test.That(t, res.ReadingTime.After(beforeReading), test.ShouldBeTrue)

		// cloud iteration order is not fixed, so sort the samples by angle
		sort.Slice(res.Samples, func(i, j int) bool {
			return res.Samples[i].AngleDeg < res.Samples[j].AngleDeg
		})

		ahead := res.Samples[0]
		test.That(t, ahead.AngleDeg, test.ShouldAlmostEqual, 0.0)
		test.That(t, ahead.Distance, test.ShouldAlmostEqual, 1000.0)
		test.That(t, ahead.Quality, test.ShouldEqual, 50)

		left := res.Samples[1]
		test.That(t, left.AngleDeg, test.ShouldAlmostEqual, 90.0)
		test.That(t, left.Distance, test.ShouldAlmostEqual, 2000.0)
		test.That(t, left.Quality, test.ShouldEqual, 50)

		behind := res.Samples[2]
		test.That(t, behind.AngleDeg, test.ShouldAlmostEqual, 180.0)
		test.That(t, behind.Distance, test.ShouldAlmostEqual, 500.0)
		test.That(t, behind.Quality, test.ShouldEqual, 5)
	})
}
