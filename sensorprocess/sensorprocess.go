// Package sensorprocess contains the logic to poll the detector and range
// scanner and to drive fusion cycles from the buffered readings.
package sensorprocess

import (
	"context"
	"errors"
	"math"
	"time"

	"go.viam.com/rdk/logging"

	"github.com/viam-modules/camera-lidar-fusion/fusion"
	s "github.com/viam-modules/camera-lidar-fusion/sensors"
)

// Config holds config needed throughout the process of polling sensors and
// running fusion cycles.
type Config struct {
	Engine   *fusion.Engine
	Detector s.TimedDetector
	Scanner  s.TimedRangeScanner

	FusionRateHz int
	Verbose      bool
	Logger       logging.Logger
}

// StartDetector polls the detector to get the next set of detections and
// stores them in the engine. Stops when the context is Done.
func (config *Config) StartDetector(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			if err := config.addDetectorReading(ctx); err != nil {
				config.Logger.Warn(err)
			}
		}
	}
}

// addDetectorReading stores the most recent detections in the engine and
// sleeps the remainder of the detector's time interval.
func (config *Config) addDetectorReading(ctx context.Context) error {
	startTime := time.Now().UTC()

	reading, err := config.Detector.TimedDetectorReading(ctx)
	if err != nil {
		return err
	}
	config.Engine.UpdateFrame(reading.Detections, reading.ReadingTime)

	timeToSleep := remainingMs(config.Detector.DataFrequencyHz(), startTime)
	time.Sleep(time.Duration(timeToSleep) * time.Millisecond)
	if config.Verbose {
		config.Logger.Debugf("detector sleep for %vms", timeToSleep)
	}
	return nil
}

// StartScanner polls the range scanner to get the next scan and stores it in
// the engine. Stops when the context is Done.
func (config *Config) StartScanner(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			if err := config.addScannerReading(ctx); err != nil {
				config.Logger.Warn(err)
			}
		}
	}
}

// addScannerReading stores the most recent scan in the engine and sleeps the
// remainder of the scanner's time interval.
func (config *Config) addScannerReading(ctx context.Context) error {
	startTime := time.Now().UTC()

	reading, err := config.Scanner.TimedRangeScannerReading(ctx)
	if err != nil {
		return err
	}
	config.Engine.UpdateScan(reading.Samples, reading.ReadingTime)

	timeToSleep := remainingMs(config.Scanner.DataFrequencyHz(), startTime)
	time.Sleep(time.Duration(timeToSleep) * time.Millisecond)
	if config.Verbose {
		config.Logger.Debugf("scanner sleep for %vms", timeToSleep)
	}
	return nil
}

// StartFusion runs fusion cycles against the buffered readings at the
// configured rate. Stops when the context is Done.
func (config *Config) StartFusion(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			if err := config.runFusionCycle(ctx); err != nil && !errors.Is(err, context.Canceled) {
				config.Logger.Warn(err)
			}
		}
	}
}

// runFusionCycle runs a single fusion cycle and sleeps the remainder of the
// fusion time interval.
func (config *Config) runFusionCycle(ctx context.Context) error {
	startTime := time.Now().UTC()

	_, stats, err := config.Engine.RunCycle(ctx)
	if err != nil {
		return err
	}
	if config.Verbose {
		config.Logger.Debugf("fusion cycle fused %d of %d detections in %v",
			stats.FusedDetections, stats.TotalDetections, stats.Latency)
	}

	timeToSleep := remainingMs(config.FusionRateHz, startTime)
	time.Sleep(time.Duration(timeToSleep) * time.Millisecond)
	return nil
}

// remainingMs returns the unused remainder of the time interval implied by
// the data rate, in milliseconds.
func remainingMs(dataFrequencyHz int, startTime time.Time) int {
	if dataFrequencyHz <= 0 {
		return 0
	}
	timeElapsedMs := int(time.Since(startTime).Milliseconds())
	return int(math.Max(0, float64(1000/dataFrequencyHz-timeElapsedMs)))
}
