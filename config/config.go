// Package config implements functions to assist with attribute evaluation in the fusion service.
package config

import (
	"github.com/pkg/errors"
	"go.viam.com/rdk/logging"
	"go.viam.com/utils"
)

// Default values applied by GetOptionalParameters when the attribute is unset.
const (
	DefaultToleranceDeg       = 5.0
	DefaultMinDistanceM       = 0.15
	DefaultMaxDistanceM       = 12.0
	DefaultCameraFOVDeg       = 60.0
	DefaultUnitToMeters       = 0.001
	DefaultQualityThreshold   = 0
	DefaultCameraFrequencyHz  = 30
	DefaultScannerFrequencyHz = 5
)

// newError returns an error specific to a failure in the fusion service config.
func newError(configError string) error {
	return errors.Errorf("fusion service configuration error: %s", configError)
}

// Config describes how to configure the fusion service.
type Config struct {
	Camera             string   `json:"camera"`
	Detector           string   `json:"detector"`
	Scanner            string   `json:"scanner"`
	FrameWidthPx       int      `json:"frame_width_px"`
	CameraFOVDeg       *float64 `json:"camera_fov_deg"`
	AngularOffsetDeg   float64  `json:"angular_offset_deg"`
	BaselineOffsetM    float64  `json:"baseline_offset_m"`
	ToleranceDeg       *float64 `json:"angular_tolerance_deg"`
	MinDistanceM       *float64 `json:"min_distance_m"`
	MaxDistanceM       *float64 `json:"max_distance_m"`
	QualityThreshold   *int     `json:"quality_threshold"`
	UnitToMeters       *float64 `json:"distance_unit_to_meters"`
	MinConfidence      float64  `json:"min_confidence"`
	CameraFrequencyHz  int      `json:"camera_frequency_hz"`
	ScannerFrequencyHz int      `json:"scanner_frequency_hz"`
}

// OptionalConfigParams holds the optional config parameters of the fusion
// service after defaulting.
type OptionalConfigParams struct {
	ToleranceDeg       float64
	MinDistanceM       float64
	MaxDistanceM       float64
	CameraFOVDeg       float64
	UnitToMeters       float64
	QualityThreshold   int
	CameraFrequencyHz  int
	ScannerFrequencyHz int
}

// Validate creates the list of implicit dependencies.
func (config *Config) Validate(path string) ([]string, error) {
	if config.Camera == "" {
		return nil, utils.NewConfigValidationFieldRequiredError(path, "camera")
	}
	if config.Detector == "" {
		return nil, utils.NewConfigValidationFieldRequiredError(path, "detector")
	}
	if config.Scanner == "" {
		return nil, utils.NewConfigValidationFieldRequiredError(path, "scanner")
	}
	if config.FrameWidthPx <= 0 {
		return nil, utils.NewConfigValidationError(path,
			errors.New("cannot specify frame_width_px less than or equal to zero"))
	}

	if config.CameraFOVDeg != nil && (*config.CameraFOVDeg <= 0 || *config.CameraFOVDeg >= 360) {
		return nil, utils.NewConfigValidationError(path,
			errors.New("camera_fov_deg must be between 0 and 360 exclusive"))
	}
	if config.ToleranceDeg != nil && *config.ToleranceDeg <= 0 {
		return nil, utils.NewConfigValidationError(path,
			errors.New("cannot specify angular_tolerance_deg less than or equal to zero"))
	}
	if config.MinDistanceM != nil && *config.MinDistanceM < 0 {
		return nil, utils.NewConfigValidationError(path,
			errors.New("cannot specify min_distance_m less than zero"))
	}
	if config.MaxDistanceM != nil && *config.MaxDistanceM <= 0 {
		return nil, utils.NewConfigValidationError(path,
			errors.New("cannot specify max_distance_m less than or equal to zero"))
	}
	if config.QualityThreshold != nil && *config.QualityThreshold < 0 {
		return nil, utils.NewConfigValidationError(path,
			errors.New("cannot specify quality_threshold less than zero"))
	}
	if config.UnitToMeters != nil && *config.UnitToMeters <= 0 {
		return nil, utils.NewConfigValidationError(path,
			errors.New("cannot specify distance_unit_to_meters less than or equal to zero"))
	}
	if config.MinConfidence < 0 || config.MinConfidence > 1 {
		return nil, utils.NewConfigValidationError(path,
			errors.New("min_confidence must be between 0 and 1 inclusive"))
	}
	if config.CameraFrequencyHz < 0 {
		return nil, utils.NewConfigValidationError(path,
			errors.New("cannot specify camera_frequency_hz less than zero"))
	}
	if config.ScannerFrequencyHz < 0 {
		return nil, utils.NewConfigValidationError(path,
			errors.New("cannot specify scanner_frequency_hz less than zero"))
	}

	deps := []string{config.Camera, config.Detector, config.Scanner}
	return deps, nil
}

// GetOptionalParameters sets any unset optional config parameters to their
// default values and returns them.
func GetOptionalParameters(config *Config, logger logging.Logger) (OptionalConfigParams, error) {
	optionalConfigParams := OptionalConfigParams{
		ToleranceDeg:       DefaultToleranceDeg,
		MinDistanceM:       DefaultMinDistanceM,
		MaxDistanceM:       DefaultMaxDistanceM,
		CameraFOVDeg:       DefaultCameraFOVDeg,
		UnitToMeters:       DefaultUnitToMeters,
		QualityThreshold:   DefaultQualityThreshold,
		CameraFrequencyHz:  DefaultCameraFrequencyHz,
		ScannerFrequencyHz: DefaultScannerFrequencyHz,
	}

	if config.ToleranceDeg == nil {
		logger.Debugf("no angular_tolerance_deg given, setting to default value of %v", DefaultToleranceDeg)
	} else {
		optionalConfigParams.ToleranceDeg = *config.ToleranceDeg
	}

	if config.MinDistanceM == nil {
		logger.Debugf("no min_distance_m given, setting to default value of %v", DefaultMinDistanceM)
	} else {
		optionalConfigParams.MinDistanceM = *config.MinDistanceM
	}

	if config.MaxDistanceM == nil {
		logger.Debugf("no max_distance_m given, setting to default value of %v", DefaultMaxDistanceM)
	} else {
		optionalConfigParams.MaxDistanceM = *config.MaxDistanceM
	}

	if config.CameraFOVDeg == nil {
		logger.Debugf("no camera_fov_deg given, setting to default value of %v", DefaultCameraFOVDeg)
	} else {
		optionalConfigParams.CameraFOVDeg = *config.CameraFOVDeg
	}

	if config.UnitToMeters == nil {
		logger.Debugf("no distance_unit_to_meters given, setting to default value of %v", DefaultUnitToMeters)
	} else {
		optionalConfigParams.UnitToMeters = *config.UnitToMeters
	}

	if config.QualityThreshold == nil {
		logger.Debugf("no quality_threshold given, setting to default value of %d", DefaultQualityThreshold)
	} else {
		optionalConfigParams.QualityThreshold = *config.QualityThreshold
	}

	if config.CameraFrequencyHz == 0 {
		logger.Debugf("no camera_frequency_hz given, setting to default value of %d", DefaultCameraFrequencyHz)
	} else {
		optionalConfigParams.CameraFrequencyHz = config.CameraFrequencyHz
	}

	if config.ScannerFrequencyHz == 0 {
		logger.Debugf("no scanner_frequency_hz given, setting to default value of %d", DefaultScannerFrequencyHz)
	} else {
		optionalConfigParams.ScannerFrequencyHz = config.ScannerFrequencyHz
	}

	if optionalConfigParams.MinDistanceM >= optionalConfigParams.MaxDistanceM {
		return OptionalConfigParams{}, newError("min_distance_m must be below max_distance_m")
	}

	return optionalConfigParams, nil
}
