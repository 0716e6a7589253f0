package sensors

import (
	"context"
	"image"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/rdk/components/camera"
	"go.viam.com/rdk/pointcloud"
	"go.viam.com/rdk/resource"
	"go.viam.com/rdk/services/vision"
	"go.viam.com/rdk/testutils/inject"
	"go.viam.com/rdk/vision/objectdetection"
)

// TestCameraName is the camera name detections are requested from in tests.
const TestCameraName = "test-camera"

// TestSensor represents sensors used for testing.
type TestSensor string

const (
	// InvalidSensorTestErrMsg represents an error message that indicates that the sensor is invalid.
	InvalidSensorTestErrMsg = "invalid test sensor"

	// GoodScanner is a range scanner that works as expected and returns a pointcloud.
	GoodScanner TestSensor = "good_scanner"
	// ScannerWithErroringFunctions is a range scanner whose functions return errors.
	ScannerWithErroringFunctions TestSensor = "scanner_with_erroring_functions"
	// ScannerWithInvalidProperties is a range scanner whose properties are invalid.
	ScannerWithInvalidProperties TestSensor = "scanner_with_invalid_properties"
	// GibberishScanner is a range scanner that can't be found in the dependencies.
	GibberishScanner TestSensor = "gibberish_scanner"
	// NoScanner is a range scanner that represents that no scanner is set up or added.
	NoScanner TestSensor = ""

	// GoodDetector is a detector that works as expected and returns detections.
	GoodDetector TestSensor = "good_detector"
	// EmptyDetector is a detector that works as expected but sees nothing.
	EmptyDetector TestSensor = "empty_detector"
	// DetectorWithErroringFunctions is a detector whose functions return errors.
	DetectorWithErroringFunctions TestSensor = "detector_with_erroring_functions"
	// GibberishDetector is a detector that can't be found in the dependencies.
	GibberishDetector TestSensor = "gibberish_detector"
	// NoDetector is a detector that represents that no detector is set up or added.
	NoDetector TestSensor = ""
)

var (
	testScanners = map[TestSensor]func() *inject.Camera{
		GoodScanner:                  getGoodScanner,
		ScannerWithErroringFunctions: getScannerWithErroringFunctions,
		ScannerWithInvalidProperties: getScannerWithInvalidProperties,
	}

	testDetectors = map[TestSensor]func() *inject.VisionService{
		GoodDetector:                  getGoodDetector,
		EmptyDetector:                 getEmptyDetector,
		DetectorWithErroringFunctions: getDetectorWithErroringFunctions,
	}
)

// SetupDeps returns the dependencies based on the scanner and detector names passed as arguments.
func SetupDeps(scannerName, detectorName TestSensor) resource.Dependencies {
	deps := make(resource.Dependencies)
	if getScannerFunc, ok := testScanners[scannerName]; ok {
		deps[camera.Named(string(scannerName))] = getScannerFunc()
	}

	if getDetectorFunc, ok := testDetectors[detectorName]; ok {
		deps[vision.Named(string(detectorName))] = getDetectorFunc()
	}

	return deps
}

// The good scanner sees three points in the XY plane: one straight ahead at
// one meter, one to the left at two meters, and a weak one behind at half a
// meter.
func getGoodScanner() *inject.Camera {
	cam := &inject.Camera{}
	cam.NextPointCloudFunc = func(ctx context.Context) (pointcloud.PointCloud, error) {
		pc := pointcloud.New()
		if err := pc.Set(r3.Vector{X: 1000, Y: 0, Z: 0}, pointcloud.NewValueData(50)); err != nil {
			return nil, err
		}
		if err := pc.Set(r3.Vector{X: 0, Y: 2000, Z: 0}, pointcloud.NewValueData(50)); err != nil {
			return nil, err
		}
		if err := pc.Set(r3.Vector{X: -500, Y: 0, Z: 0}, pointcloud.NewValueData(5)); err != nil {
			return nil, err
		}
		return pc, nil
	}
	cam.PropertiesFunc = func(ctx context.Context) (camera.Properties, error) {
		return camera.Properties{SupportsPCD: true}, nil
	}
	return cam
}

func getScannerWithErroringFunctions() *inject.Camera {
	cam := &inject.Camera{}
	cam.NextPointCloudFunc = func(ctx context.Context) (pointcloud.PointCloud, error) {
		return nil, errors.New(InvalidSensorTestErrMsg)
	}
	cam.PropertiesFunc = func(ctx context.Context) (camera.Properties, error) {
		return camera.Properties{SupportsPCD: true}, nil
	}
	return cam
}

func getScannerWithInvalidProperties() *inject.Camera {
	cam := &inject.Camera{}
	cam.NextPointCloudFunc = func(ctx context.Context) (pointcloud.PointCloud, error) {
		return pointcloud.New(), nil
	}
	cam.PropertiesFunc = func(ctx context.Context) (camera.Properties, error) {
		return camera.Properties{SupportsPCD: false}, nil
	}
	return cam
}

// The good detector sees a person centered in a 640px frame and a cat it is
// barely sure about.
func getGoodDetector() *inject.VisionService {
	svc := &inject.VisionService{}
	svc.DetectionsFromCameraFunc = func(
		ctx context.Context, cameraName string, extra map[string]interface{},
	) ([]objectdetection.Detection, error) {
		imgBounds := image.Rect(0, 0, 640, 480)
		return []objectdetection.Detection{
			objectdetection.NewDetection(imgBounds, image.Rect(280, 200, 360, 280), 0.9, "person"),
			objectdetection.NewDetection(imgBounds, image.Rect(0, 0, 40, 40), 0.2, "cat"),
		}, nil
	}
	svc.DetectionsFunc = delegateToDetectionsFromCamera(svc)
	return svc
}

func getEmptyDetector() *inject.VisionService {
	svc := &inject.VisionService{}
	svc.DetectionsFromCameraFunc = func(
		ctx context.Context, cameraName string, extra map[string]interface{},
	) ([]objectdetection.Detection, error) {
		return []objectdetection.Detection{}, nil
	}
	svc.DetectionsFunc = delegateToDetectionsFromCamera(svc)
	return svc
}

func getDetectorWithErroringFunctions() *inject.VisionService {
	svc := &inject.VisionService{}
	svc.DetectionsFromCameraFunc = func(
		ctx context.Context, cameraName string, extra map[string]interface{},
	) ([]objectdetection.Detection, error) {
		return nil, errors.New(InvalidSensorTestErrMsg)
	}
	svc.DetectionsFunc = delegateToDetectionsFromCamera(svc)
	return svc
}

// The injected DetectionsFromCamera only calls DetectionsFromCameraFunc when
// DetectionsFunc is also set, so every test detector wires both to the same
// behavior.
func delegateToDetectionsFromCamera(svc *inject.VisionService) func(
	ctx context.Context, img image.Image, extra map[string]interface{},
) ([]objectdetection.Detection, error) {
	return func(ctx context.Context, _ image.Image, extra map[string]interface{}) ([]objectdetection.Detection, error) {
		return svc.DetectionsFromCameraFunc(ctx, TestCameraName, extra)
	}
}
