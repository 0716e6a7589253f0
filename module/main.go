// Package main is a module with a camera lidar fusion sensor model.
package main

import (
	"context"
	"strings"

	"go.viam.com/rdk/components/sensor"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/module"
	"go.viam.com/utils"

	camlidarfusion "github.com/viam-modules/camera-lidar-fusion"
	"github.com/viam-modules/camera-lidar-fusion/telemetry"
)

// Versioning variables which are replaced by LD flags.
var (
	Version     = "development"
	GitRevision = ""
)

func main() {
	utils.ContextualMain(mainWithArgs, module.NewLoggerFromArgs("cameraLidarFusionModule"))
}

func mainWithArgs(ctx context.Context, args []string, logger logging.Logger) error {
	var versionFields []interface{}
	if Version != "" {
		versionFields = append(versionFields, "version", Version)
	}
	if GitRevision != "" {
		versionFields = append(versionFields, "git_rev", GitRevision)
	}
	if len(versionFields) != 0 {
		logger.Infow(camlidarfusion.Model.String(), versionFields...)
	} else {
		logger.Info(camlidarfusion.Model.String() + " built from source; version unknown")
	}

	if len(args) == 2 && strings.HasSuffix(args[1], "-version") {
		return nil
	}

	exporter, err := telemetry.SetupTelemetry()
	if err != nil {
		return err
	}
	defer exporter.Stop()

	// Instantiate the module
	fusionModule, err := module.NewModuleFromArgs(ctx)
	if err != nil {
		return err
	}

	// Add the fusion model to the module
	if err = fusionModule.AddModelFromRegistry(ctx, sensor.API, camlidarfusion.Model); err != nil {
		return err
	}

	// Start the module
	err = fusionModule.Start(ctx)
	defer fusionModule.Close(ctx)
	if err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}
