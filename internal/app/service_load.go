// Where: cli/internal/app/service_load.go
// What: Shared service-model loading for command handlers.
// Why: Apply CLI stage/region overrides in one place.
package app

import (
	"path/filepath"

	"github.com/flintfn/flint/cli/internal/domain/model"
)

func loadService(deps Dependencies, configName, stage, region string) (*model.ServiceModel, error) {
	path := configName
	if !filepath.IsAbs(path) {
		path = filepath.Join(deps.WorkDir, path)
	}
	service, err := model.Load(path)
	if err != nil {
		return nil, err
	}
	if stage != "" {
		service.Provider.Stage = stage
	}
	if region != "" {
		service.Provider.Region = region
	}
	return service, nil
}

func outputDir(deps Dependencies) string {
	return filepath.Join(deps.WorkDir, ".flint")
}
