//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"spd/internal"
	"spd/internal/backup"
	"spd/internal/controllers"
	"spd/internal/profile"
	"spd/internal/providers"
	"spd/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		internal.NewAppLauncher,
		internal.NewExitFunc,

		profile.NewStore,
		profile.NewStateSerializer,
		profile.NewLifecycleController,

		backup.NewZstdCompressor,
		backup.NewManager,
		backup.NewArchiver,
		backup.NewScheduler,

		controllers.NewProfileController,
		controllers.NewBackupController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
