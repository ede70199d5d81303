package internal

import (
	"net/http"
	"spd/internal/controllers"
	"spd/internal/providers"
	"spd/internal/structures"
)

func InitRoutes(profileController *controllers.ProfileController, backupController *controllers.BackupController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/profiles", http.HandlerFunc(profileController.ListProfiles))
	routers.Post("/profiles", http.HandlerFunc(profileController.CreateProfile))
	routers.Post("/profiles/delete", http.HandlerFunc(profileController.DeleteProfile))
	routers.Post("/profiles/launch", http.HandlerFunc(profileController.LaunchProfile))
	routers.Post("/profiles/switch", http.HandlerFunc(profileController.SwitchProfile))
	routers.Post("/profiles/dismiss", http.HandlerFunc(profileController.DismissPicker))

	routers.Get("/state", http.HandlerFunc(profileController.GetState))
	routers.Post("/state/save", http.HandlerFunc(profileController.SaveState))

	routers.Get("/backups", http.HandlerFunc(backupController.ListBackups))
	routers.Post("/backups", http.HandlerFunc(backupController.CreateBackup))
	routers.Post("/backups/restore", http.HandlerFunc(backupController.RestoreBackup))
	routers.Post("/backups/delete", http.HandlerFunc(backupController.DeleteBackup))
	routers.Post("/backups/export", http.HandlerFunc(backupController.ExportBackup))
	routers.Post("/backups/import", http.HandlerFunc(backupController.ImportBackup))

	routers.Get("/backup-settings", http.HandlerFunc(backupController.GetBackupSettings))
	routers.Post("/backup-settings", http.HandlerFunc(backupController.SaveBackupSettings))
	return routers
}
