package controllers

import (
	"fmt"
	"net/http"

	json "github.com/goccy/go-json"

	"spd/internal/backup"
	"spd/internal/models"
	"spd/internal/profile"
	"spd/internal/providers"
)

type BackupController struct {
	logger    providers.Logger
	store     *profile.Store
	manager   *backup.Manager
	archiver  *backup.Archiver
	scheduler backup.SchedulerInterface
	cache     providers.CacheProviderInterface
}

func NewBackupController(logger providers.Logger, store *profile.Store, manager *backup.Manager, archiver *backup.Archiver, scheduler backup.SchedulerInterface, cache providers.CacheProviderInterface) *BackupController {
	return &BackupController{
		logger:    logger,
		store:     store,
		manager:   manager,
		archiver:  archiver,
		scheduler: scheduler,
		cache:     cache,
	}
}

func backupListCacheKey(name string) string {
	return "backups:" + name
}

func (bc *BackupController) resolve(name string) (string, error) {
	return bc.store.ResolveDir(name)
}

func (bc *BackupController) ListBackups(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("profile")
	dir, err := bc.resolve(name)
	if err != nil {
		writeErr(w, err)
		return
	}

	key := backupListCacheKey(name)
	if data, ok := bc.cache.Get(key); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	backups, err := bc.manager.ListBackups(dir)
	if err != nil {
		writeErr(w, err)
		return
	}

	gson, err := json.Marshal(models.Ok(backups))
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	bc.cache.Set(key, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func (bc *BackupController) CreateBackup(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload struct {
		Profile string `json:"profile"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeErr(w, fmt.Errorf("%w: malformed request body", models.ErrValidation))
		return
	}

	dir, err := bc.resolve(payload.Profile)
	if err != nil {
		writeErr(w, err)
		return
	}

	b, err := bc.manager.CreateBackup(dir)
	if err != nil {
		writeErr(w, err)
		return
	}
	bc.cache.Del(backupListCacheKey(payload.Profile))
	writeOk(w, b)
}

func (bc *BackupController) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload struct {
		Profile   string `json:"profile"`
		ID        string `json:"id"`
		Confirmed bool   `json:"confirmed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeErr(w, fmt.Errorf("%w: malformed request body", models.ErrValidation))
		return
	}
	if !payload.Confirmed {
		writeErr(w, fmt.Errorf("%w: restore requires confirmation", models.ErrValidation))
		return
	}

	dir, err := bc.resolve(payload.Profile)
	if err != nil {
		writeErr(w, err)
		return
	}

	if err := bc.manager.RestoreBackup(dir, payload.ID); err != nil {
		writeErr(w, err)
		return
	}
	bc.cache.Del(backupListCacheKey(payload.Profile))
	writeOk(w, map[string]string{"restored": payload.ID})
}

func (bc *BackupController) DeleteBackup(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload struct {
		Profile   string `json:"profile"`
		ID        string `json:"id"`
		Confirmed bool   `json:"confirmed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeErr(w, fmt.Errorf("%w: malformed request body", models.ErrValidation))
		return
	}
	if !payload.Confirmed {
		writeErr(w, fmt.Errorf("%w: delete requires confirmation", models.ErrValidation))
		return
	}

	dir, err := bc.resolve(payload.Profile)
	if err != nil {
		writeErr(w, err)
		return
	}

	if err := bc.manager.DeleteBackup(dir, payload.ID); err != nil {
		writeErr(w, err)
		return
	}
	bc.cache.Del(backupListCacheKey(payload.Profile))
	writeOk(w, map[string]string{"deleted": payload.ID})
}

func (bc *BackupController) ExportBackup(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload struct {
		Profile  string `json:"profile"`
		ID       string `json:"id"`
		DestPath string `json:"destPath"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeErr(w, fmt.Errorf("%w: malformed request body", models.ErrValidation))
		return
	}

	dir, err := bc.resolve(payload.Profile)
	if err != nil {
		writeErr(w, err)
		return
	}

	if err := bc.archiver.Export(dir, payload.ID, payload.DestPath); err != nil {
		writeErr(w, err)
		return
	}
	writeOk(w, map[string]string{"exported": payload.DestPath})
}

func (bc *BackupController) ImportBackup(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload struct {
		Profile string `json:"profile"`
		SrcPath string `json:"srcPath"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeErr(w, fmt.Errorf("%w: malformed request body", models.ErrValidation))
		return
	}

	dir, err := bc.resolve(payload.Profile)
	if err != nil {
		writeErr(w, err)
		return
	}

	b, err := bc.archiver.Import(dir, payload.SrcPath)
	if err != nil {
		writeErr(w, err)
		return
	}
	bc.cache.Del(backupListCacheKey(payload.Profile))
	writeOk(w, b)
}

func (bc *BackupController) GetBackupSettings(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("profile")
	dir, err := bc.resolve(name)
	if err != nil {
		writeErr(w, err)
		return
	}

	prefs, err := bc.store.LoadPreferences(dir)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOk(w, prefs.Backup)
}

func (bc *BackupController) SaveBackupSettings(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload struct {
		Profile  string                `json:"profile"`
		Settings models.BackupSettings `json:"settings"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeErr(w, fmt.Errorf("%w: malformed request body", models.ErrValidation))
		return
	}
	if payload.Settings.BackupIntervalMs <= 0 || payload.Settings.MaxBackupCount <= 0 {
		writeErr(w, fmt.Errorf("%w: interval and max count must be positive", models.ErrValidation))
		return
	}

	dir, err := bc.resolve(payload.Profile)
	if err != nil {
		writeErr(w, err)
		return
	}

	prefs, err := bc.store.LoadPreferences(dir)
	if err != nil {
		writeErr(w, err)
		return
	}
	prefs.Backup = payload.Settings
	if err := bc.store.SavePreferences(dir, prefs); err != nil {
		writeErr(w, err)
		return
	}

	// The timer is shared across profiles; saving retunes its cadence to
	// these settings (last writer wins). Each tick still honors every
	// profile's own preferences.
	bc.scheduler.UpdateSettings(payload.Settings)
	writeOk(w, prefs.Backup)
}
