package internal

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spd/internal/backup"
	"spd/internal/controllers"
	"spd/internal/profile"
	"spd/internal/structures"
	"spd/internal/testutil"
)

func routesTestConfig(t *testing.T) *structures.Config {
	t.Helper()
	return &structures.Config{
		Profiles: structures.ProfilesConfig{RootDir: t.TempDir()},
		Backup: structures.BackupConfig{
			AutoBackupEnabled: false,
			BackupInterval:    5 * time.Minute,
			MaxBackupCount:    5,
		},
		Catalog: structures.CatalogConfig{FileName: "catalog.sqlite3"},
	}
}

func buildControllers(t *testing.T, conf *structures.Config) (*controllers.ProfileController, *controllers.BackupController) {
	t.Helper()
	logger := &testutil.MockLogger{}
	metrics := testutil.NewMockMetrics()
	cache := testutil.NewMockCache()

	store := profile.NewStore(conf, logger)
	lifecycle := profile.NewLifecycleController(conf, store, logger,
		func(_, _ string) error { return nil },
		func(int) {},
	)
	serializer := profile.NewStateSerializer(logger)
	manager := backup.NewManager(logger, metrics)
	archiver := backup.NewArchiver(manager, &testutil.MockCompressor{}, logger)
	scheduler := backup.NewScheduler(conf, logger, store, manager)

	pc := controllers.NewProfileController(conf, logger, store, lifecycle, serializer, cache, metrics)
	bc := controllers.NewBackupController(logger, store, manager, archiver, scheduler, cache)
	return pc, bc
}

func TestInitRoutes_RegistersAllRoutes(t *testing.T) {
	conf := routesTestConfig(t)
	pc, bc := buildControllers(t, conf)

	router := InitRoutes(pc, bc, conf)
	routes := router.GetRoutes()

	require.Len(t, routes, 16)

	patterns := make([]string, len(routes))
	for i, r := range routes {
		patterns[i] = r.Method + " " + r.Url
	}

	assert.Contains(t, patterns, "GET /profiles")
	assert.Contains(t, patterns, "POST /profiles")
	assert.Contains(t, patterns, "POST /profiles/delete")
	assert.Contains(t, patterns, "POST /profiles/launch")
	assert.Contains(t, patterns, "POST /profiles/switch")
	assert.Contains(t, patterns, "POST /profiles/dismiss")
	assert.Contains(t, patterns, "GET /state")
	assert.Contains(t, patterns, "POST /state/save")
	assert.Contains(t, patterns, "GET /backups")
	assert.Contains(t, patterns, "POST /backups")
	assert.Contains(t, patterns, "POST /backups/restore")
	assert.Contains(t, patterns, "POST /backups/delete")
	assert.Contains(t, patterns, "POST /backups/export")
	assert.Contains(t, patterns, "POST /backups/import")
	assert.Contains(t, patterns, "GET /backup-settings")
	assert.Contains(t, patterns, "POST /backup-settings")
}

func TestInitRoutes_MethodEnforcement(t *testing.T) {
	conf := routesTestConfig(t)
	pc, bc := buildControllers(t, conf)

	router := InitRoutes(pc, bc, conf)

	mux := http.NewServeMux()
	for _, r := range router.GetRoutes() {
		mux.Handle(r.Method+" "+r.Url, r.Handler)
	}

	// DELETE on a GET/POST path should fail
	req := httptest.NewRequest(http.MethodDelete, "/profiles", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	// GET on a POST-only path should fail
	req = httptest.NewRequest(http.MethodGet, "/profiles/launch", nil)
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	// GET /profiles should reach the handler
	req = httptest.NewRequest(http.MethodGet, "/profiles", nil)
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}
