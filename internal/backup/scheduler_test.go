package backup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spd/internal/models"
	"spd/internal/profile"
	"spd/internal/structures"
	"spd/internal/testutil"
)

func schedulerFixture(t *testing.T, autoEnabled bool) (*Scheduler, *profile.Store, *Manager) {
	t.Helper()
	conf := &structures.Config{
		Profiles: structures.ProfilesConfig{RootDir: t.TempDir()},
		Backup: structures.BackupConfig{
			AutoBackupEnabled: autoEnabled,
			BackupInterval:    5 * time.Minute,
			MaxBackupCount:    3,
		},
	}
	logger := &testutil.MockLogger{}
	store := profile.NewStore(conf, logger)
	manager := NewManager(logger, testutil.NewMockMetrics())
	s := NewScheduler(conf, logger, store, manager).(*Scheduler)
	return s, store, manager
}

func seedProfile(t *testing.T, store *profile.Store, name string, settings models.BackupSettings) string {
	t.Helper()
	dir, err := store.EnsureDir(name)
	require.NoError(t, err)
	prefs := &models.Preferences{
		Profile: models.Profile{Name: name, CreatedAt: time.Now().UTC()},
		Backup:  settings,
	}
	require.NoError(t, store.SavePreferences(dir, prefs))
	return dir
}

func TestScheduler_StartDisabledIsNoop(t *testing.T) {
	s, _, _ := schedulerFixture(t, false)

	s.Start()
	assert.False(t, s.Running())
}

func TestScheduler_StartStop(t *testing.T) {
	s, _, _ := schedulerFixture(t, true)

	s.Start()
	assert.True(t, s.Running())

	// Re-entrant start is a no-op.
	s.Start()
	assert.True(t, s.Running())

	s.Stop()
	assert.False(t, s.Running())

	// Stopping again is safe.
	s.Stop()
	assert.False(t, s.Running())
}

func TestScheduler_UpdateSettingsDisables(t *testing.T) {
	s, _, _ := schedulerFixture(t, true)

	s.Start()
	require.True(t, s.Running())

	s.UpdateSettings(models.BackupSettings{AutoBackupEnabled: false, BackupIntervalMs: 60000, MaxBackupCount: 3})
	assert.False(t, s.Running())
}

func TestScheduler_UpdateSettingsRestartsWithNewInterval(t *testing.T) {
	s, _, _ := schedulerFixture(t, false)

	require.False(t, s.Running())
	s.UpdateSettings(models.BackupSettings{AutoBackupEnabled: true, BackupIntervalMs: 60000, MaxBackupCount: 3})
	assert.True(t, s.Running())
	s.Stop()
}

func TestScheduler_TickBacksUpDueProfiles(t *testing.T) {
	s, store, manager := schedulerFixture(t, true)

	enabled := seedProfile(t, store, "Alice", models.BackupSettings{
		AutoBackupEnabled: true, BackupIntervalMs: 60000, MaxBackupCount: 3,
	})
	disabled := seedProfile(t, store, "Bob", models.BackupSettings{
		AutoBackupEnabled: false, BackupIntervalMs: 60000, MaxBackupCount: 3,
	})

	s.tick()

	backups, err := manager.ListBackups(enabled)
	require.NoError(t, err)
	assert.Len(t, backups, 1, "profile with auto backup gets a snapshot")

	backups, err = manager.ListBackups(disabled)
	require.NoError(t, err)
	assert.Empty(t, backups, "profile with auto backup off is skipped")
}

func TestScheduler_TickSkipsNotYetDueProfile(t *testing.T) {
	s, store, manager := schedulerFixture(t, true)

	dir := seedProfile(t, store, "Alice", models.BackupSettings{
		AutoBackupEnabled: true, BackupIntervalMs: int64((time.Hour).Milliseconds()), MaxBackupCount: 3,
	})

	_, err := manager.CreateBackup(dir)
	require.NoError(t, err)

	s.tick()

	backups, err := manager.ListBackups(dir)
	require.NoError(t, err)
	assert.Len(t, backups, 1, "fresh backup means nothing is due")
}

func TestScheduler_TickPrunesAfterBackup(t *testing.T) {
	s, store, manager := schedulerFixture(t, true)

	dir := seedProfile(t, store, "Alice", models.BackupSettings{
		AutoBackupEnabled: true, BackupIntervalMs: 1, MaxBackupCount: 2,
	})

	for _, id := range []string{
		"backup-20240101-100000.000",
		"backup-20240102-100000.000",
		"backup-20240103-100000.000",
	} {
		fakeBackup(t, dir, id)
	}

	s.tick()

	backups, err := manager.ListBackups(dir)
	require.NoError(t, err)
	assert.Len(t, backups, 2, "retention applies right after the scheduled backup")
}

func TestScheduler_TickSkipsBusyProfile(t *testing.T) {
	s, store, manager := schedulerFixture(t, true)

	dir := seedProfile(t, store, "Alice", models.BackupSettings{
		AutoBackupEnabled: true, BackupIntervalMs: 60000, MaxBackupCount: 3,
	})

	manager.lockFor(dir).Lock()
	defer manager.lockFor(dir).Unlock()

	s.tick()

	// Lock held: no snapshot was taken, and the tick did not block.
	entries, err := manager.ListBackups(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
