package backup

import (
	"errors"
	"sync"
	"time"

	"github.com/roylee0704/gron"
	"go.uber.org/atomic"

	"spd/internal/models"
	"spd/internal/profile"
	"spd/internal/providers"
	"spd/internal/structures"
)

type SchedulerInterface interface {
	Start()
	Stop()
	UpdateSettings(settings models.BackupSettings)
	Running() bool
}

// Scheduler drives the automatic backup loop. One timer at the global
// cadence; each tick walks every profile and honors its own settings.
// Overlap with a manual backup is prevented by the Manager's busy lock,
// and a failed tick never stops the loop.
type Scheduler struct {
	conf    *structures.Config
	logger  providers.Logger
	store   *profile.Store
	manager *Manager

	mu       sync.Mutex
	cron     *gron.Cron
	running  atomic.Bool
	settings models.BackupSettings
}

func NewScheduler(conf *structures.Config, logger providers.Logger, store *profile.Store, manager *Manager) SchedulerInterface {
	return &Scheduler{
		conf:    conf,
		logger:  logger,
		store:   store,
		manager: manager,
		settings: models.BackupSettings{
			AutoBackupEnabled: conf.Backup.AutoBackupEnabled,
			BackupIntervalMs:  conf.Backup.BackupInterval.Milliseconds(),
			MaxBackupCount:    conf.Backup.MaxBackupCount,
			MaxBackupAgeMs:    conf.Backup.MaxBackupAge.Milliseconds(),
		},
	}
}

// Start begins the repeating timer. Starting a running scheduler is a
// no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.Load() {
		return
	}
	if !s.settings.AutoBackupEnabled {
		s.logger.Infof(providers.TypeApp, "Automatic backups disabled")
		return
	}

	s.cron = gron.New()
	s.cron.AddFunc(gron.Every(s.settings.Interval()), s.tick)
	s.cron.Start()
	s.running.Store(true)
	s.logger.Infof(providers.TypeApp, "Backup scheduler started, interval %s", s.settings.Interval())
}

// Stop cancels the timer. Safe to call when already stopped.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running.Load() {
		return
	}
	s.cron.Stop()
	s.running.Store(false)
	s.logger.Infof(providers.TypeApp, "Backup scheduler stopped")
}

// UpdateSettings reconfigures the loop. Disabling stops the timer;
// otherwise the new interval takes effect on the next tick.
func (s *Scheduler) UpdateSettings(settings models.BackupSettings) {
	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()

	s.Stop()
	if settings.AutoBackupEnabled {
		s.Start()
	}
}

func (s *Scheduler) Running() bool {
	return s.running.Load()
}

// tick backs up and prunes every profile that is due. Errors are logged
// and swallowed so one bad profile cannot stall the rest, and a busy
// profile is simply skipped until the next tick.
func (s *Scheduler) tick() {
	profiles, err := s.store.List()
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Backup tick: list profiles: %s", err)
		return
	}

	for _, p := range profiles {
		dir, err := s.store.ResolveDir(p.Name)
		if err != nil {
			s.logger.Errorf(providers.TypeApp, "Backup tick: resolve %q: %s", p.Name, err)
			continue
		}

		settings := s.settingsFor(dir)
		if !settings.AutoBackupEnabled {
			continue
		}
		if !s.due(dir, settings) {
			continue
		}

		if _, err := s.manager.CreateBackup(dir); err != nil {
			if errors.Is(err, models.ErrBusy) {
				s.logger.Infof(providers.TypeApp, "Backup tick: profile %q busy, skipping", p.Name)
			} else {
				s.logger.Errorf(providers.TypeApp, "Backup tick: profile %q: %s", p.Name, err)
			}
			continue
		}
		if _, err := s.manager.PruneBackups(dir, settings); err != nil {
			s.logger.Errorf(providers.TypeApp, "Prune after backup of %q: %s", p.Name, err)
		}
	}
}

// settingsFor reads the profile's own backup settings, falling back to the
// global defaults when preferences cannot be read.
func (s *Scheduler) settingsFor(dir string) models.BackupSettings {
	prefs, err := s.store.LoadPreferences(dir)
	if err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.settings
	}
	return prefs.Backup
}

// due reports whether enough time has passed since the newest backup.
func (s *Scheduler) due(dir string, settings models.BackupSettings) bool {
	backups, err := s.manager.ListBackups(dir)
	if err != nil || len(backups) == 0 {
		return true
	}
	return time.Since(backups[0].Timestamp) >= settings.Interval()
}
