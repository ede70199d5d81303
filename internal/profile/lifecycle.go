package profile

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"spd/internal/models"
	"spd/internal/providers"
	"spd/internal/structures"
)

type Phase int

const (
	PhaseNoProfileSelected Phase = iota
	PhaseProfileSelected
	PhaseAppLaunched
	PhaseFallbackPending
)

// Confirmer is the injected confirmation capability. The UI layer owns the
// actual prompt; the core only asks before destructive operations.
type Confirmer interface {
	Confirm(message string) (bool, error)
}

// AppLauncher hands control to the externally owned main-window bootstrap
// with the resolved profile directory as context.
type AppLauncher func(profileName, profileDir string) error

// ExitFunc terminates the process; injected so tests can intercept it.
type ExitFunc func(code int)

// LifecycleController drives profile selection: creation, deletion, launch,
// and the fallback behavior when a switch picker is dismissed. All picker
// state lives here as private fields, one instance per process.
type LifecycleController struct {
	conf   *structures.Config
	store  *Store
	logger providers.Logger
	launch AppLauncher
	exit   ExitFunc

	mu           sync.Mutex
	phase        Phase
	current      string
	fallback     string
	sessionToken string
}

func NewLifecycleController(conf *structures.Config, store *Store, logger providers.Logger, launch AppLauncher, exit ExitFunc) *LifecycleController {
	return &LifecycleController{
		conf:   conf,
		store:  store,
		logger: logger,
		launch: launch,
		exit:   exit,
		phase:  PhaseNoProfileSelected,
	}
}

func defaultSettings(conf *structures.Config) models.BackupSettings {
	return models.BackupSettings{
		AutoBackupEnabled: conf.Backup.AutoBackupEnabled,
		BackupIntervalMs:  conf.Backup.BackupInterval.Milliseconds(),
		MaxBackupCount:    conf.Backup.MaxBackupCount,
		MaxBackupAgeMs:    conf.Backup.MaxBackupAge.Milliseconds(),
	}
}

// CreateProfile creates the directory layout and seeds preferences.
// The first profile ever created becomes the default one.
func (c *LifecycleController) CreateProfile(name, description string) (models.Profile, error) {
	exists, err := c.store.Exists(name)
	if err != nil {
		return models.Profile{}, err
	}
	if exists {
		return models.Profile{}, fmt.Errorf("%w: %q", models.ErrDuplicateName, name)
	}

	existing, err := c.store.List()
	if err != nil {
		return models.Profile{}, err
	}

	dir, err := c.store.EnsureDir(name)
	if err != nil {
		return models.Profile{}, err
	}

	prof := models.Profile{
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
		IsDefault:   len(existing) == 0,
	}
	prefs := &models.Preferences{
		Profile: prof,
		Backup:  defaultSettings(c.conf),
	}
	if err := c.store.SavePreferences(dir, prefs); err != nil {
		return models.Profile{}, err
	}

	c.logger.Infof(providers.TypeApp, "Created profile %q (default=%t)", name, prof.IsDefault)
	return prof, nil
}

// EnsureDefaultProfile creates the configured default profile on first run.
func (c *LifecycleController) EnsureDefaultProfile() error {
	profiles, err := c.store.List()
	if err != nil {
		return err
	}
	if len(profiles) > 0 {
		return nil
	}
	name := c.conf.Profiles.DefaultName
	if name == "" {
		name = "Default User"
	}
	_, err = c.CreateProfile(name, "")
	return err
}

// DeleteProfile removes a profile after explicit confirmation. The profile
// in use by the running app instance is refused. Returns false when the
// user declined.
func (c *LifecycleController) DeleteProfile(name string, confirm Confirmer) (bool, error) {
	c.mu.Lock()
	inUse := c.phase == PhaseAppLaunched && SanitizeName(c.current) == SanitizeName(name)
	c.mu.Unlock()
	if inUse {
		return false, fmt.Errorf("%w: profile %q is in use", models.ErrBusy, name)
	}

	ok, err := confirm.Confirm(fmt.Sprintf("Delete profile %q and all of its data? This cannot be undone.", name))
	if err != nil {
		return false, err
	}
	if !ok {
		c.logger.Infof(providers.TypeApp, "Delete of profile %q cancelled", name)
		return false, nil
	}

	if err := c.store.Delete(name); err != nil {
		return false, err
	}
	c.logger.Infof(providers.TypeApp, "Deleted profile %q", name)
	return true, nil
}

// SelectProfile records a picker selection without launching.
func (c *LifecycleController) SelectProfile(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = name
	c.phase = PhaseProfileSelected
}

// LaunchApp marks the profile as used, mints a session token and hands off
// to the main-window bootstrap. Returns the token identifying this launch.
func (c *LifecycleController) LaunchApp(name string) (string, error) {
	dir, err := c.store.ResolveDir(name)
	if err != nil {
		return "", err
	}
	prefs, err := c.store.LoadPreferences(dir)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	prefs.Profile.LastUsedAt = &now
	if err := c.store.SavePreferences(dir, prefs); err != nil {
		return "", err
	}

	if err := c.launch(name, dir); err != nil {
		return "", fmt.Errorf("launch with profile %q: %w", name, err)
	}

	token := uuid.NewString()
	c.mu.Lock()
	c.current = name
	c.fallback = ""
	c.phase = PhaseAppLaunched
	c.sessionToken = token
	c.mu.Unlock()

	c.logger.Infof(providers.TypeApp, "Launched with profile %q", name)
	return token, nil
}

// RequestSwitch reopens the picker while an app instance is running. The
// current profile is recorded as the fallback in case the picker is
// dismissed without a new selection.
func (c *LifecycleController) RequestSwitch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == PhaseAppLaunched {
		c.fallback = c.current
	}
	c.phase = PhaseFallbackPending
}

// OnPickerDismissed handles a picker closed without a selection. During a
// switch the previous session is restored transparently; on a true first
// run with nothing selected the application exits.
func (c *LifecycleController) OnPickerDismissed() error {
	c.mu.Lock()
	fallback := c.fallback
	c.fallback = ""
	c.mu.Unlock()

	if fallback != "" {
		c.logger.Infof(providers.TypeApp, "Picker dismissed, falling back to profile %q", fallback)
		_, err := c.LaunchApp(fallback)
		return err
	}

	c.logger.Infof(providers.TypeApp, "Picker dismissed with no profile selected, exiting")
	c.mu.Lock()
	c.phase = PhaseNoProfileSelected
	c.mu.Unlock()
	c.exit(0)
	return nil
}

func (c *LifecycleController) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

func (c *LifecycleController) CurrentProfile() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *LifecycleController) SessionToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionToken
}
