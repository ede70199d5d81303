package internal

import (
	"os"

	"spd/internal/profile"
	"spd/internal/providers"
	"spd/internal/structures"
)

// NewAppLauncher returns the hand-off hook invoked when a profile launches.
// The main window lives in the desktop shell, not in this daemon, so the
// hook only records the transition; the shell polls the session token to
// pick up the active profile.
func NewAppLauncher(conf *structures.Config, logger providers.Logger) profile.AppLauncher {
	return func(profileName, profileDir string) error {
		logger.Infof(providers.TypeApp, "Main window hand-off: profile %q, dir %s", profileName, profileDir)
		return nil
	}
}

func NewExitFunc() profile.ExitFunc {
	return os.Exit
}
