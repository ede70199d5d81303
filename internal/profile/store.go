package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	json "github.com/goccy/go-json"

	"spd/internal/models"
	"spd/internal/providers"
	"spd/internal/structures"
)

const (
	PreferencesFileName = "preferences.json"
	StateFileName       = "state.json"
	BackupsDirName      = "backups"

	dirMode  = 0755
	fileMode = 0644
)

var controlChars = regexp.MustCompile(`[[:cntrl:]]`)

// SanitizeName maps a profile name to a filesystem-safe directory name.
// Returns "" when nothing safe remains.
func SanitizeName(name string) string {
	for _, c := range []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"} {
		name = strings.ReplaceAll(name, c, "_")
	}
	name = controlChars.ReplaceAllString(name, "_")
	name = strings.TrimRight(name, ". ")
	name = strings.ReplaceAll(name, " ", "_")
	// Trimming underscores can expose another trailing dot (and vice
	// versa), so trim until stable.
	for {
		trimmed := strings.Trim(strings.TrimRight(name, ". "), "_")
		if trimmed == name {
			return name
		}
		name = trimmed
	}
}

// Store owns the on-disk profile layout under the configured root:
// one directory per profile with preferences.json, state.json, the
// catalog database and a backups subdirectory.
type Store struct {
	rootDir string
	logger  providers.Logger
}

func NewStore(conf *structures.Config, logger providers.Logger) *Store {
	return &Store{
		rootDir: conf.Profiles.RootDir,
		logger:  logger,
	}
}

func (s *Store) RootDir() string {
	return s.rootDir
}

// ResolveDir returns the absolute directory for a profile name. The mapping
// is deterministic: the same name always resolves to the same path.
func (s *Store) ResolveDir(name string) (string, error) {
	sanitized := SanitizeName(name)
	if sanitized == "" {
		return "", fmt.Errorf("%w: %q", models.ErrInvalidName, name)
	}
	return filepath.Join(s.rootDir, sanitized), nil
}

// EnsureDir creates the profile directory and its backups subdirectory.
// Idempotent.
func (s *Store) EnsureDir(name string) (string, error) {
	dir, err := s.ResolveDir(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Join(dir, BackupsDirName), dirMode); err != nil {
		return "", fmt.Errorf("%w: create profile directory: %s", models.ErrIO, err)
	}
	return dir, nil
}

// Exists reports whether a profile directory with a preferences file exists.
func (s *Store) Exists(name string) (bool, error) {
	dir, err := s.ResolveDir(name)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(filepath.Join(dir, PreferencesFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %s", models.ErrIO, err)
	}
	return true, nil
}

// List enumerates profiles under the root, most recently used first.
// Subdirectories without a readable preferences file are foreign or corrupt
// and are skipped, not fatal.
func (s *Store) List() ([]models.Profile, error) {
	entries, err := os.ReadDir(s.rootDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.Profile{}, nil
		}
		return nil, fmt.Errorf("%w: read profiles root: %s", models.ErrIO, err)
	}

	profiles := make([]models.Profile, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(s.rootDir, entry.Name())
		prefs, err := s.LoadPreferences(dir)
		if err != nil {
			s.logger.Warnf(providers.TypeApp, "Skipping %s: %s", entry.Name(), err)
			continue
		}
		profiles = append(profiles, prefs.Profile)
	}

	sort.SliceStable(profiles, func(i, j int) bool {
		a, b := profiles[i].LastUsedAt, profiles[j].LastUsedAt
		switch {
		case a == nil && b == nil:
			return profiles[i].CreatedAt.After(profiles[j].CreatedAt)
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})

	return profiles, nil
}

// Delete recursively removes a profile directory. Destructive and
// irreversible; callers confirm with the user first.
func (s *Store) Delete(name string) error {
	dir, err := s.ResolveDir(name)
	if err != nil {
		return err
	}
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: profile %q", models.ErrNotFound, name)
		}
		return fmt.Errorf("%w: %s", models.ErrIO, err)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("%w: delete profile directory: %s", models.ErrIO, err)
	}
	return nil
}

func (s *Store) LoadPreferences(dir string) (*models.Preferences, error) {
	data, err := os.ReadFile(filepath.Join(dir, PreferencesFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", models.ErrNotFound, PreferencesFileName)
		}
		return nil, fmt.Errorf("%w: read preferences: %s", models.ErrIO, err)
	}
	var prefs models.Preferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return nil, fmt.Errorf("%w: parse preferences: %s", models.ErrValidation, err)
	}
	return &prefs, nil
}

func (s *Store) SavePreferences(dir string, prefs *models.Preferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("%w: encode preferences: %s", models.ErrValidation, err)
	}
	if err := writeFileAtomic(filepath.Join(dir, PreferencesFileName), data); err != nil {
		return fmt.Errorf("%w: write preferences: %s", models.ErrIO, err)
	}
	return nil
}

// writeFileAtomic writes via a sibling tmp file, fsyncs and renames so a
// crash or a concurrent backup never observes a half-written document.
func writeFileAtomic(path string, data []byte) error {
	tmpFile := path + ".tmp"
	file, err := os.OpenFile(tmpFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fileMode)
	if err != nil {
		return err
	}

	if _, err = file.Write(data); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, path)
}
