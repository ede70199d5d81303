package models

import "time"

// Profile describes one isolated set of user data. The metadata lives in
// the profile directory's preferences.json; the directory name is the
// sanitized form of Name.
type Profile struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastUsedAt  *time.Time `json:"lastUsedAt,omitempty"`
	IsDefault   bool       `json:"isDefault"`
}

// Preferences is the on-disk preferences.json document: profile metadata
// plus the per-profile backup settings.
type Preferences struct {
	Profile Profile        `json:"profile"`
	Backup  BackupSettings `json:"backup"`
}

// BackupSettings controls the automatic backup loop for one profile.
// Intervals are milliseconds on the wire, matching the settings document
// the UI layer edits.
type BackupSettings struct {
	AutoBackupEnabled bool  `json:"autoBackupEnabled"`
	BackupIntervalMs  int64 `json:"backupInterval"`
	MaxBackupCount    int   `json:"maxBackupCount"`
	MaxBackupAgeMs    int64 `json:"maxBackupAge"`
}

func (s BackupSettings) Interval() time.Duration {
	return time.Duration(s.BackupIntervalMs) * time.Millisecond
}

func (s BackupSettings) MaxAge() time.Duration {
	return time.Duration(s.MaxBackupAgeMs) * time.Millisecond
}
