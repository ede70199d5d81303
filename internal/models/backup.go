package models

import "time"

// Backup is the metadata of one complete profile-directory snapshot.
// The snapshot itself lives under <profile>/backups/<ID>/ and is never
// mutated after creation.
type Backup struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Size      int64     `json:"size"`
	FileCount int       `json:"fileCount"`
}
