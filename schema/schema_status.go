package schema

import "time"

// StoreStatus summarizes one backing store for the status command.
type StoreStatus struct {
	Name      string       `json:"name"` // checkpoints or runs
	Backend   StoreBackend `json:"backend"`
	Rows      int64        `json:"rows"`
	Oldest    time.Time    `json:"oldest"`
	Newest    time.Time    `json:"newest"`
	SizeBytes int64        `json:"size_bytes"`
	SizeKnown bool         `json:"size_known"` // size reporting is backend-specific
}

// ArtifactStatus summarizes one pipeline file on disk.
type ArtifactStatus struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Exists   bool      `json:"exists"`
	Rows     int64     `json:"rows"` // -1 when the row count is unknown
	Modified time.Time `json:"modified"`
}
