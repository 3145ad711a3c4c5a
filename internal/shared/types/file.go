package types

import "time"

// StoredFile is a file held by the virtual file store
type StoredFile struct {
	Path      string    `json:"path"`
	Content   string    `json:"content"`
	Size      int       `json:"size"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StorageUsage aggregates what the file store holds
type StorageUsage struct {
	Files      int   `json:"files"`
	UsedBytes  int64 `json:"used_bytes"`
	QuotaBytes int64 `json:"quota_bytes"`
}

// Available returns the remaining quota, never negative
func (u StorageUsage) Available() int64 {
	if u.QuotaBytes <= u.UsedBytes {
		return 0
	}
	return u.QuotaBytes - u.UsedBytes
}
