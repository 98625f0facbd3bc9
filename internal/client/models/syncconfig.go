package models

import (
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/dmitrijs2005/menuroll/internal/common"
)

const (
	// MinAutoSyncInterval is the shortest period the daemon accepts.
	MinAutoSyncInterval = 15 * time.Minute
	// DefaultAutoSyncInterval applies when none is configured.
	DefaultAutoSyncInterval = 12 * time.Hour
)

type SyncStatus string

const (
	SyncStatusNever   SyncStatus = ""
	SyncStatusSuccess SyncStatus = "success"
	SyncStatusFailed  SyncStatus = "failed"
)

// SyncConfig holds remote credentials and the outcome of the last sync.
// It is stored encrypted and never exported.
type SyncConfig struct {
	ServerURL  string `json:"serverUrl"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	RemotePath string `json:"remotePath"`

	// EncryptionPassword seals uploaded backups. Empty means plaintext.
	EncryptionPassword string `json:"encryptionPassword"`

	LastSyncAt      time.Time  `json:"lastSyncAt"`
	LastSyncStatus  SyncStatus `json:"lastSyncStatus"`
	LastSyncMessage string     `json:"lastSyncMessage"`

	// LastUploadHash is the SHA-256 of the last uploaded plaintext document.
	// It is informational only.
	LastUploadHash string `json:"lastUploadHash"`

	AutoSync         bool          `json:"autoSync"`
	AutoSyncInterval time.Duration `json:"autoSyncInterval"`
}

// Configured reports whether a remote is set.
func (c *SyncConfig) Configured() bool {
	return c != nil && strings.TrimSpace(c.ServerURL) != ""
}

// Encrypted reports whether uploads are sealed with a password.
func (c *SyncConfig) Encrypted() bool {
	return c.EncryptionPassword != ""
}

// Normalize fills the remote path and clamps the auto-sync interval.
func (c *SyncConfig) Normalize() {
	c.ServerURL = strings.TrimSpace(c.ServerURL)
	c.RemotePath = strings.TrimSpace(c.RemotePath)
	if c.RemotePath == "" {
		c.RemotePath = common.DefaultRemotePath
	}
	if !strings.HasPrefix(c.RemotePath, "/") {
		c.RemotePath = "/" + c.RemotePath
	}
	c.RemotePath = path.Clean(c.RemotePath)

	if c.AutoSyncInterval == 0 {
		c.AutoSyncInterval = DefaultAutoSyncInterval
	}
	if c.AutoSyncInterval < MinAutoSyncInterval {
		c.AutoSyncInterval = MinAutoSyncInterval
	}
}

// BackupPath is the remote location of the backup document.
func (c *SyncConfig) BackupPath() string {
	return path.Join(c.RemotePath, common.BackupFileName)
}

// Redacted returns a copy with secrets masked, for display.
func (c SyncConfig) Redacted() SyncConfig {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "********"
	}
	c.Password = mask(c.Password)
	c.EncryptionPassword = mask(c.EncryptionPassword)
	// DSNs may carry a password of their own.
	if u, err := url.Parse(c.ServerURL); err == nil && u.User != nil {
		c.ServerURL = u.Redacted()
	}
	return c
}
