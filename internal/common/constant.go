// Package common contains shared constants and sentinel errors used across
// menuroll components.
package common

const (
	// BackupFileName is the name of the backup document inside the remote path.
	BackupFileName = "menuroll_backup.json"

	// DefaultRemotePath is used when the sync config leaves RemotePath empty.
	DefaultRemotePath = "/menuroll"

	// DeviceIDKey is the metadata key holding this installation's device id.
	DeviceIDKey = "device.id"

	// SyncConfigKey is the metadata key holding the encrypted sync config.
	SyncConfigKey = "sync.config"

	// PreferencePrefix marks metadata keys that travel inside backups.
	PreferencePrefix = "pref."
)
