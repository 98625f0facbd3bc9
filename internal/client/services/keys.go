package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/menuroll/internal/client/models"
	"github.com/dmitrijs2005/menuroll/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/menuroll/internal/common"
	"github.com/dmitrijs2005/menuroll/internal/cryptox"
	"github.com/dmitrijs2005/menuroll/internal/dbx"
	"github.com/dmitrijs2005/menuroll/internal/filex"
)

const (
	passphraseSaltKey     = "local.salt"
	passphraseVerifierKey = "local.verifier"

	deviceKeySize = 32
)

// KeyService yields the key that protects credentials stored in the local
// database. By default the key lives in a 0600 file next to the database.
// When the user sets a local passphrase the key is derived from it with
// argon2id and only a salt and a verifier are stored.
type KeyService interface {
	// HasPassphrase reports whether a local passphrase is set.
	HasPassphrase(ctx context.Context) (bool, error)

	// Unlock returns the current key. With a passphrase set, an empty
	// passphrase gives ErrPassphraseRequired and a wrong one
	// common.ErrorUnauthorized.
	Unlock(ctx context.Context, passphrase []byte) ([]byte, error)

	// SetPassphrase re-encrypts the stored sync config under a key derived
	// from passphrase and returns that key. An empty passphrase switches
	// back to the key file.
	SetPassphrase(ctx context.Context, currentKey, passphrase []byte) ([]byte, error)
}

type keyService struct {
	db      *sql.DB
	keyFile string
}

func NewKeyService(db *sql.DB, keyFile string) KeyService {
	return &keyService{db: db, keyFile: keyFile}
}

func (k *keyService) HasPassphrase(ctx context.Context) (bool, error) {
	v, err := metadata.NewSQLiteRepository(k.db).Get(ctx, passphraseVerifierKey)
	if err != nil {
		return false, err
	}
	return v != nil, nil
}

func (k *keyService) Unlock(ctx context.Context, passphrase []byte) ([]byte, error) {
	repo := metadata.NewSQLiteRepository(k.db)

	verifier, err := repo.Get(ctx, passphraseVerifierKey)
	if err != nil {
		return nil, err
	}
	if verifier == nil {
		return LoadKeyFile(k.keyFile)
	}
	if len(passphrase) == 0 {
		return nil, ErrPassphraseRequired
	}

	salt, err := repo.Get(ctx, passphraseSaltKey)
	if err != nil {
		return nil, err
	}
	if salt == nil {
		return nil, fmt.Errorf("passphrase salt is missing: %w", common.ErrorInternal)
	}

	candidate := cryptox.DeriveMasterKey(passphrase, salt)
	if subtle.ConstantTimeCompare(verifier, cryptox.MakeVerifier(candidate)) == 0 {
		return nil, common.ErrorUnauthorized
	}
	return candidate, nil
}

func (k *keyService) SetPassphrase(ctx context.Context, currentKey, passphrase []byte) ([]byte, error) {
	cfg, err := loadSyncConfig(ctx, metadata.NewSQLiteRepository(k.db), currentKey)
	if err != nil {
		return nil, err
	}

	var (
		newKey []byte
		salt   []byte
	)
	if len(passphrase) == 0 {
		if newKey, err = LoadKeyFile(k.keyFile); err != nil {
			return nil, err
		}
	} else {
		salt = common.GenerateRandByteArray(32)
		newKey = cryptox.DeriveMasterKey(passphrase, salt)
	}

	err = dbx.WithTx(ctx, k.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if salt == nil {
			if err := repo.Delete(ctx, passphraseSaltKey); err != nil {
				return err
			}
			if err := repo.Delete(ctx, passphraseVerifierKey); err != nil {
				return err
			}
		} else {
			if err := repo.Set(ctx, passphraseSaltKey, salt); err != nil {
				return err
			}
			if err := repo.Set(ctx, passphraseVerifierKey, cryptox.MakeVerifier(newKey)); err != nil {
				return err
			}
		}
		if cfg == nil {
			return nil
		}
		return storeSyncConfig(ctx, repo, cfg, newKey)
	})
	if err != nil {
		return nil, fmt.Errorf("changing passphrase: %w", err)
	}
	return newKey, nil
}

// LoadKeyFile reads the device key at path, creating a random one with mode
// 0600 when the file does not exist.
func LoadKeyFile(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	if err == nil {
		if len(key) != deviceKeySize {
			return nil, fmt.Errorf("key file %s: want %d bytes, got %d", path, deviceKeySize, len(key))
		}
		return key, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading key file: %w", err)
	}

	if _, err := filex.EnsureDir(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	key = common.GenerateRandByteArray(deviceKeySize)
	if err := filex.WriteFileAtomic(path, key, 0o600); err != nil {
		return nil, fmt.Errorf("writing key file: %w", err)
	}
	return key, nil
}

// loadSyncConfig returns nil, nil when no config is stored.
func loadSyncConfig(ctx context.Context, repo metadata.Repository, key []byte) (*models.SyncConfig, error) {
	blob, err := repo.Get(ctx, common.SyncConfigKey)
	if err != nil {
		return nil, err
	}
	if blob == nil {
		return nil, nil
	}
	if len(blob) < 12 {
		return nil, fmt.Errorf("stored sync config: %w", cryptox.ErrDecrypt)
	}

	var cfg models.SyncConfig
	if err := cryptox.DecryptEntry(blob[12:], blob[:12], key, &cfg); err != nil {
		return nil, fmt.Errorf("stored sync config: %w", err)
	}
	cfg.Normalize()
	return &cfg, nil
}

// storeSyncConfig writes cfg as nonce | AES-GCM ciphertext.
func storeSyncConfig(ctx context.Context, repo metadata.Repository, cfg *models.SyncConfig, key []byte) error {
	ct, nonce, err := cryptox.EncryptEntry(cfg, key)
	if err != nil {
		return fmt.Errorf("encrypting sync config: %w", err)
	}
	return repo.Set(ctx, common.SyncConfigKey, append(nonce, ct...))
}
