package boltdb

import (
	"context"
	"crypto/subtle"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/globalconnect/internal/client/storage"
	"github.com/iudanet/globalconnect/internal/crypto"
)

var (
	metaKeySalt     = []byte("salt")
	metaKeyVerifier = []byte("verifier")
	verifierPayload = []byte("globalconnect-secure-store")
)

// GetOrCreateSalt returns the Argon2 salt for passphrase-derived keys,
// generating and persisting one on first use.
func (s *Storage) GetOrCreateSalt(ctx context.Context) ([]byte, error) {
	var salt []byte

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMeta)
		if bucket == nil {
			return fmt.Errorf("meta bucket not found")
		}

		if existing := bucket.Get(metaKeySalt); existing != nil {
			salt = append([]byte(nil), existing...)
			return nil
		}

		generated, err := crypto.GenerateRandom(crypto.SaltSize)
		if err != nil {
			return err
		}
		if err := bucket.Put(metaKeySalt, generated); err != nil {
			return fmt.Errorf("failed to save salt: %w", err)
		}
		salt = generated
		return nil
	})
	if err != nil {
		return nil, err
	}

	return salt, nil
}

// Unlock sets the encryption key for secure items.
// The first Unlock on a fresh database records a verifier; later calls
// with a different key fail with storage.ErrWrongKey.
func (s *Storage) Unlock(ctx context.Context, key []byte) error {
	sealer, err := crypto.NewSealer(key)
	if err != nil {
		return err
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMeta)
		if bucket == nil {
			return fmt.Errorf("meta bucket not found")
		}

		existing := bucket.Get(metaKeyVerifier)
		if existing == nil {
			sealed, err := sealer.Seal(verifierPayload, metaKeyVerifier)
			if err != nil {
				return err
			}
			if err := bucket.Put(metaKeyVerifier, []byte(sealed)); err != nil {
				return fmt.Errorf("failed to save verifier: %w", err)
			}
			return nil
		}

		plain, err := sealer.Open(string(existing), metaKeyVerifier)
		if err != nil || subtle.ConstantTimeCompare(plain, verifierPayload) != 1 {
			return storage.ErrWrongKey
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.sealer = sealer
	s.mu.Unlock()

	return nil
}

func (s *Storage) currentSealer() (*crypto.Sealer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.sealer == nil {
		return nil, storage.ErrLocked
	}
	return s.sealer, nil
}
