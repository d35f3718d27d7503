package boltdb

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/globalconnect/internal/client/storage"
)

// SetItem seals value and stores it under key
func (s *Storage) SetItem(ctx context.Context, key, value string) error {
	sealer, err := s.currentSealer()
	if err != nil {
		return err
	}

	// Имя ключа идет в additional data: запись нельзя переставить под другой ключ
	sealed, err := sealer.Seal([]byte(value), []byte(key))
	if err != nil {
		return fmt.Errorf("failed to seal %s: %w", key, err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSecure)
		if bucket == nil {
			return fmt.Errorf("secure bucket not found")
		}

		if err := bucket.Put([]byte(key), []byte(sealed)); err != nil {
			return fmt.Errorf("failed to save %s: %w", key, err)
		}
		return nil
	})
}

// GetItem returns the decrypted value stored under key
func (s *Storage) GetItem(ctx context.Context, key string) (string, error) {
	sealer, err := s.currentSealer()
	if err != nil {
		return "", err
	}

	var sealed string
	err = s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSecure)
		if bucket == nil {
			return fmt.Errorf("secure bucket not found")
		}

		data := bucket.Get([]byte(key))
		if data == nil {
			return storage.ErrNotFound
		}
		sealed = string(data)
		return nil
	})
	if err != nil {
		return "", err
	}

	plain, err := sealer.Open(sealed, []byte(key))
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", key, err)
	}

	return string(plain), nil
}

// DeleteItem removes the value under key
func (s *Storage) DeleteItem(ctx context.Context, key string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSecure)
		if bucket == nil {
			return fmt.Errorf("secure bucket not found")
		}

		// Delete отсутствующего ключа в bbolt не ошибка
		if err := bucket.Delete([]byte(key)); err != nil {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
		return nil
	})
}
