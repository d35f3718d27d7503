package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/crypto/argon2"
)

// Параметры Argon2id для ключа из passphrase
const (
	// Argon2Time - количество итераций (time cost)
	Argon2Time = 1
	// Argon2Memory - объем памяти в KB (64MB = 64*1024 KB)
	Argon2Memory = 64 * 1024
	// Argon2Threads - количество параллельных потоков
	Argon2Threads = 4
	// SaltSize - размер соли в байтах
	SaltSize = 16
)

// GenerateRandom возвращает n криптографически случайных байт
func GenerateRandom(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}

// DeriveKey получает ключ хранилища из passphrase пользователя
func DeriveKey(passphrase string, salt []byte) ([]byte, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("passphrase cannot be empty")
	}
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("salt must be %d bytes, got %d", SaltSize, len(salt))
	}

	return argon2.IDKey([]byte(passphrase), salt, Argon2Time, Argon2Memory, Argon2Threads, KeySize), nil
}

// LoadOrCreateKeyFile читает ключ устройства из файла.
// Если файла нет, генерирует случайный ключ и сохраняет его с правами 0600.
// Ключ сначала пишется во временный файл и появляется по пути path только целиком.
func LoadOrCreateKeyFile(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	switch {
	case err == nil && len(key) == 0:
		// Пустым ключом ничего не могло быть зашифровано
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to remove empty key file: %w", err)
		}
	case err == nil:
		if len(key) != KeySize {
			return nil, fmt.Errorf("key file %s is corrupted: expected %d bytes, got %d", path, KeySize, len(key))
		}
		return key, nil
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}

	key, err = GenerateRandom(KeySize)
	if err != nil {
		return nil, err
	}

	tmpPath, err := writeTempKey(filepath.Dir(path), key)
	if err != nil {
		return nil, err
	}
	defer func() { _ = os.Remove(tmpPath) }()

	// Link, в отличие от Rename, не перезаписывает ключ, созданный параллельным процессом
	if err := os.Link(tmpPath, path); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return LoadOrCreateKeyFile(path)
		}
		return nil, fmt.Errorf("failed to install key file: %w", err)
	}

	return key, nil
}

// writeTempKey пишет ключ во временный файл в dir (CreateTemp создает его с правами 0600)
func writeTempKey(dir string, key []byte) (string, error) {
	f, err := os.CreateTemp(dir, ".key-*")
	if err != nil {
		return "", fmt.Errorf("failed to create key file: %w", err)
	}
	tmpPath := f.Name()

	_, err = f.Write(key)
	if err == nil {
		err = f.Sync()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write key file: %w", err)
	}

	return tmpPath, nil
}
