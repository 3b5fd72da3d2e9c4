package selection

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

var ErrChanged = errors.New("file changed since it was selected")

func calculateSHA256(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := file.Close(); err != nil {
			slog.Error("fail to close file", "path", path, "error", err)
		}
	}()
	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// Verify recomputes the checksum of the item's file and compares it with the
// stored one.
func (it Item) Verify() (bool, error) {
	sum, err := calculateSHA256(it.Path)
	if err != nil {
		return false, err
	}
	return sum == it.Checksum, nil
}

// VerifyAll checks every item that carries a checksum and fails on the first
// one whose file changed or can no longer be read.
func VerifyAll(items []Item) error {
	for _, it := range items {
		if it.Checksum == "" {
			continue
		}
		ok, err := it.Verify()
		if err != nil {
			return fmt.Errorf("verify %s: %w", it.Name, err)
		}
		if !ok {
			return fmt.Errorf("%s: %w", it.Name, ErrChanged)
		}
	}
	return nil
}
