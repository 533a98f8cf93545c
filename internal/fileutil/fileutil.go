package fileutil

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Digest describes bytes written to disk.
type Digest struct {
	Size   int64
	SHA256 string
}

// SHA256Hex returns the lowercase hex SHA256 of data.
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// WriteFileAtomic writes data to a temp file beside dst, verifies the size
// and hash of what landed on disk, then renames it over dst. dst is never
// left partially written.
func WriteFileAtomic(dst string, data []byte, mode os.FileMode) (Digest, error) {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Digest{}, fmt.Errorf("create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return Digest{}, err
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	hasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(tmp, hasher), bytes.NewReader(data))
	if err != nil {
		return Digest{}, err
	}
	if err := tmp.Sync(); err != nil {
		return Digest{}, err
	}
	if err := tmp.Close(); err != nil {
		return Digest{}, err
	}
	if written != int64(len(data)) {
		return Digest{}, fmt.Errorf("write size mismatch: expected %d bytes, wrote %d bytes", len(data), written)
	}

	onDisk, err := os.ReadFile(tmpPath)
	if err != nil {
		return Digest{}, fmt.Errorf("verify written file: %w", err)
	}
	digest := hex.EncodeToString(hasher.Sum(nil))
	if SHA256Hex(onDisk) != digest {
		return Digest{}, fmt.Errorf("write hash mismatch: file corrupted on disk")
	}

	if err := os.Chmod(tmpPath, mode); err != nil {
		return Digest{}, err
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return Digest{}, err
	}
	return Digest{Size: written, SHA256: digest}, nil
}
