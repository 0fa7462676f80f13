/*

This file contains the model artifact store: a blob plus a "<path>.sha256" file holding the
hex SHA-256 of the blob. Loading refuses unverified blobs unless explicitly allowed.

*/

package estimator

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/types"
)

const checksumSuffix = ".sha256"

func ChecksumPath(path string) string {
	return path + checksumSuffix
}

func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// SaveArtifact writes blob to path and its checksum next to it.
func SaveArtifact(path string, blob []byte) (string, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create artifact dir: %w", err)
		}
	}
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	sum := Checksum(blob)
	if err := os.WriteFile(ChecksumPath(path), []byte(sum+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("write checksum: %w", err)
	}
	return sum, nil
}

// Seal writes the checksum file for an existing blob.
func Seal(path string) (string, error) {
	blob, err := readBlob(path)
	if err != nil {
		return "", err
	}
	sum := Checksum(blob)
	if err := os.WriteFile(ChecksumPath(path), []byte(sum+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("write checksum: %w", err)
	}
	return sum, nil
}

// LoadArtifact reads and verifies the blob at path. A missing blob wraps types.ErrNotFound.
// A missing or mismatching checksum is a *types.IntegrityError unless allowUnverified, in
// which case a warning is logged and the blob returned.
func LoadArtifact(path string, allowUnverified bool, logger zerolog.Logger) ([]byte, error) {
	blob, err := readBlob(path)
	if err != nil {
		return nil, err
	}

	integrityErr := Verify(path, blob)
	if integrityErr == nil {
		return blob, nil
	}
	if !allowUnverified {
		return nil, integrityErr
	}

	logger.Warn().Err(integrityErr).Str("path", path).Msg("Loading unverified model artifact")
	return blob, nil
}

// Verify compares blob against the checksum stored for path.
func Verify(path string, blob []byte) error {
	raw, err := os.ReadFile(ChecksumPath(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &types.IntegrityError{Path: path, Reason: "checksum file missing"}
		}
		return &types.IntegrityError{Path: path, Reason: err.Error()}
	}

	fields := strings.Fields(string(raw))
	if len(fields) == 0 {
		return &types.IntegrityError{Path: path, Reason: "checksum file empty"}
	}
	expected := strings.ToLower(fields[0])
	actual := Checksum(blob)
	if expected != actual {
		return &types.IntegrityError{Path: path, Expected: expected, Actual: actual}
	}
	return nil
}

// LoadModel loads, verifies and decodes a model artifact.
func LoadModel(path string, allowUnverified bool, logger zerolog.Logger) (*Model, error) {
	blob, err := LoadArtifact(path, allowUnverified, logger)
	if err != nil {
		return nil, err
	}
	return DecodeModel(blob)
}

// SaveModel encodes and writes a model artifact with its checksum.
func SaveModel(path string, m *Model) (string, error) {
	blob, err := EncodeModel(m)
	if err != nil {
		return "", err
	}
	return SaveArtifact(path, blob)
}

func readBlob(path string) ([]byte, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("model artifact %s: %w", path, types.ErrNotFound)
		}
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	return blob, nil
}
