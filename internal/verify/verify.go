// Package verify compares deployed artifacts against their local
// sources using SHA-256 checksums.
package verify

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Result holds the outcome of one artifact comparison.
type Result struct {
	// Name identifies the artifact.
	Name string
	// SourceSum is the hex-encoded SHA-256 checksum of the local source.
	SourceSum string
	// InstalledSum is the hex-encoded SHA-256 checksum of the installed copy.
	InstalledSum string
	// Match is true when the two checksums agree.
	Match bool
}

// HashFile computes the SHA-256 checksum of the file at path using
// streaming I/O.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("verify: open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("verify: hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// CompareFiles hashes the local source and the installed copy of an
// artifact and reports whether they are identical.
func CompareFiles(name, source, installed string) (Result, error) {
	sourceSum, err := HashFile(source)
	if err != nil {
		return Result{}, err
	}
	installedSum, err := HashFile(installed)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Name:         name,
		SourceSum:    sourceSum,
		InstalledSum: installedSum,
		Match:        sourceSum == installedSum,
	}, nil
}
