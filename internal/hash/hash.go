// Package hash provides file and tree hashing for output verification.
//
// A tree digest covers every file's relative path and SHA-256 content hash,
// so two publishes of the same layer set produce the same digest whether the
// output is a link to the merged tree or a copy of it.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
)

// Hasher provides an abstraction for file hashing operations.
type Hasher interface {
	// HashFile computes the hash of the file at the given path.
	HashFile(path string) (string, error)
}

// SHA256Hasher implements Hasher using SHA-256.
type SHA256Hasher struct{}

// NewSHA256Hasher creates a new SHA256Hasher.
func NewSHA256Hasher() *SHA256Hasher {
	return &SHA256Hasher{}
}

// HashFile computes the SHA-256 hash of the file at the given path.
func (h *SHA256Hasher) HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// TreeDigest hashes every regular file below root in path order. root may
// itself be a symlink or junction to the tree.
func TreeDigest(h Hasher, root string) (string, error) {
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", root, err)
	}

	var files []string
	err = filepath.WalkDir(resolved, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(resolved, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to walk %s: %w", root, err)
	}
	slices.Sort(files)

	digest := sha256.New()
	for _, rel := range files {
		sum, err := h.HashFile(filepath.Join(resolved, rel))
		if err != nil {
			return "", fmt.Errorf("failed to hash %s: %w", rel, err)
		}
		fmt.Fprintf(digest, "%s\x00%s\n", filepath.ToSlash(rel), sum)
	}

	return hex.EncodeToString(digest.Sum(nil)), nil
}
