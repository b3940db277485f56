package publish

import (
	"errors"

	"github.com/danieljhkim/layermerge/internal/fsops"
)

// ErrUnsupported is returned by a strategy that cannot run on this platform.
var ErrUnsupported = errors.New("publishing strategy not supported on this platform")

// Strategy exposes a finished merged tree at a destination that does not exist yet.
type Strategy interface {
	// Name identifies the strategy in logs and run manifests.
	Name() string

	// Publish materializes src at dst. The parent of dst exists.
	Publish(src, dst string) error
}

// Strategy names.
const (
	NameCopy     = "copy"
	NameSymlink  = "symlink"
	NameJunction = "junction"
)

// Select picks the strategy for a platform: a copy when configured, a
// directory junction on windows and a symbolic link everywhere else.
func Select(goos string, useCopy bool, fs fsops.FS) Strategy {
	switch {
	case useCopy:
		return &CopyStrategy{fs: fs}
	case goos == "windows":
		return &JunctionStrategy{}
	default:
		return &SymlinkStrategy{fs: fs}
	}
}

// CopyStrategy writes a full, independent copy of the merged tree.
type CopyStrategy struct {
	fs fsops.FS
}

// NewCopyStrategy creates a CopyStrategy.
func NewCopyStrategy(fs fsops.FS) *CopyStrategy {
	return &CopyStrategy{fs: fs}
}

func (s *CopyStrategy) Name() string { return NameCopy }

func (s *CopyStrategy) Publish(src, dst string) error {
	if err := s.fs.Copy(src, dst); err != nil {
		return fsops.LinkError("copy output folder", src, dst, err)
	}
	return nil
}

// SymlinkStrategy points dst at the merged tree with a symbolic link.
type SymlinkStrategy struct {
	fs fsops.FS
}

// NewSymlinkStrategy creates a SymlinkStrategy.
func NewSymlinkStrategy(fs fsops.FS) *SymlinkStrategy {
	return &SymlinkStrategy{fs: fs}
}

func (s *SymlinkStrategy) Name() string { return NameSymlink }

func (s *SymlinkStrategy) Publish(src, dst string) error {
	if err := s.fs.Symlink(src, dst); err != nil {
		return fsops.LinkError("symlink output folder", src, dst, err)
	}
	return nil
}

// JunctionStrategy points dst at the merged tree with an NTFS directory junction.
type JunctionStrategy struct{}

func (s *JunctionStrategy) Name() string { return NameJunction }

func (s *JunctionStrategy) Publish(src, dst string) error {
	if err := createJunction(src, dst); err != nil {
		return fsops.LinkError("create output directory junction", src, dst, err)
	}
	return nil
}
