package engine

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/danieljhkim/layermerge/internal/hash"
)

// Status returns the last recorded run.
func (e *Engine) Status(ctx context.Context, req *StatusRequest) (*StatusResult, error) {
	if e.stateStore == nil {
		return nil, ErrNoRun
	}

	m, err := e.stateStore.Load()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoRun
		}
		return nil, fmt.Errorf("failed to load run manifest: %w", err)
	}

	result := &StatusResult{Manifest: m}

	present, err := e.fs.Exists(m.Output)
	if err != nil {
		return nil, fmt.Errorf("failed to check output: %w", err)
	}
	result.OutputPresent = present

	if req.Digest && present {
		digest, err := hash.TreeDigest(e.hashFunc(), m.Output)
		if err != nil {
			return nil, fmt.Errorf("failed to compute output digest: %w", err)
		}
		result.Digest = digest
		if m.Digest != "" {
			matches := digest == m.Digest
			result.DigestMatches = &matches
		}
	}

	return result, nil
}
