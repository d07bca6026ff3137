package cli

import (
	"fmt"
	"os"
	"path/filepath"
)

// checkOutputPath fails with ErrOutputExists when path is already taken.
func checkOutputPath(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s (choose a different output path)", ErrOutputExists, path)
	}
	return nil
}

// writeFileAtomic writes content to path through a temp file in the same
// directory followed by a rename, so a crash mid-write never leaves a
// truncated transcript behind. Fails with ErrOutputExists when path is
// already taken.
func writeFileAtomic(path, content string) error {
	if err := checkOutputPath(path); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("cannot create output file in %s: %w", dir, err)
	}

	writeErr := func() error {
		defer func() { _ = tmp.Close() }()
		if _, err := tmp.WriteString(content); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}()
	if writeErr != nil {
		_ = os.Remove(tmp.Name())
		return writeErr
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to finalize output: %w", err)
	}

	return nil
}
