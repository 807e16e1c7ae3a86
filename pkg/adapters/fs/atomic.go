package fs

import (
	"fmt"
	"os"
	"path/filepath"
)

// tempPrefix marks the scratch files writeFileAtomic leaves behind if
// it dies between create and rename. The watcher ignores them.
const tempPrefix = "librum-tmp-"

// writeFileAtomic publishes data under filename via a same-directory
// temp file and a rename, so readers never observe a partial write.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(filename), tempPrefix+"*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return fmt.Errorf("rename temp file to %s: %w", filename, err)
	}
	return nil
}

// moveReplacing renames source onto target, replacing target if it
// exists. os.Rename replaces atomically on POSIX; on platforms where
// the rename refuses to clobber, fall back to remove-then-rename.
func moveReplacing(source, target string) error {
	if err := os.Rename(source, target); err == nil {
		return nil
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("replace %s: %w", target, err)
	}
	if err := os.Rename(source, target); err != nil {
		return fmt.Errorf("rename %s to %s: %w", source, target, err)
	}
	return nil
}
