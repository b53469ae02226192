package dupfilehash

import (
	"fmt"

	"github.com/spf13/afero"
)

// Delete removes one file from the OS filesystem. It is a convenience for
// callers acting on a report; the engine never deletes anything itself.
func Delete(path string) error {
	return DeleteFs(afero.NewOsFs(), path)
}

// DeleteFs removes a file or symlink from fs. Directories are refused.
func DeleteFs(fs afero.Fs, path string) error {
	info, err := lstatIfPossible(fs, path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("refusing to delete directory %s", path)
	}
	if err := fs.Remove(path); err != nil {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	VerboseLog(1, "Deleted %s", path)
	return nil
}
