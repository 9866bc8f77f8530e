//go:build !unix

package weight

import (
	"os"
	"path/filepath"
)

// identify stats path, following symlinks, and returns its identity and size.
// Without inode numbers hard links are counted once per name.
func identify(path string) (FileID, int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileID{}, 0, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return FileID{}, 0, err
	}

	return FileID{Path: filepath.Clean(abs)}, info.Size(), nil
}
