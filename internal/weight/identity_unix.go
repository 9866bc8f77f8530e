//go:build unix

package weight

import (
	"io/fs"

	"golang.org/x/sys/unix"
)

// identify stats path, following symlinks, and returns its identity and size.
func identify(path string) (FileID, int64, error) {
	var st unix.Stat_t

	if err := unix.Stat(path, &st); err != nil {
		return FileID{}, 0, &fs.PathError{Op: "stat", Path: path, Err: err}
	}

	//nolint:unconvert // Dev and Ino widths differ between platforms
	return FileID{Dev: uint64(st.Dev), Ino: uint64(st.Ino)}, st.Size, nil
}
