package storage

import (
	"io"
	"os"
	"path/filepath"
)

// Entry describes a single directory entry on the removable device.
type Entry struct {
	Name string
	Dir  bool
	Size int64
}

// File is an open file on a storage device. Seeking is required so that
// audio headers can be probed before the stream is handed to a decoder.
type File interface {
	io.Reader
	io.Seeker
	io.Closer
}

// Handle is a mounted filesystem on the removable device.
type Handle interface {
	// ListDir lists the entries of a directory relative to the mount root.
	ListDir(path string) ([]Entry, error)
	// OpenFile opens a file relative to the mount root.
	OpenFile(path string) (File, error)
	// Unmount releases the filesystem.
	Unmount() error
}

// Driver brings the removable block device up and returns a filesystem
// handle. Implementations wrap the platform's mount primitive; tests use
// fakes.
type Driver interface {
	Mount() (Handle, error)
}

// DirDriver is a Driver backed by an OS directory, typically the mount
// point the kernel assigns to the SD card (e.g. /media/sd). An absent or
// non-directory path is reported as a missing device.
type DirDriver struct {
	Root string
}

// Mount probes the mount point and returns a handle over it.
func (d *DirDriver) Mount() (Handle, error) {
	info, err := os.Stat(d.Root)
	if err != nil {
		return nil, &Error{Kind: KindDeviceAbsent, Err: err}
	}
	if !info.IsDir() {
		return nil, &Error{Kind: KindDeviceAbsent, Err: os.ErrInvalid}
	}
	return &dirHandle{root: d.Root}, nil
}

type dirHandle struct {
	root string
}

func (h *dirHandle) ListDir(path string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(filepath.Join(h.root, path))
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		var size int64
		if info, err := de.Info(); err == nil {
			size = info.Size()
		}
		entries = append(entries, Entry{
			Name: de.Name(),
			Dir:  de.IsDir(),
			Size: size,
		})
	}
	return entries, nil
}

func (h *dirHandle) OpenFile(path string) (File, error) {
	return os.Open(filepath.Join(h.root, path))
}

func (h *dirHandle) Unmount() error {
	return nil
}
