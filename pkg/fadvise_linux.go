//go:build linux

package dupfilehash

import (
	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

// adviseAccess tells the kernel how a file is about to be read. Only files
// backed by a descriptor get the hint.
func adviseAccess(file afero.File, sequential bool) {
	fd, ok := file.(interface{ Fd() uintptr })
	if !ok {
		return
	}
	advice := unix.FADV_RANDOM
	if sequential {
		advice = unix.FADV_SEQUENTIAL
	}
	if err := unix.Fadvise(int(fd.Fd()), 0, 0, advice); err != nil && IsDebugEnabled(DebugHash) {
		VerboseLog(3, "fadvise %s: %v", file.Name(), err)
	}
}
