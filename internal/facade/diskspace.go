package facade

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// checkFreeSpace guards a streaming sector export against starting on a
// volume with too little room left to buffer the records it iterates,
// mirroring the teacher's platform-directory probing idiom in
// cmd/chessplay-uci/main.go (there: searching platform-specific NNUE
// locations; here: a narrow OS-syscall shim over the filesystem the
// sector files live on).
func checkFreeSpace(dir string, minFreeBytes uint64) error {
	if minFreeBytes == 0 {
		return nil
	}
	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		return fmt.Errorf("facade: statfs %s: %w", dir, err)
	}
	free := stat.Bavail * uint64(stat.Bsize)
	if free < minFreeBytes {
		return fmt.Errorf("facade: only %d bytes free in %s, need at least %d", free, dir, minFreeBytes)
	}
	return nil
}
