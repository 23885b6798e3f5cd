//go:build linux || darwin

package catalog

import "golang.org/x/sys/unix"

func statfs(path string) (available, total uint64, err error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, 0, err
	}
	bsize := uint64(st.Bsize)
	return uint64(st.Bavail) * bsize, uint64(st.Blocks) * bsize, nil
}

// writable reports whether the current user may create files in path.
func writable(path string) bool {
	return unix.Access(path, unix.W_OK) == nil
}
