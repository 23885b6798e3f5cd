//go:build !(linux || darwin)

package catalog

import "errors"

var errUnsupported = errors.New("free space lookup not supported on this platform")

func statfs(path string) (available, total uint64, err error) {
	return 0, 0, errUnsupported
}

func writable(path string) bool {
	return true
}
