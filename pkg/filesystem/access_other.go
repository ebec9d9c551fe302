//go:build !unix

package filesystem

import "os"

func access(name string, mode uint32) bool {
	info, err := os.Stat(name)
	if err != nil {
		return false
	}
	return modeAllows(info.Mode(), mode)
}

func isCrossDevice(error) bool {
	return false
}
