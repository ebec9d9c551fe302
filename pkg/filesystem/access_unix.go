//go:build unix

package filesystem

import (
	"errors"

	"golang.org/x/sys/unix"
)

func access(name string, mode uint32) bool {
	return unix.Access(name, mode) == nil
}

func isCrossDevice(err error) bool {
	return errors.Is(err, unix.EXDEV)
}
