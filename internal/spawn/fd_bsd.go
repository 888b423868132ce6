//go:build darwin || dragonfly || freebsd || netbsd || openbsd

package spawn

import "golang.org/x/sys/unix"

func dup2(oldfd, newfd int) error {
	return unix.Dup2(oldfd, newfd)
}
