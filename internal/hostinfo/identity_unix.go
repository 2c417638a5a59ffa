//go:build unix

package hostinfo

import "golang.org/x/sys/unix"

func query() (Identity, error) {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return Identity{}, &QueryError{Op: "uname", Err: err}
	}
	return Identity{
		OSName:  unix.ByteSliceToString(u.Sysname[:]),
		Machine: unix.ByteSliceToString(u.Machine[:]),
	}, nil
}
