//go:build !unix

package hostinfo

import "github.com/shirou/gopsutil/v3/host"

func query() (Identity, error) {
	info, err := host.Info()
	if err != nil {
		return Identity{}, &QueryError{Op: "host info", Err: err}
	}
	return Identity{
		OSName:  info.OS,
		Machine: info.KernelArch,
	}, nil
}
