//go:build noos

package machine

import (
	"embedded/rtos"
	"io"
	"os"
	"syscall"

	"github.com/embeddedgo/fs/termfs"
)

// MountConsole makes w available as /dev/console and redirects stdout and
// stderr to it.
func MountConsole(w io.Writer) error {
	fs := termfs.NewLight("termfs", nil, w)
	rtos.Mount(fs, "/dev/console")
	f, err := os.OpenFile("/dev/console", syscall.O_WRONLY, 0)
	if err != nil {
		return err
	}
	os.Stdout, os.Stderr = f, f
	return nil
}
