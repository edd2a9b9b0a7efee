//go:build !unix

package terminal

import "fmt"

func openANSI(DeviceOptions) (Device, error) {
	return nil, fmt.Errorf("%w: the ansi device needs a unix tty, use the tcell device", ErrNotTerminal)
}
