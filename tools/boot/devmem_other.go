//go:build !linux

package boot

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
)

func UpDevMem(ctx context.Context, name string, log *logrus.Logger) error {
	return errors.New("/dev/mem access requires linux")
}
