package internal

import (
	"os"
)

func EnsureDirExists(dir string) error {
	if dir == "" {
		return nil
	}

	_, err := os.Stat(dir)
	if err == nil {
		return nil
	}

	if !os.IsNotExist(err) {
		return err
	}

	return os.MkdirAll(dir, 0o755)
}
