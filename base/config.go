package base

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/femnad/pfsync/entity"
	"github.com/femnad/pfsync/internal"
)

// ConfigurationMissingError is returned when the sync manifest does not exist.
type ConfigurationMissingError struct {
	Filename string
}

func (e ConfigurationMissingError) Error() string {
	return fmt.Sprintf("configuration file %s not found", e.Filename)
}

func ReadConfig(filename string) (entity.Config, error) {
	filename = internal.ExpandUser(filename)
	data, err := os.ReadFile(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return entity.Config{}, ConfigurationMissingError{Filename: filename}
	} else if err != nil {
		return entity.Config{}, fmt.Errorf("error reading config %s: %w", filename, err)
	}

	config, err := entity.UnmarshalConfig(data)
	if err != nil {
		return config, fmt.Errorf("error parsing config %s: %w", filename, err)
	}

	config.Filename = filename
	return config, nil
}
