package configutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// localPath derives the override filename for a config path:
// telemetry.json5 -> telemetry.local.json5.
func localPath(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + ".local" + ext
}

func readLayer[T any](path string, out *T) (bool, error) {
	contents, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(contents) == 0 {
		return false, nil
	}
	err = json5.Unmarshal(contents, out)
	if err != nil {
		return false, err
	}
	return true, nil
}

// ReadConfig reads a json5 configuration file, `name` should come with
// a file extension. A sibling `<name>.local.<ext>` file is merged on
// top when present so checked-in defaults and per-machine overrides
// can live side by side. os.ErrNotExist when neither file exists.
func ReadConfig[T any](name string) (T, error) {
	var out T

	foundDefault, err := readLayer(name, &out)
	if err != nil {
		return out, err
	}

	var override T
	local := localPath(name)
	foundLocal, err := readLayer(local, &override)
	if err != nil {
		return out, err
	}
	if foundLocal {
		err = mergo.Merge(&out, override, mergo.WithOverride)
		if err != nil {
			return out, err
		}
		slog.Info("merging config with local overrides", "local", local)
	}

	if !foundDefault && !foundLocal {
		return out, os.ErrNotExist
	}
	return out, nil
}

// ReadRecursively is ReadConfig but it walks up the filesystem until
// the root to find a configuration file matching the name.
func ReadRecursively[T any](name string) (T, error) {
	var zero T

	current, err := os.Getwd()
	if err != nil {
		return zero, err
	}

	for {
		config, err := ReadConfig[T](filepath.Join(current, name))
		if err == nil {
			return config, nil
		}
		if !os.IsNotExist(err) {
			return zero, err
		}

		parent := filepath.Dir(current)
		if parent == current {
			return zero, os.ErrNotExist
		}
		current = parent
	}
}
