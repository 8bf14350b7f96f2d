package configutil

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// BasePrefix marks a path as relative to the configured base directory.
const BasePrefix = "<base>"

func splitExt(f string) (string, string) {
	for i := len(f) - 1; i >= 0; i-- {
		if f[i] == '.' {
			return f[0:i], f[i+1:]
		}
	}
	return f, ""
}

// reads a configuration file, `name` should come with a file extension,
// it will automatically be lopped off to produce the other extensions.
// this function will merge the following files, where higher number is more prioritized.
// 1. <name>.<ext>
// 2. <name>.local.<ext>
func ReadConfig[T any](name string) (T, error) {
	var out T
	allNotFound := true

	dirname := filepath.Dir(name)
	basename := filepath.Base(name)
	prefixname, ext := splitExt(basename)

	defaultFile, err := os.ReadFile(name)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if len(defaultFile) > 0 {
		err = json5.Unmarshal(defaultFile, &out)
		if err != nil {
			return out, fmt.Errorf("parse %s: %w", name, err)
		}
		allNotFound = false
	}

	localFilepath := filepath.Join(
		dirname,
		fmt.Sprintf("%s.local.%s", prefixname, ext),
	)
	localFile, err := os.ReadFile(localFilepath)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if len(localFile) > 0 {
		var override T
		err = json5.Unmarshal(localFile, &override)
		if err != nil {
			return out, fmt.Errorf("parse %s: %w", localFilepath, err)
		}
		err = mergo.Merge(&out, override, mergo.WithOverride)
		if err != nil {
			return out, err
		}
		slog.Info("merging config with local overrides", "local", localFilepath)
		allNotFound = false
	}

	if allNotFound {
		return out, os.ErrNotExist
	}

	return out, nil
}

// ReadConfigOrDefault is ReadConfig, except that missing files are not an
// error and every field left empty by the files is taken from `defaults`.
func ReadConfigOrDefault[T any](name string, defaults T) (T, error) {
	out, err := ReadConfig[T](name)
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("no config file found, using defaults", "name", name)
	} else if err != nil {
		return out, err
	}
	err = mergo.Merge(&out, defaults)
	if err != nil {
		return out, err
	}
	return out, nil
}

// ResolvePath expands a leading "<base>" in `path` to `base`. Other paths
// are returned untouched.
func ResolvePath(base, path string) string {
	if !strings.HasPrefix(path, BasePrefix) {
		return path
	}
	subpath := strings.TrimLeft(strings.TrimPrefix(path, BasePrefix), `/\`)
	return filepath.Join(base, subpath)
}
