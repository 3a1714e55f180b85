// Package config loads and strictly validates the supervisor's on-disk
// configuration: the global config.yml, one YAML file per sync job under
// syncs/, and the directory layout bootstrap creates on first run.
package config

import (
	"os"
	"path/filepath"
)

// ConfigPaths resolves every well-known location under the configuration
// root (spec.md §6).
type ConfigPaths struct {
	BaseDir       string
	GlobalConfig  string
	SyncsDir      string
	StateDir      string
	TemplatesDir  string
	AssetsDir     string
	IPCSocketPath string
	SecretsFile   string
}

const defaultIPCSocketName = "ipc.sock"
const defaultSecretsFileName = "secrets.store"

func pathsFromBase(base string) ConfigPaths {
	return ConfigPaths{
		BaseDir:       base,
		GlobalConfig:  filepath.Join(base, "config.yml"),
		SyncsDir:      filepath.Join(base, "syncs"),
		StateDir:      filepath.Join(base, "state"),
		TemplatesDir:  filepath.Join(base, "templates"),
		AssetsDir:     filepath.Join(base, "assets"),
		IPCSocketPath: filepath.Join(base, defaultIPCSocketName),
		SecretsFile:   filepath.Join(base, defaultSecretsFileName),
	}
}

// DefaultConfigPaths resolves ~/.spotifreak.
func DefaultConfigPaths() (ConfigPaths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return ConfigPaths{}, err
	}
	return pathsFromBase(filepath.Join(home, ".spotifreak")), nil
}

// ConfigPathsFromBaseDir resolves paths under an explicit base directory,
// used when the CLI is invoked with an override.
func ConfigPathsFromBaseDir(base string) ConfigPaths {
	return pathsFromBase(base)
}
