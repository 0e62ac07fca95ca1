package config

import (
	"os"
	"path/filepath"
)

const (
	// DefaultBaseDir holds the local namespace (inbox/outbox/staging/logs).
	DefaultBaseDir = "~/.sync-shuttle"
	// DefaultConfigDir holds servers.toml.
	DefaultConfigDir = "~/.config/sync-shuttle"
)

// BaseDir returns the shuttle base directory from SHUTTLE_BASE,
// falling back to DefaultBaseDir.
func BaseDir() string {
	if env := os.Getenv("SHUTTLE_BASE"); env != "" {
		return env
	}
	return ExpandHome(DefaultBaseDir)
}

// ConfigDir returns the configuration directory from SHUTTLE_CONFIG,
// falling back to DefaultConfigDir.
func ConfigDir() string {
	if env := os.Getenv("SHUTTLE_CONFIG"); env != "" {
		return env
	}
	return ExpandHome(DefaultConfigDir)
}

// ServersFile returns the path to the server registry file.
func ServersFile() string {
	return filepath.Join(ConfigDir(), "servers.toml")
}

// LocalName returns the name this machine announces to remote namespaces
// (the <hostname> part of outbox/<hostname> and inbox/<hostname>).
// SHUTTLE_HOSTNAME overrides the OS hostname.
func LocalName() string {
	if env := os.Getenv("SHUTTLE_HOSTNAME"); env != "" {
		return env
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "localhost"
	}
	return host
}

// ExpandHome expands a leading ~ to the user's home directory.
func ExpandHome(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
