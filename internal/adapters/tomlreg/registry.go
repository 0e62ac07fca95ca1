// Package tomlreg implements the server registry over a servers.toml
// configuration file.
package tomlreg

import (
	"fmt"
	"os"
	"sort"

	"github.com/BurntSushi/toml"

	"shuttle/internal/application"
	"shuttle/internal/domain"
	"shuttle/internal/ports"
)

// Registry implements ports.ServerRegistry from a TOML file of the form:
//
//	[servers.homelab]
//	name = "Home Lab"
//	host = "10.0.0.5"
//	port = 22
//	user = "alice"
//	identity_file = "~/.ssh/id_ed25519"
//	remote_base = "/home/alice/.sync-shuttle"
//	enabled = true
//	s3_backup = false
//
// Records are loaded once and immutable for the process run.
type Registry struct {
	servers map[string]domain.Server
	order   []string
}

var _ ports.ServerRegistry = (*Registry)(nil)

type serverConfig struct {
	Name         string `toml:"name"`
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	IdentityFile string `toml:"identity_file"`
	RemoteBase   string `toml:"remote_base"`
	Enabled      bool   `toml:"enabled"`
	S3Backup     bool   `toml:"s3_backup"`
	S3Bucket     string `toml:"s3_bucket"`
}

type registryConfig struct {
	Servers map[string]serverConfig `toml:"servers"`
}

// Load parses a servers.toml file into a Registry. A missing file
// yields an empty registry rather than an error so a fresh install can
// run read-only commands.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Registry{servers: map[string]domain.Server{}}, nil
		}
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}
	return Parse(data)
}

// Parse builds a Registry from raw TOML.
func Parse(data []byte) (*Registry, error) {
	var cfg registryConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse registry: %w", err)
	}

	r := &Registry{servers: make(map[string]domain.Server, len(cfg.Servers))}
	for id, sc := range cfg.Servers {
		if err := domain.ValidateServerID(id); err != nil {
			return nil, fmt.Errorf("registry entry rejected: %w", err)
		}
		r.servers[id] = toRecord(id, sc)
		r.order = append(r.order, id)
	}
	sort.Strings(r.order)
	return r, nil
}

func toRecord(id string, sc serverConfig) domain.Server {
	name := sc.Name
	if name == "" {
		name = id
	}
	port := sc.Port
	if port == 0 {
		port = 22
	}
	remoteBase := sc.RemoteBase
	if remoteBase == "" {
		remoteBase = domain.DefaultRemoteBase(sc.User)
	}
	return domain.Server{
		ID:           id,
		Name:         name,
		Host:         sc.Host,
		Port:         port,
		User:         sc.User,
		IdentityFile: sc.IdentityFile,
		RemoteBase:   remoteBase,
		Enabled:      sc.Enabled,
		S3Backup:     sc.S3Backup,
		S3Bucket:     sc.S3Bucket,
	}
}

// Resolve looks up a server by exact identifier.
func (r *Registry) Resolve(id string) (*domain.Server, error) {
	server, ok := r.servers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", application.ErrServerNotFound, id)
	}
	if !server.Enabled {
		return nil, fmt.Errorf("%w: %s", application.ErrServerDisabled, id)
	}
	return &server, nil
}

// List returns every record, including disabled ones, sorted by id.
func (r *Registry) List() ([]domain.Server, error) {
	out := make([]domain.Server, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.servers[id])
	}
	return out, nil
}
