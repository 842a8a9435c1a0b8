package config

import "time"

// InstallConfig is the top-level configuration for an installer run. It is
// supplied wholesale by the caller (CLI flags or a YAML file) and never
// mutated by the installer core.
type InstallConfig struct {
	// SelectedMCPServers names the MCP server components to activate.
	// Selection is a filter over the registry: names not registered are
	// reported as problems, and registered components not named are skipped.
	SelectedMCPServers []string `yaml:"selected_mcp_servers"`

	// Options carries free-form component options (e.g. API keys that a
	// server definition should receive as environment variables).
	Options map[string]string `yaml:"options,omitempty"`
}

// IsSelected reports whether the given component name appears in the
// selection list.
func (c *InstallConfig) IsSelected(name string) bool {
	for _, s := range c.SelectedMCPServers {
		if s == name {
			return true
		}
	}
	return false
}

// Transport values for MCP server definitions.
const (
	// TransportStdio is the standard I/O transport. All bundled server
	// integrations are npx-launched stdio servers.
	TransportStdio = "stdio"
)

// ServerDefinition describes one provisioned MCP server. Definitions are
// persisted as YAML entities inside the install directory and consumed by
// whatever client launches the servers.
type ServerDefinition struct {
	Name      string            `yaml:"name"`
	Package   string            `yaml:"package"`             // upstream package reference, e.g. "@21st-dev/magic"
	Command   string            `yaml:"command"`             // executable, e.g. "npx"
	Args      []string          `yaml:"args,omitempty"`      // arguments passed to Command
	Env       map[string]string `yaml:"env,omitempty"`       // extra environment for the server process
	Transport string            `yaml:"transport,omitempty"` // default: stdio
}

// InstallMetadata records the outcome of a committed installer run. It is
// written into the install directory on commit and read back by the update
// command to recover the previously selected component set.
type InstallMetadata struct {
	Version     string    `yaml:"version"`
	InstalledAt time.Time `yaml:"installed_at"`
	Components  []string  `yaml:"components"`
}

// GetDefaultInstallConfig returns the configuration used when no config file
// exists: nothing selected, no options.
func GetDefaultInstallConfig() InstallConfig {
	return InstallConfig{}
}
