package component

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"superclaude/internal/config"
	"superclaude/pkg/logging"

	"gopkg.in/yaml.v3"
)

// EntityTypeMCPServers is the storage entity type under which server
// definitions are persisted in the install directory.
const EntityTypeMCPServers = "mcpservers"

// serverIndexFileName is the index PostInstall maintains at the install
// directory root.
const serverIndexFileName = "mcpservers-index.yaml"

// lookPath is swappable in tests so prerequisite checks do not depend on the
// host PATH.
var lookPath = exec.LookPath

// MCPServerComponent provisions one npx-launched MCP server integration.
// There is one instance per known integration; the set is closed and built
// by DefaultRegistry.
type MCPServerComponent struct {
	name        string
	pkg         string
	description string
	// envKeys names the config options forwarded to the server process as
	// environment variables (e.g. API keys).
	envKeys []string

	installDir string
	storage    *config.Storage
}

// NewMCPServerComponent creates a component that registers the given
// upstream package under the given name in installDir.
func NewMCPServerComponent(installDir, name, pkg, description string, envKeys ...string) *MCPServerComponent {
	return &MCPServerComponent{
		name:        name,
		pkg:         pkg,
		description: description,
		envKeys:     envKeys,
		installDir:  installDir,
		storage:     config.NewStorage(installDir),
	}
}

func (c *MCPServerComponent) Name() string        { return c.name }
func (c *MCPServerComponent) Description() string { return c.description }
func (c *MCPServerComponent) PackageRef() string  { return c.pkg }

// ValidatePrerequisites checks that the node toolchain needed to launch the
// server is available. The check is pure: nothing is executed or written.
func (c *MCPServerComponent) ValidatePrerequisites() (bool, []string) {
	var problems []string
	for _, binary := range []string{"node", "npx"} {
		if _, err := lookPath(binary); err != nil {
			problems = append(problems, fmt.Sprintf("%s executable not found in PATH (required to run %s)", binary, c.pkg))
		}
	}
	return len(problems) == 0, problems
}

// Install writes the server definition for this integration into the
// install directory.
func (c *MCPServerComponent) Install(cfg *config.InstallConfig) error {
	def := config.ServerDefinition{
		Name:      c.name,
		Package:   c.pkg,
		Command:   "npx",
		Args:      []string{"-y", c.pkg},
		Transport: config.TransportStdio,
	}
	for _, key := range c.envKeys {
		if value, ok := cfg.Options[key]; ok {
			if def.Env == nil {
				def.Env = make(map[string]string)
			}
			def.Env[key] = value
		}
	}

	data, err := yaml.Marshal(&def)
	if err != nil {
		return fmt.Errorf("marshaling server definition for %s: %w", c.name, err)
	}
	if err := c.storage.Save(EntityTypeMCPServers, c.name, data); err != nil {
		return fmt.Errorf("registering server %s: %w", c.name, err)
	}

	logging.Info("Component", "Registered MCP server %s (%s)", c.name, c.pkg)
	return nil
}

// PostInstall refreshes the server index at the install directory root. The
// index is rebuilt from the stored definitions, so running it again after a
// successful run is a no-op in effect.
func (c *MCPServerComponent) PostInstall() error {
	names, err := c.storage.List(EntityTypeMCPServers)
	if err != nil {
		return fmt.Errorf("listing registered servers: %w", err)
	}

	index := struct {
		Servers []string `yaml:"servers"`
	}{Servers: names}

	data, err := yaml.Marshal(&index)
	if err != nil {
		return fmt.Errorf("marshaling server index: %w", err)
	}
	indexPath := filepath.Join(c.installDir, serverIndexFileName)
	if err := os.WriteFile(indexPath, data, 0644); err != nil {
		return fmt.Errorf("writing server index: %w", err)
	}

	logging.Debug("Component", "Refreshed server index %s (%d servers)", indexPath, len(names))
	return nil
}

// LoadServerDefinition reads back a registered server definition. Used by
// the check command when probing installed servers.
func LoadServerDefinition(installDir, name string) (config.ServerDefinition, error) {
	storage := config.NewStorage(installDir)
	data, err := storage.Load(EntityTypeMCPServers, name)
	if err != nil {
		return config.ServerDefinition{}, err
	}
	var def config.ServerDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return config.ServerDefinition{}, fmt.Errorf("parsing server definition %s: %w", name, err)
	}
	return def, nil
}

// DefaultRegistry builds the closed set of known integrations bound to the
// given install directory. Registration order is fixed and determines
// installation order.
func DefaultRegistry(installDir string) *Registry {
	registry := NewRegistry()
	for _, c := range []*MCPServerComponent{
		NewMCPServerComponent(installDir, "magic", "@21st-dev/magic",
			"UI component generation from 21st.dev", "TWENTYFIRST_API_KEY"),
		NewMCPServerComponent(installDir, "sequential", "@modelcontextprotocol/server-sequential-thinking",
			"Structured multi-step reasoning"),
		NewMCPServerComponent(installDir, "context7", "@upstash/context7-mcp",
			"Up-to-date library documentation lookup"),
		NewMCPServerComponent(installDir, "playwright", "@playwright/mcp",
			"Browser automation and end-to-end testing"),
		NewMCPServerComponent(installDir, "morphllm", "@morph-llm/morph-fast-apply",
			"Fast bulk code edits", "MORPH_API_KEY"),
	} {
		// Registration of the built-in set cannot fail: names are unique
		// and non-empty by construction.
		if err := registry.Register(c); err != nil {
			panic(err)
		}
	}
	return registry
}
