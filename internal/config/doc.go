// Package config provides configuration management for the superclaude
// installer.
//
// # Install Configuration
//
// An installer run is driven by an InstallConfig, loaded from an
// install-config.yaml file (or assembled from CLI flags). The configuration
// selects which components to activate and carries free-form options that
// components may consume. The installer core treats the configuration as
// read-only.
//
// # Entity Storage
//
// The Storage type provides YAML-based persistence for entities inside the
// install directory. Components use it to register what they provision; the
// MCP server integrations store one ServerDefinition per server under the
// mcpservers/ subdirectory.
//
// # Install Metadata
//
// On a committed run the installer records an InstallMetadata file inside
// the install directory. The update command reads it back to re-run the
// previously selected component set.
package config
