// Package component defines the installable unit contract and the closed
// set of known integrations.
//
// Every component implements the three-hook Component interface:
// ValidatePrerequisites (pure check), Install (provisioning), and
// PostInstall (idempotent finalization). The Registry holds components in
// registration order; a configuration's selection list filters the registry
// but never reorders it.
//
// The bundled integrations are MCP server packages launched via npx. Each
// Install writes a ServerDefinition into the install directory through the
// config.Storage entity store; PostInstall maintains an index of everything
// registered.
package component
