// Package logging provides the structured logging system used by the
// superclaude installer.
//
// The package wraps Go's standard slog package with a small API that tags
// every entry with a subsystem identifier. Log levels follow the usual
// Debug/Info/Warn/Error ladder; Error entries additionally carry the
// underlying error as a structured attribute.
//
// Call Init once at startup (the root command does this from its --debug and
// --quiet flags), then use the package-level functions:
//
//	logging.Info("Installer", "installing %d components", n)
//	logging.Error("Backup", err, "could not create archive")
package logging
