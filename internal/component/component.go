package component

import "superclaude/internal/config"

// Component is the contract every installable unit implements. Components
// are stateless between invocations and are instantiated per installer run.
//
// The installer drives the three hooks in a fixed order: prerequisites are
// validated for every selected component before any Install call, Install
// runs for each selected component in registration order, and PostInstall
// runs only after every selected Install succeeded.
type Component interface {
	// Name returns the unique key the component is selected by.
	Name() string

	// Description returns a one-line human description for listings.
	Description() string

	// PackageRef returns the stable upstream package identifier the
	// component provisions (e.g. "@21st-dev/magic"). It is informational;
	// the installer's control logic never branches on it.
	PackageRef() string

	// ValidatePrerequisites checks that everything the component needs is
	// present. It must not mutate any state. ok=false carries a non-empty
	// problem list describing each unmet requirement.
	ValidatePrerequisites() (ok bool, problems []string)

	// Install performs the component-specific provisioning. The
	// configuration is shared across all components and must not be
	// mutated.
	Install(cfg *config.InstallConfig) error

	// PostInstall runs final registration and linking steps after all
	// selected components installed successfully. It must be idempotent.
	PostInstall() error
}
