package installer

import (
	"fmt"
	"os"
	"time"

	"superclaude/internal/backup"
	"superclaude/internal/component"
	"superclaude/internal/config"
	"superclaude/pkg/logging"

	"github.com/google/uuid"
)

// State tracks where in the pipeline a run is. On success a run walks
// Idle → BackingUp → Validating → Installing → PostInstall → Committed.
// Failures during Installing or PostInstall end in RolledBack, or in
// ManualRecovery when the rollback itself failed. Failures before any
// mutation (backup creation, validation) leave the result state at the
// phase that failed.
type State int

const (
	StateIdle State = iota
	StateBackingUp
	StateValidating
	StateInstalling
	StatePostInstall
	StateCommitted
	StateRolledBack
	StateManualRecovery
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateBackingUp:
		return "BACKING_UP"
	case StateValidating:
		return "VALIDATING"
	case StateInstalling:
		return "INSTALLING"
	case StatePostInstall:
		return "POST_INSTALL"
	case StateCommitted:
		return "COMMITTED"
	case StateRolledBack:
		return "ROLLED_BACK"
	case StateManualRecovery:
		return "MANUAL_RECOVERY"
	default:
		return "UNKNOWN"
	}
}

// Result reports the outcome of one installer run.
type Result struct {
	Success    bool
	State      State
	RunID      string
	BackupPath string
	// Installed lists the components whose install hook completed, in
	// installation order. Only meaningful together with Success: after a
	// rollback the directory no longer contains their work.
	Installed []string
	// Problems carries the aggregated validation report when the run
	// aborted during validation.
	Problems []Problem
	// FailedComponent names the component whose hook failed, if any.
	FailedComponent string
}

// Options configures an Installer.
type Options struct {
	InstallDir string
	// BackupDir defaults to backup.DefaultBackupDir(InstallDir). It must
	// lie outside InstallDir.
	BackupDir string
	// Registry defaults to component.DefaultRegistry(InstallDir).
	Registry *component.Registry
	// Version is recorded in the install metadata on commit.
	Version string
}

// Installer drives the end-to-end installation flow. A run is synchronous
// and strictly ordered; concurrent runs against the same install directory
// are the caller's responsibility to prevent.
type Installer struct {
	installDir string
	version    string
	backups    *backup.Manager
	registry   *component.Registry
}

// New creates an Installer for the given options.
func New(opts Options) (*Installer, error) {
	if opts.InstallDir == "" {
		return nil, fmt.Errorf("install directory is required")
	}
	backupDir := opts.BackupDir
	if backupDir == "" {
		backupDir = backup.DefaultBackupDir(opts.InstallDir)
	}
	backups, err := backup.NewManager(opts.InstallDir, backupDir)
	if err != nil {
		return nil, err
	}
	registry := opts.Registry
	if registry == nil {
		registry = component.DefaultRegistry(opts.InstallDir)
	}
	return &Installer{
		installDir: opts.InstallDir,
		version:    opts.Version,
		backups:    backups,
		registry:   registry,
	}, nil
}

// Registry exposes the component set this installer operates on.
func (i *Installer) Registry() *component.Registry {
	return i.registry
}

// Run executes one installation: backup, validate, install the selected
// components in registration order, finalize, commit. Any failure after the
// first mutation restores the pre-run snapshot. The returned Result is
// non-nil even on error.
func (i *Installer) Run(cfg *config.InstallConfig) (*Result, error) {
	result := &Result{
		State: StateIdle,
		RunID: uuid.NewString(),
	}
	logging.Info("Installer", "Starting run %s for %s (selected: %v)", result.RunID, i.installDir, cfg.SelectedMCPServers)

	if err := os.MkdirAll(i.installDir, 0755); err != nil {
		return result, fmt.Errorf("preparing install directory: %w", err)
	}

	// BACKING_UP. A failure here aborts the run outright: nothing has been
	// mutated yet, so there is nothing to roll back.
	result.State = StateBackingUp
	archivePath, err := i.backups.Create()
	if err != nil {
		logging.Error("Installer", err, "Backup creation failed, aborting run %s", result.RunID)
		return result, err
	}
	result.BackupPath = archivePath
	if _, err := backup.Verify(archivePath); err != nil {
		logging.Error("Installer", err, "Backup archive failed verification, aborting run %s", result.RunID)
		return result, err
	}

	// VALIDATING. Every selected component is visited before deciding, so
	// the caller gets the complete problem list in one pass. A fault in
	// one component's check must not hide its siblings' reports.
	result.State = StateValidating
	selected, problems := i.resolveSelection(cfg)
	for _, c := range selected {
		ok, componentProblems := safeValidate(c)
		if !ok {
			for _, p := range componentProblems {
				problems = append(problems, Problem{Component: c.Name(), Description: p})
			}
		}
	}
	if len(problems) > 0 {
		result.Problems = problems
		logging.Warn("Installer", "Run %s aborted: %d prerequisite problems", result.RunID, len(problems))
		return result, &PrerequisiteError{Problems: problems}
	}

	// INSTALLING. Selection order follows registration order; the config's
	// list is a filter, not a sequence.
	result.State = StateInstalling
	for _, c := range selected {
		logging.Info("Installer", "Installing component %s (%s)", c.Name(), c.PackageRef())
		if err := safeInstall(c, cfg); err != nil {
			result.FailedComponent = c.Name()
			installErr := &InstallError{Component: c.Name(), Err: err}
			return i.rollback(result, installErr)
		}
		result.Installed = append(result.Installed, c.Name())
	}

	// POST_INSTALL. Only reached when every install succeeded; a failure
	// here still makes the run all-or-nothing.
	result.State = StatePostInstall
	for _, c := range selected {
		if err := safePostInstall(c); err != nil {
			result.FailedComponent = c.Name()
			postErr := &PostInstallError{Component: c.Name(), Err: err}
			return i.rollback(result, postErr)
		}
	}

	// Commit: record what was installed. A metadata write failure is a
	// finalization failure and rolls back like any other.
	meta := config.InstallMetadata{
		Version:     i.version,
		InstalledAt: time.Now(),
		Components:  result.Installed,
	}
	if err := config.SaveMetadata(i.installDir, meta); err != nil {
		return i.rollback(result, &PostInstallError{Component: "metadata", Err: err})
	}

	result.State = StateCommitted
	result.Success = true
	logging.Info("Installer", "Run %s committed: installed %v", result.RunID, result.Installed)
	return result, nil
}

// rollback restores the pre-run snapshot after a failed install or
// post-install step. If the restore itself fails the run terminates in the
// explicit manual-recovery state so the two outcomes stay distinguishable.
func (i *Installer) rollback(result *Result, cause error) (*Result, error) {
	logging.Warn("Installer", "Run %s failed (%v), rolling back from %s", result.RunID, cause, result.BackupPath)

	if err := i.backups.Restore(result.BackupPath); err != nil {
		result.State = StateManualRecovery
		logging.Error("Installer", err, "Rollback failed for run %s; install directory needs manual recovery", result.RunID)
		return result, &ManualRecoveryError{
			Cause:      cause,
			RestoreErr: err,
			BackupPath: result.BackupPath,
		}
	}

	result.State = StateRolledBack
	logging.Info("Installer", "Run %s rolled back to pre-run state", result.RunID)
	return result, cause
}

// resolveSelection maps the configured selection onto registry components.
// Unknown names become validation problems instead of being silently
// dropped. The returned slice follows registration order.
func (i *Installer) resolveSelection(cfg *config.InstallConfig) ([]component.Component, []Problem) {
	var problems []Problem
	for _, name := range cfg.SelectedMCPServers {
		if _, ok := i.registry.Get(name); !ok {
			problems = append(problems, Problem{
				Component:   name,
				Description: fmt.Sprintf("unknown component (available: %v)", i.registry.Names()),
			})
		}
	}

	var selected []component.Component
	for _, c := range i.registry.All() {
		if cfg.IsSelected(c.Name()) {
			selected = append(selected, c)
		}
	}
	return selected, problems
}

// The safe* wrappers contain component faults at the orchestrator boundary:
// a panicking hook is converted into an ordinary failure for that component
// instead of tearing down the run.

func safeValidate(c component.Component) (ok bool, problems []string) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			problems = []string{fmt.Sprintf("validation fault: %v", r)}
		}
	}()
	return c.ValidatePrerequisites()
}

func safeInstall(c component.Component, cfg *config.InstallConfig) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("install fault: %v", r)
		}
	}()
	return c.Install(cfg)
}

func safePostInstall(c component.Component) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("post-install fault: %v", r)
		}
	}()
	return c.PostInstall()
}
