package installer

import (
	"fmt"
	"strings"
)

// Problem describes one unmet requirement reported during validation.
type Problem struct {
	Component   string
	Description string
}

// PrerequisiteError aggregates every validation problem found across the
// selected components. It is reported before any mutation; the install
// directory is untouched when this error is returned.
type PrerequisiteError struct {
	Problems []Problem
}

func (e *PrerequisiteError) Error() string {
	if len(e.Problems) == 0 {
		return "prerequisite validation failed"
	}
	var parts []string
	for _, p := range e.Problems {
		parts = append(parts, fmt.Sprintf("%s: %s", p.Component, p.Description))
	}
	return fmt.Sprintf("prerequisite validation failed: %s", strings.Join(parts, "; "))
}

// InstallError reports which component's install step failed. The install
// directory has been rolled back to its pre-run state when this error is
// returned (otherwise a ManualRecoveryError is returned instead).
type InstallError struct {
	Component string
	Err       error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("installing component %s: %v", e.Component, e.Err)
}

func (e *InstallError) Unwrap() error {
	return e.Err
}

// PostInstallError reports a failed finalization step. Like InstallError it
// implies the directory was rolled back.
type PostInstallError struct {
	Component string
	Err       error
}

func (e *PostInstallError) Error() string {
	return fmt.Sprintf("post-install for component %s: %v", e.Component, e.Err)
}

func (e *PostInstallError) Unwrap() error {
	return e.Err
}

// ManualRecoveryError is the double-fault terminal signal: an install or
// post-install step failed and restoring the pre-run snapshot failed too.
// The install directory is in an undefined state; the retained archive is
// the recovery source.
type ManualRecoveryError struct {
	Cause      error // the install/post-install failure that triggered rollback
	RestoreErr error
	BackupPath string
}

func (e *ManualRecoveryError) Error() string {
	return fmt.Sprintf("install directory needs manual recovery: rollback failed (%v) after %v; restore manually from %s",
		e.RestoreErr, e.Cause, e.BackupPath)
}

func (e *ManualRecoveryError) Unwrap() error {
	return e.Cause
}
