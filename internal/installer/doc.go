// Package installer orchestrates the end-to-end installation flow for the
// superclaude framework.
//
// A run walks a fixed state machine: a snapshot of the install directory is
// taken first, prerequisites are validated for every selected component,
// the selected components install in registration order, post-install hooks
// finalize, and the run commits by recording install metadata. Any failure
// after the first mutation restores the pre-run snapshot, so from the
// directory's perspective installation is all-or-nothing. When the restore
// itself fails the run terminates in an explicit manual-recovery state that
// names the retained archive.
//
// Runs are synchronous and single-threaded. The installer assumes exclusive
// use of the install directory for the duration of a run; callers must not
// start concurrent runs against the same directory.
package installer
