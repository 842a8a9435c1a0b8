package backup

import "fmt"

// Error wraps an archive operation failure. The operation name distinguishes
// "could not create a snapshot" from "could not restore one", which matters
// to the installer: the former aborts a run before any mutation, the latter
// escalates to manual recovery.
type Error struct {
	Op   string // create, restore, verify, list, configure, resolve
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("backup %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
