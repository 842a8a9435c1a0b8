// Package backup snapshots the install directory into gzip-compressed tar
// archives and restores them on rollback.
//
// Archives always live outside the install directory so a restore can wipe
// the target without destroying its own source. A snapshot of an empty
// directory still produces a structurally valid archive containing exactly
// the root entry; consumers can always reopen and list a created archive
// without a format error. Restore is idempotent: applying the same archive
// twice leaves the directory in the same state as applying it once.
package backup
