package backup

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"superclaude/pkg/logging"

	"github.com/google/uuid"
)

const archiveSuffix = ".tar.gz"

// Manager snapshots an install directory into restorable tar.gz archives.
// Archives are written outside the install directory so they survive a wipe
// and restore of the target.
type Manager struct {
	installDir string
	backupDir  string
}

// Info describes one archive in the backup directory.
type Info struct {
	Name      string
	Path      string
	Size      int64
	CreatedAt time.Time
}

// DefaultBackupDir returns the backup location used when the caller does not
// choose one: a sibling of the install directory.
func DefaultBackupDir(installDir string) string {
	return filepath.Clean(installDir) + ".backups"
}

// NewManager creates a Manager for the given install directory. backupDir
// must lie outside installDir; pass DefaultBackupDir(installDir) when in
// doubt.
func NewManager(installDir, backupDir string) (*Manager, error) {
	installAbs, err := filepath.Abs(installDir)
	if err != nil {
		return nil, &Error{Op: "resolve", Path: installDir, Err: err}
	}
	backupAbs, err := filepath.Abs(backupDir)
	if err != nil {
		return nil, &Error{Op: "resolve", Path: backupDir, Err: err}
	}
	if backupAbs == installAbs || strings.HasPrefix(backupAbs, installAbs+string(os.PathSeparator)) {
		return nil, &Error{Op: "configure", Path: backupDir, Err: fmt.Errorf("backup directory must lie outside the install directory %s", installAbs)}
	}
	return &Manager{installDir: installAbs, backupDir: backupAbs}, nil
}

// InstallDir returns the directory this manager snapshots.
func (m *Manager) InstallDir() string {
	return m.installDir
}

// Create captures the complete state of the install directory into a new
// archive and returns its path. An empty install directory is not an error:
// the resulting archive contains only the root entry, so it always reopens
// as a well-formed tar.gz.
func (m *Manager) Create() (string, error) {
	if err := os.MkdirAll(m.backupDir, 0755); err != nil {
		return "", &Error{Op: "create", Path: m.backupDir, Err: err}
	}

	name := fmt.Sprintf("backup-%s-%s%s",
		time.Now().Format("20060102-150405"),
		uuid.NewString()[:8],
		archiveSuffix)
	archivePath := filepath.Join(m.backupDir, name)

	f, err := os.Create(archivePath)
	if err != nil {
		return "", &Error{Op: "create", Path: archivePath, Err: err}
	}

	gzw := gzip.NewWriter(f)
	tw := tar.NewWriter(gzw)

	walkErr := filepath.Walk(m.installDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(m.installDir, path)
		if err != nil {
			return err
		}

		var link string
		if info.Mode()&os.ModeSymlink != 0 {
			if link, err = os.Readlink(path); err != nil {
				return err
			}
		}
		header, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(rel)
		if rel == "." {
			// Root entry. Written even for an empty directory so the
			// archive is never a zero-member gzip stub.
			header.Name = "./"
		} else if info.IsDir() {
			header.Name += "/"
		}

		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			src, err := os.Open(path)
			if err != nil {
				return err
			}
			defer src.Close()
			if _, err := io.Copy(tw, src); err != nil {
				return err
			}
		}
		return nil
	})

	// Close order matters: tar footer, then gzip footer, then the file.
	if err := tw.Close(); err != nil && walkErr == nil {
		walkErr = err
	}
	if err := gzw.Close(); err != nil && walkErr == nil {
		walkErr = err
	}
	if err := f.Close(); err != nil && walkErr == nil {
		walkErr = err
	}

	if walkErr != nil {
		os.Remove(archivePath)
		return "", &Error{Op: "create", Path: m.installDir, Err: walkErr}
	}

	logging.Info("Backup", "Created backup archive %s", archivePath)
	return archivePath, nil
}

// Restore replaces the install directory contents with the archive's
// contents. Restoring the same archive twice leaves the directory in the
// same state as restoring it once.
func (m *Manager) Restore(archivePath string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return &Error{Op: "restore", Path: archivePath, Err: err}
	}
	defer f.Close()

	gzr, err := gzip.NewReader(f)
	if err != nil {
		return &Error{Op: "restore", Path: archivePath, Err: err}
	}
	defer gzr.Close()

	if err := m.wipeInstallDir(); err != nil {
		return err
	}

	tr := tar.NewReader(gzr)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return &Error{Op: "restore", Path: archivePath, Err: err}
		}

		target, err := m.safeTarget(header.Name)
		if err != nil {
			return &Error{Op: "restore", Path: archivePath, Err: err}
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(header.Mode)); err != nil {
				return &Error{Op: "restore", Path: target, Err: err}
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return &Error{Op: "restore", Path: target, Err: err}
			}
			dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(header.Mode))
			if err != nil {
				return &Error{Op: "restore", Path: target, Err: err}
			}
			if _, err := io.Copy(dst, tr); err != nil {
				dst.Close()
				return &Error{Op: "restore", Path: target, Err: err}
			}
			if err := dst.Close(); err != nil {
				return &Error{Op: "restore", Path: target, Err: err}
			}
		case tar.TypeSymlink:
			os.Remove(target)
			if err := os.Symlink(header.Linkname, target); err != nil {
				return &Error{Op: "restore", Path: target, Err: err}
			}
		default:
			logging.Warn("Backup", "Skipping archive member %s with unsupported type %d", header.Name, header.Typeflag)
		}
	}

	logging.Info("Backup", "Restored %s from %s", m.installDir, archivePath)
	return nil
}

// Verify opens the archive and returns its member count. It is used by the
// installer after Create and by tests asserting the empty-directory case.
func Verify(archivePath string) (int, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return 0, &Error{Op: "verify", Path: archivePath, Err: err}
	}
	defer f.Close()

	gzr, err := gzip.NewReader(f)
	if err != nil {
		return 0, &Error{Op: "verify", Path: archivePath, Err: err}
	}
	defer gzr.Close()

	tr := tar.NewReader(gzr)
	count := 0
	for {
		_, err := tr.Next()
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return count, &Error{Op: "verify", Path: archivePath, Err: err}
		}
		count++
	}
}

// List returns all archives in the backup directory, newest first.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &Error{Op: "list", Path: m.backupDir, Err: err}
	}

	var infos []Info
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), archiveSuffix) {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		infos = append(infos, Info{
			Name:      entry.Name(),
			Path:      filepath.Join(m.backupDir, entry.Name()),
			Size:      fi.Size(),
			CreatedAt: fi.ModTime(),
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt.After(infos[j].CreatedAt)
	})
	return infos, nil
}

// wipeInstallDir removes everything inside the install directory without
// removing the directory itself.
func (m *Manager) wipeInstallDir() error {
	entries, err := os.ReadDir(m.installDir)
	if err != nil {
		return &Error{Op: "restore", Path: m.installDir, Err: err}
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(m.installDir, entry.Name())); err != nil {
			return &Error{Op: "restore", Path: m.installDir, Err: err}
		}
	}
	return nil
}

// safeTarget resolves an archive member name inside the install directory
// and rejects names that would escape it.
func (m *Manager) safeTarget(name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if cleaned == "." || cleaned == "/" {
		return m.installDir, nil
	}
	if strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("archive member %q escapes the install directory", name)
	}
	return filepath.Join(m.installDir, cleaned), nil
}
