package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"superclaude/pkg/logging"
)

// Storage provides generic YAML entity persistence inside the install
// directory. Components use it to register the artifacts they provision
// (entity type "mcpservers" holds one file per server definition).
type Storage struct {
	mu      sync.RWMutex
	rootDir string
}

// NewStorage creates a Storage rooted at the given install directory.
func NewStorage(rootDir string) *Storage {
	return &Storage{rootDir: rootDir}
}

// Save stores data for the given entity type and name.
// entityType: subdirectory name (e.g. mcpservers)
// name: filename without extension
// data: file content to write
func (ds *Storage) Save(entityType string, name string, data []byte) error {
	if entityType == "" {
		return fmt.Errorf("entityType cannot be empty")
	}
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}

	ds.mu.Lock()
	defer ds.mu.Unlock()

	targetDir := filepath.Join(ds.rootDir, entityType)
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", targetDir, err)
	}

	filePath := filepath.Join(targetDir, ds.sanitizeFilename(name)+".yaml")
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", filePath, err)
	}

	logging.Debug("Storage", "Saved %s/%s to %s", entityType, name, filePath)
	return nil
}

// Load retrieves data for the given entity type and name.
func (ds *Storage) Load(entityType string, name string) ([]byte, error) {
	if entityType == "" {
		return nil, fmt.Errorf("entityType cannot be empty")
	}
	if name == "" {
		return nil, fmt.Errorf("name cannot be empty")
	}

	ds.mu.RLock()
	defer ds.mu.RUnlock()

	filePath := filepath.Join(ds.rootDir, entityType, ds.sanitizeFilename(name)+".yaml")
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s/%s: %w", entityType, name, err)
	}
	return data, nil
}

// Delete removes the entity file for the given type and name.
func (ds *Storage) Delete(entityType string, name string) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	filePath := filepath.Join(ds.rootDir, entityType, ds.sanitizeFilename(name)+".yaml")
	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", entityType, name, err)
	}
	return nil
}

// List returns the names of all entities of the given type, sorted by the
// order the filesystem reports them.
func (ds *Storage) List(entityType string) ([]string, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	targetDir := filepath.Join(ds.rootDir, entityType)
	entries, err := os.ReadDir(targetDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", entityType, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".yaml"))
	}
	return names, nil
}

// sanitizeFilename keeps entity names from escaping the entity directory.
func (ds *Storage) sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, string(os.PathSeparator), "-")
	name = strings.ReplaceAll(name, "..", "-")
	return name
}
