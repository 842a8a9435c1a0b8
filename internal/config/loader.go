package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"superclaude/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	installConfigFileName = "install-config.yaml"
	metadataFileName      = ".superclaude-metadata.yaml"
)

// LoadInstallConfig loads an install configuration from the given path. The
// path may name the YAML file directly or a directory containing
// install-config.yaml. A missing file is not an error: the defaults are
// returned so the caller can fill the selection from flags.
func LoadInstallConfig(path string) (InstallConfig, error) {
	configFilePath := path
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		configFilePath = filepath.Join(path, installConfigFileName)
	}

	config := GetDefaultInstallConfig()

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("ConfigLoader", "No %s found at %s, using defaults", installConfigFileName, configFilePath)
			return config, nil
		}
		return InstallConfig{}, err
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		// config malformed
		return InstallConfig{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
	}
	logging.Info("ConfigLoader", "Loaded install configuration from %s", configFilePath)
	return config, nil
}

// LoadMetadata reads the install metadata written by the last committed run.
// Returns os.ErrNotExist (wrapped) when the directory has never been
// installed into.
func LoadMetadata(installDir string) (InstallMetadata, error) {
	path := filepath.Join(installDir, metadataFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return InstallMetadata{}, fmt.Errorf("reading install metadata: %w", err)
	}
	var meta InstallMetadata
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return InstallMetadata{}, fmt.Errorf("parsing install metadata %s: %w", path, err)
	}
	return meta, nil
}

// SaveMetadata writes the install metadata into the install directory.
func SaveMetadata(installDir string, meta InstallMetadata) error {
	data, err := yaml.Marshal(&meta)
	if err != nil {
		return fmt.Errorf("marshaling install metadata: %w", err)
	}
	path := filepath.Join(installDir, metadataFileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing install metadata: %w", err)
	}
	logging.Debug("ConfigLoader", "Wrote install metadata to %s", path)
	return nil
}
