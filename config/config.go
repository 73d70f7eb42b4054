package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oracle/oci-go-sdk/v65/common"
)

// DefaultOCIConfigPath is where the OCI CLI keeps its configuration.
const DefaultOCIConfigPath = "~/.oci/config"

// LoadOCIConfig loads the OCI configuration provider for profile from the
// config file at configFilePath.
func LoadOCIConfig(configFilePath, profile string) (common.ConfigurationProvider, error) {
	path, err := ExpandHome(configFilePath)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("OCI config file %s: %w", path, err)
	}
	if profile == "" {
		profile = "DEFAULT"
	}
	provider, err := common.ConfigurationProviderFromFile(path, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from file: %w", err)
	}
	return provider, nil
}

// ExpandHome replaces a leading "~/" with the current user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
