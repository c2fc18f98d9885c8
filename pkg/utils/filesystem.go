package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidateOutputPath validates a file path to prevent directory traversal attacks
// and creates its parent directory when missing.
func ValidateOutputPath(path string) error {
	// Clean the path to resolve any ".." or "." components
	cleanPath := filepath.Clean(path)

	// Check for suspicious patterns
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains directory traversal patterns: %s", path)
	}

	// Ensure it's not an absolute path to sensitive system directories
	if filepath.IsAbs(cleanPath) {
		sensitiveDirectories := []string{
			"/etc", "/proc", "/sys", "/dev", "/boot",
			"/usr/bin", "/usr/sbin", "/bin", "/sbin",
		}

		for _, sensitive := range sensitiveDirectories {
			if cleanPath == sensitive || strings.HasPrefix(cleanPath, sensitive+"/") {
				return fmt.Errorf("path points to sensitive system directory: %s", path)
			}
		}
	}

	// Ensure the directory exists or can be created
	dir := filepath.Dir(cleanPath)
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// DirectoryExists checks if a directory exists at the given path
func DirectoryExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// FileExists checks if a file exists at the given path
func FileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
