// Package pathutil provides safe path handling for policy documents, configs and reports.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// clean rejects traversal patterns and returns the absolute form of path.
func clean(path string) (string, error) {
	if strings.Contains(path, "..") {
		return "", fmt.Errorf("path contains directory traversal pattern: %s", path)
	}
	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("getting absolute path: %w", err)
	}
	return absPath, nil
}

// ValidatePath validates that a path is safe to read and, when allowedBaseDirs
// are given, lies within one of them.
func ValidatePath(path string, allowedBaseDirs ...string) (string, error) {
	absPath, err := clean(path)
	if err != nil {
		return "", err
	}

	if len(allowedBaseDirs) == 0 {
		return absPath, nil
	}

	for _, baseDir := range allowedBaseDirs {
		if ok, err := IsWithinDirectory(absPath, baseDir); err == nil && ok {
			return absPath, nil
		}
	}

	return "", fmt.Errorf("path %s is not within allowed directories", filepath.Clean(path))
}

// ValidateExtension checks that path ends in one of the allowed extensions
// (compared case-insensitively, each including the leading dot).
func ValidateExtension(path string, allowed []string) error {
	if len(allowed) == 0 {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(path))
	if slices.ContainsFunc(allowed, func(a string) bool { return strings.EqualFold(a, ext) }) {
		return nil
	}
	return fmt.Errorf("file type %q not allowed (allowed: %s)", ext, strings.Join(allowed, ", "))
}

// ValidateConfigPath validates a configuration file path.
// Config files are expected to be YAML files.
func ValidateConfigPath(path string) (string, error) {
	absPath, err := clean(path)
	if err != nil {
		return "", err
	}
	if err := ValidateExtension(absPath, []string{".yaml", ".yml"}); err != nil {
		return "", fmt.Errorf("config file must have .yaml or .yml extension: %w", err)
	}
	return absPath, nil
}

// ValidateOutputPath validates an output file path for reports.
// The parent directory must already exist.
func ValidateOutputPath(path string) (string, error) {
	absPath, err := clean(path)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(absPath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return "", fmt.Errorf("parent directory does not exist: %s", dir)
	}

	return absPath, nil
}

// IsWithinDirectory checks if a path is within a specific directory.
func IsWithinDirectory(path, dir string) (bool, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, err
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false, err
	}

	if absPath == absDir {
		return true, nil
	}
	if !strings.HasSuffix(absDir, string(filepath.Separator)) {
		absDir += string(filepath.Separator)
	}
	return strings.HasPrefix(absPath, absDir), nil
}
