package fileutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FileExists returns true if the file exists.
func FileExists(file string) bool {
	_, err := os.Stat(file)
	return err == nil
}

// IsDir returns true if the path exists and is a directory.
func IsDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// OpenOrCreateFile opens or creates the given file for appending with
// permissions suitable for log files. Append mode keeps writes through
// separate handles from clobbering each other.
func OpenOrCreateFile(file string) (*os.File, error) {
	return os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

// CopyFile copies src to dst, truncating dst if it already exists.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer func() {
		_ = in.Close()
	}()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	return out.Close()
}

// IsYAMLFile checks if the file has a YAML extension.
func IsYAMLFile(filename string) bool {
	ext := filepath.Ext(filename)
	return ext == ".yaml" || ext == ".yml"
}

// ResolvePath expands a leading "~" and environment variables and returns
// the absolute path.
func ResolvePath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Abs(os.ExpandEnv(path))
}

// MustResolvePath is like ResolvePath but panics on error.
func MustResolvePath(path string) string {
	resolved, err := ResolvePath(path)
	if err != nil {
		panic(err)
	}
	return resolved
}
