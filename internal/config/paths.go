package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains all the application paths.
// This is the single source of truth for file paths in the application.
type Paths struct {
	ExecutableDir   string
	DataDir         string
	ExportsDir      string
	LogsDir         string
	WebDir          string
	CredentialsFile string
}

// GetPaths returns the application paths relative to the executable location.
// Paths are always relative to the executable directory, never the current
// working directory, so the application behaves the same regardless of where
// it is launched from.
//
// Directory structure:
//
//	dist/
//	  ├── credentials.dat    (encrypted insight credential, optional)
//	  ├── data/
//	  │   └── exports/       (generated report files)
//	  ├── logs/              (application logs)
//	  └── web/               (frontend assets, also embedded)
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}

	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}

	exeDir := filepath.Dir(exe)
	dataDir := filepath.Join(exeDir, DefaultDataDir)

	return &Paths{
		ExecutableDir:   exeDir,
		DataDir:         dataDir,
		ExportsDir:      filepath.Join(dataDir, "exports"),
		LogsDir:         filepath.Join(exeDir, DefaultLogsDir),
		WebDir:          filepath.Join(exeDir, DefaultWebDir),
		CredentialsFile: filepath.Join(exeDir, CredentialsFileName),
	}, nil
}

// EnsureDirectories creates all required directories if they don't exist.
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.ExportsDir,
		p.LogsDir,
	}
	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetLogPath returns the path for a log file inside the logs directory.
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// GetExportPath returns the path for an export file inside the exports
// directory.
func (p *Paths) GetExportPath(filename string) string {
	return filepath.Join(p.ExportsDir, filename)
}

// GetRelativePath returns a path relative to the executable directory.
func (p *Paths) GetRelativePath(subpath string) string {
	return filepath.Join(p.ExecutableDir, subpath)
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
