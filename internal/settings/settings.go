// Package settings persists user preferences to a settings.json in
// the data directory and resolves where the databases live.
package settings

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	settingsFile = "settings.json"
	epubDBName   = "epub.db"
	txtDBName    = "txt.db"
)

// Settings are the user-editable preferences.
type Settings struct {
	DatabasePath string `json:"databasePath" mapstructure:"databasePath"`
}

// Paths are the resolved database locations.
type Paths struct {
	EpubDB string `json:"epubDb"`
	TxtDB  string `json:"txtDb"`
}

// Manager reads and writes settings under a fixed data directory.
type Manager struct {
	dataDir string
	v       *viper.Viper
}

func NewManager(dataDir string) *Manager {
	v := viper.New()
	v.SetConfigFile(filepath.Join(dataDir, settingsFile))
	v.SetConfigType("json")
	return &Manager{dataDir: dataDir, v: v}
}

// Load returns the stored settings. A missing settings file yields
// the defaults, not an error.
func (m *Manager) Load() (*Settings, error) {
	if err := m.v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return &Settings{}, nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return &Settings{}, nil
		}
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var s Settings
	if err := m.v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	return &s, nil
}

// ResolvePaths returns the effective database file paths. A custom
// database directory is honored only when the database files actually
// exist there; otherwise the default data directory is used.
func (m *Manager) ResolvePaths() (*Paths, error) {
	s, err := m.Load()
	if err != nil {
		return nil, err
	}

	dir := m.dataDir
	if s.DatabasePath != "" {
		custom := filepath.Join(s.DatabasePath, epubDBName)
		if _, err := os.Stat(custom); err == nil {
			dir = s.DatabasePath
		}
	}

	return &Paths{
		EpubDB: filepath.Join(dir, epubDBName),
		TxtDB:  filepath.Join(dir, txtDBName),
	}, nil
}

// Save persists the settings. When the database directory changes,
// existing database files are copied into the new directory first;
// the originals are left in place. It reports whether files were
// migrated.
func (m *Manager) Save(s *Settings) (bool, error) {
	migrated := false
	if s.DatabasePath != "" {
		current, err := m.ResolvePaths()
		if err != nil {
			return false, err
		}
		if filepath.Dir(current.EpubDB) != s.DatabasePath {
			migrated, err = migrateDatabases(filepath.Dir(current.EpubDB), s.DatabasePath)
			if err != nil {
				return false, err
			}
		}
	}

	if err := os.MkdirAll(m.dataDir, 0o755); err != nil {
		return false, fmt.Errorf("create data dir: %w", err)
	}
	m.v.Set("databasePath", s.DatabasePath)
	if err := m.v.WriteConfigAs(filepath.Join(m.dataDir, settingsFile)); err != nil {
		return false, fmt.Errorf("write settings: %w", err)
	}
	return migrated, nil
}

func migrateDatabases(from, to string) (bool, error) {
	if err := os.MkdirAll(to, 0o755); err != nil {
		return false, fmt.Errorf("create database dir: %w", err)
	}

	migrated := false
	for _, name := range []string{epubDBName, txtDBName} {
		src := filepath.Join(from, name)
		if _, err := os.Stat(src); err != nil {
			continue
		}
		if err := copyFile(src, filepath.Join(to, name)); err != nil {
			return migrated, fmt.Errorf("copy %s: %w", name, err)
		}
		migrated = true
	}
	return migrated, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
