package gitcfg

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	format "github.com/go-git/go-git/v5/plumbing/format/config"
	"github.com/google/renameio/v2"
)

// FileStore edits a gitconfig-format file directly, without spawning git.
// Mutations decode the whole file, apply the change and atomically replace the
// file, so a crash mid-write never leaves a torn config behind.
type FileStore struct {
	path string
}

// DefaultGitconfigPath returns the user's global gitconfig location.
func DefaultGitconfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".gitconfig"), nil
}

// NewFileStore returns a store over the gitconfig file at path. The file does
// not have to exist yet; a missing file reads as an empty store.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the gitconfig file this store edits.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) load() (*format.Config, error) {
	cfg := format.New()
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	if err := format.NewDecoder(bytes.NewReader(data)).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	return cfg, nil
}

func (s *FileStore) save(cfg *format.Config) error {
	var buf bytes.Buffer
	if err := format.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode %s: %w", s.path, err)
	}
	if err := renameio.WriteFile(s.path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	return nil
}

// lookup returns the current value of key in cfg, honoring git's last-one-wins
// semantics for repeated options.
func lookup(cfg *format.Config, key string) (string, bool) {
	section, subsection, name, ok := SplitKey(key)
	if !ok {
		return "", false
	}

	var opts format.Options
	if subsection == "" {
		if !cfg.HasSection(section) {
			return "", false
		}
		opts = cfg.Section(section).Options
	} else {
		sec := cfg.Section(section)
		if !sec.HasSubsection(subsection) {
			return "", false
		}
		opts = sec.Subsection(subsection).Options
	}

	value := ""
	found := false
	for _, opt := range opts {
		if opt.IsKey(name) {
			value = opt.Value
			found = true
		}
	}
	return value, found
}

func (s *FileStore) Get(_ context.Context, key string) (string, error) {
	cfg, err := s.load()
	if err != nil {
		return "", err
	}
	value, found := lookup(cfg, key)
	if !found {
		return "", ErrKeyNotFound
	}
	return value, nil
}

func (s *FileStore) Set(_ context.Context, key, value string) error {
	section, subsection, name, ok := SplitKey(key)
	if !ok {
		return fmt.Errorf("invalid config key %q", key)
	}
	cfg, err := s.load()
	if err != nil {
		return err
	}
	if subsection == "" {
		cfg.Section(section).SetOption(name, value)
	} else {
		cfg.Section(section).Subsection(subsection).SetOption(name, value)
	}
	return s.save(cfg)
}

func (s *FileStore) Unset(_ context.Context, key string) error {
	section, subsection, name, ok := SplitKey(key)
	if !ok {
		return fmt.Errorf("invalid config key %q", key)
	}
	cfg, err := s.load()
	if err != nil {
		return err
	}
	if _, found := lookup(cfg, key); !found {
		return ErrKeyNotFound
	}
	if subsection == "" {
		cfg.Section(section).RemoveOption(name)
	} else {
		cfg.Section(section).Subsection(subsection).RemoveOption(name)
	}
	return s.save(cfg)
}

func (s *FileStore) List(_ context.Context) ([]Entry, error) {
	cfg, err := s.load()
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for _, sec := range cfg.Sections {
		for _, opt := range sec.Options {
			entries = append(entries, Entry{Key: JoinKey(sec.Name, "", opt.Key), Value: opt.Value})
		}
		for _, sub := range sec.Subsections {
			for _, opt := range sub.Options {
				entries = append(entries, Entry{Key: JoinKey(sec.Name, sub.Name, opt.Key), Value: opt.Value})
			}
		}
	}
	return entries, nil
}
