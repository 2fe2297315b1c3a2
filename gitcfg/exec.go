package gitcfg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// git config exit codes we care about: --unset of an absent key exits 5,
// --get of an absent key exits 1. See git-config(1) "RETURN VALUES".
const (
	exitGetNotFound   = 1
	exitUnsetNotFound = 5
)

// ExecStore drives the global configuration through the git binary itself.
// This is the faithful backend: every operation is one `git config --global`
// invocation, waited on synchronously.
type ExecStore struct {
	gitPath string
	// configFile, when non-empty, is passed as --file instead of --global so
	// tests and the file-scoped commands can target an arbitrary gitconfig.
	configFile string
}

// NewExecStore returns a store backed by the git binary, or an error when git
// is not installed.
func NewExecStore() (*ExecStore, error) {
	path, err := exec.LookPath("git")
	if err != nil {
		return nil, fmt.Errorf("git is not installed or not on PATH. Please install git first")
	}
	return &ExecStore{gitPath: path}, nil
}

// NewExecStoreForFile is like NewExecStore but targets the given gitconfig
// file instead of the global scope.
func NewExecStoreForFile(path string) (*ExecStore, error) {
	s, err := NewExecStore()
	if err != nil {
		return nil, err
	}
	s.configFile = path
	return s, nil
}

func (s *ExecStore) run(ctx context.Context, args ...string) (string, error) {
	scope := []string{"config", "--global"}
	if s.configFile != "" {
		scope = []string{"config", "--file", s.configFile}
	}
	cmd := exec.CommandContext(ctx, s.gitPath, append(scope, args...)...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return string(output), fmt.Errorf("git config failed: %s (%w)", strings.TrimSpace(string(output)), err)
	}
	return string(output), nil
}

// exitCode extracts the process exit code from a wrapped exec error, or -1.
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func (s *ExecStore) Get(ctx context.Context, key string) (string, error) {
	output, err := s.run(ctx, "--get", key)
	if err != nil {
		if exitCode(err) == exitGetNotFound {
			return "", ErrKeyNotFound
		}
		return "", err
	}
	return strings.TrimSuffix(output, "\n"), nil
}

func (s *ExecStore) Set(ctx context.Context, key, value string) error {
	_, err := s.run(ctx, key, value)
	return err
}

func (s *ExecStore) Unset(ctx context.Context, key string) error {
	_, err := s.run(ctx, "--unset", key)
	if err != nil && exitCode(err) == exitUnsetNotFound {
		return ErrKeyNotFound
	}
	return err
}

func (s *ExecStore) List(ctx context.Context) ([]Entry, error) {
	output, err := s.run(ctx, "--list")
	if err != nil {
		// A user with no global config file at all is an empty store, not an
		// error: git exits 128 with "unable to read config file".
		if exitCode(err) == 128 && strings.Contains(err.Error(), "unable to read config file") {
			return nil, nil
		}
		return nil, err
	}

	var entries []Entry
	for _, line := range strings.Split(output, "\n") {
		if line == "" {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		entries = append(entries, Entry{Key: key, Value: value})
	}
	return entries, nil
}
