// Package scrub resets the global git configuration: it unsets a fixed
// allow-list of keys, installs a fixed identity, and reports the remaining
// configuration. Unsetting an already-absent key is expected and never stops
// the sequence; only the inability to reach the store at all is fatal.
package scrub

import (
	"context"
	"errors"

	"github.com/ByteMirror/gitscrub/gitcfg"
	"github.com/ByteMirror/gitscrub/log"
)

// Scrubber runs the reset sequence against a Store.
type Scrubber struct {
	store     gitcfg.Store
	identity  Identity
	extraKeys []string
}

// Option configures a Scrubber.
type Option func(*Scrubber)

// WithIdentity overrides the identity installed after the unsets. Empty
// fields keep their defaults.
func WithIdentity(id Identity) Option {
	return func(s *Scrubber) {
		if id.Email != "" {
			s.identity.Email = id.Email
		}
		if id.Name != "" {
			s.identity.Name = id.Name
		}
	}
}

// WithExtraKeys appends additional keys to unset after the fixed allow-list.
func WithExtraKeys(keys []string) Option {
	return func(s *Scrubber) {
		s.extraKeys = append(s.extraKeys, keys...)
	}
}

// New returns a Scrubber over store with the default identity.
func New(store gitcfg.Store, opts ...Option) *Scrubber {
	s := &Scrubber{
		store:    store,
		identity: DefaultIdentity,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Identity returns the identity this scrubber installs.
func (s *Scrubber) Identity() Identity {
	return s.identity
}

// Run executes the full sequence. Per-operation failures are recorded in the
// report and never stop the remaining operations; an error is returned only
// when the plan or the final listing cannot be produced at all.
func (s *Scrubber) Run(ctx context.Context) (*Report, error) {
	ops, err := s.Plan(ctx)
	if err != nil {
		return nil, err
	}
	return s.Apply(ctx, ops)
}

// Apply executes the given operations in order and produces the report.
func (s *Scrubber) Apply(ctx context.Context, ops []Operation) (*Report, error) {
	report := &Report{}
	for _, op := range ops {
		report.Results = append(report.Results, s.apply(ctx, op))
	}

	entries, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	report.Remaining = entries
	return report, nil
}

func (s *Scrubber) apply(ctx context.Context, op Operation) OpResult {
	result := OpResult{Op: op}
	var err error
	switch op.Kind {
	case OpSet:
		err = s.store.Set(ctx, op.Key, op.Value)
	default:
		err = s.store.Unset(ctx, op.Key)
	}

	switch {
	case err == nil:
		result.Status = StatusApplied
	case errors.Is(err, gitcfg.ErrKeyNotFound):
		result.Status = StatusSkipped
	default:
		result.Status = StatusFailed
		result.Err = err.Error()
		log.WarningLog.Printf("%s %s failed: %v", op.Kind, log.SanitizeKey(op.Key), err)
	}
	return result
}

// Status returns the allow-listed entries (and extra keys) currently present
// in the store, plus whether the identity keys already hold the scrubber's
// values. Key names in the result are not sanitized; callers that log or
// display them should pass them through log.SanitizeKey.
func (s *Scrubber) Status(ctx context.Context) (present []gitcfg.Entry, identityOK bool, err error) {
	entries, err := s.store.List(ctx)
	if err != nil {
		return nil, false, err
	}

	wanted := make(map[string]bool, len(defaultKeys)+len(s.extraKeys))
	for _, key := range defaultKeys {
		if key != urlAliasSlot {
			wanted[key] = true
		}
	}
	for _, key := range s.extraKeys {
		wanted[key] = true
	}

	email, name := "", ""
	for _, e := range entries {
		if wanted[e.Key] || isURLAlias(e.Key) {
			present = append(present, e)
		}
		switch e.Key {
		case "user.email":
			email = e.Value
		case "user.name":
			name = e.Value
		}
	}
	identityOK = email == s.identity.Email && name == s.identity.Name
	return present, identityOK, nil
}
