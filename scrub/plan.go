package scrub

import (
	"context"
	"strings"
)

// urlAliasSlot marks the position in the allow-list where url insteadOf
// aliases are unset. Those key names embed the remote URL (sometimes with an
// access token inside), so they are never hard-coded: the slot expands at plan
// time to whatever url.*.insteadof entries the store currently holds.
const urlAliasSlot = "url.*.insteadof"

// defaultKeys is the ordered allow-list of global keys the scrub unsets.
// The first entry is not a typo in this file: the legacy reset script unset
// "ore.excludesfile", and setups that ran it may still carry that stray key.
var defaultKeys = []string{
	"ore.excludesfile",
	"push.default",
	"push.insteadof",
	"sendemail.from",
	"sendemail.smtpserver",
	"sendemail.smtpserverport",
	"sendemail.smtpencryption",
	"sendemail.smtpuser",
	"sendemail.smtppass",
	"sendemail.suppresscc",
	"sendemail.chainreplyto",
	urlAliasSlot,
	"http.sslverify",
	"filter.lfs.clean",
	"filter.lfs.smudge",
	"filter.lfs.process",
	"filter.lfs.required",
}

// DefaultKeys returns the fixed allow-list, url alias slot included.
func DefaultKeys() []string {
	keys := make([]string, len(defaultKeys))
	copy(keys, defaultKeys)
	return keys
}

// Identity is the name/email pair installed after the unsets.
type Identity struct {
	Email string
	Name  string
}

// DefaultIdentity is the identity the scrub installs unless overridden.
var DefaultIdentity = Identity{
	Email: "anirudha0807@gmail.com",
	Name:  "Anirudha",
}

// OpKind discriminates plan operations.
type OpKind int

const (
	OpUnset OpKind = iota
	OpSet
)

func (k OpKind) String() string {
	if k == OpSet {
		return "set"
	}
	return "unset"
}

// Operation is one step of the scrub sequence. Value is only meaningful for
// OpSet.
type Operation struct {
	Kind  OpKind
	Key   string
	Value string
}

// isURLAlias reports whether key is a url insteadOf alias entry.
func isURLAlias(key string) bool {
	return strings.HasPrefix(key, "url.") && strings.HasSuffix(key, ".insteadof")
}

// Plan produces the ordered operation list: the allow-list unsets (with the
// url alias slot expanded from the store's current entries, in store order),
// any extra keys from the app config, then the two identity sets.
func (s *Scrubber) Plan(ctx context.Context) ([]Operation, error) {
	entries, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	var aliases []string
	for _, e := range entries {
		if isURLAlias(e.Key) {
			aliases = append(aliases, e.Key)
		}
	}

	var ops []Operation
	for _, key := range defaultKeys {
		if key == urlAliasSlot {
			for _, alias := range aliases {
				ops = append(ops, Operation{Kind: OpUnset, Key: alias})
			}
			continue
		}
		ops = append(ops, Operation{Kind: OpUnset, Key: key})
	}
	for _, key := range s.extraKeys {
		ops = append(ops, Operation{Kind: OpUnset, Key: key})
	}
	ops = append(ops,
		Operation{Kind: OpSet, Key: "user.email", Value: s.identity.Email},
		Operation{Kind: OpSet, Key: "user.name", Value: s.identity.Name},
	)
	return ops, nil
}
