// Package gitcfg abstracts git's global configuration store behind a small
// Store interface so the scrub sequence can run against the real git binary,
// directly against a gitconfig-format file, or against an in-memory fake in
// tests. Keys are dotted paths (section, optional subsection, option name);
// the subsection may itself contain dots, as in url.<remote-url>.insteadof.
package gitcfg
