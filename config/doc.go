// Package config handles application configuration loading and management.
//
// Configuration is stored in ~/.gitscrub/config.json and includes the identity
// override, extra keys to unset, the store backend selection, and guard-mode
// behavior.
package config
