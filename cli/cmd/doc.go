// Package cmd implements the stylec subcommands: transform, types, repl and
// init.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the user configuration file.
	ConfigIdentifier = "config"
)
