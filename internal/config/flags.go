package config

import (
	"flag"
	"os"

	"github.com/skarpenko/govault/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   PostgreSQL DSN
//	-n int      scrypt CPU/memory cost (interactive profile)
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with the -c/-config flags handled
// by the JSON overlay.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-n"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.IntVar(&config.Interactive.N, "n", config.Interactive.N, "scrypt cost parameter N (interactive profile)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
