package config

import (
	"flag"
	"os"
	"time"

	"github.com/planloop/planloop/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   path to the local SQLite database
//	-p string   Firestore project id
//	-t string   path to the stored ID token
//	-i int      push interval in seconds
//	-l string   log level
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-p", "-t", "-i", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "path to local database")
	fs.StringVar(&cfg.FirestoreProjectID, "p", cfg.FirestoreProjectID, "firestore project id")
	fs.StringVar(&cfg.IDTokenFile, "t", cfg.IDTokenFile, "path to stored id token")
	pushInterval := fs.Int("i", int(cfg.PushInterval.Seconds()), "push interval (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.PushInterval = time.Duration(*pushInterval) * time.Second
}
