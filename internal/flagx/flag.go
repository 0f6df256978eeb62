// Package flagx contains helpers for selective command-line flag parsing, so
// independent components can each parse only the flags they own.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs returns a slice of command-line arguments that only contains
// the allowed flags (and their values) specified in allowedFlags.
//
// Supported formats:
//  1. Flag and value as separate arguments:  -c conf.json
//  2. Flag and value combined with '=':      --config=conf.json
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		// "--flag=value" or "-f=value"
		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		// flag as a separate argument, value possibly following
		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// JsonConfigFlags resolves the JSON config file path from -c/-config flags,
// returning "" when neither is present.
func JsonConfigFlags() string {
	args := FilterArgs(os.Args[1:], []string{"-c", "-config", "--config"})

	fs := flag.NewFlagSet("jsonconfig", flag.ContinueOnError)
	short := fs.String("c", "", "path to JSON config file")
	long := fs.String("config", "", "path to JSON config file")

	if err := fs.Parse(args); err != nil {
		return ""
	}

	if *long != "" {
		return *long
	}
	return *short
}
