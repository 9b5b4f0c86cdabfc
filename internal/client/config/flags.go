package config

import (
	"flag"
	"os"

	"github.com/smolyakovd/inkpad/internal/flagx"
)

// parseFlags overlays Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   base URL of the knowledge-base API
//	-t string   path of the token file
//
// Only the flags handled here are parsed; flagx.FilterArgs keeps this flag
// set from colliding with -c/-config handled by the JSON stage.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the knowledge-base API")
	fs.StringVar(&cfg.TokenFile, "t", cfg.TokenFile, "path of the token file")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
