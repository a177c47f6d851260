package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/pdfdesk/internal/flagx"
)

var clientFlags = []string{"-a", "-k", "-w"}

// parseFlags overlays Config fields from command-line flags. Only the flags
// listed in clientFlags are looked at; anything else in args is ignored.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the pdfdesk API")
	fs.StringVar(&cfg.TokenDir, "k", cfg.TokenDir, "directory for the saved session token")
	timeout := fs.Int("w", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(flagx.FilterArgs(args, clientFlags)); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "w" {
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
	return nil
}
