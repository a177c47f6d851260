package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/pdfdesk/internal/flagx"
	"github.com/dmitrijs2005/pdfdesk/internal/timex"
)

// jsonConfig is the on-disk shape of the config file. Absent keys leave the
// current value untouched.
type jsonConfig struct {
	ServerURL      *string         `json:"server_url"`
	TokenDir       *string         `json:"token_dir"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
}

// parseJSON overlays cfg with values from the file named by -c/-config.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if jc.ServerURL != nil {
		cfg.ServerURL = *jc.ServerURL
	}
	if jc.TokenDir != nil {
		cfg.TokenDir = *jc.TokenDir
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	return nil
}
