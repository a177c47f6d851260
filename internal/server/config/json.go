package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/pdfdesk/internal/flagx"
	"github.com/dmitrijs2005/pdfdesk/internal/timex"
)

// jsonConfig is the on-disk shape of the config file. Durations accept
// either "15m"-style strings or integer nanoseconds. Absent keys leave the
// current value untouched.
type jsonConfig struct {
	EndpointAddrHTTP      *string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC      *string         `json:"endpoint_addr_grpc"`
	DatabaseDSN           *string         `json:"database_dsn"`
	SecretKey             *string         `json:"secret_key"`
	TokenValidityDuration *timex.Duration `json:"token_validity_duration"`
	S3RootUser            *string         `json:"s3_root_user"`
	S3RootPassword        *string         `json:"s3_root_password"`
	S3Bucket              *string         `json:"s3_bucket"`
	S3Region              *string         `json:"s3_region"`
	S3BaseEndpoint        *string         `json:"s3_base_endpoint"`
	MaxUploadBytes        *int64          `json:"max_upload_bytes"`
	MaxDocuments          *int            `json:"max_documents"`
	AuthRateLimit         *int            `json:"auth_rate_limit"`
	LogLevel              *string         `json:"log_level"`
}

// parseJSON overlays values from the file named by -c/-config, if any.
func parseJSON(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &jsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	setIf(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setIf(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setIf(&config.DatabaseDSN, c.DatabaseDSN)
	setIf(&config.SecretKey, c.SecretKey)
	if c.TokenValidityDuration != nil {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	setIf(&config.S3RootUser, c.S3RootUser)
	setIf(&config.S3RootPassword, c.S3RootPassword)
	setIf(&config.S3Bucket, c.S3Bucket)
	setIf(&config.S3Region, c.S3Region)
	setIf(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setIf(&config.MaxUploadBytes, c.MaxUploadBytes)
	setIf(&config.MaxDocuments, c.MaxDocuments)
	setIf(&config.AuthRateLimit, c.AuthRateLimit)
	setIf(&config.LogLevel, c.LogLevel)

	return nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
