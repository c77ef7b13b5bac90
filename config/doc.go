// Package config provides configuration loading and validation for docsgate.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (DOCSGATE_ prefix)
//  4. CLI flags
//
// Without explicit files, ./docsgate.yaml is read if present.
//
// # Usage
//
//	cfg, err := config.Load([]string{"docsgate.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with DOCSGATE_ prefix:
//   - server.port → DOCSGATE_SERVER_PORT
//   - store.backend → DOCSGATE_STORE_BACKEND
//   - store.s3.bucket → DOCSGATE_STORE_S3_BUCKET
//
// # Configuration Structure
//
// The Config struct contains:
//   - Server: port, redirect scheme, and timeouts
//   - Store: backend (filesystem/s3/catalog), path, S3 and catalog settings
//   - CORS: cross-origin resource sharing settings
//   - Metrics: whether /metrics is served, and where
//   - Log: logging level
//   - Env: "prod" switches logging to JSON
//
// # Validation
//
// Configuration is validated using struct tags:
//   - Port must be 1-65535
//   - Scheme must be https or http
//   - Backend must be filesystem, s3, or catalog
//   - Log level must be debug, info, warn, or error
//
// The selected backend's settings are then checked by StoreConfig.Validate.
package config
