// Package config provides configuration loading and validation for the shop
// API and the file server.
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
//  3. Environment variables (SHOPAPP_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags(),
//	    config.WithFlagKey("port", "shop.port"))
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
// All config keys map to environment variables with SHOPAPP_ prefix:
//   - database.password → SHOPAPP_DATABASE_PASSWORD
//   - shop.port → SHOPAPP_SHOP_PORT
//   - fileserver.upload_dir → SHOPAPP_FILESERVER_UPLOAD_DIR
//
// # Configuration Structure
//
// The Config struct contains:
//   - Env and Log: deployment environment and log level
//   - Server: HTTP timeouts shared by both services
//   - Database: driver, connection fields or DSN, pool and query timeouts
//   - Shop: shop API port
//   - FileServer: port, upload root, size and count limits, allowed
//     extensions, public URL prefix
//   - CORS: cross-origin resource sharing settings
package config
