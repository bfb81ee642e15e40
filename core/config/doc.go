// Package config provides configuration management for the izzymart service.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings,
// divided into subsections:
//   - Server: HTTP server settings (port, API key, base path)
//   - Database: catalog database connection details
//   - Storage: S3/MinIO credentials and bucket settings
//   - Log: logging level and format
//   - Lookup: resolver defaults, adapter timeouts, worker pool sizing
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
