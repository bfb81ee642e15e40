// Package database handles catalog database connections.
//
// It provides a wrapper around GORM to configure MySQL connections based on the
// application's configuration. A sqlite driver is supported for tests and small
// deployments; tests use it with an in-memory database.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
package database
