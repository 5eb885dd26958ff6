package main

import (
	"github.com/ericogr/elemental-cards/internal/catalog"
	"github.com/ericogr/elemental-cards/internal/config"
	"github.com/ericogr/elemental-cards/internal/logging"
	"github.com/ericogr/elemental-cards/internal/storage"
)

func loadConfigOrExit(path string) *config.LoadedConfig {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		logging.Fatal("Missing or invalid elemental configuration", err, logging.Fields{"config_path": path})
	}
	if err := logging.SetLevel(cfg.LogLevel); err != nil {
		logging.Warn("Unknown log level, keeping default", err, logging.Fields{"level": cfg.LogLevel})
	}
	return cfg
}

func loadCatalogOrExit(path string) *catalog.Catalog {
	if path == "" {
		cat, err := catalog.Default()
		if err != nil {
			logging.Fatal("Embedded catalog is invalid", err, nil)
		}
		return cat
	}
	cat, err := catalog.Load(path)
	if err != nil {
		logging.Fatal("Failed to load catalog", err, logging.Fields{"catalog_path": path})
	}
	return cat
}

func createRepositoryOrExit(dbPath string) storage.Repository {
	db, err := storage.OpenAndMigrate(dbPath)
	if err != nil {
		logging.Fatal("Failed to initialize database", err, logging.Fields{"database_path": dbPath})
	}
	return storage.NewSQLiteRepository(db)
}
