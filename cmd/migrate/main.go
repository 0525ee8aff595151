package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/danielostrow/planVision/internal/config"
	"github.com/danielostrow/planVision/internal/repository/sqlite"
	"github.com/danielostrow/planVision/internal/service/pageid"
)

func main() {
	cfg := config.Load()
	rootDir := flag.String("root", cfg.RootDirectory,
		"Root directory holding converted/ (default ROOT_DIR); relative paths resolve against the current directory")
	dbPath := flag.String("db", "", "Counter database path (default COUNTER_DB_PATH, or <root>/data/counters.db when -root is given)")
	flag.Parse()

	if *dbPath == "" {
		*dbPath = cfg.CounterDBPath
		if *rootDir != cfg.RootDirectory {
			*dbPath = filepath.Join(*rootDir, "data", "counters.db")
		}
	}
	convertedDir := filepath.Join(*rootDir, "converted")

	fmt.Printf("Seeding page counter for %s in %s\n", pageid.CounterKey(convertedDir), *dbPath)

	if err := os.MkdirAll(filepath.Dir(*dbPath), 0755); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}

	db, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	counter := pageid.NewPersistentCounter(sqlite.NewCounterRepository(db))
	previous, exists, err := counter.Current(convertedDir)
	if err != nil {
		log.Fatalf("Failed to read counter: %v", err)
	}

	next, err := counter.Seed(convertedDir)
	if err != nil {
		log.Fatalf("Failed to seed counter: %v", err)
	}

	if exists {
		fmt.Printf("Next page id changed from %d to %d\n", previous, next)
	} else {
		fmt.Printf("Next page id is %d (new counter)\n", next)
	}
}
