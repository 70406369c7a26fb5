// Package main loads a YAML room directory into PostgreSQL.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/navzen/navigation/internal/config"
	"github.com/navzen/navigation/internal/rooms"
	"github.com/navzen/navigation/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	roomsFile := flag.String("rooms", "", "path to the YAML room directory")
	dryRun := flag.Bool("dry-run", false, "validate the directory without writing")
	flag.Parse()

	if *roomsFile == "" {
		fmt.Fprintln(os.Stderr, "usage: import-rooms -rooms <file.yaml> [-config <file>] [-dry-run]")
		os.Exit(1)
	}

	start := time.Now()
	dir, err := rooms.LoadFile(*roomsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if *dryRun {
		fmt.Printf("%d rooms valid in %s\n", dir.Len(), time.Since(start).Round(time.Millisecond))
		return
	}

	v := config.New()
	v.SetConfigFile(*configPath)
	if err := v.ReadInConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "error: reading config: %v\n", err)
		os.Exit(1)
	}
	var dbCfg config.DatabaseConfig
	if err := v.UnmarshalKey("database", &dbCfg); err != nil {
		fmt.Fprintf(os.Stderr, "error: parsing database config: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, dbCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	n, err := postgres.NewRoomRepository(pool.DB()).UpsertAll(ctx, dir.All())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("imported %d rooms in %s\n", n, time.Since(start).Round(time.Millisecond))
}
