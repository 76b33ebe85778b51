package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"gymdesk/internal/config"
	"gymdesk/internal/database"
	"gymdesk/internal/models"

	"gopkg.in/yaml.v3"
)

type TrainersConfig struct {
	Trainers []models.Trainer `yaml:"trainers"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		trainersPath = flag.String("trainers", "configs/config.yaml", "path to yaml with a trainers block")
		dbPath       = flag.String("db", "./data/gymdesk.db", "path to sqlite db")
	)
	flag.Parse()

	data, err := os.ReadFile(*trainersPath)
	if err != nil {
		return fmt.Errorf("read trainers: %w", err)
	}
	var cfg TrainersConfig
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse trainers: %w", err)
	}
	if len(cfg.Trainers) == 0 {
		return fmt.Errorf("no trainers in yaml")
	}
	if err = config.ValidateTrainers(cfg.Trainers); err != nil {
		return fmt.Errorf("validate trainers: %w", err)
	}

	db, err := database.NewDB(*dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err = db.UpsertTrainers(ctx, cfg.Trainers); err != nil {
		return fmt.Errorf("upsert trainers: %w", err)
	}

	fmt.Printf("done: upserted=%d\n", len(cfg.Trainers))
	return nil
}
