// Package main provides a tool to seed the database with sample memories.
//
// It seeds the tag catalog and then creates memories spread over the past
// few years so listing, sorting, and filtering can be tried out by hand.
//
// Usage:
//
//	DB_PATH=~/MemoryLane/memories.db go run ./cmd/seed
//	go run ./cmd/seed -count 50 -- -db-path /tmp/memories.db
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/memorylane/memorylane-server/internal/config"
	"github.com/memorylane/memorylane-server/internal/id"
	"github.com/memorylane/memorylane-server/internal/logger"
	"github.com/memorylane/memorylane-server/internal/service"
	"github.com/memorylane/memorylane-server/internal/store/sqlite"
)

var samples = []struct {
	name, description string
}{
	{"Sunday pancakes", "Blueberry pancakes on the balcony, far too many of them."},
	{"First snow", "Woke up to a white street and walked to the bakery before anyone else."},
	{"Lake swim", "Cold water, warm rocks, and a thermos of tea afterwards."},
	{"Night train", "Slept badly, woke up somewhere new. Worth it."},
	{"Market haul", "Tomatoes that actually taste like tomatoes."},
	{"Summit", "Clouds below us for the last hour of the climb."},
	{"Dumpling night", "Folded two hundred dumplings, ate most of them."},
	{"Old town", "Got lost on purpose and found a tiny bookshop."},
}

func main() {
	count := flag.Int("count", 20, "Number of memories to create")
	seed := flag.Uint64("seed", 0, "Random seed (0 picks one from the clock)")

	flag.Parse()

	// Arguments after "--" are server flags (db path, tags, env files).
	cfg, err := config.Load(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	}).WithField("db_path", cfg.Database.Path)

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}

	s, err := sqlite.Open(cfg.Database.Path, log.Logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	tags := service.NewTagService(s, log.Logger)
	if _, err := tags.SeedCatalog(ctx, cfg.Tags.Vocabulary); err != nil {
		log.Fatalf("Failed to seed tags: %v", err)
	}

	catalog, err := tags.ListTags(ctx)
	if err != nil {
		log.Fatalf("Failed to list tags: %v", err)
	}

	if *seed == 0 {
		*seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(*seed, *seed>>1))

	memories := service.NewMemoryService(s, log.Logger)
	now := time.Now().UTC()

	created := 0
	for i := range *count {
		sample := samples[i%len(samples)]

		// Up to three distinct tags, sometimes none.
		var names []string
		for _, idx := range rng.Perm(len(catalog))[:rng.IntN(min(3, len(catalog))+1)] {
			names = append(names, catalog[idx].Name)
		}

		day := now.AddDate(0, 0, -rng.IntN(3*365))
		memoryID, err := memories.CreateMemory(ctx, service.MemoryRequest{
			Name:        sample.name,
			Description: sample.description,
			Timestamp:   day.Format(time.DateOnly),
			Image:       "https://picsum.photos/seed/" + id.MustGenerate("memory") + "/800/600",
			Tags:        names,
		})
		if err != nil {
			log.WithError(err).Warn("Failed to create memory", "index", i)
			continue
		}

		created++
		fmt.Printf("  [%d] %s on %s %v\n", memoryID, sample.name, day.Format(time.DateOnly), names)
	}

	fmt.Printf("\nCreated %d memories (seed %d)\n", created, *seed)
}
