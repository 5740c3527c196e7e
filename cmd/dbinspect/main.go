// Package main prints a summary of a MemoryLane database.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/memorylane/memorylane-server/internal/domain"
	"github.com/memorylane/memorylane-server/internal/store"
	"github.com/memorylane/memorylane-server/internal/store/sqlite"
)

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/MemoryLane/memories.db")
	}

	if _, err := os.Stat(dbPath); err != nil {
		log.Fatalf("Database not found: %v", err)
	}

	db, err := sqlite.OpenReadOnly(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	tags, err := db.ListTags(ctx)
	if err != nil {
		log.Fatalf("Failed to list tags: %v", err)
	}

	memories, err := db.ListMemories(ctx, store.MemoryFilter{})
	if err != nil {
		log.Fatalf("Failed to list memories: %v", err)
	}

	perTag := make(map[string]int, len(tags))
	untagged := 0
	badDates := 0
	for _, m := range memories {
		if len(m.Tags) == 0 {
			untagged++
		}
		for _, t := range m.Tags {
			perTag[t]++
		}
		if _, err := m.Date(); err != nil {
			badDates++
			if badDates <= 3 {
				fmt.Printf("Memory (UNPARSEABLE DATE): %s\n", m.Name)
				fmt.Printf("  ID: %d\n", m.ID)
				fmt.Printf("  Timestamp: %q\n", m.Timestamp)
				fmt.Println()
			}
		}
	}

	domain.SortMemories(memories, domain.SortNewest)
	for i, m := range memories {
		if i == 5 {
			fmt.Printf("... and %d more memories\n\n", len(memories)-5)
			break
		}
		fmt.Printf("Memory: %s\n", m.Name)
		fmt.Printf("  ID: %d\n", m.ID)
		fmt.Printf("  Date: %s\n", m.Timestamp)
		fmt.Printf("  Tags: %v\n", m.Tags)
		fmt.Printf("  Image: %d bytes\n", len(m.Image))
		fmt.Println()
	}

	fmt.Println("=== Summary ===")
	fmt.Printf("Total memories: %d\n", len(memories))
	fmt.Printf("Untagged memories: %d\n", untagged)
	fmt.Printf("Unparseable dates: %d\n", badDates)
	fmt.Printf("Tags in catalog: %d\n", len(tags))
	for _, t := range tags {
		fmt.Printf("  %-12s %d\n", t.Name, perTag[t.Name])
	}
}
