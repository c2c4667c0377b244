package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"detectwidget/internal/logger"
	"detectwidget/internal/repository/memory"
	"detectwidget/internal/repository/sqlite"
	"detectwidget/internal/service/storage"
)

func main() {
	dbPath := flag.String("db", "data/widget.db", "Database path")
	client := flag.String("client", "", "Browser id (vw_client cookie); lists known ids when empty")
	clearHistory := flag.Bool("clear", false, "Clear the history instead of printing it")
	flag.Parse()

	if _, err := os.Stat(*dbPath); err != nil {
		log.Fatalf("Database not found: %v", err)
	}

	db, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if *client == "" {
		scopes, err := db.Scopes()
		if err != nil {
			log.Fatalf("Failed to list browsers: %v", err)
		}
		for _, scope := range scopes {
			fmt.Println(scope)
		}
		return
	}

	store := storage.NewService(sqlite.NewKVRepository(db, *client), memory.NewSessionStore(), logger.NewWithWriter(os.Stderr))

	if *clearHistory {
		if err := store.ClearHistory(); err != nil {
			log.Fatalf("Failed to clear history: %v", err)
		}
		fmt.Printf("History cleared for %s\n", *client)
		return
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(store.LoadHistory()); err != nil {
		log.Fatalf("Failed to write history: %v", err)
	}
}
