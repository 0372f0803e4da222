package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"centavo/internal/domain/item"
	"centavo/internal/domain/sync"
	"centavo/internal/infrastructure/crypto"
	"centavo/internal/infrastructure/postgres"
	"centavo/internal/infrastructure/provider"
	"centavo/internal/shared/config"
)

const usage = `Centavo Admin CLI - Management commands for the Centavo API

Usage:
  admin <command> [options]

Commands:
  sync           Run an item sync for one or more users
  reset-cursor   Clear an item's sync cursor so the next sync refetches history

Examples:
  # Sync all items for a specific user
  admin sync --user-id=1

  # Sync multiple users
  admin sync --user-id=1,2,3

  # Sync every user with a linked item
  admin sync --all

  # Run with a timeout
  admin sync --user-id=1 --timeout=5m

  # Reset the cursor for an item
  admin reset-cursor --item-id=42
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage + "\n")
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "sync":
		runSync(os.Args[2:])
	case "reset-cursor":
		runResetCursor(os.Args[2:])
	case "help", "-h", "--help":
		fmt.Print(usage + "\n")
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		fmt.Print(usage + "\n")
		os.Exit(1)
	}
}

// openDeps connects to the database and builds the sync service stack.
func openDeps(cfg *config.Config) (*postgres.DB, *postgres.ItemRepository, *sync.Service, error) {
	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	encryptor, err := crypto.NewEncryptor(cfg.Encryption.Key)
	if err != nil {
		db.Close()
		return nil, nil, nil, err
	}

	itemRepo := postgres.NewItemRepository(db, encryptor)
	accountRepo := postgres.NewAccountRepository(db)
	transactionRepo := postgres.NewTransactionRepository(db)

	providerClient := provider.NewClient(cfg.Provider.BaseURL, cfg.Provider.ClientID, cfg.Provider.Secret)
	syncService := sync.NewService(
		providerClient,
		itemRepo,
		sync.NewAccountReconciler(accountRepo),
		sync.NewTransactionReconciler(transactionRepo, accountRepo),
	)

	return db, itemRepo, syncService, nil
}

func runSync(args []string) {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)

	userIDStr := fs.String("user-id", "", "User ID(s) to sync (comma-separated for multiple)")
	allUsers := fs.Bool("all", false, "Sync all users with linked items")
	timeoutStr := fs.String("timeout", "30m", "Timeout for the operation (e.g., 5m, 1h)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *userIDStr == "" && !*allUsers {
		fmt.Println("Error: must specify --user-id or --all")
		os.Exit(1)
	}

	timeout, err := time.ParseDuration(*timeoutStr)
	if err != nil {
		log.Fatalf("Invalid timeout format: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, itemRepo, syncService, err := openDeps(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer db.Close()
	log.Println("Connected to database")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var userIDs []int64
	if *allUsers {
		userIDs, err = itemRepo.ListUserIDs(ctx)
		if err != nil {
			log.Fatalf("Failed to list users: %v", err)
		}
		log.Printf("Found %d users with linked items", len(userIDs))
	} else {
		for _, p := range strings.Split(*userIDStr, ",") {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			id, err := strconv.ParseInt(p, 10, 64)
			if err != nil {
				log.Fatalf("Invalid user ID '%s': %v", p, err)
			}
			userIDs = append(userIDs, id)
		}
	}

	if len(userIDs) == 0 {
		log.Println("No users to process")
		return
	}

	startTime := time.Now()
	for _, userID := range userIDs {
		changed, err := syncService.SyncAllForUser(ctx, userID)
		if err != nil {
			log.Printf("User %d: sync failed: %v", userID, err)
			continue
		}
		fmt.Printf("User %d: %d transactions changed\n", userID, changed)
	}

	log.Printf("Sync completed in %v", time.Since(startTime))
}

func runResetCursor(args []string) {
	fs := flag.NewFlagSet("reset-cursor", flag.ExitOnError)

	itemID := fs.Int64("item-id", 0, "Item ID whose cursor to clear")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *itemID <= 0 {
		fmt.Println("Error: must specify --item-id")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, itemRepo, _, err := openDeps(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// A zero checkpoint clears both the cursor and the last-fetched
	// timestamp; the next sync starts from the beginning of the stream.
	if err := itemRepo.SaveCheckpoint(ctx, *itemID, item.Checkpoint{}); err != nil {
		log.Fatalf("Failed to reset cursor for item %d: %v", *itemID, err)
	}

	fmt.Printf("Cursor reset for item %d\n", *itemID)
}
