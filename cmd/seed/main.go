// Command seed fills a store with demo users and items.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/itemledger/itemledger/internal/config"
	"github.com/itemledger/itemledger/internal/model"
	"github.com/itemledger/itemledger/internal/repository"
)

type output struct {
	Driver  string  `json:"driver"`
	UserIDs []int64 `json:"user_ids"`
	ItemIDs []int64 `json:"item_ids"`
}

func main() {
	var (
		driver       = flag.String("driver", envOrDefault("STORE_DRIVER", config.DriverSQLite), "Store driver: postgres or sqlite")
		dsn          = flag.String("dsn", "", "Connection string; defaults to DATABASE_URL or SQLITE_PATH")
		users        = flag.Int("users", 5, "Number of users to create")
		itemsPerUser = flag.Int("items-per-user", 3, "Items created for each user")
		format       = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *driver == config.DriverMemory {
		fmt.Fprintln(os.Stderr, "memory store does not persist; use postgres or sqlite")
		os.Exit(1)
	}
	if *dsn == "" {
		*dsn = defaultDSN(*driver)
	}
	if *dsn == "" {
		fmt.Fprintln(os.Stderr, "a DSN is required for driver", *driver)
		os.Exit(1)
	}
	if *users < 0 || *itemsPerUser < 0 {
		fmt.Fprintln(os.Stderr, "counts must not be negative")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := repository.Open(ctx, *driver, *dsn, true)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open store:", err)
		os.Exit(1)
	}
	defer store.Close()

	out, err := seed(ctx, store, *users, *itemsPerUser)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	out.Driver = *driver

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Printf("users: %v\nitems: %v\n", out.UserIDs, out.ItemIDs)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

// seed creates users with unique emails and gives each of them items with
// increasing prices.
func seed(ctx context.Context, store repository.Store, users, itemsPerUser int) (*output, error) {
	out := &output{UserIDs: []int64{}, ItemIDs: []int64{}}
	stamp := time.Now().UTC().Unix()

	for i := 1; i <= users; i++ {
		u, err := store.CreateUser(ctx, model.NewUser{
			Email:    fmt.Sprintf("seed-%d-%d@example.com", stamp, i),
			FullName: fmt.Sprintf("Seed User %d", i),
		})
		if err != nil {
			return nil, fmt.Errorf("create user %d: %w", i, err)
		}
		out.UserIDs = append(out.UserIDs, u.ID)

		for j := 1; j <= itemsPerUser; j++ {
			desc := fmt.Sprintf("Seeded item %d of user %d", j, u.ID)
			it, err := store.CreateItem(ctx, model.NewItem{
				Title:       fmt.Sprintf("Item %d-%d", i, j),
				Description: &desc,
				Price:       float64(i*10+j) + 0.99,
				OwnerID:     u.ID,
			})
			if err != nil {
				return nil, fmt.Errorf("create item for user %d: %w", u.ID, err)
			}
			out.ItemIDs = append(out.ItemIDs, it.ID)
		}
	}
	return out, nil
}

func defaultDSN(driver string) string {
	switch driver {
	case config.DriverPostgres:
		return os.Getenv("DATABASE_URL")
	case config.DriverSQLite:
		return envOrDefault("SQLITE_PATH", "itemledger.db")
	default:
		return ""
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
