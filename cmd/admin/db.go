package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"tetherline.dev/internal/persistence/indexdb"
)

func dbCmd(args []string) {
	fs := flag.NewFlagSet("db", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id (required unless -db)")
	dbPath := fs.String("db", "", "sqlite db path (optional)")
	limit := fs.Int("limit", 20, "result limit")
	playerID := fs.String("player", "", "player_id filter (audits)")
	_ = fs.Parse(args)

	q := "ticks"
	if fs.NArg() > 0 {
		q = strings.TrimSpace(fs.Arg(0))
	}

	path := strings.TrimSpace(*dbPath)
	if path == "" {
		if strings.TrimSpace(*worldID) == "" {
			fmt.Fprintln(os.Stderr, "missing -world or -db")
			os.Exit(2)
		}
		path = filepath.Join(*dataDir, "worlds", *worldID, "index", "world.sqlite")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := runQuery(ctx, db, q, *playerID, *limit, printJSON); err != nil {
		fmt.Fprintln(os.Stderr, q+":", err)
		os.Exit(1)
	}
}

func runQuery(ctx context.Context, db *sql.DB, q, playerID string, limit int, emit func(any)) error {
	switch q {
	case "ticks":
		rows, err := indexdb.RecentTicks(ctx, db, limit)
		if err != nil {
			return err
		}
		for _, r := range rows {
			emit(r)
		}
	case "audits":
		rows, err := indexdb.Audits(ctx, db, playerID, limit)
		if err != nil {
			return err
		}
		for _, r := range rows {
			emit(r)
		}
	case "meta":
		rows, err := db.QueryContext(ctx, `SELECT key,value FROM meta ORDER BY key`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var r struct {
				Key   string `json:"key"`
				Value string `json:"value"`
			}
			if err := rows.Scan(&r.Key, &r.Value); err != nil {
				return err
			}
			emit(r)
		}
		return rows.Err()
	default:
		return fmt.Errorf("unknown query (want ticks|audits|meta)")
	}
	return nil
}
