package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	persistlog "tetherline.dev/internal/persistence/log"
	"tetherline.dev/internal/sim/world"
)

type auditFilter struct {
	PlayerID  string
	Action    string
	SinceTick uint64
	ToTick    uint64
}

func (f auditFilter) match(e world.AuditEntry) bool {
	if f.PlayerID != "" && e.PlayerID != f.PlayerID {
		return false
	}
	if f.Action != "" && !strings.EqualFold(e.Action, f.Action) {
		return false
	}
	if e.Tick < f.SinceTick {
		return false
	}
	return f.ToTick == 0 || e.Tick <= f.ToTick
}

func auditCmd(args []string) {
	fs := flag.NewFlagSet("audit", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id")
	var f auditFilter
	fs.StringVar(&f.PlayerID, "player", "", "player_id filter")
	fs.StringVar(&f.Action, "action", "", "DEPLOY or SPLICE")
	fs.Uint64Var(&f.SinceTick, "since_tick", 0, "first tick (inclusive)")
	fs.Uint64Var(&f.ToTick, "to_tick", 0, "last tick (inclusive, optional)")
	_ = fs.Parse(args)

	if strings.TrimSpace(*worldID) == "" {
		fmt.Fprintln(os.Stderr, "missing -world")
		os.Exit(2)
	}
	worldDir := filepath.Join(*dataDir, "worlds", *worldID)
	n, err := readAudit(worldDir, f, printJSON)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read audit:", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "%d entries\n", n)
}

func readAudit(worldDir string, f auditFilter, emit func(any)) (int, error) {
	files, err := persistlog.ListFiles(filepath.Join(worldDir, "audit"), "audit")
	if err != nil {
		return 0, err
	}
	n := 0
	for _, path := range files {
		err := persistlog.ScanFile(path, func(line []byte) error {
			var e world.AuditEntry
			if err := json.Unmarshal(line, &e); err != nil {
				return fmt.Errorf("unmarshal: %w", err)
			}
			if f.match(e) {
				n++
				emit(e)
			}
			return nil
		})
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
