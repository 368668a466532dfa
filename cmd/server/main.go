package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"tetherline.dev/internal/metrics"
	"tetherline.dev/internal/persistence/indexdb"
	persistlog "tetherline.dev/internal/persistence/log"
	"tetherline.dev/internal/sim/tuning"
	"tetherline.dev/internal/sim/world"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		worldID    = flag.String("world", "world_1", "world id")
		configDir  = flag.String("configs", "./configs", "config directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite tick/audit index")
		enableProm = flag.Bool("metrics", true, "serve prometheus metrics on /metrics")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}

	worldDir := filepath.Join(*dataDir, "worlds", *worldID)
	if err := os.MkdirAll(worldDir, 0o755); err != nil {
		logger.Fatalf("data dir: %v", err)
	}

	w, err := world.New(world.ConfigFromTuning(*worldID, tune))
	if err != nil {
		logger.Fatalf("world: %v", err)
	}
	w.SetLogger(log.New(os.Stdout, "[world] ", log.LstdFlags|log.Lmicroseconds))

	runID := uuid.NewString()
	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(worldDir, "index", "world.sqlite"))
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		defer idx.Close()
		recordRunMeta(idx, runID, *worldID, tune, logger)
	}

	tickLog := persistlog.NewTickLogger(worldDir)
	auditLog := persistlog.NewAuditLogger(worldDir)
	defer tickLog.Close()
	defer auditLog.Close()
	w.SetTickLogger(multiTickLogger{a: tickLog, b: indexOrNil(idx)})
	w.SetAuditLogger(multiAuditLogger{a: auditLog, b: indexOrNil(idx)})

	var rec *metrics.Recorder
	if *enableProm {
		rec = metrics.New(*worldID)
		w.SetMetricsSink(rec)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              *addr,
		Handler:           newMux(w, rec, idx, adminEnabled(), logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := w.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		logger.Printf("listening on %s world=%s run=%s", *addr, *worldID, runID)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		return srv.Shutdown(ctx2)
	})

	if err := g.Wait(); err != nil {
		logger.Printf("stopped: %v", err)
	}
	logger.Printf("shutdown at tick %d", w.CurrentTick())
}

func recordRunMeta(idx *indexdb.SQLiteIndex, runID, worldID string, tune tuning.Tuning, logger *log.Logger) {
	meta := map[string]string{
		"run_id":           runID,
		"world_id":         worldID,
		"protocol_version": tune.ProtocolVersion,
		"started_at":       time.Now().UTC().Format(time.RFC3339),
	}
	if b, err := tuneJSON(tune); err == nil {
		meta["tuning"] = b
	}
	for k, v := range meta {
		if err := idx.SetMeta(k, v); err != nil {
			logger.Printf("index meta %s: %v", k, err)
		}
	}
}

func tuneJSON(t tuning.Tuning) (string, error) {
	b, err := json.Marshal(t)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// indexOrNil keeps a nil *SQLiteIndex from becoming a non-nil interface.
func indexOrNil(idx *indexdb.SQLiteIndex) interface {
	world.TickLogger
	world.AuditLogger
} {
	if idx == nil {
		return nil
	}
	return idx
}

func adminEnabled() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("TL_ENABLE_ADMIN_HTTP"))) {
	case "0", "false", "no", "off":
		return false
	case "1", "true", "yes", "on":
		return true
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("DEPLOY_ENV"))) {
	case "staging", "production":
		return false
	default:
		return true
	}
}

type multiTickLogger struct {
	a world.TickLogger
	b world.TickLogger
}

func (m multiTickLogger) WriteTick(entry world.TickLogEntry) error {
	var err error
	if m.a != nil {
		err = m.a.WriteTick(entry)
	}
	if m.b != nil {
		_ = m.b.WriteTick(entry)
	}
	return err
}

type multiAuditLogger struct {
	a world.AuditLogger
	b world.AuditLogger
}

func (m multiAuditLogger) WriteAudit(entry world.AuditEntry) error {
	var err error
	if m.a != nil {
		err = m.a.WriteAudit(entry)
	}
	if m.b != nil {
		_ = m.b.WriteAudit(entry)
	}
	return err
}
