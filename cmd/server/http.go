package main

import (
	"encoding/json"
	"log"
	"net"
	"net/http"
	"strings"

	"tetherline.dev/internal/metrics"
	"tetherline.dev/internal/persistence/indexdb"
	"tetherline.dev/internal/sim/world"
	"tetherline.dev/internal/transport/observer"
	"tetherline.dev/internal/transport/ws"
)

func newMux(w *world.World, rec *metrics.Recorder, idx *indexdb.SQLiteIndex, admin bool, logger *log.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	if rec != nil {
		mux.Handle("/metrics", rec.Handler())
	}

	if admin {
		// Local-only admin endpoints (do not affect simulation determinism).
		mux.HandleFunc("/admin/v1/state", func(rw http.ResponseWriter, r *http.Request) {
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			resp := struct {
				WorldID string             `json:"world_id"`
				Tick    uint64             `json:"tick"`
				Metrics world.WorldMetrics `json:"metrics"`
				Index   *indexdb.Stats     `json:"index,omitempty"`
			}{
				WorldID: w.ID(),
				Tick:    w.CurrentTick(),
				Metrics: w.Metrics(),
			}
			if idx != nil {
				st := idx.Stats()
				resp.Index = &st
			}
			rw.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(rw).Encode(resp)
		})
	} else {
		logger.Printf("admin endpoints disabled (TL_ENABLE_ADMIN_HTTP=false)")
	}

	obsSrv := observer.NewServer(w, log.New(logger.Writer(), "[observer] ", logger.Flags()))
	mux.HandleFunc("/v1/observer/bootstrap", obsSrv.BootstrapHandler())
	mux.HandleFunc("/v1/observer/ws", obsSrv.WSHandler())
	mux.HandleFunc("/v1/ws", ws.NewServer(w, log.New(logger.Writer(), "[ws] ", logger.Flags())).Handler())
	return mux
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
