package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	persistlog "github.com/mickeyshaughnessy/TexasDoT/internal/persistence/log"
	"github.com/mickeyshaughnessy/TexasDoT/internal/persistence/snapshot"
	"github.com/mickeyshaughnessy/TexasDoT/internal/sim/agency"
	"github.com/mickeyshaughnessy/TexasDoT/internal/sim/tuning"
	"github.com/mickeyshaughnessy/TexasDoT/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		agencyID   = flag.String("agency", "agency_1", "agency id")
		seed       = flag.Int64("seed", 1337, "simulation seed (used only when starting fresh)")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable indexing (day/audit + snapshot metadata)")

		snapPath   = flag.String("snapshot", "", "path to snapshot to load (optional)")
		loadLatest = flag.Bool("load_latest_snapshot", true, "load latest snapshot from data dir if present (when -snapshot is empty)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	agencyDir := filepath.Join(*dataDir, "agencies", *agencyID)
	_ = os.MkdirAll(agencyDir, 0o755)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}

	// Optional: read-model index backend (does not affect sim determinism).
	idx, err := openRuntimeIndex(agencyDir, *disableDB)
	if err != nil {
		logger.Fatalf("open index backend: %v", err)
	}
	if idx != nil {
		defer idx.Close()
	}

	snapshotToLoad := strings.TrimSpace(*snapPath)
	if snapshotToLoad == "" && *loadLatest {
		snapshotToLoad = latestSnapshot(agencyDir)
	}

	// Load tuning (optional for snapshot resumes; the snapshot carries the
	// effective parameters).
	tune, tuneErr := tuning.Load(tp)
	if tuneErr != nil {
		if !os.IsNotExist(tuneErr) {
			logger.Fatalf("load tuning: %v", tuneErr)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
	}

	cfg := tune.Apply(agency.Config{ID: *agencyID, Seed: *seed})

	var eng *agency.Engine
	if snapshotToLoad != "" {
		snap, err := snapshot.ReadSnapshot(snapshotToLoad)
		if err != nil {
			logger.Fatalf("read snapshot: %v", err)
		}
		if snap.Header.AgencyID != "" && snap.Header.AgencyID != *agencyID {
			logger.Fatalf("snapshot agency id mismatch: flag=%s snap=%s", *agencyID, snap.Header.AgencyID)
		}
		eng, err = agency.FromSnapshot(cfg, snap)
		if err != nil {
			logger.Fatalf("import snapshot: %v", err)
		}
		logger.Printf("resumed from snapshot=%s day=%d", filepath.Base(snapshotToLoad), eng.CurrentDay())
	} else {
		eng, err = agency.New(cfg, agency.StarterAssets(), agency.StarterContractors())
		if err != nil {
			logger.Fatalf("engine: %v", err)
		}
	}

	ctx, cancel := signalContext()
	defer cancel()

	dayLog := persistlog.NewDayLogger(agencyDir)
	auditLog := persistlog.NewAuditLogger(agencyDir)
	defer dayLog.Close()
	defer auditLog.Close()
	eng.SetDayLogger(multiDayLogger{a: dayLog, b: idx})
	eng.SetAuditLogger(multiAuditLogger{a: auditLog, b: idx})

	// Snapshot writer.
	snapCh := make(chan snapshot.SnapshotV1, 2)
	eng.SetSnapshotSink(snapCh)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case snap := <-snapCh:
				path := filepath.Join(agencyDir, "snapshots", fmt.Sprintf("%d.snap.zst", snap.Header.Day))
				if err := snapshot.WriteSnapshot(path, snap); err != nil {
					logger.Printf("snapshot write: %v", err)
					continue
				}
				if idx != nil {
					idx.RecordSnapshot(path, snap)
				}
			}
		}
	}()

	runDone := make(chan struct{})
	go func() {
		eng.Run(ctx)
		close(runDone)
	}()

	// Admin reads go through the engine's query channel so they never
	// race the stepping loop.
	queryState := func(ctx context.Context, assetID int) (agency.StateView, bool) {
		q := agency.StateQuery{AssetID: assetID, Resp: make(chan agency.StateView, 1)}
		select {
		case eng.Queries() <- q:
		case <-ctx.Done():
			return agency.StateView{}, false
		}
		select {
		case v := <-q.Resp:
			return v, true
		case <-ctx.Done():
			return agency.StateView{}, false
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/admin/v1/state", func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		ctx2, cancel2 := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel2()
		view, ok := queryState(ctx2, 0)
		if !ok {
			http.Error(rw, "engine unavailable", http.StatusServiceUnavailable)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		resp := struct {
			AgencyID string        `json:"agency_id"`
			Day      uint64        `json:"day"`
			Budget   agency.Budget `json:"budget"`
		}{
			AgencyID: eng.ID(),
			Day:      view.Day,
			Budget:   view.Budget,
		}
		_ = json.NewEncoder(rw).Encode(resp)
	})
	mux.HandleFunc("/admin/v1/asset_status", func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		id, err := strconv.Atoi(r.URL.Query().Get("id"))
		if err != nil {
			http.Error(rw, "bad id", http.StatusBadRequest)
			return
		}
		ctx2, cancel2 := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel2()
		view, ok := queryState(ctx2, id)
		if !ok {
			http.Error(rw, "engine unavailable", http.StatusServiceUnavailable)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		if !view.AssetOK {
			rw.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(rw).Encode(map[string]any{"ok": false, "error": fmt.Sprintf("asset %d: not found", id)})
			return
		}
		status, err := eng.FieldStatus(ctx2, id)
		if err != nil {
			rw.WriteHeader(http.StatusBadGateway)
			_ = json.NewEncoder(rw).Encode(map[string]any{"ok": false, "error": err.Error()})
			return
		}
		_ = json.NewEncoder(rw).Encode(map[string]any{"ok": true, "asset_id": id, "status": status})
	})
	mux.HandleFunc("/v1/ws", ws.NewServer(eng, logger).Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}

	// Final checkpoint once the loop has stopped stepping.
	<-runDone
	snap := eng.ExportSnapshot()
	path := filepath.Join(agencyDir, "snapshots", fmt.Sprintf("%d.snap.zst", snap.Header.Day))
	if err := snapshot.WriteSnapshot(path, snap); err != nil {
		logger.Printf("final checkpoint: %v", err)
		return
	}
	if idx != nil {
		idx.RecordSnapshot(path, snap)
	}
	logger.Printf("final checkpoint written: day=%d", snap.Header.Day)
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func latestSnapshot(agencyDir string) string {
	dir := filepath.Join(agencyDir, "snapshots")
	ents, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var best string
	var bestDay uint64
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".snap.zst") {
			continue
		}
		base := strings.TrimSuffix(name, ".snap.zst")
		day, err := strconv.ParseUint(base, 10, 64)
		if err != nil {
			continue
		}
		if best == "" || day > bestDay {
			bestDay = day
			best = filepath.Join(dir, name)
		}
	}
	return best
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
