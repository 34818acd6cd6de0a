package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	dbPath := flag.String("db", "zombies.db", "SQLite database path (empty to disable accounts/stats)")
	logPath := flag.String("log", "", "rotated log file path (empty for stderr only)")
	clientDir := flag.String("client", "", "path to static client directory (empty to disable)")
	flag.Parse()

	InitLogger(*logPath)
	defer SyncLogger()

	var db *DB
	if *dbPath != "" {
		var err error
		db, err = OpenDB(*dbPath)
		if err != nil {
			Log.Fatalw("failed to open database", "path", *dbPath, "err", err)
		}
		defer db.Close()
	}

	hub := NewHub(db)
	go hub.Run()
	defer hub.analytics.Stop()

	mux := SetupRoutes(hub, *clientDir)
	server := &http.Server{Addr: *addr, Handler: mux}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		Log.Infow("server starting", "addr", *addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			Log.Fatalw("listen failed", "err", err)
		}
	}()

	<-stop
	Log.Infow("shutting down")
	server.Close()
}
