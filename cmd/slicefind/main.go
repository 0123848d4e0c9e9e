// Command slicefind runs the slice-finding HTTP server, mirroring the
// teacher's main.go: flag-parsed startup, a gin router, graceful shutdown on
// SIGINT/SIGTERM. Distribution, config-service, and memory-manager wiring
// are out of scope here (spec.md §1 excludes distributed execution) so this
// entrypoint is a single-process server over a local sqlite snapshot store.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"gitlab.grandhoo.com/rock/slicelattice/cmd/slicefind/httpapi"
	"gitlab.grandhoo.com/rock/slicelattice/internal/rockshare/logger"
	"gitlab.grandhoo.com/rock/slicelattice/snapshot"
)

func main() {
	addr := flag.String("addr", ":8088", "listen address")
	dbPath := flag.String("db", "slicefind_snapshots.db", "path to the sqlite snapshot store")
	level := flag.String("level", "info", "log level: debug|info|warn|error")
	flag.Parse()

	logger.SetLevel(*level)

	store, err := snapshot.Open(*dbPath)
	if err != nil {
		fmt.Printf("failed to open snapshot store at %s: %v\n", *dbPath, err)
		os.Exit(1)
	}

	r := gin.Default()
	r.POST("/slice-find", httpapi.Handler(store))
	srv := &http.Server{Addr: *addr, Handler: r}

	go func() {
		logger.Infof("slicefind listening on %s", *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infof("shutdown slicefind server ...")
	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Errorf("server shutdown: %v", err)
	}
}
