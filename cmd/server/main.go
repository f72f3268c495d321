/*
main.go - Application entry point

PURPOSE:
  Wires the payroll engine together and serves the REST API.

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -store   Storage backend: memory | sqlite | bolt (default: sqlite)
  -db      Database path for sqlite/bolt (default: payroll.db)
           Use ":memory:" with -store=sqlite for an in-memory database
  -period  Accrual period length (default: 720h, one 30-day period)
  -admin   Comma-separated admin identities (default: admin)
  -seed    Starting balance minted to each admin's treasury account,
           so the pool can be funded in a fresh dev setup

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, drain active requests
  (30s timeout), close the store, exit.

EXAMPLES:
  ./server -store=memory
  ./server -store=bolt -db=./data/payroll.bolt
  ./server -period=168h -admin=alice,bob
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/warp/payroll-engine/api"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store/bolt"
	"github.com/warp/payroll-engine/store/memory"
	"github.com/warp/payroll-engine/store/sqlite"
	"github.com/warp/payroll-engine/treasury"
)

func main() {
	port := flag.Int("port", 8080, "HTTP server port")
	storeKind := flag.String("store", "sqlite", "storage backend: memory | sqlite | bolt")
	dbPath := flag.String("db", "payroll.db", "database path for sqlite/bolt")
	period := flag.Duration("period", payroll.DefaultPeriodLength, "accrual period length")
	admins := flag.String("admin", "admin", "comma-separated admin identities")
	seed := flag.Int64("seed", 1_000_000, "starting treasury balance per admin")
	flag.Parse()

	store, closer, err := openStore(*storeKind, *dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	if closer != nil {
		defer closer.Close()
	}

	adminIDs := strings.Split(*admins, ",")
	bank := treasury.NewBank("payroll-pool")
	for _, id := range adminIDs {
		bank.Mint(treasury.Account(id), *seed)
	}

	engine, err := payroll.New(payroll.Config{
		Store:        store,
		Treasury:     bank,
		Admin:        payroll.Admins(adminIDs...),
		PeriodLength: *period,
	})
	if err != nil {
		log.Fatalf("Failed to build engine: %v", err)
	}

	router := api.NewRouter(api.NewHandler(engine))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Payroll engine listening on http://localhost:%d/api (store=%s, period=%s)",
			*port, *storeKind, *period)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server stopped")
}

func openStore(kind, path string) (payroll.Store, io.Closer, error) {
	switch kind {
	case "memory":
		return memory.New(), nil, nil
	case "sqlite":
		s, err := sqlite.New(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case "bolt":
		s, err := bolt.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", kind)
	}
}
