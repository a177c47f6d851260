package server

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/pdfdesk/internal/logging"
	"github.com/dmitrijs2005/pdfdesk/internal/server/config"
	gs "github.com/dmitrijs2005/pdfdesk/internal/server/grpc"
)

func newTestApp(t *testing.T, httpAddr, grpcAddr string) *App {
	t.Helper()
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return &App{
		config:     &config.Config{},
		logger:     logging.Discard(),
		db:         db,
		httpServer: &http.Server{Addr: httpAddr, Handler: http.NotFoundHandler()},
		grpcServer: gs.NewGRPCServer(grpcAddr, logging.Discard(), db),
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	app := newTestApp(t, "127.0.0.1:0", "127.0.0.1:0")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	select {
	case err := <-done:
		t.Fatalf("app exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error on shutdown: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop within timeout after context cancel")
	}
}

func TestRun_FailingServerStopsTheOther(t *testing.T) {
	app := newTestApp(t, "127.0.0.1:0", "127.0.0.1:99999")

	done := make(chan error, 1)
	go func() { done <- app.Run(context.Background()) }()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected grpc bind error")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop after grpc failure")
	}
}
