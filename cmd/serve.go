package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/subcommands"
	"go.uber.org/zap"

	"github.com/etnz/equity"
	"github.com/etnz/equity/api"
)

const shutdownTimeout = 10 * time.Second

type serveCmd struct {
	addr string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the dashboard and its JSON API" }
func (*serveCmd) Usage() string {
	return `dash serve [-addr <host:port>]

  Serves the HTML dashboard on / and the JSON API under /api. The ledger is
  read again on every request. With a journal configured, every metrics
  request is recorded.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "Listen address. Defaults to the configured server address.")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, status := openApp()
	if a == nil {
		return status
	}
	defer a.Close()
	if c.addr == "" {
		c.addr = a.cfg.Server.Addr
	}
	if !*Verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	source := api.SourceFunc(func(context.Context) ([]equity.Transaction, error) { return a.transactions() })
	opts := []api.Option{api.WithLogger(a.log), api.WithCurrency(a.cfg.Currency)}
	if a.journal != nil {
		opts = append(opts, api.WithRecorder(a.journal))
	}
	srv := &http.Server{
		Addr:              c.addr,
		Handler:           api.NewRouter(api.New(a.agg, source, opts...)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		a.log.Info("listening", zap.String("addr", c.addr))
		fmt.Fprintf(os.Stderr, "Serving the dashboard on http://%s\n", c.addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "Error serving: %v\n", err)
			return subcommands.ExitFailure
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "Error shutting down: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}
