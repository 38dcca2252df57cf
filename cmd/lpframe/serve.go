package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/epithet-ssh/lpframe/pkg/seqserver"
	"github.com/epithet-ssh/lpframe/pkg/streamconn"
	"golang.org/x/sync/errgroup"
)

type ServeCLI struct {
	Listen      string        `help:"Address to accept sequences on" short:"l" env:"LPFRAME_LISTEN" default:":7411"`
	Network     string        `help:"Network for --listen" enum:"tcp,unix" default:"tcp"`
	Admin       string        `help:"Address for the admin HTTP server (empty disables it)" env:"LPFRAME_ADMIN"`
	Mode        string        `help:"How to answer each message" short:"m" enum:"echo,upper,reverse" default:"echo"`
	MaxLength   uint32        `help:"Largest message accepted or sent, in bytes (0 for no limit)" default:"0"`
	IdleTimeout time.Duration `help:"How long to wait for each frame (0 waits forever)" default:"0s"`
}

func (s *ServeCLI) Run(ctx context.Context, logger *slog.Logger) error {
	logger.Debug("serve command called", "serve", s)

	h, err := seqserver.HandlerByName(s.Mode)
	if err != nil {
		return err
	}
	opts := []seqserver.Option{
		seqserver.WithLogger(logger),
		seqserver.WithIdleTimeout(s.IdleTimeout),
	}
	if s.MaxLength > 0 {
		opts = append(opts, seqserver.WithMaxLength(s.MaxLength))
	}
	srv := seqserver.New(h, opts...)

	ln, err := streamconn.Listen(ctx, s.Network, s.Listen)
	if err != nil {
		return fmt.Errorf("unable to listen: %w", err)
	}
	logger.Info("listening", "address", ln.Addr().String(), "mode", s.Mode)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(gctx, ln)
	})

	if s.Admin != "" {
		admin := &http.Server{
			Addr:              s.Admin,
			Handler:           srv.AdminRouter(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Go(func() error {
			logger.Info("admin listening", "address", s.Admin)
			if err := admin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("admin server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return admin.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}
