package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/edgequery/edgequery/pkg/logger"
	"github.com/edgequery/edgequery/pkg/server"
)

func getServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server that renders query results as HTML",
		RunE:  runServe,
	}

	cmd.Flags().Int("port", DefaultPort, "Port to listen on (also EDGEQUERY_PORT)")
	_ = viper.BindPFlag("port", cmd.Flags().Lookup("port"))

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	l := logger.Get()

	svc, err := buildService()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	srv, err := server.New(server.Config{
		ListenAddr:   serverListenAddr(),
		WriteTimeout: requestTimeout(),
	}, svc)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		l.Infof("Shutting down")
		return nil
	})

	return g.Wait()
}
