/*
Copyright © 2022 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/p1nant0m/packet-eater/pkg/app"
)

const (
	shortDescription_Serve = "Run the upload server and the ingestion workers"
	longDescription_Serve  = `Run the upload server, the ingestion workers, the submitter cache
refresh and the session compactor in one process until SIGINT or SIGTERM.`
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: shortDescription_Serve,
	Long:  longDescription_Serve,
	RunE:  serveCommandRunFunc,
}

func serveCommandRunFunc(cmd *cobra.Command, args []string) error {
	watcher := make(chan os.Signal, 1)
	signal.Notify(watcher, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(watcher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		select {
		case <-watcher:
			// OS Signal Catched, exit the program gracefully
			cancel()
		case <-ctx.Done():
		}
	}()

	a, err := app.New(ctx, conf)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.Run(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
