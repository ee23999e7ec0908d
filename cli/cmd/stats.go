/*
Copyright © 2022 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/p1nant0m/packet-eater/handler/utils"
	"github.com/p1nant0m/packet-eater/internal/store"
	srvv1 "github.com/p1nant0m/packet-eater/service/rest/service/v1"
)

const (
	shortDescription_Stats = "Print what has been eaten so far"
	longDescription_Stats  = ""
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: shortDescription_Stats,
	Long:  longDescription_Stats,
	Args:  cobra.NoArgs,
	RunE:  statsCommandRunFunc,
}

func statsCommandRunFunc(cmd *cobra.Command, args []string) error {
	return withStore(cmd.Context(), func(ctx context.Context, f store.Factory) error {
		stats, err := srvv1.NewService(srvv1.Dependencies{Store: f}).Stats().Get(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, utils.FontSet(stats.Summary))
		fmt.Fprintf(out, "packets:    %d (%s)\n", stats.Packets, stats.PacketBytesHuman)
		fmt.Fprintf(out, "sessions:   %d\n", stats.Sessions)
		fmt.Fprintf(out, "submitters: %d\n", stats.Submitters)
		return nil
	})
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
