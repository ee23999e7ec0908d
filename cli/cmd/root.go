/*
Copyright © 2022 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/p1nant0m/packet-eater/config"
	"github.com/p1nant0m/packet-eater/internal/log"
)

const (
	shortDescription_Root = "Collect game packet captures uploaded by players"
	longDescription_Root  = `packet-eater accepts packet captures over HTTP, admits submitters by
their network origin and stores every packet, grouped into capture
sessions, in a DuckDB database.`
)

// loaded by the persistent pre-run of every command
var conf *config.Config

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:               "packet-eater",
	Short:             shortDescription_Root,
	Long:              longDescription_Root,
	SilenceUsage:      true,
	PersistentPreRunE: rootPersistentPreRunE,
}

func rootPersistentPreRunE(cmd *cobra.Command, args []string) error {
	flags, err := getGlobalFlags(cmd)
	if err != nil {
		return err
	}

	if conf, err = config.Load(flags.ConfigPath); err != nil {
		return err
	}
	if flags.LogLevel != "" {
		conf.Log.Level = flags.LogLevel
	}
	return log.Init(conf.Log)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&globalFlags.ConfigPath, "conf", "c", "", "config file path <yml format>, defaults and PACKET_EATER_* environment when empty")
	rootCmd.PersistentFlags().StringVar(&globalFlags.LogLevel, "log-level", "", "override log.level")
}
