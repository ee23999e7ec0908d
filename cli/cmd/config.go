/*
Copyright © 2022 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/p1nant0m/packet-eater/config"
)

const (
	shortDescription_Config = "Print the effective configuration as yaml"
	longDescription_Config  = `Print the configuration after defaults, the --conf file and the
PACKET_EATER_* environment overrides have been applied.`
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: shortDescription_Config,
	Long:  longDescription_Config,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := config.Dump(conf)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
