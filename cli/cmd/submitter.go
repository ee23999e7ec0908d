/*
Copyright © 2022 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/p1nant0m/packet-eater/handler/utils"
	"github.com/p1nant0m/packet-eater/internal/store"
	v1 "github.com/p1nant0m/packet-eater/pkg/api/v1"
	metav1 "github.com/p1nant0m/packet-eater/pkg/meta/v1"
)

const (
	shortDescription_Submitter = "Inspect and moderate submitters"
	longDescription_Submitter  = `Inspect and moderate submitters directly on the database file.

DuckDB allows a single writer process, so stop the server first or use the
/api/v1/submitters endpoints from the server host instead.`
)

type submitterFlags struct {
	Limit  int
	Offset int
}

var subFlags = &submitterFlags{}

// submitterCmd represents the submitter command
var submitterCmd = &cobra.Command{
	Use:   "submitter",
	Short: shortDescription_Submitter,
	Long:  longDescription_Submitter,
}

var submitterListCmd = &cobra.Command{
	Use:   "list",
	Short: "List submitters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, f store.Factory) error {
			subs, err := f.Submitters().List(ctx, listOptionsFromFlags(cmd.Flags()))
			if err != nil {
				return err
			}
			printSubmitters(cmd.OutOrStdout(), subs)
			return nil
		})
	},
}

var submitterDeleteCmd = &cobra.Command{
	Use:   "delete <identifier>",
	Short: "Delete a submitter with its sessions and packets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, f store.Factory) error {
			result, err := f.Submitters().Delete(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s: %d session(s), %d packet(s)\n", args[0], result.Sessions, result.Packets)
			return nil
		})
	},
}

// flagCommand builds a subcommand that sets one moderation flag.
func flagCommand(use, short string, opts func() metav1.SetFlagsOptions) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <identifier>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, f store.Factory) error {
				sub, err := f.Submitters().SetFlags(ctx, args[0], opts())
				if err != nil {
					return err
				}
				printSubmitters(cmd.OutOrStdout(), []*v1.Submitter{sub})
				return nil
			})
		},
	}
}

func setFlags(whitelisted, banned *bool) func() metav1.SetFlagsOptions {
	return func() metav1.SetFlagsOptions {
		return metav1.SetFlagsOptions{Whitelisted: whitelisted, Banned: banned}
	}
}

func boolPtr(b bool) *bool { return &b }

func listOptionsFromFlags(flags *pflag.FlagSet) metav1.ListOptions {
	var opts metav1.ListOptions
	if value, err := flags.GetInt("limit"); err == nil && flags.Changed("limit") {
		opts.Limit = value
	}
	if value, err := flags.GetInt("offset"); err == nil && flags.Changed("offset") {
		opts.Offset = value
	}
	return opts
}

func printSubmitters(w io.Writer, subs []*v1.Submitter) {
	fmt.Fprintln(w, utils.FontSet(fmt.Sprintf("%-6s %-64s %-11s %-6s", "ID", "IDENTIFIER", "WHITELISTED", "BANNED")))
	for _, s := range subs {
		fmt.Fprintf(w, "%-6d %-64s %-11t %-6t\n", s.ID, s.Identifier, s.Whitelisted, s.Banned)
	}
}

func withStore(ctx context.Context, fn func(context.Context, store.Factory) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	f, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer f.Close()
	return fn(ctx, f)
}

func init() {
	rootCmd.AddCommand(submitterCmd)

	submitterListCmd.Flags().IntVar(&subFlags.Limit, "limit", 0, "maximum number of submitters to list, 0 for all")
	submitterListCmd.Flags().IntVar(&subFlags.Offset, "offset", 0, "number of submitters to skip")

	submitterCmd.AddCommand(
		submitterListCmd,
		submitterDeleteCmd,
		flagCommand("whitelist", "Allow a submitter to upload", setFlags(boolPtr(true), nil)),
		flagCommand("unwhitelist", "Revoke a submitter's whitelisting", setFlags(boolPtr(false), nil)),
		flagCommand("ban", "Ban a submitter", setFlags(nil, boolPtr(true))),
		flagCommand("unban", "Lift a submitter's ban", setFlags(nil, boolPtr(false))),
	)
}
