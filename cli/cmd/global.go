// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/p1nant0m/packet-eater/internal/store"
	"github.com/p1nant0m/packet-eater/internal/store/duckdb"
	"github.com/p1nant0m/packet-eater/pkg/options"
)

var globalFlags = GlobalFlags{}

// GlobalFlags are flags that defined globally and are inherited to all sub-commands.
type GlobalFlags struct {
	ConfigPath string
	LogLevel   string
}

func getGlobalFlags(command *cobra.Command) (conf GlobalFlags, err error) {
	conf.ConfigPath, err = command.Flags().GetString("conf")
	if err != nil {
		return
	}
	conf.LogLevel, err = command.Flags().GetString("log-level")
	if err != nil {
		return
	}
	return
}

// openStore opens the configured database for the offline commands.
func openStore(ctx context.Context) (store.Factory, error) {
	return duckdb.GetDuckDBFactoryOr(ctx, options.DuckDBOptionsFromConfig(conf.Storage))
}
