package main

import (
	"context"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"mlem2/internal/logging"
	mcpserver "mlem2/internal/mcp"
	"mlem2/internal/store"
)

var serveFlags struct {
	db string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over stdio",
	Long: `Starts an MCP server over stdin/stdout exposing induce_rules, describe_table,
list_runs and get_run. With --db (or db in the config file) induced rule sets can
be recorded and queried.

The server monitors for parent process death and exits when the client is gone.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.db, "db", "", "History DB path (history tools disabled when empty)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	path := serveFlags.db
	if path == "" {
		path = runConfig.DB
	}
	var st store.Store
	if path != "" {
		sq, err := store.Open(path)
		if err != nil {
			return err
		}
		defer sq.Close()
		st = sq
	}
	srv := mcpserver.NewServer(st)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	mcpserver.WatchParent(ctx, 2*time.Second, cancel)

	logging.New("mcp").Info("starting mlem2 MCP server over stdio", "history", path != "")
	return srv.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}
