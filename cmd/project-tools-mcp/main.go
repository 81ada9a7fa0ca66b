// Command project-tools-mcp serves the project tools MCP server over HTTP.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	projecttools "github.com/wagiedev/project-tools-mcp"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// flags are layered over the file and environment; only flags the user
// set take effect.
type flags struct {
	configPath   string
	host         string
	port         int
	root         string
	sessionIDs   string
	jsonResponse bool
	sse          bool
	logLevel     string
	logFormat    string
	denyPaths    []string
	rateLimit    float64
	rateBurst    int
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	var f flags

	root := &cobra.Command{
		Use:          "project-tools-mcp",
		Short:        "MCP server exposing project tools over HTTP",
		SilenceUsage: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&f.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&f.root, "root", "", "workspace root for file tools (default: working directory)")
	root.PersistentFlags().StringSliceVar(&f.denyPaths, "deny-path", nil, "glob of paths file tools refuse (repeatable)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, &f)
			if err != nil {
				return err
			}

			return serve(cmd.Context(), cfg, stderr)
		},
	}
	serveCmd.Flags().StringVar(&f.host, "host", "", "listen host")
	serveCmd.Flags().IntVar(&f.port, "port", projecttools.DefaultConfig().Port, "listen port")
	serveCmd.Flags().StringVar(&f.sessionIDs, "session-ids", projecttools.SessionIDsULID, "session id policy (ulid, none)")
	serveCmd.Flags().BoolVar(&f.jsonResponse, "json-response", true, "answer /mcp with JSON bodies instead of event streams")
	serveCmd.Flags().BoolVar(&f.sse, "sse", true, "serve the legacy SSE transport at /mcp/sse")
	serveCmd.Flags().StringVar(&f.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	serveCmd.Flags().StringVar(&f.logFormat, "log-format", "text", "log format (text, json, dev)")
	serveCmd.Flags().Float64Var(&f.rateLimit, "rate-limit", 0, "requests per second across clients (0 disables)")
	serveCmd.Flags().IntVar(&f.rateBurst, "rate-burst", projecttools.DefaultConfig().RateBurst, "rate limit burst")

	toolsCmd := &cobra.Command{
		Use:   "tools",
		Short: "Print the tool catalog as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, &f)
			if err != nil {
				return err
			}

			return printTools(cmd.OutOrStdout(), cfg)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "project-tools-mcp v%s\n", projecttools.Version)
		},
	}

	root.AddCommand(serveCmd, toolsCmd, versionCmd)

	return root
}

func loadConfig(cmd *cobra.Command, f *flags) (*projecttools.Config, error) {
	cfg, err := projecttools.LoadConfig(f.configPath)
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed

	if changed("host") {
		cfg.Host = f.host
	}

	if changed("port") {
		cfg.Port = f.port
	}

	if changed("root") {
		cfg.Root = f.root
	}

	if changed("session-ids") {
		cfg.SessionIDs = f.sessionIDs
	}

	if changed("json-response") {
		cfg.JSONResponse = f.jsonResponse
	}

	if changed("sse") {
		cfg.SSE = f.sse
	}

	if changed("log-level") {
		cfg.LogLevel = f.logLevel
	}

	if changed("log-format") {
		cfg.LogFormat = f.logFormat
	}

	if changed("deny-path") {
		cfg.DenyPaths = append(cfg.DenyPaths, f.denyPaths...)
	}

	if changed("rate-limit") {
		cfg.RateLimit = f.rateLimit
	}

	if changed("rate-burst") {
		cfg.RateBurst = f.rateBurst
	}

	return cfg, cfg.Validate()
}

func serve(ctx context.Context, cfg *projecttools.Config, logOut io.Writer) error {
	log, err := projecttools.NewLogger(logOut, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	srv, err := projecttools.NewServer(
		projecttools.WithConfig(cfg),
		projecttools.WithLogger(log),
	)
	if err != nil {
		return err
	}

	if err := srv.ListenAndServe(ctx); err != nil {
		log.Error("Server stopped", "error", err)
		return err
	}

	log.Info("Server stopped")

	return nil
}

func printTools(w io.Writer, cfg *projecttools.Config) error {
	srv, err := projecttools.NewServer(projecttools.WithConfig(cfg))
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(map[string]any{"tools": srv.Manifest()}); err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}

	return enc.Close()
}
