// eveuni: EVE University Wiki MCP Server
//
// An MCP server that exposes the EVE University wiki (search, pages,
// summaries, categories, backlinks) and a newbro mining plan generator
// to AI assistants, over stdio or streamable HTTP.
//
// Usage:
//
//	eveuni serve             # Start MCP server (transport from config)
//	eveuni serve -config f   # Start with a YAML config file
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/tommybobb/eve-uni-mcp/internal/admission"
	"github.com/tommybobb/eve-uni-mcp/internal/config"
	"github.com/tommybobb/eve-uni-mcp/internal/server"
	"github.com/tommybobb/eve-uni-mcp/internal/tools"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := run(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("eveuni v%s\n", server.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "path to a YAML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath, os.Environ())
	if err != nil {
		return err
	}

	// Logs go to stderr so they never interfere with the stdio
	// transport on stdout.
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// The bearer token guards only the network surface. A stdio client
	// already owns the process, so authenticating it adds nothing.
	credential := admission.NoCredential()
	if cfg.Transport == config.TransportHTTP {
		credential = admission.RequireToken(cfg.AuthToken)
	}

	s, cleanup, err := server.New(cfg, credential, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	// Graceful shutdown on interrupt.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	switch cfg.Transport {
	case config.TransportHTTP:
		logger.Info("serving MCP over HTTP",
			"addr", cfg.Addr(), "auth", cfg.AuthToken != "")
		return server.ListenAndServe(ctx, cfg, server.NewHTTPHandler(s))
	default:
		return mcpserver.ServeStdio(s,
			mcpserver.WithStdioContextFunc(func(ctx context.Context) context.Context {
				return tools.WithCaller(ctx, tools.Caller{ID: "local"})
			}),
		)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `eveuni v%s — EVE University Wiki MCP Server

Usage:
  eveuni serve [-config file]   Start the MCP server
  eveuni version                Print the version

Configuration:
  Transport, rate limits, and the wiki endpoint come from the optional
  YAML config file and environment variables (MCP_TRANSPORT, MCP_PORT,
  MCP_AUTH_TOKEN, ...). The default is the stdio transport.

  Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "eve-uni-wiki": {
        "command": "eveuni",
        "args": ["serve"]
      }
    }
  }
`, server.Version)
}
