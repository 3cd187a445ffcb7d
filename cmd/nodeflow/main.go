// Command nodeflow loads a workflow definition from disk and runs it,
// renders it as a diagram, or runs it on a cron schedule.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/uptrace/bun"

	"github.com/nodeflow/nodeflow/internal/config"
	"github.com/nodeflow/nodeflow/internal/storage"
	"github.com/nodeflow/nodeflow/pkg/models"
	"github.com/nodeflow/nodeflow/pkg/sdk"
	"github.com/nodeflow/nodeflow/pkg/visualization"
)

const version = "0.1.0"

const usage = `nodeflow - workflow execution engine CLI

USAGE:
    nodeflow <command> [options]

COMMANDS:
    run <workflow.json>     Execute a workflow once
    show <workflow.json>    Render a workflow diagram
    health                  Check database connectivity and pool stats
    version                 Show version information
    help                    Show this help message

RUN OPTIONS:
    -input <file>           JSON file with input values (default: {})
    -schedule <cron>        Run repeatedly on a cron schedule instead of once

SHOW OPTIONS:
    -format <format>        Output format: mermaid, ascii (default: mermaid)
    -direction <dir>        Diagram direction: TB, LR, RL, BT (default: TB)
    -output <file>          Save to file instead of stdout

ENVIRONMENT VARIABLES:
    DATABASE_URL             Postgres connection string; empty uses in-memory storage
    NODEFLOW_LOG_LEVEL       debug, info, warn, error (default: info)
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		handleRun(os.Args[2:])
	case "show":
		handleShow(os.Args[2:])
	case "health":
		handleHealth()
	case "version":
		fmt.Printf("nodeflow v%s\n", version)
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command: %s\n", os.Args[1])
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func handleRun(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: run requires a workflow file path")
		os.Exit(1)
	}
	workflowPath := args[0]

	fs := flag.NewFlagSet("run", flag.ExitOnError)
	inputPath := fs.String("input", "", "JSON file with input values")
	schedule := fs.String("schedule", "", "Cron schedule to run repeatedly instead of once")
	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	wfData, err := os.ReadFile(workflowPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to read workflow file: %v\n", err)
		os.Exit(1)
	}

	input := map[string]any{}
	if *inputPath != "" {
		data, err := os.ReadFile(*inputPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to read input file: %v\n", err)
			os.Exit(1)
		}
		if err := json.Unmarshal(data, &input); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to parse input file: %v\n", err)
			os.Exit(1)
		}
	}

	client, closeDB := newClient(cfg)
	if closeDB != nil {
		defer closeDB()
	}

	wf, err := client.LoadWorkflowJSON(wfData)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load workflow: %v\n", err)
		os.Exit(1)
	}

	if *schedule == "" {
		runOnce(client, wf, input)
		return
	}

	runOnSchedule(client, wf, input, *schedule)
}

func runOnce(client *sdk.Client, wf *models.Workflow, input map[string]any) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	runID, outputs, err := client.Execute(ctx, wf, input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "run %s failed: %v\n", runID, err)
		os.Exit(1)
	}

	fmt.Printf("run %s completed with %d node output(s)\n", runID, len(outputs))
	for nodeID, out := range outputs {
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Printf("- %s:\n%s\n", nodeID, data)
	}
}

// runOnSchedule calls client.Execute with the same input on every cron
// tick, running until the process receives an interrupt.
func runOnSchedule(client *sdk.Client, wf *models.Workflow, input map[string]any, schedule string) {
	c := cron.New(cron.WithSeconds())
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(schedule); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid cron expression %q: %v\n", schedule, err)
		os.Exit(1)
	}

	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		runID, _, err := client.Execute(ctx, wf, input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "scheduled run %s failed: %v\n", runID, err)
			return
		}
		fmt.Printf("scheduled run %s completed\n", runID)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to schedule: %v\n", err)
		os.Exit(1)
	}

	c.Start()
	fmt.Printf("running on schedule %q, press Ctrl+C to stop\n", schedule)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	stopCtx := c.Stop()
	<-stopCtx.Done()
}

func handleShow(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: show requires a workflow file path")
		os.Exit(1)
	}
	workflowPath := args[0]

	fs := flag.NewFlagSet("show", flag.ExitOnError)
	format := fs.String("format", "mermaid", "Output format: mermaid, ascii")
	direction := fs.String("direction", "TB", "Diagram direction: TB, LR, RL, BT")
	output := fs.String("output", "", "Save to file instead of stdout")
	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(1)
	}

	*format = strings.ToLower(*format)
	if *format != "mermaid" && *format != "ascii" {
		fmt.Fprintf(os.Stderr, "Error: invalid format %q (must be mermaid or ascii)\n", *format)
		os.Exit(1)
	}

	data, err := os.ReadFile(workflowPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to read workflow file: %v\n", err)
		os.Exit(1)
	}

	var wf models.Workflow
	if err := json.Unmarshal(data, &wf); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to parse workflow file: %v\n", err)
		os.Exit(1)
	}

	opts := visualization.DefaultRenderOptions()
	opts.Direction = *direction
	opts.UseColor = opts.UseColor && *output == ""

	diagram, err := visualization.RenderWorkflow(&wf, *format, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to render workflow: %v\n", err)
		os.Exit(1)
	}

	if *output != "" {
		if err := os.WriteFile(*output, []byte(diagram), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to write to file %q: %v\n", *output, err)
			os.Exit(1)
		}
		fmt.Printf("Diagram saved to %s\n", *output)
		return
	}

	fmt.Println(diagram)
}

// handleHealth reports database connectivity and connection pool
// stats, or confirms in-memory storage is in use when DATABASE_URL is
// unset.
func handleHealth() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	client, closeDB := newClient(cfg)
	if closeDB != nil {
		defer closeDB()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stats, hasDB, err := client.Health(ctx)
	if !hasDB {
		fmt.Println("storage: in-memory (no DATABASE_URL configured)")
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "storage: database unreachable: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("storage: database reachable (open=%d in-use=%d idle=%d)\n",
		stats.OpenConnections, stats.InUse, stats.Idle)
}

// newClient builds an SDK client, wiring Postgres storage when
// DATABASE_URL is set and falling back to in-memory storage otherwise.
// Returns a close function for the underlying *bun.DB, or nil.
func newClient(cfg *config.Config) (*sdk.Client, func()) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Logging.Level)); err == nil {
		slog.SetLogLoggerLevel(level)
	}

	opts := []sdk.Option{sdk.WithConfig(cfg)}

	var db *bun.DB
	if cfg.UsesPostgres() {
		dbCfg := storage.DefaultConfig()
		dbCfg.DSN = cfg.Database.URL
		dbCfg.MaxOpenConns = cfg.Database.MaxConnections
		dbCfg.MaxIdleConns = cfg.Database.MinConnections
		dbCfg.ConnMaxLifetime = cfg.Database.MaxConnLifetime
		dbCfg.ConnMaxIdleTime = cfg.Database.MaxIdleTime
		dbCfg.Debug = cfg.Database.Debug

		conn, err := storage.NewDB(dbCfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to connect to database: %v\n", err)
			os.Exit(1)
		}
		db = conn
		opts = append(opts, sdk.WithDB(db))
	}

	client := sdk.New(opts...)

	if db == nil {
		return client, nil
	}
	return client, func() { storage.Close(db) }
}
