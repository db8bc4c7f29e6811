// Package main runs tool adapter functions and prints the raw text an agent
// would receive.
//
// Usage:
//
//	go run ./cmd/toolprobe [-local] [-tool <name> -args '<json>']
//
// Without -tool it runs the default probes: fetch customer 2, then create a
// high priority ticket for customer 3. With -local the configured database is
// reset and called in-process instead of over HTTP.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spec-kit/customer-data-service/internal/auth"
	"github.com/spec-kit/customer-data-service/internal/config"
	"github.com/spec-kit/customer-data-service/internal/observability"
	"github.com/spec-kit/customer-data-service/internal/persistence"
	"github.com/spec-kit/customer-data-service/internal/repository"
	"github.com/spec-kit/customer-data-service/internal/service"
	"github.com/spec-kit/customer-data-service/internal/tooladapter"
)

type probe struct {
	description string
	call        *genai.FunctionCall
}

var defaultProbes = []probe{
	{
		description: "Retrieve Details for Customer ID 2",
		call: &genai.FunctionCall{
			Name: tooladapter.ToolFetchCustomerData,
			Args: map[string]any{"customer_id": float64(2)},
		},
	},
	{
		description: "Create New High-Priority Ticket for Customer 3",
		call: &genai.FunctionCall{
			Name: tooladapter.ToolRegisterSupportIssue,
			Args: map[string]any{
				"customer_id":       float64(3),
				"query_description": "Account status incorrectly set to disabled.",
				"urgency_level":     "high",
			},
		},
	},
}

func main() {
	local := flag.Bool("local", false, "Reset the configured database and call the dispatcher in-process")
	tool := flag.String("tool", "", "Tool to invoke (default: run the built-in probes)")
	rawArgs := flag.String("args", "{}", "JSON object of tool arguments")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := observability.NewLogger(config.LoggerConfig{Level: "warn"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()
	caller, cleanup, err := newCaller(ctx, cfg, *local, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	probes := defaultProbes
	if *tool != "" {
		var args map[string]any
		if err := json.Unmarshal([]byte(*rawArgs), &args); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: -args must be a JSON object: %v\n", err)
			os.Exit(2)
		}
		probes = []probe{{description: "Ad-hoc call", call: &genai.FunctionCall{Name: *tool, Args: args}}}
	}

	tools := tooladapter.NewTools(caller, logger)
	failed := false
	for _, p := range probes {
		fmt.Println()
		fmt.Println(strings.Repeat("=", 50))
		fmt.Printf("TEST: %s\n", p.description)
		fmt.Printf("Tool: %s\n", p.call.Name)
		fmt.Printf("Params: %v\n", p.call.Args)
		fmt.Println(strings.Repeat("=", 50))

		resp := tools.Invoke(ctx, p.call)
		if msg, ok := resp.Response["error"]; ok {
			fmt.Printf("\nERROR EXECUTING TOOL:\n%v\n", msg)
			failed = true
			continue
		}
		fmt.Printf("\nRAW TOOL OUTPUT:\n%v\n", resp.Response["output"])
	}
	fmt.Println("\n--- Direct Tool Testing Complete ---")
	if failed {
		os.Exit(1)
	}
}

func newCaller(ctx context.Context, cfg *config.Config, local bool, logger *zap.Logger) (tooladapter.Caller, func(), error) {
	if !local {
		toolsCfg := cfg.Tools
		if toolsCfg.AuthToken == "" && cfg.Auth.JWTSecret != "" {
			token, _, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTLMinutes).GenerateToken("toolprobe")
			if err != nil {
				return nil, nil, fmt.Errorf("mint token: %w", err)
			}
			toolsCfg.AuthToken = token
		}
		return tooladapter.NewHTTPCaller(toolsCfg), func() {}, nil
	}

	db, err := persistence.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := persistence.ResetSchema(ctx, db, time.Now(), logger); err != nil {
		db.Close()
		return nil, nil, err
	}
	fmt.Println("Database initialized and seeded.")

	svc := service.NewDataAccessService(service.DataAccessDependencies{
		AccountRepo: repository.NewAccountRepository(db),
		TicketRepo:  repository.NewTicketRepository(db),
		Logger:      logger,
	})
	return tooladapter.NewLocalCaller(svc), db.Close, nil
}
