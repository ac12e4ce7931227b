// Command combined-agent wires a Gemini-backed agent to two toolsets,
// one generated from the embedded ReqRes API document and one backed by
// an MCP filesystem server, then walks a fixed list of prompts through
// it and prints what happens.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/agentbridge/agent"
	"github.com/BaSui01/agentbridge/config"
	"github.com/BaSui01/agentbridge/internal/metrics"
	"github.com/BaSui01/agentbridge/llm"
	"github.com/BaSui01/agentbridge/llm/providers"
	"github.com/BaSui01/agentbridge/llm/providers/gemini"
	"github.com/BaSui01/agentbridge/runner"
	"github.com/BaSui01/agentbridge/session"
	"github.com/BaSui01/agentbridge/tools/mcp"
	"github.com/BaSui01/agentbridge/tools/openapi"

	"github.com/google/uuid"
)

const (
	appName = "combined_openapi_mcp_app"
	userID  = "user_combined_1"
)

const agentInstruction = `You are a versatile assistant that can:

1. MANAGE USERS via the users API:
   - List available users and resources
   - Create new users
   - Update existing users
   - Get details for specific users
   - List resources and their details
   - Register and login users
   - Handle delayed responses for testing purposes

2. MANAGE FILES in the filesystem:
   - List directories and files
   - Read file contents
   - Navigate through folders

When there is a request about users use the users API tools, without
API key or any other credential; the users actions do not require
authentication. When the user asks about files, folders, or filesystem
operations, use the filesystem tools.`

// prompts are submitted in order, one at a time.
var prompts = []string{
	"Show me available pets in the store",
	"Add a new cat named 'Whiskers' to the store",
	"Get details for pet ID 456",
	"List the files in the current directory",
	"What files are available to read?",
	"Create a pet named 'Buddy' and then show me what files I have",
}

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "combined-agent: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider := gemini.New(providers.GeminiConfig{
		BaseProviderConfig: providers.BaseProviderConfig{
			APIKey:  cfg.Gemini.APIKey,
			BaseURL: cfg.Gemini.BaseURL,
			Model:   cfg.Agent.Model,
			Timeout: cfg.Gemini.Timeout,
		},
	}, logger)

	usersToolset, err := openapi.NewToolset(openapi.Config{
		SpecJSON: reqresSpec,
		BaseURL:  cfg.API.BaseURL,
		Timeout:  cfg.API.Timeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to build users toolset: %w", err)
	}

	fsToolset, err := mcp.NewToolset(ctx, mcp.Config{
		Server: mcp.ServerParameters{
			Command: cfg.Filesystem.Command,
			Args:    append(append([]string{}, cfg.Filesystem.Args...), cfg.Filesystem.Root),
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to start filesystem toolset: %w", err)
	}

	ag, err := agent.New(agent.Config{
		Name:        "combined_assistant_agent",
		Model:       cfg.Agent.Model,
		Instruction: agentInstruction,
		Description: "A combined assistant that manages both users via API and files via filesystem.",
		Toolsets:    []agent.Toolset{usersToolset, fsToolset},
	}, logger)
	if err != nil {
		return err
	}
	defer ag.Close()

	sessions := session.NewInMemoryService()
	defer sessions.Close()

	collector := metrics.NewCollector("agentbridge", nil)

	r, err := runner.New(runner.Config{
		AppName:       appName,
		MaxIterations: cfg.Agent.MaxIterations,
	}, ag, provider, sessions, collector, logger)
	if err != nil {
		return err
	}

	sessionID := fmt.Sprintf("session_combined_%s", uuid.NewString())
	if _, err := sessions.Create(ctx, appName, userID, sessionID); err != nil {
		return err
	}
	collector.SessionOpened()
	defer collector.SessionClosed()

	fmt.Println("Executing combined OpenAPI + MCP agent example...")
	for _, prompt := range prompts {
		askAgent(ctx, r, sessionID, prompt)
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	fmt.Println("Combined agent example finished.")
	return nil
}

// askAgent submits one prompt and prints the event stream. Errors are
// reported and swallowed so the remaining prompts still run.
func askAgent(ctx context.Context, r *runner.Runner, sessionID, prompt string) {
	fmt.Println("\n--- Combined Agent Query ---")
	fmt.Printf("Query: %s\n", prompt)

	events, err := r.Run(ctx, userID, sessionID, llm.Message{Role: llm.RoleUser, Content: prompt})
	if err != nil {
		fmt.Printf("Error during agent run: %v\n", err)
		return
	}

	finalResponse := "Agent did not provide a final text response."
	for ev := range events {
		switch {
		case ev.Err != nil:
			fmt.Printf("Error during agent run: %v\n", ev.Err)
		case len(ev.FunctionCalls()) > 0:
			call := ev.FunctionCalls()[0]
			fmt.Printf("  Agent Action: Called %q with args %s\n", call.Name, string(call.Arguments))
		case ev.FunctionResponses():
			fmt.Printf("  Tool Response: Function %q completed\n", ev.Message.Name)
		case ev.IsFinalResponse() && ev.Message.Content != "":
			finalResponse = ev.Message.Content
		}
	}

	fmt.Printf("Agent Final Response: %s\n", finalResponse)
	fmt.Println("--------------------------------------------------")
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
