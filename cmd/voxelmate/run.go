package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mudler/xlog"
	"github.com/spf13/cobra"

	"voxelmate.ai/internal/agent"
	"voxelmate.ai/internal/bot"
	"voxelmate.ai/internal/config"
	"voxelmate.ai/internal/llm"
	"voxelmate.ai/internal/memory"
	"voxelmate.ai/internal/nav"
	"voxelmate.ai/internal/transport/ws"
	"voxelmate.ai/internal/world"
)

func newRunCmd(load loadFunc) *cobra.Command {
	var url, name, provider, model string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Connect to the world and run the agent until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if url != "" {
				cfg.World.WSURL = url
			}
			if name != "" {
				cfg.World.AgentName = name
			}
			if provider != "" {
				cfg.LLM.Provider = provider
			}
			if model != "" {
				cfg.LLM.Model = model
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg)
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "world WebSocket URL")
	cmd.Flags().StringVar(&name, "name", "", "agent name")
	cmd.Flags().StringVar(&provider, "provider", "", "language model provider (openai or gemini)")
	cmd.Flags().StringVar(&model, "model", "", "language model name")
	return cmd
}

func run(ctx context.Context, cfg config.Config) error {
	model, err := llm.New(ctx, llm.Options{
		Provider: cfg.LLM.Provider,
		BaseURL:  cfg.LLM.BaseURL,
		APIKey:   cfg.LLM.APIKey,
		Model:    cfg.LLM.Model,
		Timeout:  cfg.LLM.Timeout,
	})
	if err != nil {
		return err
	}

	store, err := memory.Open(cfg.Memory.Backend, cfg.Memory.Path)
	if err != nil {
		return err
	}
	defer store.Close()
	mem, err := memory.Load(store, cfg.Memory.ContextLimit)
	if err != nil {
		return err
	}

	policy, err := agent.ParseLostTargetPolicy(cfg.Follow.OnTargetLost)
	if err != nil {
		return err
	}

	view := world.NewView(cfg.World.AgentName)
	rt := bot.New(view, bot.Options{Channel: cfg.World.ChatChannel})
	client := ws.NewClient(ws.Config{
		URL:         cfg.World.WSURL,
		AgentName:   cfg.World.AgentName,
		ResumeToken: cfg.World.ResumeToken,
		StateFile:   cfg.World.StateFile,
	}, rt)
	engine := nav.NewEngine(client, nav.WithTolerance(cfg.GoTo.Tolerance))

	a := agent.New(agent.Deps{
		Identity: view,
		Locator:  view,
		Blocks:   view,
		Nav:      engine,
		Chat:     rt,
		Looker:   rt,
		Model:    model,
		Memory:   mem,
	}, agent.Options{
		SystemPrompt:   cfg.LLM.SystemPrompt,
		FollowDistance: cfg.Follow.Distance,
		Lookahead:      cfg.GoTo.Lookahead,
		OnTargetLost:   policy,
	})
	rt.Attach(client, engine, a)

	xlog.Info("starting agent", "url", cfg.World.WSURL, "name", cfg.World.AgentName, "provider", cfg.LLM.Provider, "model", cfg.LLM.Model, "memory", cfg.Memory.Backend, "remembered", mem.Len())
	client.Start(ctx)
	defer client.Close()

	rt.Run(ctx)
	xlog.Info("agent stopped", "agent_id", client.AgentID(), "last_error", client.LastError())
	return nil
}
