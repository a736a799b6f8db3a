// Package config loads the agent's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"voxelmate.ai/internal/protocol"
)

type Config struct {
	World  World  `yaml:"world"`
	LLM    LLM    `yaml:"llm"`
	Memory Memory `yaml:"memory"`
	Follow Follow `yaml:"follow"`
	GoTo   GoTo   `yaml:"goto"`
}

type World struct {
	WSURL       string `yaml:"ws_url"`
	AgentName   string `yaml:"agent_name"`
	ChatChannel string `yaml:"chat_channel"`
	ResumeToken string `yaml:"resume_token"`
	StateFile   string `yaml:"state_file"`
}

type LLM struct {
	Provider     string `yaml:"provider"`
	BaseURL      string `yaml:"base_url"`
	APIKey       string `yaml:"api_key"`
	Model        string `yaml:"model"`
	Timeout      string `yaml:"timeout"`
	SystemPrompt string `yaml:"system_prompt"`
}

type Memory struct {
	Backend      string `yaml:"backend"`
	Path         string `yaml:"path"`
	ContextLimit int    `yaml:"context_limit"`
}

type Follow struct {
	Distance     float64 `yaml:"distance"`
	OnTargetLost string  `yaml:"on_target_lost"`
}

type GoTo struct {
	Lookahead float64 `yaml:"lookahead"`
	Tolerance float64 `yaml:"tolerance"`
}

func Defaults() Config {
	return Config{
		World: World{
			WSURL:       "ws://localhost:8080/v1/ws",
			AgentName:   "voxelmate",
			ChatChannel: protocol.ChannelLocal,
		},
		LLM: LLM{
			Provider: "openai",
			Model:    "gpt-4o-mini",
			Timeout:  "150s",
		},
		Memory: Memory{
			Backend: "json",
			Path:    "memories.json",
		},
		Follow: Follow{
			Distance:     1,
			OnTargetLost: "hold",
		},
		GoTo: GoTo{
			Lookahead: 5,
			Tolerance: 1.2,
		},
	}
}

// Load reads path over Defaults. An empty path yields the defaults. API
// keys fall back to OPENAI_API_KEY or GEMINI_API_KEY by provider.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	}
	if cfg.LLM.APIKey == "" {
		switch strings.ToLower(cfg.LLM.Provider) {
		case "gemini":
			cfg.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
		default:
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
	return cfg, nil
}

// Validate reports every problem it finds, joined.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.World.WSURL) == "" {
		errs = append(errs, errors.New("world.ws_url is required"))
	} else if !strings.HasPrefix(c.World.WSURL, "ws://") && !strings.HasPrefix(c.World.WSURL, "wss://") {
		errs = append(errs, fmt.Errorf("world.ws_url %q must be ws:// or wss://", c.World.WSURL))
	}
	if strings.TrimSpace(c.World.AgentName) == "" {
		errs = append(errs, errors.New("world.agent_name is required"))
	}
	switch strings.ToUpper(c.World.ChatChannel) {
	case "", protocol.ChannelLocal, protocol.ChannelCity, protocol.ChannelMarket:
	default:
		errs = append(errs, fmt.Errorf("world.chat_channel %q is not LOCAL, CITY or MARKET", c.World.ChatChannel))
	}
	switch strings.ToLower(c.LLM.Provider) {
	case "openai", "gemini":
	default:
		errs = append(errs, fmt.Errorf("llm.provider %q is not openai or gemini", c.LLM.Provider))
	}
	if c.LLM.Timeout != "" {
		if d, err := time.ParseDuration(c.LLM.Timeout); err != nil || d <= 0 {
			errs = append(errs, fmt.Errorf("llm.timeout %q is not a positive duration", c.LLM.Timeout))
		}
	}
	switch strings.ToLower(c.Memory.Backend) {
	case "json", "jsonl", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("memory.backend %q is not json, jsonl or sqlite", c.Memory.Backend))
	}
	if strings.TrimSpace(c.Memory.Path) == "" {
		errs = append(errs, errors.New("memory.path is required"))
	}
	if c.Memory.ContextLimit < 0 {
		errs = append(errs, fmt.Errorf("memory.context_limit %d is negative", c.Memory.ContextLimit))
	}
	if c.Follow.Distance <= 0 {
		errs = append(errs, fmt.Errorf("follow.distance %g must be positive", c.Follow.Distance))
	}
	switch strings.ToLower(c.Follow.OnTargetLost) {
	case "", "hold", "clear":
	default:
		errs = append(errs, fmt.Errorf("follow.on_target_lost %q is not hold or clear", c.Follow.OnTargetLost))
	}
	if c.GoTo.Lookahead <= 0 {
		errs = append(errs, fmt.Errorf("goto.lookahead %g must be positive", c.GoTo.Lookahead))
	}
	if c.GoTo.Tolerance <= 0 {
		errs = append(errs, fmt.Errorf("goto.tolerance %g must be positive", c.GoTo.Tolerance))
	}
	return errors.Join(errs...)
}
