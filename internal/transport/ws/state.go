package ws

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

type sessionState struct {
	ResumeToken     string `json:"resume_token,omitempty"`
	AgentID         string `json:"agent_id,omitempty"`
	LastConnectedAt string `json:"last_connected_at,omitempty"`
}

func loadState(path string) (sessionState, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return sessionState{}, nil
		}
		return sessionState{}, err
	}
	var st sessionState
	if err := json.Unmarshal(b, &st); err != nil {
		return sessionState{}, fmt.Errorf("parse state file: %w", err)
	}
	return st, nil
}

func saveState(path string, st sessionState) error {
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
