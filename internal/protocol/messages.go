package protocol

import "encoding/json"

// HELLO (client -> server)
type HelloMsg struct {
	Type              string            `json:"type"`
	ProtocolVersion   string            `json:"protocol_version"`
	SupportedVersions []string          `json:"supported_versions,omitempty"`
	AgentName         string            `json:"agent_name"`
	Capabilities      HelloCapabilities `json:"capabilities"`
	Auth              *HelloAuth        `json:"auth,omitempty"`
}

type HelloCapabilities struct {
	DeltaVoxels bool `json:"delta_voxels,omitempty"`
	MaxQueue    int  `json:"max_queue,omitempty"`
}

type HelloAuth struct {
	Token string `json:"token,omitempty"`
}

// NewHello builds the HELLO a companion agent sends right after dialing.
func NewHello(name, resumeToken string) HelloMsg {
	h := HelloMsg{
		Type:              TypeHello,
		ProtocolVersion:   Version,
		SupportedVersions: append([]string(nil), supportedVersions...),
		AgentName:         name,
		Capabilities: HelloCapabilities{
			DeltaVoxels: true,
			MaxQueue:    64,
		},
	}
	if resumeToken != "" {
		h.Auth = &HelloAuth{Token: resumeToken}
	}
	return h
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	SelectedVersion string         `json:"selected_version,omitempty"`
	SessionID       string         `json:"session_id,omitempty"`
	AgentID         string         `json:"agent_id"`
	ResumeToken     string         `json:"resume_token"`
	WorldParams     WorldParams    `json:"world_params"`
	Catalogs        CatalogDigests `json:"catalogs"`
	CurrentWorldID  string         `json:"current_world_id,omitempty"`
}

type WorldParams struct {
	TickRateHz int    `json:"tick_rate_hz"`
	ChunkSize  [3]int `json:"chunk_size"`
	Height     int    `json:"height"`
	ObsRadius  int    `json:"obs_radius"`
	DayTicks   int    `json:"day_ticks"`
	Seed       int64  `json:"seed"`
}

type CatalogDigests struct {
	BlockPalette DigestRef `json:"block_palette"`
	ItemPalette  DigestRef `json:"item_palette"`
}

type DigestRef struct {
	Digest string `json:"digest"`
	Count  int    `json:"count"`
}

// Catalog names the agent cares about.
const CatalogBlockPalette = "block_palette"

// CATALOG (server -> client). Data is kept raw; only the block palette
// (a JSON array of block names indexed by palette id) is decoded.
type CatalogMsg struct {
	Type            string          `json:"type"`
	ProtocolVersion string          `json:"protocol_version"`
	Name            string          `json:"name"`
	Digest          string          `json:"digest"`
	Part            int             `json:"part"`
	TotalParts      int             `json:"total_parts"`
	Data            json.RawMessage `json:"data"`
}
