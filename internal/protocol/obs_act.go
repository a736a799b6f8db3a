package protocol

type ObsMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`
	AgentID         string `json:"agent_id"`
	WorldID         string `json:"world_id,omitempty"`

	Self     SelfObs     `json:"self"`
	Voxels   VoxelsObs   `json:"voxels"`
	Entities []EntityObs `json:"entities"`
	Events   []Event     `json:"events"`
	Tasks    []TaskObs   `json:"tasks"`
}

type SelfObs struct {
	Pos    [3]int   `json:"pos"`
	Yaw    int      `json:"yaw"`
	HP     int      `json:"hp"`
	Status []string `json:"status,omitempty"`
}

type VoxelsObs struct {
	Center   [3]int         `json:"center"`
	Radius   int            `json:"radius"`
	Encoding string         `json:"encoding"` // "RLE" or "DELTA"
	Data     string         `json:"data,omitempty"`
	Ops      []VoxelDeltaOp `json:"ops,omitempty"`
}

const (
	VoxelEncodingRLE   = "RLE"
	VoxelEncodingDelta = "DELTA"
)

type VoxelDeltaOp struct {
	D [3]int `json:"d"` // delta from center (dx,dy,dz)
	B uint16 `json:"b"` // block palette id
}

type EntityObs struct {
	ID   string `json:"id"`
	Type string `json:"type"` // "AGENT", "PLAYER", "ITEM", ...
	Name string `json:"name,omitempty"`
	Pos  [3]int `json:"pos"`

	// Height is the eye height above Pos; 0 means the default.
	Height float64 `json:"height,omitempty"`
	// Look is absent when the server does not know where the entity faces.
	Look *LookObs `json:"look,omitempty"`

	Tags []string `json:"tags,omitempty"`
}

// LookObs is a viewing direction in degrees. Yaw 0 looks along +X and yaw
// 90 along +Z; positive pitch looks up.
type LookObs struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
}

type Event map[string]interface{}

type TaskObs struct {
	TaskID   string  `json:"task_id"`
	Kind     string  `json:"kind"`
	Progress float64 `json:"progress"`
	Target   [3]int  `json:"target,omitempty"`
	EtaTicks int     `json:"eta_ticks,omitempty"`
}

// ACT (client -> server)
type ActMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version"`
	Tick            uint64       `json:"tick"`
	AgentID         string       `json:"agent_id"`
	Instants        []InstantReq `json:"instants,omitempty"`
	Tasks           []TaskReq    `json:"tasks,omitempty"`
	Cancel          []string     `json:"cancel,omitempty"`
}

// Instant types.
const (
	InstantSay    = "SAY"
	InstantLookAt = "LOOK_AT"
)

// Chat channels.
const (
	ChannelLocal   = "LOCAL"
	ChannelCity    = "CITY"
	ChannelMarket  = "MARKET"
	ChannelWhisper = "WHISPER"
)

type InstantReq struct {
	ID   string `json:"id"`
	Type string `json:"type"`

	Channel string `json:"channel,omitempty"`
	Text    string `json:"text,omitempty"`
	To      string `json:"to,omitempty"`

	TargetID string `json:"target_id,omitempty"`
}

// Task types.
const (
	TaskMoveTo = "MOVE_TO"
	TaskFollow = "FOLLOW"
)

type TaskReq struct {
	ID   string `json:"id"`
	Type string `json:"type"`

	Target    [3]int  `json:"target,omitempty"`
	Tolerance float64 `json:"tolerance,omitempty"`
	Distance  float64 `json:"distance,omitempty"`

	TargetID string `json:"target_id,omitempty"`
}
