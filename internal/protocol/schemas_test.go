package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"voxelmate.ai/internal/protocol"
)

func compileSchema(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	p := filepath.Join("..", "..", "schemas", name)
	s, err := jsonschema.Compile(p)
	if err != nil {
		t.Fatalf("compile %s: %v", name, err)
	}
	return s
}

func validateValue(t *testing.T, s *jsonschema.Schema, v any) {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := s.Validate(doc); err != nil {
		t.Fatalf("validate %s: %v", b, err)
	}
}

func TestSchemas_OutboundMessages(t *testing.T) {
	validateValue(t, compileSchema(t, "hello.schema.json"), protocol.NewHello("Bot", "resume_1"))

	act := protocol.ActMsg{
		Type:            protocol.TypeAct,
		ProtocolVersion: protocol.Version,
		Tick:            42,
		AgentID:         "A1",
		Instants: []protocol.InstantReq{
			{ID: "I1", Type: protocol.InstantSay, Channel: protocol.ChannelLocal, Text: "hi"},
			{ID: "I2", Type: protocol.InstantLookAt, TargetID: "A2"},
		},
		Tasks: []protocol.TaskReq{
			{ID: "K1", Type: protocol.TaskFollow, TargetID: "A2", Distance: 1},
			{ID: "K2", Type: protocol.TaskMoveTo, Target: [3]int{4, 0, -2}, Tolerance: 1.2},
		},
		Cancel: []string{"K0"},
	}
	validateValue(t, compileSchema(t, "act.schema.json"), act)
}

func TestSchemas_InboundSamples(t *testing.T) {
	var welcome any
	_ = json.Unmarshal([]byte(`{
	  "type":"WELCOME",
	  "protocol_version":"0.9",
	  "agent_id":"A1",
	  "resume_token":"resume_world_1_123",
	  "world_params":{"tick_rate_hz":5,"chunk_size":[16,16,1],"height":1,"obs_radius":7,"day_ticks":6000,"seed":1337},
	  "catalogs":{"block_palette":{"digest":"deadbeef","count":28},"item_palette":{"digest":"deadbeef","count":40}}
	}`), &welcome)
	if err := compileSchema(t, "welcome.schema.json").Validate(welcome); err != nil {
		t.Fatalf("welcome: %v", err)
	}

	raw := []byte(`{
	  "type":"OBS",
	  "protocol_version":"0.9",
	  "tick":7,
	  "agent_id":"A1",
	  "self":{"pos":[0,0,0],"yaw":0,"hp":20},
	  "voxels":{"center":[0,0,0],"radius":1,"encoding":"RLE","data":"AA=="},
	  "entities":[{"id":"A2","type":"AGENT","name":"Ace","pos":[3,0,1],"height":1.6,"look":{"yaw":90,"pitch":-10}}],
	  "events":[{"t":7,"type":"CHAT","from":"A2","from_name":"Ace","channel":"LOCAL","text":"follow me"}],
	  "tasks":[]
	}`)
	var obs any
	_ = json.Unmarshal(raw, &obs)
	if err := compileSchema(t, "obs.schema.json").Validate(obs); err != nil {
		t.Fatalf("obs: %v", err)
	}

	var typed protocol.ObsMsg
	if err := json.Unmarshal(raw, &typed); err != nil {
		t.Fatalf("decode obs: %v", err)
	}
	chat, ok := typed.Events[0].Chat()
	if !ok || chat.FromName != "Ace" || chat.Text != "follow me" || chat.Tick != 7 {
		t.Fatalf("chat event: ok=%v %+v", ok, chat)
	}
	if typed.Entities[0].Look == nil || typed.Entities[0].Look.Yaw != 90 {
		t.Fatalf("entity look: %+v", typed.Entities[0].Look)
	}
}
