package protocol

import "strings"

// Event types the agent reacts to.
const (
	EventChat         = "CHAT"
	EventActionResult = "ACTION_RESULT"
	EventTaskDone     = "TASK_DONE"
	EventTaskFail     = "TASK_FAIL"
)

// ChatEvent is the decoded form of a CHAT event.
type ChatEvent struct {
	Tick     uint64
	From     string
	FromName string
	Channel  string
	Text     string
}

// ActionResult is the decoded form of an ACTION_RESULT event. Ref is the
// request id the client chose; TaskID is the id the server gave an accepted
// task, and the only id it will cancel by.
type ActionResult struct {
	Tick    uint64
	Ref     string
	OK      bool
	TaskID  string
	Code    string
	Message string
}

// TaskEnd is a TASK_DONE or TASK_FAIL event.
type TaskEnd struct {
	Tick    uint64
	TaskID  string
	OK      bool
	Code    string
	Message string
}

func (e Event) Type() string {
	s, _ := e["type"].(string)
	return s
}

func (e Event) str(key string) string {
	s, _ := e[key].(string)
	return strings.TrimSpace(s)
}

// tick accepts both decoded JSON numbers and in-process integers.
func (e Event) tick() uint64 {
	switch v := e["t"].(type) {
	case float64:
		if v < 0 {
			return 0
		}
		return uint64(v)
	case uint64:
		return v
	case int:
		if v < 0 {
			return 0
		}
		return uint64(v)
	}
	return 0
}

// Chat decodes a CHAT event. ok is false for other event types or for chat
// without a sender.
func (e Event) Chat() (ChatEvent, bool) {
	if e.Type() != EventChat {
		return ChatEvent{}, false
	}
	c := ChatEvent{
		Tick:     e.tick(),
		From:     e.str("from"),
		FromName: e.str("from_name"),
		Channel:  e.str("channel"),
	}
	c.Text, _ = e["text"].(string)
	if c.From == "" && c.FromName == "" {
		return ChatEvent{}, false
	}
	return c, true
}

// ActionResult decodes an ACTION_RESULT event.
func (e Event) ActionResult() (ActionResult, bool) {
	if e.Type() != EventActionResult {
		return ActionResult{}, false
	}
	r := ActionResult{
		Tick:    e.tick(),
		Ref:     e.str("ref"),
		TaskID:  e.str("task_id"),
		Code:    e.str("code"),
		Message: e.str("message"),
	}
	r.OK, _ = e["ok"].(bool)
	if r.Ref == "" {
		return ActionResult{}, false
	}
	return r, true
}

// TaskEnd decodes TASK_DONE (OK) and TASK_FAIL events.
func (e Event) TaskEnd() (TaskEnd, bool) {
	var ok bool
	switch e.Type() {
	case EventTaskDone:
		ok = true
	case EventTaskFail:
	default:
		return TaskEnd{}, false
	}
	t := TaskEnd{
		Tick:    e.tick(),
		TaskID:  e.str("task_id"),
		OK:      ok,
		Code:    e.str("code"),
		Message: e.str("message"),
	}
	if t.TaskID == "" {
		return TaskEnd{}, false
	}
	return t, true
}
