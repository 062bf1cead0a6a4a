// Package convlog records assistant conversations. Writes are best
// effort: failures are logged and never reach the caller.
package convlog

import "sync"

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Log is an append-only conversation log.
type Log interface {
	Append(msgs ...Message)
}

// Memory keeps the log in process.
type Memory struct {
	mu   sync.Mutex
	msgs []Message
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Append(msgs ...Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, msgs...)
}

// Messages returns a copy of the log.
func (m *Memory) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.msgs))
	copy(out, m.msgs)
	return out
}
