package debugger

import "sync"

// CommandHistory remembers executed commands for recall and for an
// empty line to repeat the last one, backing the
// debugger/history.go.
type CommandHistory struct {
	mu       sync.RWMutex
	commands []string
	maxSize  int
}

// NewCommandHistory returns an empty history capped at 1000 entries.
func NewCommandHistory() *CommandHistory {
	return &CommandHistory{commands: make([]string, 0, 100), maxSize: 1000}
}

// Add appends cmd, skipping empty input and immediate repeats.
func (h *CommandHistory) Add(cmd string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cmd == "" {
		return
	}
	if len(h.commands) > 0 && h.commands[len(h.commands)-1] == cmd {
		return
	}
	h.commands = append(h.commands, cmd)
	if len(h.commands) > h.maxSize {
		h.commands = h.commands[len(h.commands)-h.maxSize:]
	}
}

// GetLast returns the most recently added command, or "".
func (h *CommandHistory) GetLast() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.commands) == 0 {
		return ""
	}
	return h.commands[len(h.commands)-1]
}

// All returns a copy of every recorded command, oldest first.
func (h *CommandHistory) All() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, len(h.commands))
	copy(out, h.commands)
	return out
}

// Size returns how many commands are recorded.
func (h *CommandHistory) Size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.commands)
}
