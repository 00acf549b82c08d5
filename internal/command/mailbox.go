package command

import "sync"

// Mailbox is a one-slot actuator command holder: Set overwrites the slot,
// Take returns the pending command and clears it.
type Mailbox struct {
	mu      sync.Mutex
	pending string
	set     bool
}

// NewMailbox returns an empty mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{}
}

// Set stores a command, replacing any pending one.
func (m *Mailbox) Set(cmd string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = cmd
	m.set = true
}

// Take returns the pending command and clears the slot. The second return is
// false when the slot is empty.
func (m *Mailbox) Take() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return "", false
	}
	cmd := m.pending
	m.pending = ""
	m.set = false
	return cmd, true
}
