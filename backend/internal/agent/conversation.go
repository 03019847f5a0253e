package agent

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Conversation carries per-dialogue state between turns.
type Conversation struct {
	mu sync.Mutex

	ID string `json:"id"`
	// PendingQuestion is the word the last reply asked to be taught. It
	// lives for exactly one turn.
	PendingQuestion string    `json:"pending_question,omitempty"`
	Turns           int       `json:"turns"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewConversation starts a conversation with a fresh id
func NewConversation() *Conversation {
	return &Conversation{ID: uuid.NewString(), UpdatedAt: time.Now()}
}

func (c *Conversation) lastSeen() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.UpdatedAt
}

// Conversations keeps conversations by id for the HTTP and Discord front ends.
type Conversations struct {
	mu    sync.Mutex
	byID  map[string]*Conversation
	idle  time.Duration
	clock func() time.Time
}

// NewConversations creates a registry that forgets conversations idle
// longer than idle. Zero keeps them forever.
func NewConversations(idle time.Duration) *Conversations {
	return &Conversations{
		byID:  make(map[string]*Conversation),
		idle:  idle,
		clock: time.Now,
	}
}

// Get returns the conversation for id, creating it when unknown. An empty
// id gets a new conversation with a generated id.
func (c *Conversations) Get(id string) *Conversation {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock()
	if c.idle > 0 {
		for key, conv := range c.byID {
			if now.Sub(conv.lastSeen()) > c.idle {
				delete(c.byID, key)
			}
		}
	}

	if id != "" {
		if conv, ok := c.byID[id]; ok {
			return conv
		}
	}
	conv := NewConversation()
	if id != "" {
		conv.ID = id
	}
	conv.UpdatedAt = now
	c.byID[conv.ID] = conv
	return conv
}

// Len is the number of live conversations.
func (c *Conversations) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byID)
}
