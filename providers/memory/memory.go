package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/leofalp/chatbridge/providers/ai"
)

// Record is one completed exchange: the user's question and the assistant's
// answer, as persisted after a generation ends. Cancelled and failed
// generations are stored too, with their partial text and marker.
type Record struct {
	GroupID   string
	Question  string
	Answer    string
	Image     []byte
	Provider  ai.ProviderKind
	Model     string
	Timestamp time.Time
}

// Store persists conversation records grouped by conversation id.
type Store interface {
	// AppendTurn stores a finished exchange.
	AppendTurn(ctx context.Context, record Record) error

	// FetchHistory returns the records of a conversation in insertion order.
	// An unknown group yields an empty slice, not an error.
	FetchHistory(ctx context.Context, groupID string) ([]Record, error)
}

// NewGroupID returns a fresh conversation identifier.
func NewGroupID() string {
	return uuid.NewString()
}

// ToTurns flattens records into alternating user and assistant turns, the
// shape adapters expect as history. Empty questions or answers are left out.
func ToTurns(records []Record) []ai.Turn {
	turns := make([]ai.Turn, 0, len(records)*2)
	for _, record := range records {
		if record.Question != "" {
			turns = append(turns, ai.Turn{
				Role:      ai.RoleUser,
				Content:   record.Question,
				Image:     ai.NewImage(record.Image),
				Timestamp: record.Timestamp,
			})
		}
		if record.Answer != "" {
			turns = append(turns, ai.Turn{
				Role:      ai.RoleAssistant,
				Content:   record.Answer,
				Timestamp: record.Timestamp,
			})
		}
	}
	return turns
}
