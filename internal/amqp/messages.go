package amqp

import (
	"encoding/json"
	"time"
)

// Message actions understood by the export worker.
const (
	ActionSync   = "sync"
	ActionDelete = "delete"
)

// ExportMessage is the lightweight queue payload for spreadsheet export.
// Sync messages carry only the transaction id; the worker fetches the full
// row from the database so it always exports the latest state. Delete
// messages additionally carry the spreadsheet reference of the removed row,
// since the database row is already gone.
type ExportMessage struct {
	Action    string    `json:"action"`
	ID        int64     `json:"id"`
	ExportRef string    `json:"export_ref,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewSyncMessage builds a message asking the worker to (re-)export a
// transaction.
func NewSyncMessage(id int64) *ExportMessage {
	return &ExportMessage{
		Action:    ActionSync,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// NewDeleteMessage builds a message asking the worker to clear the
// spreadsheet row of a deleted transaction.
func NewDeleteMessage(id int64, exportRef string) *ExportMessage {
	return &ExportMessage{
		Action:    ActionDelete,
		ID:        id,
		ExportRef: exportRef,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *ExportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExportMessageFromJSON parses a message from JSON bytes.
func ExportMessageFromJSON(data []byte) (*ExportMessage, error) {
	var msg ExportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
