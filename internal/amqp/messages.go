package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ReportRequestMessage asks a worker to render and deliver one PDF.
// The worker reads the ledger itself; only the selection travels.
type ReportRequestMessage struct {
	ID          string    `json:"id"`
	Client      string    `json:"client"`
	Month       string    `json:"month,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// NewReportRequestMessage creates a request with a fresh report ID.
// An empty month means all periods.
func NewReportRequestMessage(client, month string) *ReportRequestMessage {
	return &ReportRequestMessage{
		ID:          uuid.NewString(),
		Client:      client,
		Month:       month,
		RequestedAt: time.Now().UTC(),
	}
}

// Validate checks the fields a worker cannot do without.
func (m *ReportRequestMessage) Validate() error {
	if m.Client == "" {
		return errors.New("report request without client")
	}
	if _, err := uuid.Parse(m.ID); err != nil {
		return errors.New("report request id is not a uuid")
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *ReportRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReportRequestMessageFromJSON decodes and validates a message body.
func ReportRequestMessageFromJSON(data []byte) (*ReportRequestMessage, error) {
	var msg ReportRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
