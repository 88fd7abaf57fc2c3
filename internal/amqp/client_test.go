package amqp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"essenza/internal/log"
)

func quietLogger() *log.Logger {
	return log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{10, 30 * time.Second},
		{64, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			result := exponentialBackoff(tt.attempt)
			if result != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, result, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("connection refused"), true},
		{"EOF error", errors.New("unexpected EOF"), true},
		{"broken pipe error", errors.New("broken pipe"), true},
		{"closed network connection", errors.New("use of closed network connection"), true},
		{"validation error", errors.New("invalid input"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestClient_CircuitBreaker(t *testing.T) {
	client := &Client{exchangeName: "essenza", queueName: "report_requests", logger: quietLogger()}

	t.Run("initial state is closed", func(t *testing.T) {
		if client.isCircuitOpen() {
			t.Error("Circuit breaker should be closed initially")
		}
	})

	t.Run("multiple failures open circuit", func(t *testing.T) {
		for i := 0; i < maxFailures; i++ {
			client.recordFailure()
		}
		if !client.isCircuitOpen() {
			t.Error("Circuit breaker should be open after max failures")
		}
	})

	t.Run("circuit transitions to half-open after timeout", func(t *testing.T) {
		atomic.StoreInt32(&client.state, StateOpen)
		client.lastFailure = time.Now().Add(-openTimeout - time.Second)
		if client.isCircuitOpen() {
			t.Error("Circuit should transition to half-open after timeout")
		}
		if atomic.LoadInt32(&client.state) != StateHalfOpen {
			t.Error("State should be StateHalfOpen after timeout")
		}
	})

	t.Run("failure in half-open reopens", func(t *testing.T) {
		client.recordFailure()
		if atomic.LoadInt32(&client.state) != StateOpen {
			t.Error("a half-open failure must reopen the circuit")
		}
	})

	t.Run("record success resets state", func(t *testing.T) {
		client.recordSuccess()
		if client.isCircuitOpen() || atomic.LoadInt64(&client.failureCount) != 0 {
			t.Error("Circuit breaker should be closed and reset after success")
		}
	})
}

func TestClient_PublishReportRequest_Guards(t *testing.T) {
	client := &Client{exchangeName: "essenza", queueName: "report_requests", logger: quietLogger()}
	msg := NewReportRequestMessage("padaria_sol", "")

	t.Run("publish fails when circuit is open", func(t *testing.T) {
		atomic.StoreInt32(&client.state, StateOpen)
		client.lastFailure = time.Now()

		err := client.PublishReportRequest(context.Background(), msg)
		if err == nil || !strings.Contains(err.Error(), "circuit breaker is open") {
			t.Errorf("expected circuit breaker error, got %v", err)
		}
	})

	t.Run("publish respects context cancellation", func(t *testing.T) {
		client.recordSuccess()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := client.PublishReportRequest(ctx, msg); err != context.Canceled {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("publish rejects invalid messages", func(t *testing.T) {
		if err := client.PublishReportRequest(context.Background(), &ReportRequestMessage{ID: "x"}); err == nil {
			t.Error("expected validation error")
		}
	})
}

type fakeAck struct {
	acked, nacked, requeued bool
}

func (f *fakeAck) Ack(bool) error { f.acked = true; return nil }
func (f *fakeAck) Nack(_ bool, requeue bool) error {
	f.nacked, f.requeued = true, requeue
	return nil
}

func TestSettle(t *testing.T) {
	client := &Client{logger: quietLogger()}
	body, _ := NewReportRequestMessage("padaria_sol", "Jan/2024").ToJSON()

	tests := []struct {
		name        string
		body        []byte
		redelivered bool
		handlerErr  error
		wantAck     bool
		wantRequeue bool
	}{
		{"success acks", body, false, nil, true, false},
		{"transient failure requeues", body, false, errors.New("disk full"), false, true},
		{"second failure drops", body, true, errors.New("disk full"), false, false},
		{"permanent failure drops", body, false, Permanent(errors.New("unknown client")), false, false},
		{"bad json drops", []byte(`{"client": 3}`), false, nil, false, false},
		{"missing id drops", []byte(`{"client": "x"}`), false, nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &fakeAck{}
			var got *ReportRequestMessage
			client.settle(context.Background(), ack, tt.body, tt.redelivered, func(_ context.Context, m *ReportRequestMessage) error {
				got = m
				return tt.handlerErr
			})
			if ack.acked != tt.wantAck || ack.nacked == tt.wantAck || ack.requeued != tt.wantRequeue {
				t.Errorf("ack=%v nack=%v requeue=%v", ack.acked, ack.nacked, ack.requeued)
			}
			if tt.wantAck && (got == nil || got.Month != "Jan/2024") {
				t.Errorf("handler got %+v", got)
			}
		})
	}
}

func TestReportRequestMessage(t *testing.T) {
	msg := NewReportRequestMessage("padaria_sol", "Mar/2024")
	if err := msg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if time.Since(msg.RequestedAt) > time.Minute {
		t.Error("RequestedAt should be recent")
	}

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	parsed, err := ReportRequestMessageFromJSON(data)
	if err != nil {
		t.Fatalf("ReportRequestMessageFromJSON() error = %v", err)
	}
	if parsed.ID != msg.ID || parsed.Client != msg.Client || parsed.Month != msg.Month || !parsed.RequestedAt.Equal(msg.RequestedAt) {
		t.Errorf("parsed = %+v, want %+v", parsed, msg)
	}

	if NewReportRequestMessage("a", "").ID == msg.ID {
		t.Error("IDs must be unique")
	}
}

func TestPermanent(t *testing.T) {
	if Permanent(nil) != nil {
		t.Error("Permanent(nil) must be nil")
	}
	base := errors.New("boom")
	err := Permanent(base)
	if !errors.Is(err, ErrPermanent) || !errors.Is(err, base) {
		t.Errorf("Permanent() lost its chain: %v", err)
	}
}
