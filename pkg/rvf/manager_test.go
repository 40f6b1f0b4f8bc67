package rvf

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rvflabs/rvf-go/pkg/channel"
	"github.com/rvflabs/rvf-go/pkg/internal/logger"
	"github.com/rvflabs/rvf-go/pkg/reassembly"
	"github.com/rvflabs/rvf-go/pkg/receiver"
	"github.com/rvflabs/rvf-go/pkg/sender"
)

// mockChannel is an in-memory DatagramChannel for tests
type mockChannel struct {
	readChan  chan []byte
	closeChan chan struct{}
	closeOnce sync.Once
}

func newMockChannel() *mockChannel {
	return &mockChannel{
		readChan:  make(chan []byte, 64),
		closeChan: make(chan struct{}),
	}
}

func (m *mockChannel) Read(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-m.closeChan:
		return nil, errors.New("channel closed")
	case data := <-m.readChan:
		return data, nil
	}
}

func (m *mockChannel) Write(ctx context.Context, data []byte) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case m.readChan <- data:
		return nil
	}
}

func (m *mockChannel) Close() error {
	m.closeOnce.Do(func() { close(m.closeChan) })
	return nil
}

func (m *mockChannel) Statistics() channel.TransportStats { return channel.TransportStats{} }

func (m *mockChannel) SetConnectionStateListener(channel.ConnectionStateListener) {}

func quietConfig() receiver.ReceiverConfig {
	return receiver.ReceiverConfig{Logger: logger.NewNoOpLogger()}
}

func sendFrames(t *testing.T, ch *mockChannel, count int) {
	t.Helper()
	snd := sender.NewSender(ch, sender.SenderConfig{})
	for tick := 0; tick < count; tick++ {
		if err := snd.SendFrame(context.Background(), sender.TestPattern(tick)); err != nil {
			t.Fatalf("SendFrame: %v", err)
		}
	}
}

func waitSubFrame(t *testing.T, sub *Subscription) *reassembly.Frame {
	t.Helper()
	select {
	case item := <-sub.Frames():
		return item.(*reassembly.Frame)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return nil
	}
}

func TestManager_SessionLifecycle(t *testing.T) {
	m := NewManagerWithLogger(logger.NewNoOpLogger())
	defer m.Shutdown()

	session, err := m.AddSession("cam0", newMockChannel(), quietConfig())
	if err != nil {
		t.Fatalf("AddSession failed: %v", err)
	}
	if session.Name() != "cam0" {
		t.Errorf("Name() = %q, want cam0", session.Name())
	}
	if session.ID() == "" {
		t.Error("session has empty ID")
	}

	if _, err := m.AddSession("cam0", newMockChannel(), quietConfig()); err == nil {
		t.Error("duplicate AddSession should fail")
	}

	got, ok := m.GetSession("cam0")
	if !ok || got != session {
		t.Error("GetSession did not return the added session")
	}
	if len(m.Sessions()) != 1 {
		t.Errorf("Sessions() returned %d sessions, want 1", len(m.Sessions()))
	}

	if err := m.RemoveSession("cam0"); err != nil {
		t.Fatalf("RemoveSession failed: %v", err)
	}
	if err := m.RemoveSession("cam0"); err == nil {
		t.Error("removing a missing session should fail")
	}
	if len(m.Sessions()) != 0 {
		t.Error("session list not empty after removal")
	}
}

func TestSession_FanOut(t *testing.T) {
	m := NewManagerWithLogger(logger.NewNoOpLogger())
	defer m.Shutdown()

	ch := newMockChannel()
	session, err := m.AddSession("cam0", ch, quietConfig())
	if err != nil {
		t.Fatalf("AddSession failed: %v", err)
	}

	subA := session.Subscribe(0)
	subB := session.Subscribe(4)
	defer subA.Cancel()
	defer subB.Cancel()

	sendFrames(t, ch, 1)

	frameA := waitSubFrame(t, subA)
	frameB := waitSubFrame(t, subB)
	if frameA.FrameID != frameB.FrameID {
		t.Errorf("subscribers saw different frames: %d vs %d", frameA.FrameID, frameB.FrameID)
	}
	if !frameA.Complete() {
		t.Errorf("expected complete frame, got %d/%d lines", frameA.LinesWritten, frameA.Height)
	}
}

func TestSubscription_DropOldest(t *testing.T) {
	m := NewManagerWithLogger(logger.NewNoOpLogger())
	defer m.Shutdown()

	ch := newMockChannel()
	session, err := m.AddSession("cam0", ch, quietConfig())
	if err != nil {
		t.Fatalf("AddSession failed: %v", err)
	}

	// Depth 2 and a consumer that never reads: pushing more frames
	// must evict the oldest, not block the stream.
	sub := session.Subscribe(2)
	defer sub.Cancel()

	sendFrames(t, ch, 5)

	deadline := time.Now().Add(2 * time.Second)
	for sub.Dropped() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("Dropped() = %d, want 3", sub.Dropped())
		}
		time.Sleep(5 * time.Millisecond)
	}
	first := waitSubFrame(t, sub)
	if first.FrameID != 3 {
		t.Errorf("oldest surviving frame = %d, want 3", first.FrameID)
	}
}

func TestSubscription_CancelStopsDelivery(t *testing.T) {
	m := NewManagerWithLogger(logger.NewNoOpLogger())
	defer m.Shutdown()

	ch := newMockChannel()
	session, err := m.AddSession("cam0", ch, quietConfig())
	if err != nil {
		t.Fatalf("AddSession failed: %v", err)
	}

	sub := session.Subscribe(4)
	sub.Cancel()

	sendFrames(t, ch, 1)

	deadline := time.Now().Add(2 * time.Second)
	for session.Receiver().Statistics().GetFramesEmitted() < 1 {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for frame processing")
		}
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case item := <-sub.Frames():
		t.Errorf("cancelled subscription received %v", item)
	case <-time.After(50 * time.Millisecond):
	}
}
