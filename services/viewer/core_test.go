// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package viewer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/SceneLink/pkg/logging"
	"github.com/AleutianAI/SceneLink/services/viewer/transport"
)

func testLogger() *logging.Logger {
	return logging.New(logging.Config{Level: logging.LevelError, Quiet: true})
}

// capture records every message published on the request channel. The
// Memory transport delivers synchronously, so after a Load/Draw/Delete
// in immediate mode the captured message is already there.
type capture struct {
	mu   sync.Mutex
	msgs []Message
}

func (c *capture) handle(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		panic(fmt.Sprintf("undecodable publish: %v", err))
	}
	c.mu.Lock()
	c.msgs = append(c.msgs, msg)
	c.mu.Unlock()
}

func (c *capture) all() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.msgs...)
}

func (c *capture) last(t *testing.T) Message {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.msgs, "no message was published")
	return c.msgs[len(c.msgs)-1]
}

func newTestCore(t *testing.T) (*CoreVisualizer, *transport.Memory, *capture) {
	t.Helper()
	tp := transport.NewMemory()
	sink := &capture{}
	require.NoError(t, tp.Subscribe(DefaultRequestChannel, sink.handle))
	return NewCoreVisualizer(tp, testLogger()), tp, sink
}

// respond injects a remote viewer response through the transport, the
// same way a real renderer would.
func respond(t *testing.T, tp *transport.Memory, status int) {
	t.Helper()
	data, err := json.Marshal(Response{Status: status})
	require.NoError(t, err)
	require.NoError(t, tp.Publish(context.Background(), DefaultResponseChannel, data))
}

func TestLoadPublishesImmediately(t *testing.T) {
	core, _, sink := newTestCore(t)

	err := core.Load(Path{"a", "b"}, Box{Lengths: [3]float64{1, 1, 1}})
	require.NoError(t, err)

	msg := sink.last(t)
	assert.Equal(t, WireFormat, msg.Format)
	assert.Equal(t, WireFormatVersion, msg.FormatVersion)
	assert.Positive(t, msg.UTime)
	assert.Empty(t, msg.Delete)
	assert.Empty(t, msg.Draw)
	require.Len(t, msg.Load, 1)

	rec := msg.Load[0]
	assert.Equal(t, []string{"a", "b"}, rec.Path)
	require.Len(t, rec.Geometries, 1)

	geom := rec.Geometries[0]
	assert.Equal(t, "box", geom["type"])
	assert.Equal(t, []any{1.0, 1.0, 1.0}, geom["lengths"])
	assert.Equal(t, []any{1.0, 1.0, 1.0, 1.0}, geom["color"])

	tf, ok := geom["transform"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{0.0, 0.0, 0.0}, tf["translation"])
	quat, ok := tf["quaternion"].([]any)
	require.True(t, ok)
	assert.InDelta(t, 1, quat[0].(float64), 1e-12)
}

func TestLoadEmptyGeometryEmitsNoLoadRecord(t *testing.T) {
	core, _, sink := newTestCore(t)

	require.NoError(t, core.Load(Path{"group"}))

	// The mark still flushes an envelope; it just carries no record for
	// the geometry-free node.
	msgs := sink.all()
	require.Len(t, msgs, 1)
	assert.Empty(t, msgs[0].Delete)
	assert.Empty(t, msgs[0].Load)
	assert.Empty(t, msgs[0].Draw)
	assert.Len(t, core.Paths(), 1)
}

func TestDrawCoalescesToLatestTransform(t *testing.T) {
	core, _, sink := newTestCore(t)
	core.SetPublishImmediately(false)

	require.NoError(t, core.Draw(Path{"p"}, mgl64.Translate3D(1, 0, 0)))
	require.NoError(t, core.Draw(Path{"p"}, mgl64.Translate3D(2, 0, 0)))
	require.NoError(t, core.Publish())

	msg := sink.last(t)
	require.Len(t, msg.Draw, 1)
	assert.Equal(t, [3]float64{2, 0, 0}, msg.Draw[0].Transform.Translation)
}

func TestLoadPreservesDrawnTransform(t *testing.T) {
	core, tp, sink := newTestCore(t)
	require.NoError(t, core.StartListener())

	require.NoError(t, core.Draw(Path{"obj"}, mgl64.Translate3D(0, 0, 5)))
	require.NoError(t, core.Load(Path{"obj"}, Sphere{Radius: 1}))

	// Reloading geometry must not reset the node's transform. Observe it
	// through the resync retransmission, the way a remote viewer would.
	require.NoError(t, core.Load(Path{"obj"}, Box{Lengths: [3]float64{2, 2, 2}}))
	respond(t, tp, StatusResync)
	require.NoError(t, core.Publish())

	msg := sink.last(t)
	require.Len(t, msg.Draw, 1)
	assert.Equal(t, [3]float64{0, 0, 5}, msg.Draw[0].Transform.Translation)
	require.Len(t, msg.Load, 1)
	assert.Equal(t, "box", msg.Load[0].Geometries[0]["type"])
}

func TestDeleteSubtree(t *testing.T) {
	core, _, sink := newTestCore(t)
	core.SetPublishImmediately(false)

	require.NoError(t, core.Load(Path{"a", "b"}, Box{Lengths: [3]float64{1, 1, 1}}))
	require.NoError(t, core.Load(Path{"a", "c"}, Sphere{Radius: 1}))
	require.NoError(t, core.Delete(Path{"a"}))
	require.NoError(t, core.Publish())

	// Both children vanished with the parent.
	for _, p := range core.Paths() {
		assert.NotEqual(t, "a", p[0], "deleted subtree still enumerable at %q", p.Key())
	}

	msg := sink.last(t)
	require.Len(t, msg.Delete, 1)
	assert.Equal(t, []string{"a"}, msg.Delete[0].Path)
	// Stale load marks under the deleted subtree emit nothing.
	assert.Empty(t, msg.Load)
}

func TestDeleteRootResetsScene(t *testing.T) {
	core, _, _ := newTestCore(t)

	require.NoError(t, core.Load(Path{"x"}, Triad{}))
	require.NoError(t, core.Load(Path{"y", "z"}, Triad{}))
	require.NoError(t, core.Delete(nil))

	assert.Empty(t, core.Paths())
}

func TestRootDeletePathMarshalsAsEmptyList(t *testing.T) {
	tp := transport.NewMemory()
	core := NewCoreVisualizer(tp, testLogger())

	var raw []byte
	require.NoError(t, tp.Subscribe(DefaultRequestChannel, func(data []byte) { raw = data }))

	require.NoError(t, core.Load(Path{"a"}, Triad{}))
	require.NoError(t, core.Delete(nil))

	// Renderers parse record paths as JSON arrays; the root must not
	// degrade to null.
	require.NotNil(t, raw)
	assert.Contains(t, string(raw), `"path":[]`)
	assert.NotContains(t, string(raw), `"path":null`)
}

func TestSetChannelsRedirectsPublish(t *testing.T) {
	tp := transport.NewMemory()
	core := NewCoreVisualizer(tp, testLogger())

	got := make(chan []byte, 1)
	require.NoError(t, tp.Subscribe("ALT_REQUEST", func(data []byte) { got <- data }))
	core.SetChannels("ALT_REQUEST", "ALT_RESPONSE")

	require.NoError(t, core.Load(Path{"a"}, Triad{}))

	select {
	case <-got:
	default:
		t.Fatal("publish did not follow the channel override")
	}
}

func TestPublishSkipsWhenQueueEmpty(t *testing.T) {
	core, _, sink := newTestCore(t)

	require.NoError(t, core.Publish())
	assert.Empty(t, sink.all())
}

func TestBatchedModeAccumulates(t *testing.T) {
	core, _, sink := newTestCore(t)
	core.SetPublishImmediately(false)

	require.NoError(t, core.Load(Path{"a"}, Triad{}))
	require.NoError(t, core.Draw(Path{"a"}, mgl64.Translate3D(1, 0, 0)))
	assert.Empty(t, sink.all(), "batched mode must not publish on mutation")

	require.NoError(t, core.Publish())
	require.Len(t, sink.all(), 1)
	msg := sink.last(t)
	assert.Len(t, msg.Load, 1)
	assert.Len(t, msg.Draw, 1)
}

func TestInvalidPathRejected(t *testing.T) {
	core, _, sink := newTestCore(t)

	bad := Path{"a", ""}
	assert.ErrorIs(t, core.Load(bad, Triad{}), ErrInvalidPath)
	assert.ErrorIs(t, core.Draw(bad, mgl64.Ident4()), ErrInvalidPath)
	assert.ErrorIs(t, core.Delete(Path{"a/b"}), ErrInvalidPath)

	assert.Empty(t, core.Paths(), "rejected operations must not touch the tree")
	assert.Empty(t, sink.all())
}

func TestUTimeNonDecreasing(t *testing.T) {
	core, _, sink := newTestCore(t)

	require.NoError(t, core.Load(Path{"a"}, Triad{}))
	require.NoError(t, core.Load(Path{"b"}, Triad{}))

	msgs := sink.all()
	require.Len(t, msgs, 2)
	assert.GreaterOrEqual(t, msgs[1].UTime, msgs[0].UTime)
}

func TestResyncRetransmitsWholeTree(t *testing.T) {
	core, tp, sink := newTestCore(t)
	require.NoError(t, core.StartListener())

	require.NoError(t, core.Load(Path{"robot", "arm"}, Box{Lengths: [3]float64{1, 1, 1}}))
	require.NoError(t, core.Draw(Path{"robot", "arm"}, mgl64.Translate3D(0, 1, 0)))
	require.NoError(t, core.Load(Path{"marker"}, Triad{}))
	before := len(sink.all())

	// Remote restart: everything must be sent again on the next flush.
	respond(t, tp, StatusResync)
	require.NoError(t, core.Publish())

	msgs := sink.all()
	require.Len(t, msgs, before+1)
	msg := msgs[len(msgs)-1]

	drawn := map[string]bool{}
	for _, d := range msg.Draw {
		drawn[Path(d.Path).Key()] = true
	}
	for _, want := range []string{"robot", "robot/arm", "marker"} {
		assert.True(t, drawn[want], "resync missing draw for %q", want)
	}
	// Only nodes with geometry produce load records.
	loaded := map[string]bool{}
	for _, l := range msg.Load {
		loaded[Path(l.Path).Key()] = true
	}
	assert.True(t, loaded["robot/arm"])
	assert.True(t, loaded["marker"])
	assert.False(t, loaded["robot"], "geometry-free group should not emit a load record")

	// The drawn transform survives the resync round trip.
	for _, d := range msg.Draw {
		if Path(d.Path).Key() == "robot/arm" {
			assert.Equal(t, [3]float64{0, 1, 0}, d.Transform.Translation)
		}
	}
}

func TestAckIsANoOp(t *testing.T) {
	core, tp, sink := newTestCore(t)
	require.NoError(t, core.StartListener())

	require.NoError(t, core.Load(Path{"a"}, Triad{}))
	n := len(sink.all())

	respond(t, tp, StatusAck)
	require.NoError(t, core.Publish())

	assert.Len(t, sink.all(), n, "ack must not enqueue anything")
}

func TestUnknownStatusIsProtocolError(t *testing.T) {
	core, tp, sink := newTestCore(t)
	require.NoError(t, core.StartListener())

	require.NoError(t, core.Load(Path{"a"}, Triad{}))
	pathsBefore := len(core.Paths())
	n := len(sink.all())

	respond(t, tp, 2)

	select {
	case err := <-core.Errors():
		assert.ErrorIs(t, err, ErrProtocol)
	default:
		t.Fatal("expected a protocol error on Errors()")
	}

	// Tree and queue untouched.
	assert.Len(t, core.Paths(), pathsBefore)
	require.NoError(t, core.Publish())
	assert.Len(t, sink.all(), n, "protocol error must not enqueue anything")
}

func TestHandleResponseUndecodable(t *testing.T) {
	core, _, _ := newTestCore(t)

	err := core.handleResponse([]byte("not json"))
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestStartListenerIdempotent(t *testing.T) {
	core, tp, _ := newTestCore(t)

	require.NoError(t, core.StartListener())
	require.NoError(t, core.StartListener())

	assert.Equal(t, 1, tp.SubscriberCount(DefaultResponseChannel),
		"second StartListener must not subscribe again")
}

type failingTransport struct {
	transport.Transport
}

func (f *failingTransport) Publish(ctx context.Context, channel string, data []byte) error {
	return errors.New("wire down")
}

func TestPublishFailureLosesBatch(t *testing.T) {
	core := NewCoreVisualizer(&failingTransport{Transport: transport.NewMemory()}, testLogger())
	core.SetPublishImmediately(false)

	require.NoError(t, core.Load(Path{"a"}, Triad{}))
	err := core.Publish()
	require.Error(t, err)

	// The batch is gone: a retry publishes nothing.
	require.NoError(t, core.Publish())

	// The tree keeps the state, so a resync can still recover it.
	assert.Len(t, core.Paths(), 1)
}

func TestConcurrentMutationAndResponses(t *testing.T) {
	core, tp, _ := newTestCore(t)
	require.NoError(t, core.StartListener())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			p := Path{"worker", fmt.Sprintf("n%d", n)}
			for j := 0; j < 20; j++ {
				_ = core.Load(p, Box{Lengths: [3]float64{1, 1, 1}})
				_ = core.Draw(p, mgl64.Translate3D(float64(j), 0, 0))
			}
		}(i)
	}
	resync, err := json.Marshal(Response{Status: StatusResync})
	require.NoError(t, err)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 20; j++ {
			_ = tp.Publish(context.Background(), DefaultResponseChannel, resync)
		}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 20; j++ {
			core.SetChannels(DefaultRequestChannel, DefaultResponseChannel)
		}
	}()
	wg.Wait()

	require.NoError(t, core.Publish())
	assert.Len(t, core.Paths(), 9) // worker plus eight children
}
