package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andalize/proptic/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRedisStreamPublisher(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	p := NewRedisStreamPublisher(client, "proptic:events", 100)
	ev := New(ProjectCreated, "p-1", map[string]string{"name": "Ridgewood"})
	require.NoError(t, p.Publish(context.Background(), ev))

	msgs, err := client.XRange(context.Background(), "proptic:events", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, ProjectCreated, msgs[0].Values["type"])
	assert.Equal(t, "p-1", msgs[0].Values["entity_id"])
	assert.Equal(t, ev.ID, msgs[0].Values["id"])
	assert.JSONEq(t, `{"name":"Ridgewood"}`, msgs[0].Values["payload"].(string))
}

type fakeMQTT struct {
	mu       sync.Mutex
	topics   []string
	payloads [][]byte
	err      error
	closed   bool
}

func (f *fakeMQTT) Publish(topic string, _ bool, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.topics = append(f.topics, topic)
	f.payloads = append(f.payloads, payload)
	return nil
}

func (f *fakeMQTT) Disconnect() { f.closed = true }

func TestMQTTPublisher(t *testing.T) {
	fake := &fakeMQTT{}
	p := NewMQTTPublisher(fake, "proptic/events/")

	assert.Equal(t, "proptic/events/rent_transaction/recorded", p.Topic(RentTransactionRecorded))

	ev := New(BookingCreated, "b-1", nil)
	require.NoError(t, p.Publish(context.Background(), ev))
	require.Len(t, fake.topics, 1)
	assert.Equal(t, "proptic/events/booking/created", fake.topics[0])

	var decoded Event
	require.NoError(t, json.Unmarshal(fake.payloads[0], &decoded))
	assert.Equal(t, "b-1", decoded.EntityID)

	require.NoError(t, p.Close())
	assert.True(t, fake.closed)
}

func TestWebhookPublisher_SignsBody(t *testing.T) {
	var gotSig string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get(SignatureHeader)
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	p := NewWebhookPublisher(srv.URL, "s3cret", 0)
	require.NoError(t, p.Publish(context.Background(), New(UnitCreated, "u-1", nil)))

	assert.Equal(t, Sign("s3cret", gotBody), gotSig)
	var decoded Event
	require.NoError(t, json.Unmarshal(gotBody, &decoded))
	assert.Equal(t, UnitCreated, decoded.Type)
}

func TestWebhookPublisher_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewWebhookPublisher(srv.URL, "", 3)
	require.NoError(t, p.Publish(context.Background(), New(UserCreated, "x", nil)))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestWebhookPublisher_ClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	p := NewWebhookPublisher(srv.URL, "", 3)
	err := p.Publish(context.Background(), New(UserCreated, "x", nil))
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestEmitter_SwallowsErrors(t *testing.T) {
	fake := &fakeMQTT{err: errors.New("broker down")}
	e := NewEmitter(NewMQTTPublisher(fake, "x"), zap.NewNop())
	assert.NotPanics(t, func() { e.Emit(context.Background(), UnitDeleted, "u-1", nil) })

	var nilEmitter *Emitter
	assert.NotPanics(t, func() { nilEmitter.Emit(context.Background(), UnitDeleted, "u-1", nil) })
}

type ctxRecorder struct {
	err      error
	deadline time.Time
	hasDL    bool
	value    any
}

func (r *ctxRecorder) Publish(ctx context.Context, _ Event) error {
	r.err = ctx.Err()
	r.deadline, r.hasDL = ctx.Deadline()
	r.value = ctx.Value(ctxKey{})
	return nil
}

func (r *ctxRecorder) Close() error { return nil }

type ctxKey struct{}

func TestEmitter_PublishesAfterRequestCancelled(t *testing.T) {
	rec := &ctxRecorder{}
	e := NewEmitter(rec, zap.NewNop())

	parent, cancel := context.WithCancel(context.WithValue(context.Background(), ctxKey{}, "req-1"))
	cancel()
	start := time.Now()
	e.Emit(parent, UnitCreated, "u-1", nil)

	assert.NoError(t, rec.err)
	assert.Equal(t, "req-1", rec.value)
	require.True(t, rec.hasDL)
	assert.WithinDuration(t, start.Add(PublishTimeout), rec.deadline, time.Second)
}

func TestNewPublisher(t *testing.T) {
	logger := zap.NewNop()

	p, err := NewPublisher(config.EventsConfig{Sink: "none"}, nil, nil, logger)
	require.NoError(t, err)
	assert.IsType(t, NopPublisher{}, p)

	_, err = NewPublisher(config.EventsConfig{Sink: SinkRedis}, nil, nil, logger)
	assert.Error(t, err)

	_, err = NewPublisher(config.EventsConfig{Sink: SinkWebhook}, nil, nil, logger)
	assert.Error(t, err)

	p, err = NewPublisher(config.EventsConfig{Sink: SinkWebhook, WebhookURL: "http://localhost"}, nil, nil, logger)
	require.NoError(t, err)
	assert.IsType(t, &WebhookPublisher{}, p)

	_, err = NewPublisher(config.EventsConfig{Sink: "kafka"}, nil, nil, logger)
	assert.Error(t, err)
}
