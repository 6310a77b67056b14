package cleanup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gowallet/internal/logging"
	"github.com/dmitrijs2005/gowallet/internal/server/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePurger struct {
	size     int64
	expired  int64
	purgeErr error
	sizeErr  error
	calledAt time.Time
}

func (f *fakePurger) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	f.calledAt = now
	if f.purgeErr != nil {
		return 0, f.purgeErr
	}
	n := f.expired
	f.size -= n
	f.expired = 0
	return n, nil
}

func (f *fakePurger) Size(context.Context) (int64, error) {
	return f.size, f.sizeErr
}

type recorder struct {
	metrics.Nop
	purged int64
	size   int64
}

func (r *recorder) RecordPurge(n int64)      { r.purged += n }
func (r *recorder) SetBlacklistSize(n int64) { r.size = n }

func newTestJob(p Purger, buf *bytes.Buffer) (*Job, *recorder) {
	rec := &recorder{}
	j := NewJob(p, rec, logging.NewJSON(buf, "info"))
	j.now = func() time.Time { return time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC) }
	return j, rec
}

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &m))
	return m
}

func TestJob_Run(t *testing.T) {
	var buf bytes.Buffer
	p := &fakePurger{size: 10, expired: 4}
	j, rec := newTestJob(p, &buf)

	require.NoError(t, j.Run(context.Background()))

	assert.Equal(t, time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC), p.calledAt)
	assert.EqualValues(t, 4, rec.purged)
	entry := lastLine(t, &buf)
	assert.Equal(t, "blacklist cleanup done", entry["msg"])
	assert.EqualValues(t, 4, entry["removed"])
}

func TestJob_RunNothingToDo(t *testing.T) {
	var buf bytes.Buffer
	j, rec := newTestJob(&fakePurger{size: 3}, &buf)

	require.NoError(t, j.Run(context.Background()))
	require.NoError(t, j.Run(context.Background()))
	assert.Zero(t, rec.purged)
}

func TestJob_RunError(t *testing.T) {
	var buf bytes.Buffer
	boom := errors.New("boom")
	j, _ := newTestJob(&fakePurger{purgeErr: boom}, &buf)

	err := j.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "ERROR", lastLine(t, &buf)["level"])
}

func TestJob_Deep(t *testing.T) {
	var buf bytes.Buffer
	j, rec := newTestJob(&fakePurger{size: 10, expired: 7}, &buf)

	require.NoError(t, j.Deep(context.Background()))

	entry := lastLine(t, &buf)
	assert.Equal(t, "deep blacklist cleanup done", entry["msg"])
	assert.EqualValues(t, 10, entry["before"])
	assert.EqualValues(t, 7, entry["removed"])
	assert.EqualValues(t, 3, entry["after"])
	assert.EqualValues(t, 3, rec.size)
}

func TestJob_DeepSizeError(t *testing.T) {
	var buf bytes.Buffer
	boom := errors.New("count failed")
	j, _ := newTestJob(&fakePurger{sizeErr: boom}, &buf)

	assert.ErrorIs(t, j.Deep(context.Background()), boom)
}

func TestNewScheduler(t *testing.T) {
	var buf bytes.Buffer
	j, _ := newTestJob(&fakePurger{}, &buf)
	log := logging.NewJSON(&buf, "info")

	s, err := NewScheduler(j, "@hourly", "0 2 * * *", log)
	require.NoError(t, err)
	assert.Len(t, s.cron.Entries(), 2)

	_, err = NewScheduler(j, "every now and then", "0 2 * * *", log)
	assert.Error(t, err)
	_, err = NewScheduler(j, "@hourly", "61 * * * *", log)
	assert.Error(t, err)
}

func TestScheduler_StartStops(t *testing.T) {
	var buf bytes.Buffer
	j, _ := newTestJob(&fakePurger{}, &buf)

	s, err := NewScheduler(j, "@hourly", "@daily", logging.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
