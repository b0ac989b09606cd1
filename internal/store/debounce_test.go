package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncer_EmitsAfterQuietWindow(t *testing.T) {
	d := NewDebouncer(30*time.Millisecond, 0)
	defer d.Close()
	rec := &snapshotRecorder{}
	d.Subscribe(rec.record)

	d.Notify(Snapshot{Version: 1})
	d.Notify(Snapshot{Version: 2})
	assert.Empty(t, rec.get())

	require.Eventually(t, func() bool { return len(rec.get()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, uint64(2), rec.get()[0].Version)
}

func TestDebouncer_KeepsHighestVersion(t *testing.T) {
	d := NewDebouncer(20*time.Millisecond, 0)
	defer d.Close()
	rec := &snapshotRecorder{}
	d.Subscribe(rec.record)

	d.Notify(Snapshot{Version: 5})
	d.Notify(Snapshot{Version: 3})

	require.Eventually(t, func() bool { return len(rec.get()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, uint64(5), rec.get()[0].Version)

	// An older snapshot arriving late is never emitted after a newer one.
	d.Notify(Snapshot{Version: 4})
	time.Sleep(60 * time.Millisecond)
	assert.Len(t, rec.get(), 1)
}

func TestDebouncer_MaxWaitCapsStarvation(t *testing.T) {
	d := NewDebouncer(40*time.Millisecond, 100*time.Millisecond)
	defer d.Close()
	rec := &snapshotRecorder{}
	d.Subscribe(rec.record)

	start := time.Now()
	var v uint64
	for time.Since(start) < 300*time.Millisecond {
		v++
		d.Notify(Snapshot{Version: v})
		time.Sleep(10 * time.Millisecond)
	}

	assert.GreaterOrEqual(t, len(rec.get()), 2, "a steady stream must still produce snapshots")
}

func TestDebouncer_FlushAndClose(t *testing.T) {
	d := NewDebouncer(time.Hour, 0)
	rec := &snapshotRecorder{}
	d.Subscribe(rec.record)

	d.Notify(Snapshot{Version: 1})
	d.Flush()
	require.Len(t, rec.get(), 1)

	d.Flush()
	assert.Len(t, rec.get(), 1, "nothing pending")

	d.Close()
	d.Notify(Snapshot{Version: 2})
	d.Flush()
	assert.Len(t, rec.get(), 1, "closed debouncer ignores notifications")
}
