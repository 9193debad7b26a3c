package driver

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moffa90/go-model2450/transport/transporttest"
)

const runCommand = 2

func TestRunBlankFramesZeroDuration(t *testing.T) {
	s := transporttest.New()
	d := newTestDevice(t, s)

	n, err := d.RunBlankFrames(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, []string{"run\r\n", "stop\r\n"}, s.Written())
	assert.Zero(t, s.Reads, "poll loop must not run")
}

func TestRunBlankFramesCountsBlankMessages(t *testing.T) {
	s := transporttest.New()
	s.On("run",
		transporttest.Blank(runCommand),
		transporttest.Message(runCommand, "frame 1 ok"),
		transporttest.Blank(runCommand),
		transporttest.Message(runCommand, "frame 3 ok"),
		transporttest.Record(true, true, runCommand, 0, []byte(" \r\n")),
	)

	var progress []RunProgress
	d := newTestDevice(t, s, WithProgressCallback(func(p RunProgress) {
		progress = append(progress, p)
	}))

	n, err := d.RunBlankFrames(context.Background(), 50*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"run\r\n", "stop\r\n"}, s.Written())

	require.Len(t, progress, 5)
	last := progress[4]
	assert.Equal(t, 5, last.Messages)
	assert.Equal(t, 3, last.Blank)
	assert.Equal(t, "frame 1 ok", progress[1].Last)
}

func TestRunBlankFramesReassemblesFragments(t *testing.T) {
	long := "this message is longer than a single device record"
	s := transporttest.New()
	s.On("run",
		transporttest.Message(runCommand, long),
		transporttest.Blank(runCommand),
	)
	d := newTestDevice(t, s)

	var texts []string
	d.config.ProgressCallback = func(p RunProgress) { texts = append(texts, p.Last) }

	n, err := d.RunBlankFrames(context.Background(), 30*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{long, ""}, texts)
}

func TestRunBlankFramesSkipsMalformedRecords(t *testing.T) {
	s := transporttest.New()
	s.On("run",
		transporttest.RecordWithLength(true, true, runCommand, 0, 0, nil),
		transporttest.Blank(runCommand),
	)
	d := newTestDevice(t, s)

	n, err := d.RunBlankFrames(context.Background(), 30*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRunBlankFramesCancelled(t *testing.T) {
	s := transporttest.New()
	s.On("run", transporttest.Blank(runCommand), transporttest.Blank(runCommand))
	d := newTestDevice(t, s)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	n, err := d.RunBlankFrames(ctx, time.Minute)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"run\r\n", "stop\r\n"}, s.Written())
}

func TestRunBlankFramesTransportClosed(t *testing.T) {
	s := transporttest.New()
	s.On("run", transporttest.Blank(runCommand))
	d := newTestDevice(t, s, WithProgressCallback(func(RunProgress) {
		_ = s.Close()
	}))

	n, err := d.RunBlankFrames(context.Background(), time.Minute)
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.Equal(t, 1, n)
}

func TestRunBlankFramesNotConnected(t *testing.T) {
	s := transporttest.New()
	require.NoError(t, s.Close())
	d := newTestDevice(t, s)

	_, err := d.RunBlankFrames(context.Background(), time.Second)
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestStopBlankFramesDuringRun(t *testing.T) {
	s := transporttest.New()
	d := newTestDevice(t, s)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = d.RunBlankFrames(context.Background(), 50*time.Millisecond)
	}()

	time.Sleep(10 * time.Millisecond)
	start := time.Now()
	require.NoError(t, d.StopBlankFrames(context.Background()))
	assert.Less(t, time.Since(start), 40*time.Millisecond, "stop must not wait for the run")

	wg.Wait()
	assert.Equal(t, []string{"run\r\n", "stop\r\n", "stop\r\n"}, s.Written())
}

func TestRunBlankFramesStopsWhenContextEndsInLastPoll(t *testing.T) {
	s := transporttest.New()
	d := newTestDevice(t, s, WithPollInterval(50*time.Millisecond))

	// the deadline lands inside the only poll sleep, after the window closed
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	n, err := d.RunBlankFrames(ctx, 10*time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, n)
	assert.Equal(t, []string{"run\r\n", "stop\r\n"}, s.Written())
}

func TestStopBlankFramesCommandDelayCutShort(t *testing.T) {
	s := transporttest.New()
	d := newTestDevice(t, s, WithCommandDelay(50*time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	require.NoError(t, d.StopBlankFrames(ctx), "stop was written")
	assert.Equal(t, []string{"stop\r\n"}, s.Written())
}
