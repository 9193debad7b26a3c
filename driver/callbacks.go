package driver

import "time"

// RunProgress describes a blank-frame run in progress.
// Passed to ProgressCallback each time a message is reassembled.
type RunProgress struct {
	// Elapsed is the time since the run command was sent
	Elapsed time.Duration

	// Messages is the number of messages reassembled so far
	Messages int

	// Blank is the number of those messages that were blank
	Blank int

	// Last is the text of the most recent message
	Last string
}

// ProgressCallback is called from the polling loop of RunBlankFrames.
// Implementations should return quickly; the loop does not poll while the
// callback runs.
type ProgressCallback func(RunProgress)
