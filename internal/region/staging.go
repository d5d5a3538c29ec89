package region

import "fmt"

// StagingBuffer accounts for the bytes copied to the device between two
// flushes.
type StagingBuffer struct {
	pending   int
	total     int64
	flushes   int
	lastFlush int
}

func (s *StagingBuffer) stage(n int) {
	s.pending += n
	s.total += int64(n)
}

func (s *StagingBuffer) flush() {
	if s.pending == 0 {
		return
	}
	s.lastFlush = s.pending
	s.pending = 0
	s.flushes++
}

func (s *StagingBuffer) String() string {
	return fmt.Sprintf("%d KiB last flush, %d flushes, %d MiB total",
		s.lastFlush/1024, s.flushes, s.total/(1024*1024))
}
