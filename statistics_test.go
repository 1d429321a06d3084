package kanal

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatisticsCounters(t *testing.T) {
	s := NewStatistics()

	s.Send()
	s.Send()
	s.Recv()
	s.Handoff()
	s.Timeout()
	s.Cancel()
	s.Drop()

	assert.Equal(t, int64(2), s.Sends())
	assert.Equal(t, int64(1), s.Recvs())
	assert.Equal(t, int64(1), s.Handoffs())
	assert.Equal(t, int64(1), s.Timeouts())
	assert.Equal(t, int64(1), s.Cancels())
	assert.Equal(t, int64(1), s.Drops())
}

func TestStatisticsSizeTracking(t *testing.T) {
	s := NewStatistics()

	s.UpdateSize(3)
	s.UpdateSize(7)
	s.UpdateSize(2)

	assert.Equal(t, int64(2), s.CurrentSize())
	assert.Equal(t, int64(7), s.MaxSize())
}

func TestStatisticsHandoffRate(t *testing.T) {
	s := NewStatistics()
	assert.Equal(t, 0.0, s.HandoffRate())

	s.Send()
	s.Send()
	s.Send()
	s.Send()
	s.Handoff()

	assert.Equal(t, 0.25, s.HandoffRate())
}

func TestStatisticsConcurrentUpdates(t *testing.T) {
	s := NewStatistics()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Send()
				s.Recv()
				s.UpdateSize(int64(j))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1000), s.Sends())
	assert.Equal(t, int64(1000), s.Recvs())
	assert.Equal(t, int64(99), s.MaxSize())
}

func TestStatisticsSummary(t *testing.T) {
	s := NewStatistics()
	s.Send()
	s.Handoff()
	s.UpdateSize(1)
	time.Sleep(time.Millisecond)

	summary := s.Summary()
	assert.Equal(t, int64(1), summary.Sends)
	assert.Equal(t, int64(1), summary.Handoffs)
	assert.Equal(t, 1.0, summary.HandoffRate)
	assert.Equal(t, int64(1), summary.CurrentSize)
	assert.Greater(t, summary.Uptime, time.Duration(0))
	assert.Greater(t, summary.Throughput, 0.0)
}
