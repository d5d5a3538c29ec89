package profiling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTrackAndTopN(t *testing.T) {
	ResetFrame()
	defer ResetFrame()

	mu.Lock()
	frameTotals["a.Fast"] = 500 * time.Microsecond
	frameTotals["b.Slow"] = 4200 * time.Microsecond
	frameTotals["c.Mid"] = 2 * time.Millisecond
	mu.Unlock()

	require.Equal(t, "b.Slow:4.2ms, c.Mid:2ms", TopN(2))
	require.Equal(t, "b.Slow:4.2ms, c.Mid:2ms, a.Fast:0.5ms", TopN(10))

	stop := Track("d.Tracked")
	stop()
	snap := Snapshot()
	require.Contains(t, snap, "d.Tracked")

	ResetFrame()
	require.Empty(t, Snapshot())
	require.Len(t, snap, 4)
}
