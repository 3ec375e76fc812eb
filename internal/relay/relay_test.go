package relay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"taskboard/internal/stats"
	"taskboard/internal/testutil"
)

func newTestRelay(t *testing.T) (*Relay, *stats.MockStatsUpdater) {
	t.Helper()

	ms := &stats.MockStatsUpdater{}
	ms.On("RegisterMetric", mock.Anything).Return()
	ms.On("Incr", mock.Anything).Return()
	ms.On("Decr", mock.Anything).Return()

	return NewRelay(testutil.TestLogger(t), ms), ms
}

func newTestConn(t *testing.T, r *Relay, id string, userId int, username string) *Conn {
	t.Helper()

	return NewConn(id, Identity{UserId: userId, Username: username}, nil, r, testutil.TestLogger(t))
}

// receiveEvent pulls the next queued event off a connection's send buffer.
func receiveEvent(t *testing.T, c *Conn) *Event {
	t.Helper()

	select {
	case ev := <-c.send:
		return ev
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for event on connection %q", c.id)
		return nil
	}
}

// drainEvents discards everything currently queued on a connection.
func drainEvents(c *Conn) {
	for {
		select {
		case <-c.send:
		default:
			return
		}
	}
}
