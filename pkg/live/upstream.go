package live

import (
	"context"

	"github.com/karen-assistant/karen/pkg/audio"
)

// ServerMessage is one inbound unit from the streaming endpoint. At most one
// of Audio and Err is set. Interrupted means the assistant's current turn was
// cut off and pending playback should be discarded.
type ServerMessage struct {
	Audio        *audio.Blob
	Interrupted  bool
	TurnComplete bool
	Err          error
}

// Conn is an open bidirectional streaming channel. Receive yields inbound
// messages and closes on remote close; a transport failure is delivered as a
// final message carrying Err before the channel closes.
type Conn interface {
	Send(blob audio.Blob) error
	Receive() <-chan ServerMessage
	Close() error
}

// Upstream opens streaming connections to the remote live endpoint.
type Upstream interface {
	Connect(ctx context.Context) (Conn, error)
}
