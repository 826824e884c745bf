package orion

import (
	"bytes"
	"context"
	"errors"
	"io"
)

// MediaStream yields a media payload in chunks. Recv returns io.EOF after
// the last chunk.
type MediaStream interface {
	Recv() ([]byte, error)
	Close() error
}

// ReadMediaStream concatenates every chunk of stream in delivery order and
// closes it. On any error the partial buffer is discarded.
func ReadMediaStream(stream MediaStream) ([]byte, error) {
	defer stream.Close()

	var buf bytes.Buffer
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return buf.Bytes(), nil
		}
		if err != nil {
			return nil, err
		}
		buf.Write(chunk)
	}
}

// DownloadMedia fetches the media attached to m and returns it as one buffer.
func (c *Client) DownloadMedia(ctx context.Context, m *Message) ([]byte, error) {
	if m == nil {
		return nil, &NotMediaMessageError{}
	}
	if m.Media == nil {
		return nil, &NotMediaMessageError{MessageID: m.ID}
	}

	stream, err := c.caps.load().DownloadMediaStream(ctx, *m.Media)
	if err != nil {
		return nil, err
	}
	return ReadMediaStream(stream)
}
