package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/orion-bot/orion"
	"github.com/orion-bot/orion/frame"
)

// mediaRequest creates an HTTP request against the media endpoint with the
// session token as Authorization header. Absolute URLs are used as-is.
func (s *Session) mediaRequest(ctx context.Context, method, ref string, body io.Reader) (*http.Request, error) {
	target, err := s.resolveMediaURL(ref)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	if s.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	}
	return req, nil
}

func (s *Session) resolveMediaURL(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("media url: %w", err)
	}
	if u.IsAbs() {
		return ref, nil
	}
	return s.cfg.MediaEndpoint + "/" + strings.TrimLeft(ref, "/"), nil
}

func (s *Session) doMedia(req *http.Request) (*http.Response, error) {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("media request failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("media endpoint returned %d: %s", resp.StatusCode, string(b))
	}
	return resp, nil
}

// UploadMedia posts data to the media endpoint and returns a reference that
// can be attached to an outgoing message.
func (s *Session) UploadMedia(ctx context.Context, kind orion.MediaKind, data []byte) (*orion.MediaRef, error) {
	req, err := s.mediaRequest(ctx, http.MethodPost, "upload/"+string(kind), bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := s.doMedia(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var ref orion.MediaRef
	if err := json.NewDecoder(resp.Body).Decode(&ref); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	ref.Kind = kind
	if ref.FileLength == 0 {
		ref.FileLength = int64(len(data))
	}
	return &ref, nil
}

// DownloadMediaStream opens the media body and yields it in ChunkSize
// pieces. zstd-encoded bodies are decoded on the fly.
func (s *Session) DownloadMediaStream(ctx context.Context, ref orion.MediaRef) (orion.MediaStream, error) {
	if ref.URL == "" {
		return nil, errors.New("gateway: media reference has no url")
	}
	req, err := s.mediaRequest(ctx, http.MethodGet, ref.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept-Encoding", "zstd")

	resp, err := s.doMedia(req)
	if err != nil {
		return nil, err
	}

	stream := &chunkStream{body: resp.Body, r: resp.Body, buf: make([]byte, s.cfg.ChunkSize)}
	if resp.Header.Get("Content-Encoding") == "zstd" {
		dec, err := frame.NewStreamReader(resp.Body)
		if err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("zstd: %w", err)
		}
		stream.dec = dec
		stream.r = dec
	}
	return stream, nil
}

// chunkStream adapts an HTTP body to orion.MediaStream.
type chunkStream struct {
	body io.Closer
	dec  io.Closer
	r    io.Reader
	buf  []byte
	err  error
}

func (c *chunkStream) Recv() ([]byte, error) {
	if c.err != nil {
		return nil, c.err
	}
	n, err := io.ReadFull(c.r, c.buf)
	switch {
	case err == io.ErrUnexpectedEOF || err == io.EOF:
		c.err = io.EOF
	case err != nil:
		c.err = err
	}
	if n == 0 {
		return nil, c.err
	}
	return bytes.Clone(c.buf[:n]), nil
}

func (c *chunkStream) Close() error {
	if c.dec != nil {
		c.dec.Close()
	}
	return c.body.Close()
}
