package message

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/runnerr0/urlhider/internal/logging"
)

// DefaultMaxMessageBytes is the largest native message accepted.
const DefaultMaxMessageBytes = 1 << 20

// ReadMessage reads one native-messaging frame: a 4-byte little-endian
// length followed by that many bytes of JSON. It returns io.EOF at a clean
// end of stream.
func ReadMessage(r io.Reader, maxBytes int) ([]byte, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("read frame header: %w", err)
		}
		return nil, err
	}

	n := binary.LittleEndian.Uint32(hdr[:])
	if maxBytes > 0 && int64(n) > int64(maxBytes) {
		return nil, fmt.Errorf("message of %d bytes exceeds limit of %d", n, maxBytes)
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("read frame body: %w", err)
	}
	return buf, nil
}

// WriteMessage writes payload as one native-messaging frame.
func WriteMessage(w io.Writer, payload []byte) error {
	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(len(payload)))
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("write frame header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("write frame body: %w", err)
	}
	return nil
}

// NativeHost serves the router over a native-messaging stream, normally
// the process's stdin and stdout. Requests are handled concurrently and
// each reply is written as soon as it settles.
type NativeHost struct {
	router   *Router
	in       io.Reader
	out      io.Writer
	maxBytes int
	logger   *slog.Logger

	wmu sync.Mutex
}

// NewNativeHost creates a NativeHost reading from in and writing to out.
func NewNativeHost(router *Router, in io.Reader, out io.Writer, maxBytes int, logger *slog.Logger) *NativeHost {
	if logger == nil {
		logger = logging.Discard()
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxMessageBytes
	}
	return &NativeHost{router: router, in: in, out: out, maxBytes: maxBytes, logger: logger}
}

// Serve reads requests until the input ends or ctx is done, then waits for
// in-flight replies. A clean end of input returns nil.
func (h *NativeHost) Serve(ctx context.Context) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		raw, err := ReadMessage(h.in, h.maxBytes)
		if err != nil {
			if errors.Is(err, io.EOF) {
				h.logger.Info("native messaging input closed")
				return nil
			}
			return err
		}

		req, err := DecodeRequest(raw)
		if err != nil {
			var derr *DecodeError
			if errors.As(err, &derr) && h.router.Handles(derr.Action) {
				h.logger.Warn("rejecting malformed request",
					"action", string(derr.Action), "request_id", derr.RequestID, "err", err)
				resp := Err(err.Error())
				resp.RequestID = derr.RequestID
				if err := h.reply(resp); err != nil {
					h.logger.Error("reply not delivered", "action", string(derr.Action), "err", err)
				}
				continue
			}
			h.logger.Warn("dropping malformed message", "err", err, "bytes", len(raw))
			continue
		}

		pending, ok := h.router.Dispatch(ctx, req)
		if !ok {
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case resp := <-pending:
				if err := h.reply(resp); err != nil {
					h.logger.Error("reply not delivered", "action", string(req.Action), "err", err)
				}
			case <-ctx.Done():
			}
		}()
	}
}

func (h *NativeHost) reply(resp Response) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	h.wmu.Lock()
	defer h.wmu.Unlock()
	return WriteMessage(h.out, payload)
}
