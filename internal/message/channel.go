package message

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNoResponse is returned by Channel.Send when the router ignored the
// request and no reply will come.
var ErrNoResponse = errors.New("message port closed before a response was received")

// Channel connects a popup to the router in the same process. Envelopes
// cross it JSON encoded, as they would between separate contexts.
type Channel struct {
	router *Router
}

// NewChannel creates a Channel to r.
func NewChannel(r *Router) *Channel {
	return &Channel{router: r}
}

// Send delivers req and waits for its reply. A missing RequestID is filled
// with a fresh UUID. If ctx ends first the reply is discarded.
func (c *Channel) Send(ctx context.Context, req Request) (Response, error) {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	raw, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("encode request: %w", err)
	}
	in, err := DecodeRequest(raw)
	if err != nil {
		return Response{}, err
	}

	pending, ok := c.router.Dispatch(ctx, in)
	if !ok {
		return Response{}, ErrNoResponse
	}

	select {
	case resp := <-pending:
		out, err := json.Marshal(resp)
		if err != nil {
			return Response{}, fmt.Errorf("encode response: %w", err)
		}
		return DecodeResponse(out)
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}
