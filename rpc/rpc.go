// Package rpc serves per-frame channel strengths of a loaded mixer over
// net/rpc + HTTP, so a pipeline host can poll values frame by frame instead
// of linking the engine in.
package rpc

import (
	"fmt"
	"net"
	"net/http"
	"net/rpc"

	"github.com/tzootz/midimix/mixer"
)

// DefaultAddr is the address the command line tools serve on by default.
const DefaultAddr = ":31338"

type (
	// StrengthServer answers frame queries from a mixer.
	StrengthServer struct {
		mixer *mixer.Mixer
	}

	// Reply carries the values of one queried frame.
	Reply struct {
		Strengths []float64
		Weighted  []float64
		MixValues string
	}

	// Client queries a StrengthServer.
	Client struct {
		client *rpc.Client
	}
)

// Strengths samples the mixer at the given frame. The reply has both the raw
// channel strengths and the weighted values a downstream adapter consumes.
func (s *StrengthServer) Strengths(frame int, reply *Reply) error {
	strengths := s.mixer.StrengthsAt(frame)
	weighted := s.mixer.WeightedAt(frame)
	n := len(s.mixer.Config().Channels)
	reply.Strengths = append([]float64{}, strengths[:n]...)
	reply.Weighted = append([]float64{}, weighted[:n]...)
	reply.MixValues = s.mixer.MixValues(frame)
	return nil
}

// Serve starts answering frame queries for the mixer on addr. It returns the
// listener so the caller can close it; the serving goroutine exits when the
// listener closes.
func Serve(addr string, m *mixer.Mixer) (net.Listener, error) {
	server := &StrengthServer{mixer: m}
	if err := rpc.Register(server); err != nil {
		return nil, fmt.Errorf("rpc.Register failed: %v", err)
	}
	rpc.HandleHTTP()
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("net.Listen failed: %v", err)
	}
	go http.Serve(l, nil)
	return l, nil
}

// Dial connects to a StrengthServer at addr.
func Dial(addr string) (*Client, error) {
	client, err := rpc.DialHTTP("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("rpc.DialHTTP failed: %v", err)
	}
	return &Client{client: client}, nil
}

// Strengths queries the server for one frame.
func (c *Client) Strengths(frame int) (Reply, error) {
	var reply Reply
	if err := c.client.Call("StrengthServer.Strengths", frame, &reply); err != nil {
		return Reply{}, fmt.Errorf("StrengthServer.Strengths call failed: %v", err)
	}
	return reply, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
