// Package rpcclient is the single native-chain RPC adapter the off-chain
// loops (attestor, forwarder, submitter) drive through their respective
// narrow façade interfaces. It is a thin wrapper over go-ethereum's
// transport-agnostic JSON-RPC client (`rpc.Client`), which speaks the same
// JSON-RPC 2.0 + subscription protocol the native chain exposes without
// assuming an Ethereum-specific method set.
package rpcclient

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
)

// Client is a mutex-free wrapper; go-ethereum's rpc.Client already
// multiplexes concurrent calls over one connection (spec §5 "Chain
// client: mutex-guarded, single outstanding call" is satisfied by the
// transport, not by this package).
type Client struct {
	rpc *rpc.Client
	url string
}

// Dial connects to url (ws:// or http://) with a 10s connection timeout
// (spec §5).
func Dial(url string) (*Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	c, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("rpcclient: dial %s: %w", url, err)
	}
	return &Client{rpc: c, url: url}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() {
	c.rpc.Close()
}

// Reconnect re-dials c.url, replacing the underlying connection. Matches
// the submitter.Provider.Reconnect contract (spec §4.J "connection
// closed" recovery).
func (c *Client) Reconnect(ctx context.Context) error {
	nc, err := rpc.DialContext(ctx, c.url)
	if err != nil {
		return fmt.Errorf("rpcclient: reconnect %s: %w", c.url, err)
	}
	old := c.rpc
	c.rpc = nc
	old.Close()
	return nil
}

// call applies spec §5's 60s request timeout when ctx carries no earlier
// deadline.
func (c *Client) call(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 60*time.Second)
		defer cancel()
	}
	return c.rpc.CallContext(ctx, result, method, args...)
}
