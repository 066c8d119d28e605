package solana

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// WSClientConfig configures WebSocket client behavior.
type WSClientConfig struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultWSConfig returns default WebSocket configuration.
func DefaultWSConfig() WSClientConfig {
	return WSClientConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// signatureSub tracks one in-flight signature subscription so it can be
// re-established after a reconnect.
type signatureSub struct {
	signature  string
	commitment Commitment
	ch         chan SignatureNotification
}

// WSClientImpl implements WSClient using gorilla/websocket.
type WSClientImpl struct {
	endpoint string
	config   WSClientConfig

	conn      *websocket.Conn
	connMu    sync.Mutex
	closed    atomic.Bool
	requestID atomic.Uint64

	// subs maps server subscription ID to the waiting subscription.
	subs   map[int64]*signatureSub
	subsMu sync.Mutex

	// pendingSubs maps request ID to the subscription awaiting its
	// server-assigned ID.
	pendingSubs   map[uint64]*signatureSub
	pendingSubsMu sync.Mutex

	done chan struct{}
	wg   sync.WaitGroup
}

// NewWSClient creates a new WebSocket client and connects to the
// endpoint.
func NewWSClient(ctx context.Context, endpoint string, config *WSClientConfig) (*WSClientImpl, error) {
	cfg := DefaultWSConfig()
	if config != nil {
		cfg = *config
	}

	c := &WSClientImpl{
		endpoint:    endpoint,
		config:      cfg,
		subs:        make(map[int64]*signatureSub),
		pendingSubs: make(map[uint64]*signatureSub),
		done:        make(chan struct{}),
	}

	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	c.wg.Add(1)
	go c.readLoop()

	c.wg.Add(1)
	go c.pingLoop()

	return c, nil
}

// connect establishes the WebSocket connection.
func (c *WSClientImpl) connect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	c.conn = conn
	return nil
}

// SubscribeSignature subscribes to the one-shot notification for a
// signature. The returned channel receives at most one value; the
// server drops the subscription after delivering it.
func (c *WSClientImpl) SubscribeSignature(ctx context.Context, signature string, commitment Commitment) (<-chan SignatureNotification, error) {
	if c.closed.Load() {
		return nil, fmt.Errorf("client closed")
	}

	sub := &signatureSub{
		signature:  signature,
		commitment: commitment,
		ch:         make(chan SignatureNotification, 1),
	}

	if err := c.sendSubscribe(sub); err != nil {
		return nil, err
	}
	return sub.ch, nil
}

func (c *WSClientImpl) sendSubscribe(sub *signatureSub) error {
	reqID := c.requestID.Add(1)

	c.pendingSubsMu.Lock()
	c.pendingSubs[reqID] = sub
	c.pendingSubsMu.Unlock()

	req := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      reqID,
		"method":  "signatureSubscribe",
		"params": []interface{}{
			sub.signature,
			map[string]interface{}{
				"commitment": string(sub.commitment),
			},
		},
	}

	c.connMu.Lock()
	defer c.connMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	if err := c.conn.WriteJSON(req); err != nil {
		c.pendingSubsMu.Lock()
		delete(c.pendingSubs, reqID)
		c.pendingSubsMu.Unlock()
		return fmt.Errorf("write subscribe: %w", err)
	}
	return nil
}

// wsMessage is the union of subscription confirmations and
// notifications.
type wsMessage struct {
	ID     uint64          `json:"id"`
	Result json.RawMessage `json:"result"`
	Method string          `json:"method"`
	Params *wsNotifyParams `json:"params"`
	Error  *RPCError       `json:"error"`
}

type wsNotifyParams struct {
	Subscription int64 `json:"subscription"`
	Result       struct {
		Context struct {
			Slot uint64 `json:"slot"`
		} `json:"context"`
		Value struct {
			Err interface{} `json:"err"`
		} `json:"value"`
	} `json:"result"`
}

// readLoop dispatches incoming messages until shutdown, reconnecting on
// transient failures.
func (c *WSClientImpl) readLoop() {
	defer c.wg.Done()

	for {
		select {
		case <-c.done:
			return
		default:
		}

		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if c.closed.Load() {
				return
			}
			c.reconnect()
			continue
		}

		switch {
		case msg.Method == "signatureNotification" && msg.Params != nil:
			c.dispatchNotification(msg.Params)
		case msg.ID != 0:
			c.resolvePending(&msg)
		}
	}
}

func (c *WSClientImpl) resolvePending(msg *wsMessage) {
	c.pendingSubsMu.Lock()
	sub, ok := c.pendingSubs[msg.ID]
	if ok {
		delete(c.pendingSubs, msg.ID)
	}
	c.pendingSubsMu.Unlock()
	if !ok {
		return
	}

	if msg.Error != nil {
		// Surface the failure as a closed channel; the caller falls
		// back to polling.
		close(sub.ch)
		return
	}

	var subID int64
	if err := json.Unmarshal(msg.Result, &subID); err != nil {
		close(sub.ch)
		return
	}

	c.subsMu.Lock()
	c.subs[subID] = sub
	c.subsMu.Unlock()
}

func (c *WSClientImpl) dispatchNotification(params *wsNotifyParams) {
	c.subsMu.Lock()
	sub, ok := c.subs[params.Subscription]
	if ok {
		// One-shot: the server unsubscribes after notifying.
		delete(c.subs, params.Subscription)
	}
	c.subsMu.Unlock()
	if !ok {
		return
	}

	sub.ch <- SignatureNotification{
		Signature: sub.signature,
		Slot:      params.Result.Context.Slot,
		Err:       params.Result.Value.Err,
	}
	close(sub.ch)
}

// reconnect re-establishes the connection and resubscribes every
// signature still awaited.
func (c *WSClientImpl) reconnect() {
	delay := c.config.ReconnectDelay
	for {
		select {
		case <-c.done:
			return
		case <-time.After(delay):
		}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		err := c.connect(ctx)
		cancel()
		if err == nil {
			break
		}

		delay *= 2
		if delay > c.config.MaxReconnectDelay {
			delay = c.config.MaxReconnectDelay
		}
	}

	// Collect active subscriptions under a fresh identity map; server
	// subscription IDs do not survive the reconnect.
	c.subsMu.Lock()
	active := make([]*signatureSub, 0, len(c.subs))
	for id, sub := range c.subs {
		active = append(active, sub)
		delete(c.subs, id)
	}
	c.subsMu.Unlock()

	for _, sub := range active {
		if err := c.sendSubscribe(sub); err != nil {
			close(sub.ch)
		}
	}
}

// pingLoop keeps the connection alive.
func (c *WSClientImpl) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.connMu.Lock()
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
			_ = c.conn.WriteMessage(websocket.PingMessage, nil)
			c.connMu.Unlock()
		}
	}
}

// Close shuts down the connection and all pending subscriptions.
func (c *WSClientImpl) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(c.done)

	c.connMu.Lock()
	err := c.conn.Close()
	c.connMu.Unlock()

	c.wg.Wait()

	c.subsMu.Lock()
	for id, sub := range c.subs {
		close(sub.ch)
		delete(c.subs, id)
	}
	c.subsMu.Unlock()

	return err
}
