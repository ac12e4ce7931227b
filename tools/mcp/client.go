package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Client is a JSON-RPC 2.0 client over newline-delimited messages, the
// framing stdio MCP servers use. Responses are matched to requests by
// id through the pending map; the read pump runs until the stream ends.
type Client struct {
	reader io.Reader
	writer io.Writer

	writeMu sync.Mutex

	nextID    int64
	pending   map[int64]chan *rpcMessage
	pendingMu sync.Mutex

	serverInfo *ServerInfo
	connected  bool
	mu         sync.RWMutex

	group  *errgroup.Group
	logger *zap.Logger
}

// NewClient creates a client over the given streams. Call Connect
// before issuing requests.
func NewClient(reader io.Reader, writer io.Writer, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		reader:  reader,
		writer:  writer,
		pending: make(map[int64]chan *rpcMessage),
		logger:  logger.With(zap.String("component", "mcp_client")),
	}
}

// Connect starts the read pump and performs the initialize handshake.
func (c *Client) Connect(ctx context.Context, clientName, clientVersion string) error {
	c.mu.Lock()
	if c.connected {
		c.mu.Unlock()
		return fmt.Errorf("mcp: already connected")
	}
	c.connected = true
	c.mu.Unlock()

	c.group = &errgroup.Group{}
	c.group.Go(c.readLoop)

	params := map[string]any{
		"protocolVersion": ProtocolVersion,
		"capabilities":    map[string]any{},
		"clientInfo":      map[string]any{"name": clientName, "version": clientVersion},
	}
	raw, err := c.sendRequest(ctx, "initialize", params)
	if err != nil {
		return fmt.Errorf("mcp: initialize failed: %w", err)
	}

	var result initializeResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return fmt.Errorf("mcp: failed to parse initialize result: %w", err)
	}
	c.mu.Lock()
	c.serverInfo = &result.ServerInfo
	c.mu.Unlock()

	if err := c.writeMessage(newNotification("notifications/initialized", nil)); err != nil {
		return fmt.Errorf("mcp: failed to send initialized notification: %w", err)
	}

	c.logger.Info("connected to MCP server",
		zap.String("server", result.ServerInfo.Name),
		zap.String("version", result.ServerInfo.Version),
		zap.String("protocol", result.ProtocolVersion))
	return nil
}

// ServerInfo returns the identity reported during initialize.
func (c *Client) ServerInfo() *ServerInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.serverInfo
}

// ListTools fetches the server's tool catalogue.
func (c *Client) ListTools(ctx context.Context) ([]ToolDefinition, error) {
	raw, err := c.sendRequest(ctx, "tools/list", map[string]any{})
	if err != nil {
		return nil, err
	}
	var result listToolsResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("mcp: failed to parse tools/list result: %w", err)
	}
	return result.Tools, nil
}

// CallTool invokes a remote tool. Tool-level failures reported via
// isError come back as errors; text content blocks are concatenated.
func (c *Client) CallTool(ctx context.Context, name string, args json.RawMessage) (string, error) {
	params := map[string]any{"name": name}
	if len(args) > 0 {
		params["arguments"] = args
	} else {
		params["arguments"] = map[string]any{}
	}

	raw, err := c.sendRequest(ctx, "tools/call", params)
	if err != nil {
		return "", err
	}

	var result callToolResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("mcp: failed to parse tools/call result: %w", err)
	}

	var text string
	for _, block := range result.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if result.IsError {
		return "", fmt.Errorf("mcp: tool %s failed: %s", name, text)
	}
	return text, nil
}

// Close fails outstanding requests and waits for the read pump. The
// underlying streams are owned by the caller.
func (c *Client) Close() error {
	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()

	c.failPending()
	if c.group != nil {
		return c.group.Wait()
	}
	return nil
}

func (c *Client) sendRequest(ctx context.Context, method string, params any) (json.RawMessage, error) {
	c.mu.RLock()
	connected := c.connected
	c.mu.RUnlock()
	if !connected {
		return nil, fmt.Errorf("mcp: not connected")
	}

	id := atomic.AddInt64(&c.nextID, 1)
	respCh := make(chan *rpcMessage, 1)

	c.pendingMu.Lock()
	c.pending[id] = respCh
	c.pendingMu.Unlock()
	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
	}()

	if err := c.writeMessage(newRequest(id, method, params)); err != nil {
		return nil, fmt.Errorf("mcp: failed to send %s: %w", method, err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case resp, ok := <-respCh:
		if !ok {
			return nil, fmt.Errorf("mcp: connection closed while waiting for %s", method)
		}
		if resp.Error != nil {
			return nil, resp.Error
		}
		return resp.Result, nil
	}
}

func (c *Client) writeMessage(msg *rpcMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := c.writer.Write(data); err != nil {
		return err
	}
	_, err = c.writer.Write([]byte("\n"))
	return err
}

// readLoop dispatches incoming messages until EOF. Notifications are
// logged and dropped; this client does not consume server events.
func (c *Client) readLoop() error {
	scanner := bufio.NewScanner(c.reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var msg rpcMessage
		if err := json.Unmarshal(line, &msg); err != nil {
			c.logger.Warn("discarding malformed message", zap.Error(err))
			continue
		}

		if msg.ID == nil {
			c.logger.Debug("server notification", zap.String("method", msg.Method))
			continue
		}

		// Deliver under the lock: the channel is buffered, and this
		// prevents a close racing the send.
		c.pendingMu.Lock()
		if respCh, ok := c.pending[*msg.ID]; ok {
			respCh <- &msg
			delete(c.pending, *msg.ID)
		}
		c.pendingMu.Unlock()
	}

	c.failPending()
	return scanner.Err()
}

// failPending closes every outstanding response channel so blocked
// callers return instead of hanging on a dead connection.
func (c *Client) failPending() {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
}
