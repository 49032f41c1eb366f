// Package network - WebSocket client, backing ws_connect/ws_send/ws_recv/
// ws_close in internal/stdlib/net.go.
package network

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketConn represents a WebSocket connection
type WebSocketConn struct {
	ID         string
	URL        string
	Conn       *websocket.Conn
	IsServer   bool
	mu         sync.Mutex
	closed     bool
	messagesCh chan []byte
}

// WebSocketConnect connects to a WebSocket server
func (n *NetworkModule) WebSocketConnect(url string) (*WebSocketConn, error) {
	dialer := websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial failed: %v", err)
	}

	wsConn := &WebSocketConn{
		ID:         fmt.Sprintf("ws_%d", time.Now().UnixNano()),
		URL:        url,
		Conn:       conn,
		IsServer:   false,
		messagesCh: make(chan []byte, 100),
	}

	go wsConn.readMessages()

	n.mu.Lock()
	if n.WebSockets == nil {
		n.WebSockets = make(map[string]*WebSocketConn)
	}
	n.WebSockets[wsConn.ID] = wsConn
	n.mu.Unlock()

	return wsConn, nil
}

// WebSocketSend sends a text message over WebSocket
func (n *NetworkModule) WebSocketSend(connID string, message string) error {
	n.mu.RLock()
	conn, exists := n.WebSockets[connID]
	n.mu.RUnlock()

	if !exists {
		return fmt.Errorf("websocket connection %s not found", connID)
	}

	conn.mu.Lock()
	defer conn.mu.Unlock()

	if conn.closed {
		return fmt.Errorf("websocket connection is closed")
	}

	return conn.Conn.WriteMessage(websocket.TextMessage, []byte(message))
}

// WebSocketReceive receives a message from WebSocket, or an error once
// timeout elapses with nothing buffered.
func (n *NetworkModule) WebSocketReceive(connID string, timeout time.Duration) (string, error) {
	n.mu.RLock()
	conn, exists := n.WebSockets[connID]
	n.mu.RUnlock()

	if !exists {
		return "", fmt.Errorf("websocket connection %s not found", connID)
	}

	select {
	case msg := <-conn.messagesCh:
		return string(msg), nil
	case <-time.After(timeout):
		return "", fmt.Errorf("receive timeout")
	}
}

// WebSocketClose closes a WebSocket connection
func (n *NetworkModule) WebSocketClose(connID string) error {
	n.mu.Lock()
	conn, exists := n.WebSockets[connID]
	if exists {
		delete(n.WebSockets, connID)
	}
	n.mu.Unlock()

	if !exists {
		return fmt.Errorf("websocket connection %s not found", connID)
	}

	conn.mu.Lock()
	conn.closed = true
	conn.mu.Unlock()

	conn.Conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))

	return conn.Conn.Close()
}

// readMessages continuously reads messages from the WebSocket into the
// buffered channel WebSocketReceive drains.
func (ws *WebSocketConn) readMessages() {
	defer close(ws.messagesCh)

	for {
		ws.mu.Lock()
		if ws.closed {
			ws.mu.Unlock()
			return
		}
		ws.mu.Unlock()

		messageType, message, err := ws.Conn.ReadMessage()
		if err != nil {
			ws.mu.Lock()
			ws.closed = true
			ws.mu.Unlock()
			return
		}

		if messageType == websocket.TextMessage || messageType == websocket.BinaryMessage {
			select {
			case ws.messagesCh <- message:
			default:
				<-ws.messagesCh
				ws.messagesCh <- message
			}
		}
	}
}
