package transport

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WSConn adapts a websocket connection to the framed Conn interface.
// Websocket frames already carry message boundaries, so each inbound
// message is handed to the shared line splitter with a newline appended.
type WSConn struct {
	conn *websocket.Conn

	writeMu sync.Mutex
}

func NewWSConn(conn *websocket.Conn) *WSConn {
	return &WSConn{conn: conn}
}

// ReadFrame blocks until a message arrives. The timeout is ignored:
// gorilla treats an expired read deadline as a dead connection, so the
// read is unblocked by closing the socket instead.
func (c *WSConn) ReadFrame(timeout time.Duration) ([]byte, error) {
	_, msg, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return append(msg, '\n'), nil
}

func (c *WSConn) WriteFrame(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *WSConn) Close() error {
	return c.conn.Close()
}

func (c *WSConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
