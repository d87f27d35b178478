// Package transport abstracts a framed-text connection so that the
// session layer does not care whether a player arrived over a raw TCP
// socket or a websocket.
package transport

import (
	"errors"
	"net"
	"sync"
	"time"
)

const writeTimeout = 10 * time.Second

// Conn is one player's connection. ReadFrame returns whatever bytes the
// next network read produced, which may contain zero, one or several
// newline-delimited messages; splitting is the caller's job. WriteFrame
// sends exactly one message and is safe for concurrent use.
type Conn interface {
	ReadFrame(timeout time.Duration) ([]byte, error)
	WriteFrame(data []byte) error
	Close() error
	RemoteAddr() string
}

// IsTimeout reports whether err is a read deadline expiry, which the
// session loop treats as "nothing arrived yet" rather than a failure.
func IsTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// TCPConn adapts a raw TCP socket. Nagle buffering is disabled on
// construction to keep move latency down.
type TCPConn struct {
	conn net.Conn

	writeMu sync.Mutex
	buf     [4096]byte
}

func NewTCPConn(conn net.Conn) *TCPConn {
	if tc, ok := conn.(*net.TCPConn); ok {
		tc.SetNoDelay(true)
	}
	return &TCPConn{conn: conn}
}

func (c *TCPConn) ReadFrame(timeout time.Duration) ([]byte, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, err
	}
	n, err := c.conn.Read(c.buf[:])
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, c.buf[:n])
	return out, nil
}

func (c *TCPConn) WriteFrame(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	framed := make([]byte, 0, len(data)+1)
	framed = append(framed, data...)
	framed = append(framed, '\n')
	_, err := c.conn.Write(framed)
	return err
}

func (c *TCPConn) Close() error {
	return c.conn.Close()
}

func (c *TCPConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
