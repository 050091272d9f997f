package tcp

import (
	"bytes"
	"context"
	"errors"
	"net"
	"sync/atomic"

	"framed/message"

	svciface "framed/interface/service"
)

// Connection wraps one accepted net.Conn for the goroutine-per-connection
// server. The read loop feeds arriving chunks into the frame decoder and
// submits complete messages to the service; the write loop drains the
// reply channel back to the client.
type Connection struct {
	conn      net.Conn
	replyChan chan *message.Message
	svc       svciface.Service
	decoder   *message.Decoder
	ctx       context.Context
	cancel    context.CancelFunc
	active    atomic.Value
}

func NewConnection(conn net.Conn, svc svciface.Service, maxMessageBytes int) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	connect := &Connection{
		conn:      conn,
		replyChan: make(chan *message.Message, 1024),
		svc:       svc,
		decoder:   message.NewDecoder(maxMessageBytes),
		ctx:       ctx,
		cancel:    cancel,
	}
	connect.active.Store(true)
	return connect
}

/*
ReadLoop
Continuously read chunks from the connection, no framing assumption on
chunk boundaries, and submit every decoded message to the service.
*/
func (c *Connection) ReadLoop() error {
	for {
		scratch := bytesPool.Get().([]byte)
		n, err := c.conn.Read(scratch)
		if n > 0 {
			_, _ = c.decoder.Buffer().Write(scratch[:n])
		}
		bytesPool.Put(scratch)
		if err != nil {
			return err
		}
		for {
			msg, err := c.decoder.Decode()
			if errors.Is(err, message.ErrIncomplete) {
				break
			}
			if err != nil {
				// protocol error or worse, drop the connection
				return err
			}
			c.svc.Submit(c, msg)
		}
	}
}

/*
WriteLoop
Poll replies from the write channel, batch whatever is queued into one
write, and send to the remote client.
*/
func (c *Connection) WriteLoop() error {
	for {
		select {
		case reply := <-c.replyChan:
			buffer := bufferPool.Get().(*bytes.Buffer)
			buffer.Write(message.Encode(reply))
			size := len(c.replyChan)
			for i := 0; i < size; i++ {
				buffer.Write(message.Encode(<-c.replyChan))
			}
			_, err := c.conn.Write(buffer.Bytes())
			buffer.Reset()
			bufferPool.Put(buffer)
			if err != nil {
				return err
			}
		case <-c.ctx.Done():
			return nil
		}
	}
}

func (c *Connection) Send(reply *message.Message) {
	c.replyChan <- reply
}

func (c *Connection) Close() {
	c.active.Store(false)
	_ = c.conn.Close()
	c.cancel()
}

func (c *Connection) Active() bool {
	return c.active.Load().(bool)
}

func (c *Connection) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
