package tcp

import "framed/message"

// Connection is the transport-side view of one client, shared by the
// goroutine-per-connection server and the epoll server.
type Connection interface {
	// Send queues a reply for the client.
	Send(reply *message.Message)
	Close()
	Active() bool
	RemoteAddr() string
}
