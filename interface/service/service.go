package service

import (
	"framed/interface/tcp"
	"framed/message"
)

// Service consumes decoded messages. Submission is asynchronous: the
// transport hands frames over and the service replies through the
// connection when it has executed them.
type Service interface {
	// Submit hands a decoded frame to the service.
	Submit(conn tcp.Connection, msg *message.Message)
	// ExecuteLoop drains submitted frames until Close.
	ExecuteLoop() error
	// OnConnectionClosed tells the service a client went away.
	OnConnectionClosed(conn tcp.Connection)
	Close()
}
