package conn

import "framed/message"

// FakeConnection collects replies locally, for tests and in-process
// callers of a Service.
type FakeConnection struct {
	Replies chan *message.Message
	closed  bool
}

func NewFakeConnection() *FakeConnection {
	return &FakeConnection{Replies: make(chan *message.Message, 16)}
}

func (f *FakeConnection) Send(reply *message.Message) {
	f.Replies <- reply
}

func (f *FakeConnection) Close() {
	f.closed = true
}

func (f *FakeConnection) Active() bool {
	return !f.closed
}

func (f *FakeConnection) RemoteAddr() string {
	return "local"
}
