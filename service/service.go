package service

import (
	"sync"

	"framed/message"
	"framed/util/log"

	tcpiface "framed/interface/tcp"
)

type request struct {
	conn tcpiface.Connection
	msg  *message.Message
}

// Store is a small in-memory key-value service behind the framed
// protocol. Frames are submitted from connection read loops and executed
// one at a time on the execute loop goroutine, so executors never need
// locks on the data.
type Store struct {
	cmdChan   chan request
	data      map[string][]byte
	closeOnce sync.Once
	closed    chan struct{}
}

func NewStore(cmdChanSize int) *Store {
	return &Store{
		cmdChan: make(chan request, cmdChanSize),
		data:    make(map[string][]byte),
		closed:  make(chan struct{}),
	}
}

func (s *Store) Submit(conn tcpiface.Connection, msg *message.Message) {
	select {
	case s.cmdChan <- request{conn: conn, msg: msg}:
	case <-s.closed:
	}
}

// ExecuteLoop drains submitted frames until Close.
func (s *Store) ExecuteLoop() error {
	for {
		select {
		case req := <-s.cmdChan:
			reply := s.Execute(req.msg)
			if req.conn.Active() {
				req.conn.Send(reply)
			}
		case <-s.closed:
			return nil
		}
	}
}

// Execute runs one frame against the store and returns the reply.
func (s *Store) Execute(msg *message.Message) *message.Message {
	exec, ok := executors[msg.Verb]
	if !ok {
		return ErrorReply("unknown verb " + msg.Verb)
	}
	if exec.needArg && msg.Arg == "" {
		return ErrorReply(msg.Verb + " needs an argument")
	}
	return exec.fn(s, msg)
}

func (s *Store) OnConnectionClosed(conn tcpiface.Connection) {
	log.Debug("connection closed: %s", conn.RemoteAddr())
}

func (s *Store) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
	})
}
