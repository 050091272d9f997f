package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"framed/message"
	"framed/util/conn"
)

func TestStore_Execute(t *testing.T) {
	testCases := []struct {
		name string
		msg  *message.Message
		verb string
		arg  string
		body string
	}{
		{name: "ping", msg: &message.Message{Verb: "PING"}, verb: "PONG"},
		{name: "echo", msg: &message.Message{Verb: "ECHO", Body: []byte("hi")}, verb: "OK", body: "hi"},
		{name: "get-missing", msg: &message.Message{Verb: "GET", Arg: "k"}, verb: "NIL", arg: "k"},
		{name: "unknown-verb", msg: &message.Message{Verb: "NOPE"}, verb: "ERR", arg: "unknown verb NOPE"},
		{name: "missing-arg", msg: &message.Message{Verb: "GET"}, verb: "ERR", arg: "GET needs an argument"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewStore(16)
			reply := s.Execute(tc.msg)
			require.NotNil(t, reply)
			assert.Equal(t, tc.verb, reply.Verb)
			assert.Equal(t, tc.arg, reply.Arg)
			assert.Equal(t, tc.body, string(reply.Body))
		})
	}
}

func TestStore_SetGetDel(t *testing.T) {
	s := NewStore(16)

	reply := s.Execute(&message.Message{Verb: "SET", Arg: "greeting", Body: []byte("hello")})
	require.Equal(t, "OK", reply.Verb)

	reply = s.Execute(&message.Message{Verb: "GET", Arg: "greeting"})
	require.Equal(t, "VALUE", reply.Verb)
	assert.Equal(t, "greeting", reply.Arg)
	assert.Equal(t, "hello", string(reply.Body))

	reply = s.Execute(&message.Message{Verb: "LEN"})
	assert.Equal(t, "1", reply.Arg)

	reply = s.Execute(&message.Message{Verb: "DEL", Arg: "greeting"})
	require.Equal(t, "OK", reply.Verb)
	reply = s.Execute(&message.Message{Verb: "GET", Arg: "greeting"})
	assert.Equal(t, "NIL", reply.Verb)
}

func TestStore_ExecuteLoop(t *testing.T) {
	s := NewStore(16)
	go func() {
		_ = s.ExecuteLoop()
	}()
	defer s.Close()

	fake := conn.NewFakeConnection()
	s.Submit(fake, &message.Message{Verb: "SET", Arg: "k", Body: []byte("v")})
	s.Submit(fake, &message.Message{Verb: "GET", Arg: "k"})

	reply := <-fake.Replies
	require.Equal(t, "OK", reply.Verb)
	reply = <-fake.Replies
	require.Equal(t, "VALUE", reply.Verb)
	assert.Equal(t, "v", string(reply.Body))
}
