package service

import (
	"strings"

	"framed/message"
)

// ExecFunc executes one frame against the store and returns a reply.
type ExecFunc func(s *Store, msg *message.Message) *message.Message

type commandExecutor struct {
	fn      ExecFunc
	needArg bool
}

var executors = make(map[string]*commandExecutor)

func RegisterExecutor(verb string, fn ExecFunc, needArg bool) {
	executors[strings.ToUpper(verb)] = &commandExecutor{fn: fn, needArg: needArg}
}

func OKReply() *message.Message {
	return &message.Message{Verb: "OK"}
}

func ErrorReply(reason string) *message.Message {
	return &message.Message{Verb: "ERR", Arg: reason}
}

func NilReply(key string) *message.Message {
	return &message.Message{Verb: "NIL", Arg: key}
}
