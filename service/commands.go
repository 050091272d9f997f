package service

import (
	"strconv"

	"framed/message"
)

func init() {
	RegisterExecutor("PING", execPing, false)
	RegisterExecutor("ECHO", execEcho, false)
	RegisterExecutor("SET", execSet, true)
	RegisterExecutor("GET", execGet, true)
	RegisterExecutor("DEL", execDel, true)
	RegisterExecutor("LEN", execLen, false)
}

func execPing(s *Store, msg *message.Message) *message.Message {
	return &message.Message{Verb: "PONG"}
}

func execEcho(s *Store, msg *message.Message) *message.Message {
	reply := &message.Message{Verb: "OK", Arg: msg.Arg}
	reply.Body = append(reply.Body, msg.Body...)
	return reply
}

func execSet(s *Store, msg *message.Message) *message.Message {
	value := make([]byte, len(msg.Body))
	copy(value, msg.Body)
	s.data[msg.Arg] = value
	return OKReply()
}

func execGet(s *Store, msg *message.Message) *message.Message {
	value, ok := s.data[msg.Arg]
	if !ok {
		return NilReply(msg.Arg)
	}
	reply := &message.Message{Verb: "VALUE", Arg: msg.Arg}
	reply.Body = append(reply.Body, value...)
	return reply
}

func execDel(s *Store, msg *message.Message) *message.Message {
	if _, ok := s.data[msg.Arg]; !ok {
		return NilReply(msg.Arg)
	}
	delete(s.data, msg.Arg)
	return OKReply()
}

func execLen(s *Store, msg *message.Message) *message.Message {
	return &message.Message{Verb: "LEN", Arg: strconv.Itoa(len(s.data))}
}
