package message

import "strings"

// Message is one framed protocol unit: a verb line, header lines, a blank
// line, then an optional body whose size the Content-Length header gives.
//
//	ECHO greeting\r\n
//	Content-Length: 5\r\n
//	\r\n
//	hello
type Message struct {
	Verb    string
	Arg     string
	Headers []Header
	Body    []byte
}

type Header struct {
	Name  string
	Value string
}

// Header returns the value of the first header with the given name,
// compared case-insensitively.
func (m *Message) Header(name string) (string, bool) {
	for _, h := range m.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

func (m *Message) AddHeader(name, value string) {
	m.Headers = append(m.Headers, Header{Name: name, Value: value})
}
