package message

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"framed/util/buffer"
)

const CRLF = "\r\n"

var (
	// ErrIncomplete means the buffer does not hold a whole message yet.
	// Feed more bytes and decode again.
	ErrIncomplete = errors.New("incomplete message")
	// ErrProtocol means the peer sent a malformed frame. The connection
	// is beyond saving and should be closed.
	ErrProtocol = errors.New("protocol error")
	// ErrTooLarge means a frame exceeded the configured size limit.
	ErrTooLarge = errors.New("message too large")
)

// Decoder incrementally decodes framed messages out of a ReceiveBuffer.
// The transport read loop writes chunks into Buffer() as they arrive and
// calls Decode until it reports ErrIncomplete.
//
// A Decoder belongs to a single connection and is not safe for
// concurrent use, same as the buffer underneath it.
type Decoder struct {
	buf      *buffer.ReceiveBuffer
	maxBytes int

	// header block already parsed, waiting for body bytes
	pending *Message
	need    int
}

func NewDecoder(maxBytes int) *Decoder {
	return &Decoder{buf: buffer.NewReceiveBuffer(), maxBytes: maxBytes}
}

// Buffer exposes the underlying receive buffer for the transport to
// append into.
func (d *Decoder) Buffer() *buffer.ReceiveBuffer {
	return d.buf
}

// Decode extracts the next complete message. It returns ErrIncomplete
// when more input is needed and ErrProtocol or ErrTooLarge when the
// stream is unusable.
func (d *Decoder) Decode() (*Message, error) {
	for {
		if d.pending != nil {
			return d.readBody()
		}
		lines, err := d.buf.ExtractLines()
		if errors.Is(err, buffer.ErrNoMatch) {
			if d.maxBytes > 0 && d.buf.Len() > d.maxBytes {
				return nil, fmt.Errorf("%w: header block over %d bytes", ErrTooLarge, d.maxBytes)
			}
			return nil, ErrIncomplete
		}
		if err != nil {
			// ErrMalformedBlock; an internal invariant broke, not a slow
			// or misbehaving peer
			return nil, err
		}
		// a lone blank line between frames is tolerated as a keepalive
		if len(lines) == 0 {
			continue
		}
		msg, need, err := parseHead(lines)
		if err != nil {
			return nil, err
		}
		if d.maxBytes > 0 && need > d.maxBytes {
			return nil, fmt.Errorf("%w: declared body of %d bytes", ErrTooLarge, need)
		}
		if need == 0 {
			d.buf.Compress()
			return msg, nil
		}
		d.pending = msg
		d.need = need
	}
}

func (d *Decoder) readBody() (*Message, error) {
	out, err := d.buf.ExtractAtMost(d.need)
	if errors.Is(err, buffer.ErrNoData) {
		return nil, ErrIncomplete
	}
	d.pending.Body = append(d.pending.Body, out...)
	d.need -= len(out)
	if d.need > 0 {
		return nil, ErrIncomplete
	}
	msg := d.pending
	d.pending = nil
	d.buf.Compress()
	return msg, nil
}

func parseHead(lines [][]byte) (*Message, int, error) {
	verbLine := string(lines[0])
	msg := &Message{}
	if idx := strings.IndexByte(verbLine, ' '); idx >= 0 {
		msg.Verb = verbLine[:idx]
		msg.Arg = strings.TrimLeft(verbLine[idx+1:], " ")
	} else {
		msg.Verb = verbLine
	}
	if msg.Verb == "" {
		return nil, 0, fmt.Errorf("%w: empty verb line", ErrProtocol)
	}
	need := 0
	for _, line := range lines[1:] {
		idx := strings.IndexByte(string(line), ':')
		if idx <= 0 {
			return nil, 0, fmt.Errorf("%w: bad header line %q", ErrProtocol, line)
		}
		name := string(line[:idx])
		value := strings.Trim(string(line[idx+1:]), " ")
		msg.AddHeader(name, value)
		if strings.EqualFold(name, "Content-Length") {
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return nil, 0, fmt.Errorf("%w: bad Content-Length %q", ErrProtocol, value)
			}
			need = n
		}
	}
	return msg, need, nil
}

// Encode renders a message in wire format. A Content-Length header is
// emitted for the body; any caller-set Content-Length is dropped so the
// frame always matches the body it carries.
func Encode(msg *Message) []byte {
	builder := strings.Builder{}
	builder.WriteString(msg.Verb)
	if msg.Arg != "" {
		builder.WriteString(" ")
		builder.WriteString(msg.Arg)
	}
	builder.WriteString(CRLF)
	for _, h := range msg.Headers {
		if strings.EqualFold(h.Name, "Content-Length") {
			continue
		}
		builder.WriteString(h.Name)
		builder.WriteString(": ")
		builder.WriteString(h.Value)
		builder.WriteString(CRLF)
	}
	if len(msg.Body) > 0 {
		builder.WriteString("Content-Length: ")
		builder.WriteString(strconv.Itoa(len(msg.Body)))
		builder.WriteString(CRLF)
	}
	builder.WriteString(CRLF)
	builder.Write(msg.Body)
	return []byte(builder.String())
}
