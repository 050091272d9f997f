package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feed(t *testing.T, d *Decoder, chunk string) {
	t.Helper()
	_, err := d.Buffer().Write([]byte(chunk))
	require.NoError(t, err)
}

func TestDecoder_Decode(t *testing.T) {
	testCases := []struct {
		name string
		wire string
		verb string
		arg  string
		body string
		err  error
	}{
		{
			name: "no-body",
			wire: "PING\r\n\r\n",
			verb: "PING",
		},
		{
			name: "verb-with-arg",
			wire: "GET greeting\r\n\r\n",
			verb: "GET", arg: "greeting",
		},
		{
			name: "with-body",
			wire: "SET greeting\r\nContent-Length: 5\r\n\r\nhello",
			verb: "SET", arg: "greeting", body: "hello",
		},
		{
			name: "bare-lf-frame",
			wire: "PING\n\n",
			verb: "PING",
		},
		{
			name: "incomplete-headers",
			wire: "SET greeting\r\nContent-Length: 5\r\n",
			err:  ErrIncomplete,
		},
		{
			name: "incomplete-body",
			wire: "SET greeting\r\nContent-Length: 5\r\n\r\nhel",
			err:  ErrIncomplete,
		},
		{
			name: "bad-header-line",
			wire: "SET greeting\r\nnocolon\r\n\r\n",
			err:  ErrProtocol,
		},
		{
			name: "bad-content-length",
			wire: "SET greeting\r\nContent-Length: x\r\n\r\n",
			err:  ErrProtocol,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d := NewDecoder(0)
			feed(t, d, tc.wire)
			msg, err := d.Decode()
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.verb, msg.Verb)
			assert.Equal(t, tc.arg, msg.Arg)
			assert.Equal(t, tc.body, string(msg.Body))
		})
	}
}

// Frames arrive in arbitrary chunks; the decoder must pick up where it
// left off, including mid-delimiter and mid-body.
func TestDecoder_ChunkedArrival(t *testing.T) {
	d := NewDecoder(0)
	chunks := []string{
		"SET gre", "eting\r\nContent-Le", "ngth: 5\r", "\n\r", "\nhel", "lo",
	}
	var msg *Message
	var err error
	for i, c := range chunks {
		feed(t, d, c)
		msg, err = d.Decode()
		if i < len(chunks)-1 {
			require.ErrorIs(t, err, ErrIncomplete, "chunk %d", i)
		}
	}
	require.NoError(t, err)
	assert.Equal(t, "SET", msg.Verb)
	assert.Equal(t, "greeting", msg.Arg)
	assert.Equal(t, "hello", string(msg.Body))
}

func TestDecoder_PipelinedFrames(t *testing.T) {
	d := NewDecoder(0)
	feed(t, d, "PING\r\n\r\nSET k\r\nContent-Length: 2\r\n\r\nhiGET k\r\n\r\n")

	msg, err := d.Decode()
	require.NoError(t, err)
	assert.Equal(t, "PING", msg.Verb)

	msg, err = d.Decode()
	require.NoError(t, err)
	assert.Equal(t, "SET", msg.Verb)
	assert.Equal(t, "hi", string(msg.Body))

	msg, err = d.Decode()
	require.NoError(t, err)
	assert.Equal(t, "GET", msg.Verb)

	_, err = d.Decode()
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestDecoder_KeepaliveBlankLine(t *testing.T) {
	d := NewDecoder(0)
	feed(t, d, "\r\n\r\nPING\r\n\r\n")
	msg, err := d.Decode()
	require.NoError(t, err)
	assert.Equal(t, "PING", msg.Verb)
}

func TestDecoder_Limits(t *testing.T) {
	d := NewDecoder(16)
	feed(t, d, "SET k\r\nContent-Length: 64\r\n\r\n")
	_, err := d.Decode()
	assert.ErrorIs(t, err, ErrTooLarge)

	d = NewDecoder(16)
	feed(t, d, "SET averylongargumentwithnoterminator")
	_, err = d.Decode()
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := &Message{Verb: "REPLY", Arg: "ok", Body: []byte("payload")}
	in.AddHeader("X-Request", "42")

	d := NewDecoder(0)
	feed(t, d, string(Encode(in)))
	out, err := d.Decode()
	require.NoError(t, err)
	assert.Equal(t, in.Verb, out.Verb)
	assert.Equal(t, in.Arg, out.Arg)
	assert.Equal(t, string(in.Body), string(out.Body))
	v, ok := out.Header("x-request")
	require.True(t, ok)
	assert.Equal(t, "42", v)
}
