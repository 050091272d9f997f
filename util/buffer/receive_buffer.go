package buffer

// ReceiveBuffer accumulates raw bytes arriving from a transport in
// arbitrary chunks and hands out complete protocol units: at-most-N byte
// reads and everything-up-to-a-delimiter reads. It remembers how far an
// unsuccessful delimiter search has already looked, so repeated polling
// never rescans the same bytes more than a constant number of times:
// total scan work is linear in the bytes ever written, not in the number
// of calls.
//
// A ReceiveBuffer is a one-shot forward cursor over an append-only log.
// Extracted segments come back in arrival order, non-overlapping, each
// byte at most once. It is owned by a single connection's parse loop and
// is not safe for concurrent use.
type ReceiveBuffer struct {
	data []byte
	// start and searched are absolute offsets into data. Bytes before
	// start are consumed. data[start:searched] is known not to contain
	// delim.
	start    int
	searched int
	delim    Delimiter
}

// NewReceiveBuffer returns an empty buffer.
func NewReceiveBuffer() *ReceiveBuffer {
	return &ReceiveBuffer{}
}

// Write appends a chunk to the tail of the buffer. It never fails and
// implements io.Writer. An empty chunk is a no-op.
func (b *ReceiveBuffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}

// Len returns the size of the unconsumed region.
func (b *ReceiveBuffer) Len() int {
	return len(b.data) - b.start
}

// Bytes returns the unconsumed region without consuming it. The slice
// aliases internal storage and is only valid until the next call on b;
// it is meant for diagnostics, not extraction.
func (b *ReceiveBuffer) Bytes() []byte {
	return b.data[b.start:]
}

// ExtractAtMost returns up to n bytes from the front of the unconsumed
// region and consumes them. Fewer than n bytes is not an error. If the
// region is empty it returns ErrNoData; n == 0 on a non-empty buffer
// returns an empty slice with no error, which is a different outcome.
func (b *ReceiveBuffer) ExtractAtMost(n int) ([]byte, error) {
	if b.Len() == 0 {
		return nil, ErrNoData
	}
	if n > b.Len() {
		n = b.Len()
	}
	// Copied out, not aliased: Compress moves storage in place and must
	// not clobber bytes already handed to the caller.
	out := make([]byte, n)
	copy(out, b.data[b.start:])
	b.start += n
	return out, nil
}

// ExtractUntil returns the bytes from the front of the unconsumed region
// through and including the first match of d, and consumes them. If d
// does not occur yet it returns ErrNoMatch and remembers how far it
// looked, so the next call with the same d only rescans the tail that
// could complete a match straddling the old boundary.
func (b *ReceiveBuffer) ExtractUntil(d Delimiter) ([]byte, error) {
	var from int
	if d == b.delim {
		// The last maxLen-1 already-searched bytes may be a partial match
		// completed by newly written data.
		from = b.searched - (d.maxLen() - 1)
		if from < b.start {
			from = b.start
		}
	} else {
		// No carried-over progress is trusted across patterns.
		b.delim = d
		from = b.start
	}
	end := d.index(b.data, from)
	if end < 0 {
		b.searched = len(b.data)
		return nil, ErrNoMatch
	}
	out := make([]byte, end-b.start)
	copy(out, b.data[b.start:])
	b.start = end
	return out, nil
}

// ExtractLines implements the "read header lines until a blank one"
// protocol idiom. It consumes everything through the blank line and
// returns the lines before it, without their line breaks. A block that
// is nothing but a blank line yields an empty, non-nil slice. If the
// blank line has not arrived yet it returns ErrNoMatch.
func (b *ReceiveBuffer) ExtractLines() ([][]byte, error) {
	region := b.data[b.start:]
	if len(region) >= 2 && region[0] == '\r' && region[1] == '\n' {
		b.start += 2
		return [][]byte{}, nil
	}
	if len(region) >= 1 && region[0] == '\n' {
		b.start++
		return [][]byte{}, nil
	}
	block, err := b.ExtractUntil(BlankLine)
	if err != nil {
		return nil, err
	}
	lines := splitLines(block)
	// The block ends with the blank line terminator, so the split must
	// produce exactly two trailing empty fragments. Upstream framing is
	// supposed to guarantee this; if it did not hold we have a bug or an
	// impossible input and must not silently misbehave.
	n := len(lines)
	if n < 2 || len(lines[n-1]) != 0 || len(lines[n-2]) != 0 {
		return nil, ErrMalformedBlock
	}
	return lines[:n-2], nil
}

// splitLines splits block on LineBreak ("\r\n" or bare "\n"). A CR not
// followed by LF is ordinary content. The fragment after the last line
// break is always appended, possibly empty.
func splitLines(block []byte) [][]byte {
	lines := make([][]byte, 0, 8)
	beg := 0
	for i := 0; i < len(block); i++ {
		if block[i] != '\n' {
			continue
		}
		end := i
		if end > beg && block[end-1] == '\r' {
			end--
		}
		lines = append(lines, block[beg:end:end])
		beg = i + 1
	}
	return append(lines, block[beg:])
}

// Compress discards consumed leading bytes and rebases the cursors, but
// only when more than half of the storage is consumed bytes, keeping the
// amortized cost low. It never changes what later extraction calls
// return.
func (b *ReceiveBuffer) Compress() {
	if b.start <= len(b.data)/2 {
		return
	}
	b.data = append(b.data[:0], b.data[b.start:]...)
	b.searched -= b.start
	if b.searched < 0 {
		b.searched = 0
	}
	b.start = 0
}
