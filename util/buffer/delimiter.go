package buffer

// Delimiter is a short fixed byte pattern that may allow a single optional
// CR at one position. That is all a text protocol framer needs, so matching
// is a direct byte scan instead of a regexp.
//
// Delimiter is a comparable value type: ReceiveBuffer compares delimiters
// with == to decide whether a previous search position is still valid.
type Delimiter struct {
	lit string
	// optCR is the index in lit before which one optional '\r' may appear,
	// -1 if the pattern is an exact literal.
	optCR int
}

var (
	// BlankLine matches "\n\n" or "\n\r\n", the end-of-headers marker.
	// Tolerates bare-LF and CRLF line conventions appearing inconsistently.
	BlankLine = Delimiter{lit: "\n\n", optCR: 1}
	// LineBreak matches "\n" or "\r\n".
	LineBreak = Delimiter{lit: "\n", optCR: 0}
)

// Exact returns a Delimiter matching lit byte for byte, for protocol
// specific terminators with no optional CR.
func Exact(lit []byte) Delimiter {
	return Delimiter{lit: string(lit), optCR: -1}
}

// maxLen is the longest possible match length.
func (d Delimiter) maxLen() int {
	if d.optCR >= 0 {
		return len(d.lit) + 1
	}
	return len(d.lit)
}

// match reports whether the pattern matches at offset i in data.
// On success end is the offset just past the match. The optional CR is
// matched greedily, which cannot hide an earlier match because the CR
// position is always followed by a required non-CR byte.
func (d Delimiter) match(data []byte, i int) (end int, ok bool) {
	j := i
	for k := 0; k < len(d.lit); k++ {
		if k == d.optCR && j < len(data) && data[j] == '\r' {
			j++
		}
		if j >= len(data) || data[j] != d.lit[k] {
			return 0, false
		}
		j++
	}
	return j, true
}

// index finds the first match at or after offset from. It returns the
// offset just past the match, or -1 if the pattern does not occur.
func (d Delimiter) index(data []byte, from int) int {
	if from < 0 {
		from = 0
	}
	for i := from; i < len(data); i++ {
		if end, ok := d.match(data, i); ok {
			return end
		}
	}
	return -1
}
