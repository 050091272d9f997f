package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDelimiter_Index(t *testing.T) {
	testCases := []struct {
		name  string
		delim Delimiter
		data  string
		from  int
		end   int
	}{
		{name: "blank-lf-lf", delim: BlankLine, data: "x\n\ny", from: 0, end: 3},
		{name: "blank-lf-cr-lf", delim: BlankLine, data: "x\n\r\ny", from: 0, end: 4},
		{name: "blank-cr-not-followed", delim: BlankLine, data: "x\n\rxy", from: 0, end: -1},
		{name: "leftmost-match", delim: BlankLine, data: "\n\n\n\n", from: 0, end: 2},
		{name: "resume-after-offset", delim: BlankLine, data: "\n\nx\n\n", from: 1, end: 5},
		{name: "line-bare", delim: LineBreak, data: "ab\ncd", from: 0, end: 3},
		{name: "line-crlf", delim: LineBreak, data: "ab\r\ncd", from: 0, end: 4},
		{name: "lone-cr-is-content", delim: LineBreak, data: "ab\rcd", from: 0, end: -1},
		{name: "exact", delim: Exact([]byte("END")), data: "xxENDyy", from: 0, end: 5},
		{name: "exact-ignores-cr", delim: Exact([]byte("\n\n")), data: "a\n\r\nb", from: 0, end: -1},
		{name: "negative-from", delim: LineBreak, data: "a\n", from: -3, end: 2},
		{name: "empty-data", delim: BlankLine, data: "", from: 0, end: -1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.end, tc.delim.index([]byte(tc.data), tc.from))
		})
	}
}

func TestDelimiter_MaxLen(t *testing.T) {
	assert.Equal(t, 3, BlankLine.maxLen())
	assert.Equal(t, 2, LineBreak.maxLen())
	assert.Equal(t, 3, Exact([]byte("END")).maxLen())
}
