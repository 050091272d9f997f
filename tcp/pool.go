package tcp

import (
	"bytes"
	"sync"

	"framed/config"
)

var bufferPool = sync.Pool{New: func() interface{} {
	return &bytes.Buffer{}
}}

var bytesPool = sync.Pool{New: func() interface{} {
	return make([]byte, config.Properties.ReadBufferSize)
}}
