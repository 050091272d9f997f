package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePlain(t *testing.T) {
	content := "# comment line\n" +
		"port 7371\n" +
		"maxmessagebytes 2048\n" +
		"loglevel debug\n"
	props := parse(strings.NewReader(content))
	assert.Equal(t, "7371", props.Port)
	assert.Equal(t, 2048, props.MaxMessageBytes)
	assert.Equal(t, "debug", props.LogLevel)
}

func TestParseYAML(t *testing.T) {
	content := "port: \"7372\"\nreadBufferSize: 8192\n"
	props := parseYAML(strings.NewReader(content))
	assert.Equal(t, "7372", props.Port)
	assert.Equal(t, 8192, props.ReadBufferSize)
}
