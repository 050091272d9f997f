package config

import (
	"bufio"
	"io"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/ghodss/yaml"
)

type ServerProperties struct {
	Address         string `cfg:"address" yaml:"address"`
	Port            string `cfg:"port" yaml:"port"`
	MaxMessageBytes int    `cfg:"maxmessagebytes" yaml:"maxMessageBytes"`
	ReadBufferSize  int    `cfg:"readbuffersize" yaml:"readBufferSize"`
	LogLevel        string `cfg:"loglevel" yaml:"logLevel"`
	PprofPort       string `cfg:"pprofport" yaml:"pprofPort"`
}

var Properties *ServerProperties

func init() {
	Properties = &ServerProperties{
		Address:         "127.0.0.1",
		Port:            "7370",
		MaxMessageBytes: 1 << 20,
		ReadBufferSize:  4096,
		LogLevel:        "info",
		PprofPort:       "",
	}
}

// parse reads a plain key-value config file, one "key value" pair per
// line, '#' starting a comment line.
func parse(reader io.Reader) *ServerProperties {
	configs := Properties
	cfgMap := make(map[string]string)
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) > 0 && line[0] == '#' {
			continue
		}
		idx := strings.IndexAny(line, " ")
		if idx > 0 && idx < len(line)-1 {
			key := line[0:idx]
			value := strings.Trim(line[idx+1:], " ")
			cfgMap[strings.ToLower(key)] = value
		}
	}
	if err := scanner.Err(); err != nil {
		panic(err)
	}

	t := reflect.TypeOf(configs)
	v := reflect.ValueOf(configs)
	n := t.Elem().NumField()
	for i := 0; i < n; i++ {
		field := t.Elem().Field(i)
		fieldValue := v.Elem().Field(i)
		key, ok := field.Tag.Lookup("cfg")
		if !ok {
			key = field.Name
		}
		value, ok := cfgMap[strings.ToLower(key)]
		if !ok {
			continue
		}
		switch field.Type.Kind() {
		case reflect.String:
			fieldValue.SetString(value)
		case reflect.Int:
			num, err := strconv.ParseInt(value, 10, 64)
			if err == nil {
				fieldValue.SetInt(num)
			}
		case reflect.Bool:
			boolVal, err := strconv.ParseBool(value)
			if err == nil {
				fieldValue.SetBool(boolVal)
			}
		}
	}
	return configs
}

func parseYAML(reader io.Reader) *ServerProperties {
	configs := Properties
	bytes, err := io.ReadAll(reader)
	if err != nil {
		panic(err)
	}
	if err := yaml.Unmarshal(bytes, configs); err != nil {
		panic(err)
	}
	return configs
}

// LoadConfigs fills Properties from the given file, YAML when the name
// says so, the plain key-value format otherwise.
func LoadConfigs(configFilePath string) {
	file, err := os.Open(configFilePath)
	if err != nil {
		panic(err)
	}
	defer file.Close()
	if strings.HasSuffix(configFilePath, ".yaml") || strings.HasSuffix(configFilePath, ".yml") {
		Properties = parseYAML(file)
	} else {
		Properties = parse(file)
	}
}
