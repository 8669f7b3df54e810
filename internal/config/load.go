package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

// Load reads a configuration file and decodes it over Default().
// Fields the file does not mention keep their default values; list
// fields are replaced as a whole.
//
// Supported formats, chosen by extension:
//   - .yaml / .yml: strict YAML (unknown keys are rejected)
//   - .cue: a CUE file whose top-level fields mirror the YAML keys
//
// The decoded configuration is validated before it is returned.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, NewMissingRequiredFileError(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = decodeYAML(data, cfg)
	case ".cue":
		err = decodeCUE(path, data, cfg)
	default:
		return nil, NewInvalidConfigError(path, fmt.Sprintf("unsupported config format %q", filepath.Ext(path)))
	}
	if err != nil {
		return nil, NewInvalidConfigError(path, err.Error())
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decodeYAML parses YAML with strict field validation (catches typos like
// "row_widht:" vs "row_width:").
func decodeYAML(data []byte, cfg *Config) error {
	if err := checkYAMLIntegers(data); err != nil {
		return err
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

// integerKeys are the batch keys that must be written as YAML integers.
// yaml.v3 would otherwise truncate "count: 2.5" to 2.
var integerKeys = []string{"row_width", "count", "seed"}

// checkYAMLIntegers rejects batch parameters whose scalar does not resolve
// to !!int, such as 2.5 or 18.0. Null values keep the default.
func checkYAMLIntegers(data []byte) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil
	}
	batch := mappingValue(doc.Content[0], "batch")
	for _, key := range integerKeys {
		v := mappingValue(batch, key)
		if v == nil || v.Kind != yaml.ScalarNode {
			continue
		}
		if tag := v.ShortTag(); tag != "!!int" && tag != "!!null" {
			return fmt.Errorf("line %d: batch.%s must be an integer, got %q", v.Line, key, v.Value)
		}
	}
	return nil
}

// mappingValue returns the value node of key in a mapping node, or nil.
func mappingValue(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func decodeCUE(path string, data []byte, cfg *Config) error {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return fmt.Errorf("building CUE value: %w", err)
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("CUE value is not concrete: %w", err)
	}
	if err := value.Decode(cfg); err != nil {
		return fmt.Errorf("decoding CUE value: %w", err)
	}
	return nil
}

// Marshal renders cfg as YAML, the format written by "hitprep validate --print".
func Marshal(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return buf.Bytes(), nil
}
