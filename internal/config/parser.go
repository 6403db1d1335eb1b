package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/jsonc"
)

type jsoncConfig struct {
	Server *jsoncServer `json:"server"`
	Send   *jsoncSend   `json:"send"`
	Log    *jsoncLog    `json:"log"`
}

type jsoncServer struct {
	WordSize *int `json:"word_size"`
}

type jsoncSend struct {
	ProbeFirst *bool `json:"probe_first"`
}

type jsoncLog struct {
	Level *string `json:"level"`
}

// Parse reads JSONC configuration content over base. Comments and trailing
// commas are accepted; unknown keys are rejected.
func Parse(content []byte, base Config) (Config, []Warning, error) {
	normalized := jsonc.ToJSON(content)
	if len(bytes.TrimSpace(normalized)) == 0 {
		warnings, err := Validate(base)
		if err != nil {
			return Config{}, nil, err
		}
		return base, warnings, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(normalized))
	decoder.DisallowUnknownFields()

	var payload jsoncConfig
	if err := decoder.Decode(&payload); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return Config{}, nil, errors.New("unexpected trailing content after config object")
	}

	cfg := base
	payload.applyTo(&cfg)

	warnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, warnings, nil
}

func (payload jsoncConfig) applyTo(cfg *Config) {
	if payload.Server != nil && payload.Server.WordSize != nil {
		cfg.Server.WordSize = *payload.Server.WordSize
	}
	if payload.Send != nil && payload.Send.ProbeFirst != nil {
		cfg.Send.ProbeFirst = *payload.Send.ProbeFirst
	}
	if payload.Log != nil && payload.Log.Level != nil {
		cfg.Log.Level = strings.ToLower(strings.TrimSpace(*payload.Log.Level))
	}
}

// wrapJSONDecodeError adds a line number when the decoder reports an offset.
// jsonc.ToJSON keeps newlines in place, so lines match the source file.
func wrapJSONDecodeError(normalized []byte, err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fmt.Errorf("line %d: %w", lineForOffset(normalized, syntaxErr.Offset), err)
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Errorf("line %d: %w", lineForOffset(normalized, typeErr.Offset), err)
	}
	return err
}

func lineForOffset(content []byte, offset int64) int {
	if offset > int64(len(content)) {
		offset = int64(len(content))
	}
	return bytes.Count(content[:offset], []byte("\n")) + 1
}
