package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/harrison/getset/internal/models"
)

// YAMLParser parses command files with a top-level commands list and an
// optional platformx mapping.
type YAMLParser struct{}

func NewYAMLParser() *YAMLParser {
	return &YAMLParser{}
}

func (p *YAMLParser) Parse(r io.Reader) (*models.CommandFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cf models.CommandFile
	if err := dec.Decode(&cf); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("file is empty")
		}
		return nil, err
	}

	if cf.Telemetry != nil {
		if err := checkSecretKey(data); err != nil {
			return nil, err
		}
	}
	return &cf, nil
}

// checkSecretKey reports ErrMissingSecretKey when the platformx mapping in
// data has no secret_key. An empty value is accepted.
func checkSecretKey(data []byte) error {
	var raw struct {
		Platformx *struct {
			SecretKey *string `yaml:"secret_key"`
		} `yaml:"platformx"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Platformx != nil && raw.Platformx.SecretKey == nil {
		return ErrMissingSecretKey
	}
	return nil
}
