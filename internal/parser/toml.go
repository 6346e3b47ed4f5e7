package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/harrison/getset/internal/models"
)

// TOMLParser parses command files of the form
//
//	[[commands]]
//	title = "Build"
//	command = "make"
//
//	[platformx]
//	secret_key = "..."
type TOMLParser struct{}

func NewTOMLParser() *TOMLParser {
	return &TOMLParser{}
}

func (p *TOMLParser) Parse(r io.Reader) (*models.CommandFile, error) {
	var cf models.CommandFile
	md, err := toml.NewDecoder(r).Decode(&cf)
	if err != nil {
		return nil, err
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}

	if md.IsDefined("platformx") && !md.IsDefined("platformx", "secret_key") {
		return nil, ErrMissingSecretKey
	}

	return &cf, nil
}
