package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrCatalogLoad is returned when a catalog source is unreadable or malformed.
var ErrCatalogLoad = errors.New("catalog load failed")

var validate = validator.New()

// Format selects the decoder used for a catalog source.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatFromPath picks the format from the file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}

func decode(r io.Reader, format Format, v interface{}) error {
	var err error
	switch format {
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(v)
	default:
		err = json.NewDecoder(r).Decode(v)
	}
	if err != nil {
		return fmt.Errorf("%w: %s decode: %v", ErrCatalogLoad, format, err)
	}
	return nil
}

func openFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogLoad, err)
	}
	return f, nil
}
