package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog"

	"github.com/agentstation/eventmap/pkg/catalog"
	"github.com/agentstation/eventmap/pkg/errors"
	"github.com/agentstation/eventmap/pkg/logging"
)

var _ catalog.Fetcher = (*FileFetcher)(nil)

// FileFetcher reads events from a local JSON or YAML file. The file holds
// either a sequence of events or a mapping with an events key.
type FileFetcher struct {
	path   string
	logger *zerolog.Logger
}

// NewFile creates a fetcher for the catalog file at path.
func NewFile(path string, logger *zerolog.Logger) *FileFetcher {
	return &FileFetcher{path: path, logger: logging.OrNop(logger)}
}

// Path returns the catalog file path.
func (f *FileFetcher) Path() string {
	return f.path
}

// Fetch implements catalog.Fetcher.
func (f *FileFetcher) Fetch(ctx context.Context) ([]catalog.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Join(errors.ErrCanceled, err)
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Join(errors.NewNotFoundError("catalog file", f.path), err)
		}
		return nil, errors.WrapIO("read", f.path, err)
	}

	events, err := Decode(data, formatOf(f.path))
	if err != nil {
		var parseErr *errors.ParseError
		if errors.As(err, &parseErr) {
			parseErr.File = f.path
		}
		return nil, err
	}

	f.logger.Debug().
		Str("path", f.path).
		Int("events", len(events)).
		Msg("Loaded catalog file")
	return events, nil
}

// Format names a catalog file encoding.
type Format string

// Supported catalog file formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func formatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	default:
		return FormatYAML
	}
}

type document struct {
	Events []catalog.Event `json:"events" yaml:"events"`
}

// Decode parses a catalog document in the given format.
func Decode(data []byte, format Format) ([]catalog.Event, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []catalog.Event{}, nil
	}

	switch format {
	case FormatJSON:
		if trimmed[0] == '[' {
			var events []catalog.Event
			if err := json.Unmarshal(trimmed, &events); err != nil {
				return nil, errors.WrapParse("json", "", err)
			}
			return events, nil
		}
		var doc document
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, errors.WrapParse("json", "", err)
		}
		return nonNil(doc.Events), nil
	default:
		var events []catalog.Event
		if err := yaml.Unmarshal(trimmed, &events); err == nil {
			return nonNil(events), nil
		}
		var doc document
		if err := yaml.Unmarshal(trimmed, &doc); err != nil {
			return nil, errors.WrapParse("yaml", "", err)
		}
		return nonNil(doc.Events), nil
	}
}

func nonNil(events []catalog.Event) []catalog.Event {
	if events == nil {
		return []catalog.Event{}
	}
	return events
}
