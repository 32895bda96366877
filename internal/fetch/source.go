package fetch

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentstation/eventmap/pkg/catalog"
	"github.com/agentstation/eventmap/pkg/errors"
)

// Source resolves a source string to a fetcher: http(s) URLs read a remote
// event source, anything else is a catalog file path.
func Source(source string, logger *zerolog.Logger) (catalog.Fetcher, error) {
	source = strings.TrimSpace(source)
	switch {
	case source == "":
		return nil, errors.NewValidationError("source", source, "an event source URL or catalog file is required")
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return NewHTTP(source, WithHTTPLogger(logger))
	default:
		return NewFile(source, logger), nil
	}
}
