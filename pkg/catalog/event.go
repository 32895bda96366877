package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/eventmap/pkg/errors"
)

// ID identifies an event. Sources may send ids as strings or integers;
// both are held in their string form, which is also the form used in
// the eventId route parameter.
type ID string

// String returns the stringified id.
func (id ID) String() string {
	return string(id)
}

// UnmarshalJSON accepts a JSON string or number.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.NewValidationError("id", string(data), "must be a string or a number")
	}
	*id = ID(numericID(n.String()))
	return nil
}

// numericID writes integral numbers in plain integer form, so 1, 1.0 and
// 1e0 all yield the id "1".
func numericID(s string) string {
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return s
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return s
	}
	return strconv.FormatInt(int64(f), 10)
}

// MarshalJSON writes integer-looking ids as JSON numbers and everything
// else as strings, so a catalog served back keeps its original shape.
func (id ID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(string(id)), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalYAML accepts a YAML scalar of any type.
func (id *ID) UnmarshalYAML(data []byte) error {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*id = ""
	case string:
		*id = ID(t)
	case uint64, int64, int:
		*id = ID(fmt.Sprint(t))
	case float64:
		*id = ID(numericID(strconv.FormatFloat(t, 'g', -1, 64)))
	default:
		return errors.NewValidationError("id", t, "must be a scalar")
	}
	return nil
}

// Coordinates is a geographic position in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// Event is a catalog record. Events are immutable once fetched; the
// catalog owns them and everything else refers to them by pointer.
type Event struct {
	ID          ID          `json:"id" yaml:"id"`
	Title       string      `json:"title" yaml:"title"`
	Description string      `json:"description" yaml:"description"`
	Category    string      `json:"category" yaml:"category"`
	Coords      Coordinates `json:"coords" yaml:"coords"`
}

// Validate checks the fields a catalog relies on.
func (e Event) Validate() error {
	if strings.TrimSpace(string(e.ID)) == "" {
		return errors.NewValidationError("id", e.ID, "cannot be empty")
	}
	if strings.TrimSpace(e.Category) == "" {
		return errors.NewValidationError("category", e.Category, fmt.Sprintf("cannot be empty (event %s)", e.ID))
	}
	return nil
}

// ValidateAll validates every event, reporting the first failure with its position.
func ValidateAll(events []Event) error {
	for i, e := range events {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("event at index %d: %w", i, err)
		}
	}
	return nil
}
