package snippet

import (
	"bytes"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Decode parses a definition document: a YAML (or JSON) sequence of snippet
// records. Unknown keys are rejected, null entries are skipped and an empty
// document yields no snippets.
func Decode(data []byte) ([]Snippet, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var records []*Snippet
	if err := dec.Decode(&records); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "decode definitions")
	}

	out := make([]Snippet, 0, len(records))
	for _, rec := range records {
		if rec == nil {
			continue
		}
		out = append(out, *rec)
	}
	return out, nil
}
