package literal

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/titanous/json5"
)

// Decode converts a record body, the text between its braces, into JSON.
// Record literals use unquoted keys, single quoted strings and trailing
// commas, all of which JSON5 accepts.
func Decode(body string) ([]byte, error) {
	var v map[string]interface{}
	if err := json5.Unmarshal([]byte("{"+body+"}"), &v); err != nil {
		return nil, errors.Wrapf(ErrMalformed, "could not decode record: %s", err)
	}

	b, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "could not encode record")
	}

	return b, nil
}
