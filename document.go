package roofdb

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/Bitfisherllc/roofdb/internal/data"
)

var ErrJsonCouldNotBeUnmarshalled = errors.New("json contents could not be unmarshalled, probably is invalid")
var ErrJsonPathInvalid = errors.New("json path is invalid")

type JsonValue struct {
	b []byte
}

// Document is one decoded record.
type Document struct {
	key   string
	value []byte
}

func newDocument(key string, value []byte) *Document {
	return &Document{key: key, value: value}
}

func (d *Document) Key() string {
	return d.key
}

// Value is the record as JSON.
func (d *Document) Value() []byte {
	return d.value
}

func (d *Document) Json() *JsonValue {
	return &JsonValue{b: d.value}
}

func (d *Document) RawString() string {
	return string(d.value)
}

// Roofer decodes the record. The record key is authoritative for the slug.
func (d *Document) Roofer() (data.Roofer, error) {
	var r data.Roofer
	if err := d.Json().Unmarshal(&r); err != nil {
		return data.Roofer{}, errors.Wrapf(err, "roofer %q", d.key)
	}

	r.Slug = d.key
	return r, nil
}

func (js *JsonValue) Unmarshal(dest interface{}) error {
	err := json.Unmarshal(js.b, dest)
	if err != nil {
		return errors.Wrap(ErrJsonCouldNotBeUnmarshalled, err.Error())
	}

	return nil
}

func (js *JsonValue) Exists(path string) bool {
	return gjson.GetBytes(js.b, path).Exists()
}

// Get returns the raw JSON found at path.
func (js *JsonValue) Get(path string) (string, error) {
	raw := gjson.GetBytes(js.b, path)
	if !raw.Exists() {
		return "", errors.Wrapf(ErrJsonPathInvalid, "%s", path)
	}
	return raw.Raw, nil
}

func (js *JsonValue) String(path string) (string, error) {
	raw := gjson.GetBytes(js.b, path)
	if !raw.Exists() {
		return "", errors.Wrapf(ErrJsonPathInvalid, "%s", path)
	}
	return raw.String(), nil
}

func (js *JsonValue) StringOrDefault(path, def string) string {
	if v, err := js.String(path); err != nil {
		return def
	} else {
		return v
	}
}

func (js *JsonValue) Bool(path string) (bool, error) {
	get := gjson.GetBytes(js.b, path)
	if !get.Exists() {
		return false, errors.Wrapf(ErrJsonPathInvalid, "%s", path)
	}
	return get.Bool(), nil
}

func (js *JsonValue) BoolOrDefault(path string, def bool) bool {
	if v, err := js.Bool(path); err != nil {
		return def
	} else {
		return v
	}
}

func (js *JsonValue) Int(path string) (int, error) {
	get := gjson.GetBytes(js.b, path)
	if !get.Exists() {
		return 0, errors.Wrapf(ErrJsonPathInvalid, "%s", path)
	}

	return int(get.Int()), nil
}

func (js *JsonValue) IntOrDefault(path string, def int) int {
	if v, err := js.Int(path); err != nil {
		return def
	} else {
		return v
	}
}

// Strings returns the array of strings at path.
func (js *JsonValue) Strings(path string) ([]string, error) {
	get := gjson.GetBytes(js.b, path)
	if !get.Exists() {
		return nil, errors.Wrapf(ErrJsonPathInvalid, "%s", path)
	}

	result := make([]string, 0)
	for _, v := range get.Array() {
		result = append(result, v.String())
	}

	return result, nil
}
