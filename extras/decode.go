package extras

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"

	"github.com/binzume/fbxgltfextras/geom"
)

// object is one decoded JSON object with the path it was found at.
type object struct {
	path   string
	fields map[string]json.RawMessage
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func isNull(data json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}

func firstByte(data json.RawMessage) byte {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return 0
	}
	return data[0]
}

func decodeObject(data json.RawMessage, path string) (object, error) {
	if firstByte(data) != '{' {
		return object{}, invalidField(path, "must be an object")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return object{}, invalidField(path, "malformed object: %v", err)
	}
	return object{path: path, fields: fields}, nil
}

func (o object) has(key string) bool {
	_, ok := o.fields[key]
	return ok
}

func (o object) field(key string) string {
	return joinPath(o.path, key)
}

func (o object) require(key string) (json.RawMessage, error) {
	v, ok := o.fields[key]
	if !ok {
		return nil, invalidField(o.field(key), "missing")
	}
	if isNull(v) {
		return nil, invalidField(o.field(key), "must not be null")
	}
	return v, nil
}

func (o object) requireObject(key string) (object, error) {
	v, err := o.require(key)
	if err != nil {
		return object{}, err
	}
	return decodeObject(v, o.field(key))
}

func (o object) requireString(key string) (string, error) {
	v, err := o.require(key)
	if err != nil {
		return "", err
	}
	return decodeString(v, o.field(key))
}

func (o object) requireNumber(key string) (float64, error) {
	v, err := o.require(key)
	if err != nil {
		return 0, err
	}
	return decodeNumber(v, o.field(key))
}

func (o object) requireInt(key string) (int, error) {
	v, err := o.require(key)
	if err != nil {
		return 0, err
	}
	return decodeInt(v, o.field(key))
}

// unknown returns the fields not listed in known, or nil if there are none.
func (o object) unknown(known ...string) map[string]json.RawMessage {
	var r map[string]json.RawMessage
	for k, v := range o.fields {
		if containsString(known, k) {
			continue
		}
		if r == nil {
			r = map[string]json.RawMessage{}
		}
		r[k] = v
	}
	return r
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func decodeString(data json.RawMessage, path string) (string, error) {
	var s string
	if firstByte(data) != '"' {
		return "", invalidField(path, "must be a string")
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return "", invalidField(path, "malformed string: %v", err)
	}
	return s, nil
}

func decodeNumber(data json.RawMessage, path string) (float64, error) {
	d := json.NewDecoder(bytes.NewReader(data))
	d.UseNumber()
	var v interface{}
	if err := d.Decode(&v); err != nil {
		return 0, invalidField(path, "malformed value: %v", err)
	}
	n, ok := v.(json.Number)
	if !ok {
		return 0, invalidField(path, "must be a number")
	}
	f, err := n.Float64()
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, invalidField(path, "must be a finite number")
	}
	return f, nil
}

func decodeInt(data json.RawMessage, path string) (int, error) {
	f, err := decodeNumber(data, path)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, invalidField(path, "must be an integer")
	}
	return int(f), nil
}

func decodeDouble3(data json.RawMessage, path string) (geom.Double3, error) {
	var elems []json.RawMessage
	if firstByte(data) != '[' {
		return geom.Double3{}, invalidField(path, "must be an array of 3 numbers")
	}
	if err := json.Unmarshal(data, &elems); err != nil {
		return geom.Double3{}, invalidField(path, "malformed array: %v", err)
	}
	values := make([]geom.Double, len(elems))
	for i, e := range elems {
		v, err := decodeNumber(e, path)
		if err != nil {
			return geom.Double3{}, err
		}
		values[i] = v
	}
	v, err := geom.NewDouble3FromSlice(values)
	if err != nil {
		err.(*geom.ShapeError).Field = path
		return geom.Double3{}, err
	}
	return v, nil
}

// encodeObject writes fields in sorted key order without HTML escaping so raw
// values survive unchanged.
func encodeObject(fields map[string]json.RawMessage) ([]byte, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := encode(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(fields[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encode(v interface{}) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
