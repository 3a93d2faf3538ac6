package extras

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"
)

// CreationTimestamp mirrors FbxLocalTime. A nil *CreationTimestamp means the
// FBX file had no creation time stamp; it is never written as zero values.
type CreationTimestamp struct {
	Year        int `json:"year"`
	Month       int `json:"month"`
	Day         int `json:"day"`
	Hour        int `json:"hour"`
	Minute      int `json:"minute"`
	Second      int `json:"second"`
	Millisecond int `json:"millisecond"`
}

func NewCreationTimestamp(t time.Time) *CreationTimestamp {
	return &CreationTimestamp{
		Year:        t.Year(),
		Month:       int(t.Month()),
		Day:         t.Day(),
		Hour:        t.Hour(),
		Minute:      t.Minute(),
		Second:      t.Second(),
		Millisecond: t.Nanosecond() / int(time.Millisecond),
	}
}

// Time returns the timestamp as a time in loc.
func (t *CreationTimestamp) Time(loc *time.Location) time.Time {
	return time.Date(t.Year, time.Month(t.Month), t.Day, t.Hour, t.Minute, t.Second, t.Millisecond*int(time.Millisecond), loc)
}

func (t *CreationTimestamp) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d.%03d", t.Year, t.Month, t.Day, t.Hour, t.Minute, t.Second, t.Millisecond)
}

// fields lists the components in declaration order with their allowed range.
func (t *CreationTimestamp) fields() []struct {
	key      string
	value    *int
	min, max int
} {
	return []struct {
		key      string
		value    *int
		min, max int
	}{
		{"year", &t.Year, math.MinInt32, math.MaxInt32},
		{"month", &t.Month, 1, 12},
		{"day", &t.Day, 1, 31},
		{"hour", &t.Hour, 0, 23},
		{"minute", &t.Minute, 0, 59},
		{"second", &t.Second, 0, 59},
		{"millisecond", &t.Millisecond, 0, 999},
	}
}

func (t *CreationTimestamp) validate(path string) error {
	for _, f := range t.fields() {
		if *f.value < f.min || *f.value > f.max {
			return invalidField(joinPath(path, f.key), "%d is out of range [%d, %d]", *f.value, f.min, f.max)
		}
	}
	return nil
}

func (t *CreationTimestamp) decode(o object) error {
	for _, f := range t.fields() {
		v, err := o.requireInt(f.key)
		if err != nil {
			return err
		}
		if v < f.min || v > f.max {
			return invalidField(o.field(f.key), "%d is out of range [%d, %d]", v, f.min, f.max)
		}
		*f.value = v
	}
	return nil
}

type OriginalApplication struct {
	ApplicationVendor  string `json:"applicationVendor"`
	ApplicationName    string `json:"applicationName"`
	ApplicationVersion string `json:"applicationVersion"`
	FileName           string `json:"fileName"`
}

// SceneInfo is the provenance record of the source FBX scene.
// Empty strings mean the FBX had no value.
type SceneInfo struct {
	URL      string              `json:"url"`
	Original OriginalApplication `json:"original"`
	Title    string              `json:"title"`
	Subject  string              `json:"subject"`
	Author   string              `json:"author"`
	Keywords string              `json:"keywords"`
	Revision string              `json:"revision"`
	Comment  string              `json:"comment"`
}

func (s *SceneInfo) decode(o object) error {
	var err error
	if s.URL, err = o.requireString("url"); err != nil {
		return err
	}
	original, err := o.requireObject("original")
	if err != nil {
		return err
	}
	for _, f := range []struct {
		key   string
		value *string
	}{
		{"applicationVendor", &s.Original.ApplicationVendor},
		{"applicationName", &s.Original.ApplicationName},
		{"applicationVersion", &s.Original.ApplicationVersion},
		{"fileName", &s.Original.FileName},
	} {
		if *f.value, err = original.requireString(f.key); err != nil {
			return err
		}
	}
	for _, f := range []struct {
		key   string
		value *string
	}{
		{"title", &s.Title},
		{"subject", &s.Subject},
		{"author", &s.Author},
		{"keywords", &s.Keywords},
		{"revision", &s.Revision},
		{"comment", &s.Comment},
	} {
		if *f.value, err = o.requireString(f.key); err != nil {
			return err
		}
	}
	return nil
}

// FileHeaderInfo corresponds to FbxIOFileHeaderInfo plus the scene info.
type FileHeaderInfo struct {
	Creator           string             `json:"creator"`
	CreationTimeStamp *CreationTimestamp `json:"creationTimeStamp,omitempty"`
	SceneInfo         SceneInfo          `json:"sceneInfo"`
}

func (h *FileHeaderInfo) decode(o object) error {
	var err error
	if h.Creator, err = o.requireString("creator"); err != nil {
		return err
	}
	if o.has("creationTimeStamp") {
		ts, err := o.requireObject("creationTimeStamp")
		if err != nil {
			return err
		}
		h.CreationTimeStamp = &CreationTimestamp{}
		if err := h.CreationTimeStamp.decode(ts); err != nil {
			return err
		}
	}
	si, err := o.requireObject("sceneInfo")
	if err != nil {
		return err
	}
	return h.SceneInfo.decode(si)
}

// DocumentExtra is the FBX-glTF-conv object in the extras of a glTF document.
type DocumentExtra struct {
	AnimationFrameRate *float64
	FBXFileHeaderInfo  *FileHeaderInfo

	// Unknown holds top-level fields written by other producers, re-emitted as is.
	Unknown map[string]json.RawMessage
}

var documentExtraFields = []string{"animationFrameRate", "fbxFileHeaderInfo"}

// ParseDocumentExtra decodes and validates the FBX-glTF-conv object of a glTF
// document. Nothing is returned unless the whole object is valid.
func ParseDocumentExtra(data []byte) (*DocumentExtra, error) {
	o, err := decodeObject(data, "")
	if err != nil {
		return nil, err
	}
	e := &DocumentExtra{}
	if o.has("animationFrameRate") {
		rate, err := o.requireNumber("animationFrameRate")
		if err != nil {
			return nil, err
		}
		e.AnimationFrameRate = &rate
	}
	if o.has("fbxFileHeaderInfo") {
		h, err := o.requireObject("fbxFileHeaderInfo")
		if err != nil {
			return nil, err
		}
		e.FBXFileHeaderInfo = &FileHeaderInfo{}
		if err := e.FBXFileHeaderInfo.decode(h); err != nil {
			return nil, err
		}
	}
	e.Unknown = o.unknown(documentExtraFields...)
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// SetAnimationFrameRate is a helper for producers.
func (e *DocumentExtra) SetAnimationFrameRate(rate float64) {
	e.AnimationFrameRate = &rate
}

func (e *DocumentExtra) Validate() error {
	if r := e.AnimationFrameRate; r != nil {
		if math.IsNaN(*r) || math.IsInf(*r, 0) || *r <= 0 {
			return invalidField("animationFrameRate", "must be a finite number > 0, got %v", *r)
		}
	}
	if h := e.FBXFileHeaderInfo; h != nil && h.CreationTimeStamp != nil {
		if err := h.CreationTimeStamp.validate("fbxFileHeaderInfo.creationTimeStamp"); err != nil {
			return err
		}
	}
	return validateUnknown(e.Unknown, documentExtraFields)
}

func (e *DocumentExtra) MarshalJSON() ([]byte, error) {
	fields := copyUnknown(e.Unknown)
	if e.AnimationFrameRate != nil {
		v, err := encode(*e.AnimationFrameRate)
		if err != nil {
			return nil, err
		}
		fields["animationFrameRate"] = v
	}
	if e.FBXFileHeaderInfo != nil {
		v, err := encode(e.FBXFileHeaderInfo)
		if err != nil {
			return nil, err
		}
		fields["fbxFileHeaderInfo"] = v
	}
	return encodeObject(fields)
}

func (e *DocumentExtra) UnmarshalJSON(data []byte) error {
	v, err := ParseDocumentExtra(data)
	if err != nil {
		return err
	}
	*e = *v
	return nil
}

func copyUnknown(unknown map[string]json.RawMessage) map[string]json.RawMessage {
	fields := make(map[string]json.RawMessage, len(unknown)+2)
	for k, v := range unknown {
		fields[k] = v
	}
	return fields
}

func validateUnknown(unknown map[string]json.RawMessage, known []string) error {
	keys := make([]string, 0, len(unknown))
	for k := range unknown {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if containsString(known, k) {
			return invalidField(k, "known field stored as unknown")
		}
		if !json.Valid(unknown[k]) {
			return invalidField(k, "not valid JSON")
		}
	}
	return nil
}
