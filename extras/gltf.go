package extras

import (
	"encoding/json"
	"fmt"

	"github.com/qmuntal/gltf"
)

// ExtraKey namespaces this module's data inside glTF extras objects.
const ExtraKey = "FBX-glTF-conv"

// lookup returns the ExtraKey entry of a glTF extras value as JSON.
func lookup(extras interface{}) (json.RawMessage, bool, error) {
	switch e := extras.(type) {
	case nil:
		return nil, false, nil
	case map[string]interface{}:
		v, ok := e[ExtraKey]
		if !ok {
			return nil, false, nil
		}
		if raw, ok := v.(json.RawMessage); ok {
			return raw, true, nil
		}
		data, err := json.Marshal(v)
		return data, true, err
	}
	data, err := json.Marshal(extras)
	if err != nil {
		return nil, false, err
	}
	var fields map[string]json.RawMessage
	if firstByte(data) != '{' || json.Unmarshal(data, &fields) != nil {
		return nil, false, nil
	}
	v, ok := fields[ExtraKey]
	return v, ok, nil
}

// attach stores v under ExtraKey, keeping the other keys of the extras object.
func attach(extras *interface{}, v json.Marshaler) error {
	data, err := v.MarshalJSON()
	if err != nil {
		return err
	}
	var m map[string]interface{}
	switch e := (*extras).(type) {
	case nil:
		m = map[string]interface{}{}
	case map[string]interface{}:
		m = e
	default:
		b, err := json.Marshal(e)
		if err != nil {
			return err
		}
		if firstByte(b) != '{' {
			return fmt.Errorf("extras is not an object")
		}
		if err := json.Unmarshal(b, &m); err != nil {
			return err
		}
	}
	m[ExtraKey] = json.RawMessage(data)
	*extras = m
	return nil
}

// DocumentExtraOf returns the document extra of doc, or nil if there is none.
func DocumentExtraOf(doc *gltf.Document) (*DocumentExtra, error) {
	data, ok, err := lookup(doc.Extras)
	if !ok || err != nil {
		return nil, err
	}
	return ParseDocumentExtra(data)
}

// SetDocumentExtra validates e and attaches it to doc.
func SetDocumentExtra(doc *gltf.Document, e *DocumentExtra) error {
	if err := e.Validate(); err != nil {
		return err
	}
	return attach(&doc.Extras, e)
}

func MaterialExtraOf(mat *gltf.Material) (*MaterialExtra, error) {
	data, ok, err := lookup(mat.Extras)
	if !ok || err != nil {
		return nil, err
	}
	return ParseMaterialExtra(data)
}

func SetMaterialExtra(mat *gltf.Material, e *MaterialExtra) error {
	if err := e.Validate(); err != nil {
		return err
	}
	return attach(&mat.Extras, e)
}

func ImageExtraOf(img *gltf.Image) (*ImageExtra, error) {
	data, ok, err := lookup(img.Extras)
	if !ok || err != nil {
		return nil, err
	}
	return ParseImageExtra(data)
}

func SetImageExtra(img *gltf.Image, e *ImageExtra) error {
	if err := e.Validate(); err != nil {
		return err
	}
	return attach(&img.Extras, e)
}

// Warning is a metadata problem attached to one glTF object.
type Warning struct {
	Target string // "document", "materials[1]", "images[0]"
	Name   string
	Err    error
}

func (w Warning) String() string {
	if w.Name == "" {
		return fmt.Sprintf("%s: %v", w.Target, w.Err)
	}
	return fmt.Sprintf("%s (%s): %v", w.Target, w.Name, w.Err)
}

func (w Warning) Error() string {
	return w.String()
}

func (w Warning) Unwrap() error {
	return w.Err
}

// CheckDocument validates every FBX-glTF-conv extras object of doc and
// resolves the texture references of the raw materials against doc.Textures.
// Warnings are ordered document, materials, images.
func CheckDocument(doc *gltf.Document) []Warning {
	var warnings []Warning
	if _, err := DocumentExtraOf(doc); err != nil {
		warnings = append(warnings, Warning{Target: "document", Err: err})
	}
	for i, mat := range doc.Materials {
		target := fmt.Sprintf("materials[%d]", i)
		e, err := MaterialExtraOf(mat)
		if err != nil {
			warnings = append(warnings, Warning{Target: target, Name: mat.Name, Err: err})
			continue
		}
		for _, t := range e.Textures() {
			if _, _, err := ResolveReference(&t.Texture, doc.Textures); err != nil {
				err = fmt.Errorf("raw.properties.%s.texture: %w", t.Property, err)
				warnings = append(warnings, Warning{Target: target, Name: mat.Name, Err: err})
			}
		}
	}
	for i, img := range doc.Images {
		if _, err := ImageExtraOf(img); err != nil {
			warnings = append(warnings, Warning{Target: fmt.Sprintf("images[%d]", i), Name: img.Name, Err: err})
		}
	}
	return warnings
}
