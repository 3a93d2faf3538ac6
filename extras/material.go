package extras

import (
	"encoding/json"

	"github.com/binzume/fbxgltfextras/geom"
)

// MaterialKind tells which variant of raw material data is attached.
type MaterialKind int

const (
	// MaterialAbsent means the material has no raw legacy data.
	MaterialAbsent MaterialKind = iota
	MaterialLambert
	MaterialPhong
	// MaterialOpaque means legacy properties exist but their shading model is
	// neither lambert nor phong.
	MaterialOpaque
)

func (k MaterialKind) String() string {
	switch k {
	case MaterialLambert:
		return "lambert"
	case MaterialPhong:
		return "phong"
	case MaterialOpaque:
		return "opaque"
	}
	return "absent"
}

const (
	TypeLambert = "lambert"
	TypePhong   = "phong"
)

// RawMaterial is one of *LambertMaterial, *PhongMaterial or *OpaqueMaterial.
type RawMaterial interface {
	Kind() MaterialKind
	validate(path string) error
	encodeRaw() (map[string]json.RawMessage, error)
}

type LambertProperties struct {
	ShadingModel             string                        `json:"shadingModel"`
	Emissive                 MaterialProperty[geom.Double3] `json:"emissive"`
	EmissiveFactor           MaterialProperty[geom.Double]  `json:"emissiveFactor"`
	Ambient                  MaterialProperty[geom.Double3] `json:"ambient"`
	AmbientFactor            MaterialProperty[geom.Double]  `json:"ambientFactor"`
	Diffuse                  MaterialProperty[geom.Double3] `json:"diffuse"`
	DiffuseFactor            MaterialProperty[geom.Double]  `json:"diffuseFactor"`
	NormalMap                MaterialProperty[geom.Double3] `json:"normalMap"`
	Bump                     MaterialProperty[geom.Double3] `json:"bump"`
	BumpFactor               MaterialProperty[geom.Double]  `json:"bumpFactor"`
	TransparentColor         MaterialProperty[geom.Double3] `json:"transparentColor"`
	TransparencyFactor       MaterialProperty[geom.Double]  `json:"transparencyFactor"`
	DisplacementColor        MaterialProperty[geom.Double3] `json:"displacementColor"`
	DisplacementFactor       MaterialProperty[geom.Double]  `json:"displacementFactor"`
	VectorDisplacementColor  MaterialProperty[geom.Double3] `json:"vectorDisplacementColor"`
	VectorDisplacementFactor MaterialProperty[geom.Double]  `json:"vectorDisplacementFactor"`
}

// PhongProperties are the lambert properties plus the specular terms.
type PhongProperties struct {
	LambertProperties
	Specular         MaterialProperty[geom.Double3] `json:"specular"`
	SpecularFactor   MaterialProperty[geom.Double]  `json:"specularFactor"`
	Shininess        MaterialProperty[geom.Double]  `json:"shininess"`
	Reflection       MaterialProperty[geom.Double3] `json:"reflection"`
	ReflectionFactor MaterialProperty[geom.Double]  `json:"reflectionFactor"`
}

// propertyField binds a wire key to a *MaterialProperty[T].
type propertyField struct {
	key      string
	property interface {
		textured
		decodeField(data json.RawMessage, path string) error
		validateField(path string) error
	}
}

func (p *MaterialProperty[T]) decodeField(data json.RawMessage, path string) error {
	return p.decode(data, path)
}

func (p *MaterialProperty[T]) validateField(path string) error {
	return p.validate(path)
}

func (p *LambertProperties) propertyFields() []propertyField {
	return []propertyField{
		{"emissive", &p.Emissive},
		{"emissiveFactor", &p.EmissiveFactor},
		{"ambient", &p.Ambient},
		{"ambientFactor", &p.AmbientFactor},
		{"diffuse", &p.Diffuse},
		{"diffuseFactor", &p.DiffuseFactor},
		{"normalMap", &p.NormalMap},
		{"bump", &p.Bump},
		{"bumpFactor", &p.BumpFactor},
		{"transparentColor", &p.TransparentColor},
		{"transparencyFactor", &p.TransparencyFactor},
		{"displacementColor", &p.DisplacementColor},
		{"displacementFactor", &p.DisplacementFactor},
		{"vectorDisplacementColor", &p.VectorDisplacementColor},
		{"vectorDisplacementFactor", &p.VectorDisplacementFactor},
	}
}

func (p *PhongProperties) propertyFields() []propertyField {
	return append(p.LambertProperties.propertyFields(),
		propertyField{"specular", &p.Specular},
		propertyField{"specularFactor", &p.SpecularFactor},
		propertyField{"shininess", &p.Shininess},
		propertyField{"reflection", &p.Reflection},
		propertyField{"reflectionFactor", &p.ReflectionFactor},
	)
}

func decodeProperties(o object, shadingModel *string, fields []propertyField) error {
	var err error
	if *shadingModel, err = o.requireString("shadingModel"); err != nil {
		return err
	}
	for _, f := range fields {
		v, err := o.require(f.key)
		if err != nil {
			return err
		}
		if err := f.property.decodeField(v, o.field(f.key)); err != nil {
			return err
		}
	}
	return nil
}

func validateProperties(path string, fields []propertyField) error {
	for _, f := range fields {
		if err := f.property.validateField(joinPath(path, f.key)); err != nil {
			return err
		}
	}
	return nil
}

// PropertyTexture is a texture binding found on a named material property.
type PropertyTexture struct {
	Property string
	Texture  TextureReference
}

func textureReferences(fields []propertyField) []PropertyTexture {
	var r []PropertyTexture
	for _, f := range fields {
		if t := f.property.textureReference(); t != nil {
			r = append(r, PropertyTexture{Property: f.key, Texture: *t})
		}
	}
	return r
}

type LambertMaterial struct {
	Properties LambertProperties
}

func (m *LambertMaterial) Kind() MaterialKind { return MaterialLambert }

func (m *LambertMaterial) validate(path string) error {
	return validateProperties(joinPath(path, "properties"), m.Properties.propertyFields())
}

func (m *LambertMaterial) encodeRaw() (map[string]json.RawMessage, error) {
	props, err := encode(&m.Properties)
	if err != nil {
		return nil, err
	}
	return map[string]json.RawMessage{"type": json.RawMessage(`"` + TypeLambert + `"`), "properties": props}, nil
}

type PhongMaterial struct {
	Properties PhongProperties
}

func (m *PhongMaterial) Kind() MaterialKind { return MaterialPhong }

func (m *PhongMaterial) validate(path string) error {
	return validateProperties(joinPath(path, "properties"), m.Properties.propertyFields())
}

func (m *PhongMaterial) encodeRaw() (map[string]json.RawMessage, error) {
	props, err := encode(&m.Properties)
	if err != nil {
		return nil, err
	}
	return map[string]json.RawMessage{"type": json.RawMessage(`"` + TypePhong + `"`), "properties": props}, nil
}

// OpaqueMaterial keeps the raw properties of a material whose shading model
// is not understood. Properties is re-emitted byte for byte.
type OpaqueMaterial struct {
	// Type is the unrecognized discriminator, or "" when it was absent.
	Type       string
	Properties json.RawMessage
}

func (m *OpaqueMaterial) Kind() MaterialKind { return MaterialOpaque }

func (m *OpaqueMaterial) validate(path string) error {
	if m.Type == TypeLambert || m.Type == TypePhong {
		return invalidField(joinPath(path, "type"), "%q must not be used for opaque properties", m.Type)
	}
	if m.Properties == nil {
		if m.Type == "" {
			return invalidField(joinPath(path, "properties"), "missing")
		}
		return nil
	}
	if !json.Valid(m.Properties) {
		return invalidField(joinPath(path, "properties"), "not valid JSON")
	}
	if m.Type == "" && firstByte(m.Properties) != '{' {
		return invalidField(joinPath(path, "properties"), "must be an object")
	}
	return nil
}

func (m *OpaqueMaterial) encodeRaw() (map[string]json.RawMessage, error) {
	fields := map[string]json.RawMessage{}
	if m.Type != "" {
		t, err := encode(m.Type)
		if err != nil {
			return nil, err
		}
		fields["type"] = t
	}
	if m.Properties != nil {
		fields["properties"] = m.Properties
	}
	return fields, nil
}

// MaterialExtra is the FBX-glTF-conv object in the extras of a glTF material.
type MaterialExtra struct {
	// Raw is nil when the material carries no legacy data.
	Raw RawMaterial

	// Unknown holds other fields, such as originalMaterial, re-emitted as is.
	Unknown map[string]json.RawMessage
}

var materialExtraFields = []string{"raw"}

func (e *MaterialExtra) Kind() MaterialKind {
	if e == nil || e.Raw == nil {
		return MaterialAbsent
	}
	return e.Raw.Kind()
}

// Lambert returns the lambert properties of a lambert or phong material.
func (e *MaterialExtra) Lambert() (*LambertProperties, bool) {
	if e == nil {
		return nil, false
	}
	switch m := e.Raw.(type) {
	case *LambertMaterial:
		return &m.Properties, true
	case *PhongMaterial:
		return &m.Properties.LambertProperties, true
	}
	return nil, false
}

func (e *MaterialExtra) Phong() (*PhongProperties, bool) {
	if e == nil {
		return nil, false
	}
	if m, ok := e.Raw.(*PhongMaterial); ok {
		return &m.Properties, true
	}
	return nil, false
}

// Textures lists the texture bindings of a lambert or phong material in
// property declaration order.
func (e *MaterialExtra) Textures() []PropertyTexture {
	if e == nil {
		return nil
	}
	switch m := e.Raw.(type) {
	case *LambertMaterial:
		return textureReferences(m.Properties.propertyFields())
	case *PhongMaterial:
		return textureReferences(m.Properties.propertyFields())
	}
	return nil
}

// ParseMaterialExtra decodes and validates the FBX-glTF-conv object of a glTF
// material. The discriminator is resolved here and nowhere else.
func ParseMaterialExtra(data []byte) (*MaterialExtra, error) {
	o, err := decodeObject(data, "")
	if err != nil {
		return nil, err
	}
	e := &MaterialExtra{}
	if o.has("raw") {
		raw, err := o.requireObject("raw")
		if err != nil {
			return nil, err
		}
		if e.Raw, err = decodeRawMaterial(raw); err != nil {
			return nil, err
		}
	}
	e.Unknown = o.unknown(materialExtraFields...)
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

func decodeRawMaterial(raw object) (RawMaterial, error) {
	typ := ""
	if raw.has("type") {
		t, err := raw.requireString("type")
		if err != nil {
			return nil, err
		}
		typ = t
	}

	switch typ {
	case TypeLambert:
		props, err := raw.requireObject("properties")
		if err != nil {
			return nil, err
		}
		m := &LambertMaterial{}
		p := &m.Properties
		if err := decodeProperties(props, &p.ShadingModel, p.propertyFields()); err != nil {
			return nil, err
		}
		return m, nil
	case TypePhong:
		props, err := raw.requireObject("properties")
		if err != nil {
			return nil, err
		}
		m := &PhongMaterial{}
		p := &m.Properties
		if err := decodeProperties(props, &p.ShadingModel, p.propertyFields()); err != nil {
			return nil, err
		}
		return m, nil
	case "":
		props, err := raw.require("properties")
		if err != nil {
			return nil, err
		}
		if firstByte(props) != '{' {
			return nil, invalidField(raw.field("properties"), "must be an object")
		}
		return &OpaqueMaterial{Properties: props}, nil
	}
	return &OpaqueMaterial{Type: typ, Properties: raw.fields["properties"]}, nil
}

func (e *MaterialExtra) Validate() error {
	if e.Raw != nil {
		if err := e.Raw.validate("raw"); err != nil {
			return err
		}
	}
	return validateUnknown(e.Unknown, materialExtraFields)
}

func (e *MaterialExtra) MarshalJSON() ([]byte, error) {
	fields := copyUnknown(e.Unknown)
	if e.Raw != nil {
		raw, err := e.Raw.encodeRaw()
		if err != nil {
			return nil, err
		}
		if fields["raw"], err = encodeObject(raw); err != nil {
			return nil, err
		}
	}
	return encodeObject(fields)
}

func (e *MaterialExtra) UnmarshalJSON(data []byte) error {
	v, err := ParseMaterialExtra(data)
	if err != nil {
		return err
	}
	*e = *v
	return nil
}
