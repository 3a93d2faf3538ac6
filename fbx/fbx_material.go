package fbx

import (
	"sort"
	"strings"

	"github.com/binzume/fbxgltfextras/geom"
)

type ShadingKind int

const (
	ShadingOther ShadingKind = iota
	ShadingLambert
	ShadingPhong
)

// Property names of lambert and phong surfaces.
const (
	PropEmissive                 = "EmissiveColor"
	PropEmissiveFactor           = "EmissiveFactor"
	PropAmbient                  = "AmbientColor"
	PropAmbientFactor            = "AmbientFactor"
	PropDiffuse                  = "DiffuseColor"
	PropDiffuseFactor            = "DiffuseFactor"
	PropNormalMap                = "NormalMap"
	PropBump                     = "Bump"
	PropBumpFactor               = "BumpFactor"
	PropTransparentColor         = "TransparentColor"
	PropTransparencyFactor       = "TransparencyFactor"
	PropDisplacementColor        = "DisplacementColor"
	PropDisplacementFactor       = "DisplacementFactor"
	PropVectorDisplacementColor  = "VectorDisplacementColor"
	PropVectorDisplacementFactor = "VectorDisplacementFactor"
	PropSpecular                 = "SpecularColor"
	PropSpecularFactor           = "SpecularFactor"
	PropShininess                = "ShininessExponent"
	PropReflection               = "ReflectionColor"
	PropReflectionFactor         = "ReflectionFactor"
)

var defaultColors = map[string]geom.Double3{
	PropAmbient:  {0.2, 0.2, 0.2},
	PropDiffuse:  {0.8, 0.8, 0.8},
	PropSpecular: {0.2, 0.2, 0.2},
}

var defaultFactors = map[string]float64{
	PropEmissiveFactor:           1,
	PropAmbientFactor:            1,
	PropDiffuseFactor:            1,
	PropBumpFactor:               1,
	PropTransparencyFactor:       0,
	PropDisplacementFactor:       1,
	PropVectorDisplacementFactor: 1,
	PropSpecularFactor:           1,
	PropShininess:                20,
	PropReflectionFactor:         1,
}

type Material struct {
	Obj
	ShadingModel string
	textures     map[string][]*Texture
}

func (m *Material) Shading() ShadingKind {
	switch strings.ToLower(m.ShadingModel) {
	case "phong":
		return ShadingPhong
	case "lambert":
		return ShadingLambert
	}
	return ShadingOther
}

// Color returns a color property, or the surface default if it is not set.
func (m *Material) Color(name string) geom.Double3 {
	return m.GetProperty70(name).ToDouble3(defaultColors[name])
}

func (m *Material) Factor(name string) float64 {
	return m.GetProperty70(name).ToFloat64(defaultFactors[name])
}

// Textures returns the file textures connected to property name.
func (m *Material) Textures(name string) []*Texture {
	return m.textures[name]
}

// Texture returns the file texture connected to property name. Properties
// driven by more than one texture have none.
func (m *Material) Texture(name string) *Texture {
	if t := m.textures[name]; len(t) == 1 {
		return t[0]
	}
	return nil
}

// TextureProperties returns the names of the properties that have textures
// connected, sorted.
func (m *Material) TextureProperties() []string {
	var names []string
	for name := range m.textures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *Material) connectTexture(prop string, t *Texture) {
	if m.textures == nil {
		m.textures = map[string][]*Texture{}
	}
	m.textures[prop] = append(m.textures[prop], t)
}
