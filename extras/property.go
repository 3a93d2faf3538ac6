package extras

import (
	"encoding/json"
	"math"

	"github.com/binzume/fbxgltfextras/geom"
	"github.com/qmuntal/gltf"
)

// PropertyValue is the set of value types an FBX material property can hold.
type PropertyValue interface {
	geom.Double | geom.Double3
}

// TextureReference points into the texture array of the glTF document the
// material belongs to. The bound is checked by ResolveTexture, not here.
type TextureReference struct {
	Index    int `json:"index"`
	TexCoord int `json:"texCoord,omitempty"`
}

// MaterialProperty is an FBX "value or texture-driven" property.
type MaterialProperty[T PropertyValue] struct {
	Value   T                 `json:"value"`
	Texture *TextureReference `json:"texture,omitempty"`
}

func NewMaterialProperty[T PropertyValue](value T) MaterialProperty[T] {
	return MaterialProperty[T]{Value: value}
}

// NewTexturedProperty returns a property driven by the texture at textureIndex.
func NewTexturedProperty[T PropertyValue](value T, textureIndex int) (MaterialProperty[T], error) {
	if textureIndex < 0 {
		return MaterialProperty[T]{}, &RangeError{Index: textureIndex}
	}
	return MaterialProperty[T]{Value: value, Texture: &TextureReference{Index: textureIndex}}, nil
}

// ResolveTexture looks up the texture bound to p in textures. bound is false
// when p has no texture.
func ResolveTexture[T PropertyValue, H any](p MaterialProperty[T], textures []H) (texture H, bound bool, err error) {
	return ResolveReference(p.Texture, textures)
}

// ResolveReference looks up ref in textures. A nil ref is not bound.
func ResolveReference[H any](ref *TextureReference, textures []H) (texture H, bound bool, err error) {
	if ref == nil {
		return texture, false, nil
	}
	index := ref.Index
	if index < 0 {
		return texture, false, &RangeError{Index: index}
	}
	if index >= len(textures) {
		return texture, false, &DanglingReferenceError{Index: index, Len: len(textures)}
	}
	return textures[index], true, nil
}

// ResolveGLTFTexture resolves p against doc.Textures.
func ResolveGLTFTexture[T PropertyValue](p MaterialProperty[T], doc *gltf.Document) (*gltf.Texture, bool, error) {
	return ResolveTexture(p, doc.Textures)
}

func (p *MaterialProperty[T]) validate(path string) error {
	switch v := any(p.Value).(type) {
	case geom.Double:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return invalidField(joinPath(path, "value"), "must be a finite number")
		}
	case geom.Double3:
		if !v.IsFinite() {
			return invalidField(joinPath(path, "value"), "must contain finite numbers")
		}
	}
	if p.Texture != nil {
		if p.Texture.Index < 0 {
			return &RangeError{Field: joinPath(path, "texture.index"), Index: p.Texture.Index}
		}
		if p.Texture.TexCoord < 0 {
			return invalidField(joinPath(path, "texture.texCoord"), "must not be negative")
		}
	}
	return nil
}

func (p *MaterialProperty[T]) decode(data json.RawMessage, path string) error {
	o, err := decodeObject(data, path)
	if err != nil {
		return err
	}
	value, err := o.require("value")
	if err != nil {
		return err
	}
	switch v := any(&p.Value).(type) {
	case *geom.Double:
		*v, err = decodeNumber(value, o.field("value"))
	case *geom.Double3:
		*v, err = decodeDouble3(value, o.field("value"))
	}
	if err != nil {
		return err
	}

	p.Texture = nil
	if !o.has("texture") {
		return nil
	}
	t, err := o.requireObject("texture")
	if err != nil {
		return err
	}
	var ref TextureReference
	if ref.Index, err = t.requireInt("index"); err != nil {
		return err
	}
	if ref.Index < 0 {
		return &RangeError{Field: t.field("index"), Index: ref.Index}
	}
	if t.has("texCoord") {
		if ref.TexCoord, err = t.requireInt("texCoord"); err != nil {
			return err
		}
		if ref.TexCoord < 0 {
			return invalidField(t.field("texCoord"), "must not be negative")
		}
	}
	p.Texture = &ref
	return nil
}

// textured is implemented by every MaterialProperty instantiation.
type textured interface {
	textureReference() *TextureReference
}

func (p *MaterialProperty[T]) textureReference() *TextureReference {
	return p.Texture
}
