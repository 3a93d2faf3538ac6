package extras

import (
	"errors"
	"testing"

	"github.com/binzume/fbxgltfextras/geom"
	"github.com/qmuntal/gltf"
)

func TestNewTexturedProperty(t *testing.T) {
	_, err := NewTexturedProperty(geom.NewDouble3(1, 1, 1), -1)
	var rangeErr *RangeError
	if !errors.As(err, &rangeErr) || rangeErr.Index != -1 {
		t.Error("negative texture index should fail with RangeError", err)
	}

	p, err := NewTexturedProperty(geom.Double(0.5), 0)
	if err != nil {
		t.Fatal(err)
	}
	if p.Value != 0.5 || p.Texture == nil || p.Texture.Index != 0 {
		t.Error("unexpected property", p)
	}
}

func TestResolveTexture(t *testing.T) {
	p, err := NewTexturedProperty(geom.NewDouble3(1, 0, 0), 5)
	if err != nil {
		t.Fatal(err)
	}

	_, bound, err := ResolveTexture(p, []string{"t0", "t1", "t2"})
	var dangling *DanglingReferenceError
	if !errors.As(err, &dangling) {
		t.Fatal("expected DanglingReferenceError", err)
	}
	if bound || dangling.Index != 5 || dangling.Len != 3 {
		t.Error("unexpected result", bound, dangling)
	}

	tex, bound, err := ResolveTexture(p, []string{"t0", "t1", "t2", "t3", "t4", "t5"})
	if err != nil || !bound || tex != "t5" {
		t.Error("ResolveTexture() should return the element at index 5", tex, bound, err)
	}

	tex, bound, err = ResolveTexture(NewMaterialProperty(geom.NewDouble3(1, 0, 0)), []string{"t0"})
	if err != nil || bound || tex != "" {
		t.Error("property without texture should not be bound", tex, bound, err)
	}
}

func TestResolveTextureNegativeIndex(t *testing.T) {
	p := MaterialProperty[geom.Double]{Value: 1, Texture: &TextureReference{Index: -2}}
	_, _, err := ResolveTexture(p, []int{1, 2, 3})
	var rangeErr *RangeError
	if !errors.As(err, &rangeErr) {
		t.Error("expected RangeError", err)
	}
}

func TestResolveGLTFTexture(t *testing.T) {
	doc := &gltf.Document{Textures: []*gltf.Texture{{Name: "a"}, {Name: "b"}}}
	p, _ := NewTexturedProperty(geom.Double(1), 1)
	tex, bound, err := ResolveGLTFTexture(p, doc)
	if err != nil || !bound || tex.Name != "b" {
		t.Error("ResolveGLTFTexture() returns wrong texture", tex, bound, err)
	}

	p.Texture.Index = 2
	if _, _, err := ResolveGLTFTexture(p, doc); err == nil {
		t.Error("index 2 should dangle with 2 textures")
	}
}

func TestMaterialPropertyDecode(t *testing.T) {
	var p MaterialProperty[geom.Double3]
	if err := p.decode([]byte(`{"value":[0.1,0.2,0.3],"texture":{"index":2,"texCoord":1}}`), "diffuse"); err != nil {
		t.Fatal(err)
	}
	if p.Value != geom.NewDouble3(0.1, 0.2, 0.3) || p.Texture == nil || *p.Texture != (TextureReference{Index: 2, TexCoord: 1}) {
		t.Error("unexpected property", p.Value, p.Texture)
	}

	err := p.decode([]byte(`{"value":[0.1,0.2]}`), "diffuse")
	var shapeErr *ShapeError
	if !errors.As(err, &shapeErr) || shapeErr.Field != "diffuse.value" {
		t.Error("expected ShapeError on diffuse.value", err)
	}

	err = p.decode([]byte(`{"value":[1,1,1],"texture":{"index":-1}}`), "diffuse")
	var rangeErr *RangeError
	if !errors.As(err, &rangeErr) || rangeErr.Field != "diffuse.texture.index" {
		t.Error("expected RangeError on diffuse.texture.index", err)
	}

	var f MaterialProperty[geom.Double]
	for _, src := range []string{`{}`, `{"value":null}`, `{"value":"1"}`, `{"value":[1,2,3]}`, `[]`, `{"value":1,"texture":{"index":1.5}}`} {
		err := f.decode([]byte(src), "bumpFactor")
		var fieldErr *InvalidFieldError
		if !errors.As(err, &fieldErr) {
			t.Errorf("%s: expected InvalidFieldError, got %v", src, err)
		}
	}
}
