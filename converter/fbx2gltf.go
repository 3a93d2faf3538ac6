package converter

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"path"
	"strings"

	"github.com/binzume/fbxgltfextras/extras"
	"github.com/binzume/fbxgltfextras/fbx"
	"github.com/binzume/fbxgltfextras/geom"
	"github.com/binzume/fbxgltfextras/gltfutil"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
)

const generator = "fbxgltfextras"

// 1x1 transparent png for textures without a file name.
const placeholderImage = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8/5+hHgAHggJ/PchI7wAAAABJRU5ErkJggg=="

type FBXToGLTFOption struct {
	ExportFBXFileHeaderInfo bool `yaml:"exportFbxFileHeaderInfo"`
	ExportRawMaterials      bool `yaml:"exportRawMaterials"`

	// AnimationBakeRate overrides the scene frame rate if > 0.
	AnimationBakeRate float64 `yaml:"animationBakeRate"`

	EmbedTextures bool   `yaml:"embedTextures"`
	TextureDir    string `yaml:"textureDir"`

	// Encoding of legacy non UTF-8 strings. e.g. "windows-1252", "sjis"
	Encoding string `yaml:"encoding"`
	Verbose  bool   `yaml:"verbose"`
}

// ParseOption returns the fbx reader options for o.
func (o *FBXToGLTFOption) ParseOption() (*fbx.ParseOption, error) {
	enc, err := fbx.LookupEncoding(o.Encoding)
	if err != nil {
		return nil, err
	}
	return &fbx.ParseOption{Encoding: enc}, nil
}

type fbxToGltf struct {
	*FBXToGLTFOption
	*gltf.Document
	textureIndex map[*fbx.Texture]int
	warnings     []extras.Warning
}

func NewFBXToGLTFConverter(options *FBXToGLTFOption) *fbxToGltf {
	if options == nil {
		options = &FBXToGLTFOption{}
	}
	doc := gltf.NewDocument()
	doc.Asset.Generator = generator
	return &fbxToGltf{
		FBXToGLTFOption: options,
		Document:        doc,
		textureIndex:    map[*fbx.Texture]int{},
	}
}

func (c *fbxToGltf) warn(target, name string, err error) {
	c.warnings = append(c.warnings, extras.Warning{Target: target, Name: name, Err: err})
}

// FrameRate returns the animation frame rate written to the document. A
// bake rate matching an FBX time mode is replaced by the exact rate of that
// mode.
func (c *fbxToGltf) FrameRate(src *fbx.Document) float64 {
	if c.AnimationBakeRate > 0 {
		if rate, ok := fbx.FrameRateForTimeMode(fbx.TimeModeForFrameRate(c.AnimationBakeRate)); ok {
			return rate
		}
		return c.AnimationBakeRate
	}
	return src.GlobalSettings.FrameRate()
}

func fileHeaderInfo(src *fbx.Document) *extras.FileHeaderInfo {
	info := &extras.FileHeaderInfo{Creator: src.Creator}
	h := src.HeaderExtension
	if h == nil {
		return info
	}
	if t := h.CreationTimeStamp; t != nil {
		info.CreationTimeStamp = &extras.CreationTimestamp{
			Year:        t.Year,
			Month:       t.Month,
			Day:         t.Day,
			Hour:        t.Hour,
			Minute:      t.Minute,
			Second:      t.Second,
			Millisecond: t.Millisecond,
		}
	}
	if s := h.SceneInfo; s != nil {
		info.SceneInfo = extras.SceneInfo{
			URL: s.URL,
			Original: extras.OriginalApplication{
				ApplicationVendor:  s.Original.ApplicationVendor,
				ApplicationName:    s.Original.ApplicationName,
				ApplicationVersion: s.Original.ApplicationVersion,
				FileName:           s.Original.FileName,
			},
			Title:    s.Title,
			Subject:  s.Subject,
			Author:   s.Author,
			Keywords: s.Keywords,
			Revision: s.Revision,
			Comment:  s.Comment,
		}
	}
	return info
}

func slashPath(p string) string {
	if p == "" {
		return ""
	}
	return path.Clean(strings.ReplaceAll(p, "\\", "/"))
}

func textureURI(t *fbx.Texture) string {
	if rel := slashPath(t.RelativeFileName); rel != "" {
		return rel
	}
	if abs := slashPath(t.FileName); abs != "" {
		return path.Base(abs)
	}
	return placeholderImage
}

func (c *fbxToGltf) addTexture(t *fbx.Texture) {
	img := &gltf.Image{Name: t.Name(), URI: textureURI(t)}
	e := &extras.ImageExtra{FileName: t.FileName, RelativeFileName: t.RelativeFileName}
	if err := extras.SetImageExtra(img, e); err != nil {
		c.warn(fmt.Sprintf("images[%d]", len(c.Images)), img.Name, err)
	}
	c.Images = append(c.Images, img)
	c.Textures = append(c.Textures,
		&gltf.Texture{Sampler: gltf.Index(0), Source: gltf.Index(uint32(len(c.Images) - 1))})
	c.textureIndex[t] = len(c.Textures) - 1
}

// textureOf returns the glTF texture index bound to property name of m.
func (c *fbxToGltf) textureOf(m *fbx.Material, name string) (int, bool) {
	t := m.Texture(name)
	if t == nil {
		if n := len(m.Textures(name)); n > 1 && c.Verbose {
			log.Printf("Material %s: %s is connected with %d textures, ignored", m.Name(), name, n)
		}
		return 0, false
	}
	i, ok := c.textureIndex[t]
	return i, ok
}

func (c *fbxToGltf) textureInfo(m *fbx.Material, name string) *gltf.TextureInfo {
	if i, ok := c.textureOf(m, name); ok {
		return &gltf.TextureInfo{Index: uint32(i)}
	}
	return nil
}

func (c *fbxToGltf) normalTexture(m *fbx.Material) *gltf.NormalTexture {
	var tex *gltf.NormalTexture
	for _, name := range []string{fbx.PropNormalMap, fbx.PropBump} {
		if i, ok := c.textureOf(m, name); ok {
			tex = &gltf.NormalTexture{Index: gltf.Index(uint32(i))}
		}
	}
	return tex
}

func float32p(v float64) *float32 {
	f := float32(v)
	return &f
}

func (c *fbxToGltf) convertLambert(m *fbx.Material, mm *gltf.Material) {
	pbr := mm.PBRMetallicRoughness

	var transparent geom.Double3
	if _, ok := c.textureOf(m, fbx.PropTransparentColor); ok {
		log.Printf("Material %s uses a texture for %s, which is not supported", m.Name(), fbx.PropTransparentColor)
	} else {
		transparent = m.Color(fbx.PropTransparentColor).Scale(m.Factor(fbx.PropTransparencyFactor))
	}
	// FBX colors are RGB. Alpha is the average of the transparent color.
	alpha := 1 - (transparent[0]+transparent[1]+transparent[2])/3

	diffuseFactor := m.Factor(fbx.PropDiffuseFactor)
	base := geom.Double3{diffuseFactor, diffuseFactor, diffuseFactor}
	if tex := c.textureInfo(m, fbx.PropDiffuse); tex != nil {
		pbr.BaseColorTexture = tex
	} else {
		base = m.Color(fbx.PropDiffuse).Scale(diffuseFactor)
	}
	pbr.BaseColorFactor = &[4]float32{float32(base[0]), float32(base[1]), float32(base[2]), float32(alpha)}

	mm.NormalTexture = c.normalTexture(m)

	emissiveFactor := m.Factor(fbx.PropEmissiveFactor)
	if tex := c.textureInfo(m, fbx.PropEmissive); tex != nil {
		mm.EmissiveTexture = tex
		mm.EmissiveFactor = [3]float32{float32(emissiveFactor), float32(emissiveFactor), float32(emissiveFactor)}
	} else {
		mm.EmissiveFactor = m.Color(fbx.PropEmissive).Scale(emissiveFactor).ToArray32()
	}

	if m.Shading() == fbx.ShadingPhong {
		pbr.MetallicFactor = float32p(0.4)
		pbr.RoughnessFactor = float32p(math.Sqrt(2 / (2 + m.Factor(fbx.PropShininess))))
	} else {
		pbr.MetallicFactor = float32p(0)
	}

	if alpha < 1 {
		mm.AlphaMode = gltf.AlphaBlend
	}
}

const (
	dielectricSpecular = 0.04
	epsilon            = 1e-4
)

type specularGlossiness struct {
	diffuse   geom.Double3
	opacity   float64
	specular  geom.Double3
	shininess float64
}

func luminance(c geom.Double3) float64 {
	return c[0]*0.2125 + c[1]*0.7154 + c[2]*0.0721
}

func brightness(c geom.Double3) float64 {
	return c[0]*c[0]*0.299 + c[1]*c[1]*0.587 + c[2]*c[2]*0.114
}

func solveMetallic(diffuse, specular, oneMinusSpecularStrength float64) float64 {
	if specular < dielectricSpecular {
		return 0
	}
	a := dielectricSpecular
	b := diffuse*oneMinusSpecularStrength/(1-a) + specular - 2*a
	c := a - specular
	d := b*b - 4*a*c
	return math.Max(0, math.Min(1, (-b+math.Sqrt(math.Max(0, d)))/(2*a)))
}

// metallicRoughness converts specular-glossiness parameters to the glTF
// model.
func (s *specularGlossiness) metallicRoughness() (base geom.Double3, metallic, roughness float64) {
	oneMinusSpecularStrength := 1 - s.specular.Max()
	roughness = math.Sqrt(2 / (s.shininess*luminance(s.specular) + 2))
	metallic = solveMetallic(brightness(s.diffuse), brightness(s.specular), oneMinusSpecularStrength)

	fromDiffuse := s.diffuse.Scale(oneMinusSpecularStrength / (1 - dielectricSpecular) / math.Max(1-metallic, epsilon))
	t := metallic * metallic
	for i := range base {
		fromSpecular := (s.specular[i] - dielectricSpecular*(1-metallic)) / math.Max(metallic, epsilon)
		base[i] = math.Max(0, math.Min(1, fromDiffuse[i]+(fromSpecular-fromDiffuse[i])*t))
	}
	return base, metallic, roughness
}

// convertStandard approximates a material of unknown shading model from the
// standard surface properties it may have.
func (c *fbxToGltf) convertStandard(m *fbx.Material, mm *gltf.Material) {
	color := func(name string, def geom.Double3) geom.Double3 {
		return m.GetProperty70(name).ToDouble3(def)
	}
	factor := func(name string, def float64) float64 {
		return m.GetProperty70(name).ToFloat64(def)
	}

	transparent := color(fbx.PropTransparentColor, geom.Double3{1, 1, 1}).Scale(factor(fbx.PropTransparencyFactor, 0))
	diffuse := color(fbx.PropDiffuse, geom.Double3{0.4, 0.4, 0.4}).Scale(factor(fbx.PropDiffuseFactor, 1))
	for i := range diffuse {
		diffuse[i] *= 1 - transparent[i]
	}
	sg := specularGlossiness{
		diffuse:   diffuse,
		opacity:   1 - (transparent[0]+transparent[1]+transparent[2])/3,
		specular:  color(fbx.PropSpecular, geom.Double3{0.5, 0.5, 0.5}).Scale(factor(fbx.PropSpecularFactor, 1)),
		shininess: factor(fbx.PropShininess, 6.31179141998291),
	}
	base, metallic, roughness := sg.metallicRoughness()

	mm.EmissiveFactor = color(fbx.PropEmissive, geom.Double3{}).Scale(factor(fbx.PropEmissiveFactor, 0)).ToArray32()
	mm.PBRMetallicRoughness.BaseColorFactor = &[4]float32{float32(base[0]), float32(base[1]), float32(base[2]), float32(sg.opacity)}
	mm.PBRMetallicRoughness.MetallicFactor = float32p(metallic)
	mm.PBRMetallicRoughness.RoughnessFactor = float32p(roughness)
	mm.NormalTexture = c.normalTexture(m)
	if sg.opacity < 1 {
		mm.AlphaMode = gltf.AlphaBlend
	}
}

type rawBuilder struct {
	c   *fbxToGltf
	m   *fbx.Material
	err error
}

func rawProperty[T extras.PropertyValue](b *rawBuilder, name string, value T) extras.MaterialProperty[T] {
	i, ok := b.c.textureOf(b.m, name)
	if !ok {
		return extras.NewMaterialProperty(value)
	}
	p, err := extras.NewTexturedProperty(value, i)
	if err != nil && b.err == nil {
		b.err = errors.Wrap(err, name)
	}
	return p
}

func (b *rawBuilder) color(name string) extras.MaterialProperty[geom.Double3] {
	return rawProperty(b, name, b.m.Color(name))
}

func (b *rawBuilder) factor(name string) extras.MaterialProperty[geom.Double] {
	return rawProperty(b, name, b.m.Factor(name))
}

func (b *rawBuilder) lambert() extras.LambertProperties {
	return extras.LambertProperties{
		ShadingModel:             b.m.ShadingModel,
		Emissive:                 b.color(fbx.PropEmissive),
		EmissiveFactor:           b.factor(fbx.PropEmissiveFactor),
		Ambient:                  b.color(fbx.PropAmbient),
		AmbientFactor:            b.factor(fbx.PropAmbientFactor),
		Diffuse:                  b.color(fbx.PropDiffuse),
		DiffuseFactor:            b.factor(fbx.PropDiffuseFactor),
		NormalMap:                b.color(fbx.PropNormalMap),
		Bump:                     b.color(fbx.PropBump),
		BumpFactor:               b.factor(fbx.PropBumpFactor),
		TransparentColor:         b.color(fbx.PropTransparentColor),
		TransparencyFactor:       b.factor(fbx.PropTransparencyFactor),
		DisplacementColor:        b.color(fbx.PropDisplacementColor),
		DisplacementFactor:       b.factor(fbx.PropDisplacementFactor),
		VectorDisplacementColor:  b.color(fbx.PropVectorDisplacementColor),
		VectorDisplacementFactor: b.factor(fbx.PropVectorDisplacementFactor),
	}
}

func (b *rawBuilder) phong() extras.PhongProperties {
	return extras.PhongProperties{
		LambertProperties: b.lambert(),
		Specular:          b.color(fbx.PropSpecular),
		SpecularFactor:    b.factor(fbx.PropSpecularFactor),
		Shininess:         b.factor(fbx.PropShininess),
		Reflection:        b.color(fbx.PropReflection),
		ReflectionFactor:  b.factor(fbx.PropReflectionFactor),
	}
}

func propertyValue(p *fbx.Property70) interface{} {
	switch strings.ToLower(p.Type) {
	case "bool":
		return p.ToInt64(0) != 0
	case "int", "integer", "enum", "uint", "short", "ulonglong":
		return p.ToInt64(0)
	case "kstring", "datetime", "url", "xrefurl":
		return p.ToString("")
	}
	switch len(p.AttributeList) {
	case 0:
		return nil
	case 1:
		a := p.Get(0)
		switch a.Value.(type) {
		case string, []byte:
			return a.ToString()
		case bool:
			return a.Value
		}
		return a.ToFloat64(0)
	}
	values := make([]float64, len(p.AttributeList))
	for i, a := range p.AttributeList {
		values[i] = a.ToFloat64(0)
	}
	return values
}

// setPath stores v at the "|" separated property name in props.
func setPath(props map[string]interface{}, name string, v interface{}) {
	keys := strings.Split(name, "|")
	for _, k := range keys[:len(keys)-1] {
		child, ok := props[k].(map[string]interface{})
		if !ok {
			if _, exists := props[k]; exists {
				return
			}
			child = map[string]interface{}{}
			props[k] = child
		}
		props = child
	}
	props[keys[len(keys)-1]] = v
}

// dumpProperties returns the Properties70 values of m. Compound names become
// nested objects. With withTextures every property is an object holding its
// value and connected texture; otherwise a texture replaces the value.
func (c *fbxToGltf) dumpProperties(m *fbx.Material, withTextures bool) map[string]interface{} {
	props := map[string]interface{}{}
	seen := map[string]bool{}
	dump := func(name string, v interface{}) {
		seen[name] = true
		i, textured := c.textureOf(m, name)
		if withTextures {
			e := map[string]interface{}{}
			if v != nil {
				e["value"] = v
			}
			if textured {
				e["texture"] = extras.TextureReference{Index: i}
			}
			setPath(props, name, e)
			return
		}
		if textured {
			v = extras.TextureReference{Index: i}
		}
		if v != nil {
			setPath(props, name, v)
		}
	}
	for _, name := range m.PropertyNames() {
		dump(name, propertyValue(m.GetProperty70(name)))
	}
	for _, name := range m.TextureProperties() {
		if !seen[name] {
			dump(name, nil)
		}
	}
	return props
}

func (c *fbxToGltf) rawMaterial(m *fbx.Material) (extras.RawMaterial, error) {
	b := &rawBuilder{c: c, m: m}
	var raw extras.RawMaterial
	switch m.Shading() {
	case fbx.ShadingPhong:
		raw = &extras.PhongMaterial{Properties: b.phong()}
	case fbx.ShadingLambert:
		raw = &extras.LambertMaterial{Properties: b.lambert()}
	default:
		data, err := json.Marshal(c.dumpProperties(m, true))
		if err != nil {
			return nil, errors.Wrap(err, "raw.properties")
		}
		raw = &extras.OpaqueMaterial{Properties: data}
	}
	return raw, b.err
}

func (c *fbxToGltf) convertMaterial(m *fbx.Material) *gltf.Material {
	mm := &gltf.Material{
		Name:                 m.Name(),
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{},
	}
	target := fmt.Sprintf("materials[%d]", len(c.Materials))

	e := &extras.MaterialExtra{}
	if m.Shading() == fbx.ShadingOther {
		c.convertStandard(m, mm)
		data, err := json.Marshal(map[string]interface{}{"properties": c.dumpProperties(m, false)})
		if err != nil {
			c.warn(target, mm.Name, errors.Wrap(err, "originalMaterial"))
		} else {
			e.Unknown = map[string]json.RawMessage{"originalMaterial": data}
		}
	} else {
		c.convertLambert(m, mm)
	}
	if c.ExportRawMaterials {
		raw, err := c.rawMaterial(m)
		if err != nil {
			c.warn(target, mm.Name, err)
		} else {
			e.Raw = raw
		}
	}
	if e.Raw != nil || e.Unknown != nil {
		if err := extras.SetMaterialExtra(mm, e); err != nil {
			c.warn(target, mm.Name, err)
		}
	}
	return mm
}

// Convert builds a glTF document holding the materials, textures and
// metadata of src. Metadata that cannot be written is reported as warnings
// and left out.
func (c *fbxToGltf) Convert(src *fbx.Document) (*gltf.Document, []extras.Warning, error) {
	if src == nil {
		return nil, nil, errors.New("no fbx document")
	}
	if c.Verbose {
		log.Print("FBX file version: ", src.VersionString())
		log.Print("Creator: ", src.Creator)
		if h := src.HeaderExtension; h != nil && h.CreationTimeStamp != nil {
			log.Print("Creation time: ", h.CreationTimeStamp.Time().Format("2006-01-02 15:04:05.000"))
		}
	}

	docExtra := &extras.DocumentExtra{}
	docExtra.SetAnimationFrameRate(c.FrameRate(src))
	if c.Verbose {
		log.Print("Frame rate: ", *docExtra.AnimationFrameRate)
	}
	if c.ExportFBXFileHeaderInfo {
		docExtra.FBXFileHeaderInfo = fileHeaderInfo(src)
	}
	if err := extras.SetDocumentExtra(c.Document, docExtra); err != nil {
		c.warn("document", "", err)
	}

	for _, t := range src.Textures {
		c.addTexture(t)
	}
	for _, m := range src.Materials {
		c.Materials = append(c.Materials, c.convertMaterial(m))
	}
	if len(c.Textures) > 0 {
		c.Samplers = []*gltf.Sampler{{}}
	}

	if c.EmbedTextures {
		if err := gltfutil.ToSingleFile(c.Document, c.TextureDir); err != nil {
			log.Print("Texture embed error: ", err)
		}
	}
	return c.Document, c.warnings, nil
}
