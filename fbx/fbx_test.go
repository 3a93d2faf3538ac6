package fbx

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/binzume/fbxgltfextras/geom"
	"github.com/davecgh/go-spew/spew"
	"golang.org/x/text/encoding/japanese"
)

type testNode struct {
	name     string
	attrs    []interface{}
	children []*testNode
}

func n(name string, attrs ...interface{}) *testNode {
	return &testNode{name: name, attrs: attrs}
}

func (t *testNode) with(children ...*testNode) *testNode {
	t.children = children
	return t
}

func p70(props ...*testNode) *testNode {
	return n("Properties70").with(props...)
}

type compressed []float64

func writeAttribute(w *bytes.Buffer, v interface{}) {
	le := binary.LittleEndian
	switch v := v.(type) {
	case bool:
		w.WriteByte('C')
		if v {
			w.WriteByte(1)
		} else {
			w.WriteByte(0)
		}
	case int16:
		w.WriteByte('Y')
		binary.Write(w, le, v)
	case int32:
		w.WriteByte('I')
		binary.Write(w, le, v)
	case int64:
		w.WriteByte('L')
		binary.Write(w, le, v)
	case float32:
		w.WriteByte('F')
		binary.Write(w, le, v)
	case float64:
		w.WriteByte('D')
		binary.Write(w, le, v)
	case string:
		w.WriteByte('S')
		binary.Write(w, le, uint32(len(v)))
		w.WriteString(v)
	case []byte:
		w.WriteByte('R')
		binary.Write(w, le, uint32(len(v)))
		w.Write(v)
	case []float64:
		w.WriteByte('d')
		binary.Write(w, le, uint32(len(v)))
		binary.Write(w, le, uint32(0))
		binary.Write(w, le, uint32(len(v)*8))
		binary.Write(w, le, v)
	case compressed:
		var z bytes.Buffer
		zw := zlib.NewWriter(&z)
		binary.Write(zw, le, []float64(v))
		zw.Close()
		w.WriteByte('d')
		binary.Write(w, le, uint32(len(v)))
		binary.Write(w, le, uint32(1))
		binary.Write(w, le, uint32(z.Len()))
		w.Write(z.Bytes())
	case []int32:
		w.WriteByte('i')
		binary.Write(w, le, uint32(len(v)))
		binary.Write(w, le, uint32(0))
		binary.Write(w, le, uint32(len(v)*4))
		binary.Write(w, le, v)
	default:
		panic(spew.Sdump(v))
	}
}

func writeOffset(w *bytes.Buffer, version int, v uint64) {
	if version >= 7500 {
		binary.Write(w, binary.LittleEndian, v)
	} else {
		binary.Write(w, binary.LittleEndian, uint32(v))
	}
}

func writeNullRecord(w *bytes.Buffer, version int) {
	for i := 0; i < 3; i++ {
		writeOffset(w, version, 0)
	}
	w.WriteByte(0)
}

func writeBinaryNode(w *bytes.Buffer, version int, node *testNode) {
	var attrs bytes.Buffer
	for _, a := range node.attrs {
		writeAttribute(&attrs, a)
	}
	start := w.Len()
	writeOffset(w, version, 0) // patched below
	writeOffset(w, version, uint64(len(node.attrs)))
	writeOffset(w, version, uint64(attrs.Len()))
	w.WriteByte(byte(len(node.name)))
	w.WriteString(node.name)
	w.Write(attrs.Bytes())
	for _, c := range node.children {
		writeBinaryNode(w, version, c)
	}
	if len(node.children) > 0 {
		writeNullRecord(w, version)
	}
	end := uint64(w.Len())
	if version >= 7500 {
		binary.LittleEndian.PutUint64(w.Bytes()[start:], end)
	} else {
		binary.LittleEndian.PutUint32(w.Bytes()[start:], uint32(end))
	}
}

func writeBinaryFBX(version int, nodes ...*testNode) []byte {
	var w bytes.Buffer
	w.WriteString(binaryMagic)
	w.Write([]byte{0x1a, 0})
	binary.Write(&w, binary.LittleEndian, uint32(version))
	for _, node := range nodes {
		writeBinaryNode(&w, version, node)
	}
	writeNullRecord(&w, version)
	w.Write(make([]byte, 16)) // footer
	return w.Bytes()
}

func testScene(version int) []*testNode {
	return []*testNode{
		n("FBXHeaderExtension").with(
			n("FBXHeaderVersion", int32(1003)),
			n("FBXVersion", int32(version)),
			n("CreationTimeStamp").with(
				n("Version", int32(1000)),
				n("Year", int32(2021)),
				n("Month", int32(6)),
				n("Day", int32(15)),
				n("Hour", int32(12)),
				n("Minute", int32(30)),
				n("Second", int32(45)),
				n("Millisecond", int32(500)),
			),
			n("Creator", "Blender (stable FBX IO) - 2.93"),
			n("SceneInfo", "GlobalInfo\x00\x01SceneInfo", "UserData").with(
				n("Type", "UserData"),
				n("MetaData").with(
					n("Version", int32(100)),
					n("Title", "box"),
					n("Subject", ""),
					n("Author", "someone"),
					n("Keywords", ""),
					n("Revision", ""),
					n("Comment", ""),
				),
				p70(
					n("P", "DocumentUrl", "KString", "Url", "", "C:\\work\\box.fbx"),
					n("P", "Original|ApplicationVendor", "KString", "", "", "Blender Foundation"),
					n("P", "Original|ApplicationName", "KString", "", "", "Blender (stable FBX IO)"),
					n("P", "Original|ApplicationVersion", "KString", "", "", "2.93"),
					n("P", "Original|FileName", "KString", "", "", "box.blend"),
				),
			),
		),
		n("FileId", []byte{1, 2, 3}),
		n("GlobalSettings").with(
			n("Version", int32(1000)),
			p70(n("P", "TimeMode", "enum", "", "", int32(11))),
		),
		n("Definitions").with(
			n("ObjectType", "Material").with(
				n("PropertyTemplate", "FbxSurfacePhong").with(
					p70(n("P", "ShininessExponent", "double", "Number", "", float64(30))),
				),
			),
		),
		n("Objects").with(
			n("Material", int64(100), "Mat\x00\x01Material", "").with(
				n("Version", int32(102)),
				n("ShadingModel", "phong"),
				p70(
					n("P", "DiffuseColor", "Color", "", "A", 0.5, 0.25, 1.0),
					n("P", "DiffuseFactor", "Number", "", "A", 0.8),
				),
			),
			n("Texture", int64(200), "Tex\x00\x01Texture", "").with(
				n("Type", "TextureVideoClip"),
				n("FileName", "C:\\tex\\caf\xe9.png"),
				n("RelativeFilename", "tex\\caf\xe9.png"),
			),
			n("Material", int64(101), "Lam\x00\x01Material", "").with(
				n("ShadingModel", "lambert"),
			),
			n("Geometry", int64(300), "\x00\x01Geometry", "Mesh").with(
				n("Vertices", compressed{0, 0, 0, 1, 1, 1}),
				n("PolygonVertexIndex", []int32{0, 1, -3}),
				n("Smooth", true, int16(1), float32(0.5)),
			),
		),
		n("Connections").with(
			n("C", "OO", int64(100), int64(0)),
			n("C", "OP", int64(200), int64(100), "DiffuseColor"),
		),
	}
}

func TestParseBinary(t *testing.T) {
	for _, version := range []int{7400, 7500} {
		doc, err := Parse(bytes.NewReader(writeBinaryFBX(version, testScene(version)...)))
		if err != nil {
			t.Fatal(version, err)
		}
		if doc.Version != version {
			t.Error("Version", doc.Version)
		}
		h := doc.HeaderExtension
		if h == nil || h.CreationTimeStamp == nil {
			t.Fatal("header extension not found")
		}
		if *h.CreationTimeStamp != (LocalTime{2021, 6, 15, 12, 30, 45, 500}) {
			t.Error("CreationTimeStamp", h.CreationTimeStamp)
		}
		if doc.Creator != "Blender (stable FBX IO) - 2.93" {
			t.Error("Creator", doc.Creator)
		}
		s := h.SceneInfo
		if s.URL != "C:\\work\\box.fbx" || s.Original.FileName != "box.blend" || s.Title != "box" || s.Author != "someone" {
			t.Error("SceneInfo", spew.Sdump(s.URL, s.Original, s.Title, s.Author))
		}
		if !bytes.Equal(doc.FileId, []byte{1, 2, 3}) {
			t.Error("FileId", doc.FileId)
		}
		if doc.GlobalSettings.TimeMode != TimeModeFrames24 || doc.GlobalSettings.FrameRate() != 24 {
			t.Error("GlobalSettings", doc.GlobalSettings.TimeMode)
		}

		if len(doc.Materials) != 2 || len(doc.Textures) != 1 || len(doc.Connections) != 2 {
			t.Fatal("objects", len(doc.Materials), len(doc.Textures), len(doc.Connections))
		}
		mat := doc.Materials[0]
		if mat.Name() != "Mat" || mat.Shading() != ShadingPhong || doc.Materials[1].Shading() != ShadingLambert {
			t.Error("material", mat.Name(), mat.ShadingModel)
		}
		if mat.Color(PropDiffuse) != geom.NewDouble3(0.5, 0.25, 1) || mat.Factor(PropDiffuseFactor) != 0.8 {
			t.Error("diffuse", mat.Color(PropDiffuse), mat.Factor(PropDiffuseFactor))
		}
		if mat.Factor(PropShininess) != 30 {
			t.Error("template value expected", mat.Factor(PropShininess))
		}
		if mat.Color(PropAmbient) != geom.NewDouble3(0.2, 0.2, 0.2) || mat.Factor(PropTransparencyFactor) != 0 {
			t.Error("default values expected")
		}
		tex := mat.Texture(PropDiffuse)
		if tex == nil || tex != doc.Textures[0] || mat.Texture(PropEmissive) != nil {
			t.Fatal("diffuse texture not connected")
		}
		if tex.FileName != "C:\\tex\\café.png" || tex.RelativeFileName != "tex\\café.png" {
			t.Error("texture file name should be decoded as windows-1252", tex.FileName, tex.RelativeFileName)
		}

		g := doc.Objects[300]
		if g == nil {
			t.Fatal("geometry not found")
		}
		if v := g.FindChild("Vertices").Attr(0).ToFloat64Array(); len(v) != 6 || v[3] != 1 {
			t.Error("compressed array", v)
		}
		smooth := g.FindChild("Smooth")
		if smooth.Attr(0).ToInt64(0) != 1 || smooth.Attr(1).ToInt64(0) != 1 || smooth.Attr(2).ToFloat64(0) != 0.5 {
			t.Error("scalar attributes", spew.Sdump(smooth.Attributes))
		}
	}
}

func TestParseBinaryWithoutTimestamp(t *testing.T) {
	scene := testScene(7400)
	header := scene[0]
	header.children = append(header.children[:2], header.children[3:]...)
	doc, err := Parse(bytes.NewReader(writeBinaryFBX(7400, scene...)))
	if err != nil {
		t.Fatal(err)
	}
	if doc.HeaderExtension.CreationTimeStamp != nil {
		t.Error("CreationTimeStamp should be nil", doc.HeaderExtension.CreationTimeStamp)
	}
}

func TestParseBinaryErrors(t *testing.T) {
	data := writeBinaryFBX(7400, testScene(7400)...)
	body := len(data) - 13 - 16 // without the top level null record and footer
	if _, err := Parse(bytes.NewReader(data[:len(data)/2])); err == nil {
		t.Error("truncated file should fail")
	}
	if _, err := Parse(bytes.NewReader(data[:body-1])); err == nil {
		t.Error("file cut inside the last node should fail")
	}
	if doc, err := Parse(bytes.NewReader(data[:body])); err != nil || len(doc.Materials) != 2 {
		t.Error("null record and footer are optional", err)
	}

	bad := append([]byte{}, data...)
	bad[27+13+len("FBXHeaderExtension")+13+len("FBXHeaderVersion")] = 'Z' // attribute type of FBXHeaderVersion
	if _, err := Parse(bytes.NewReader(bad)); err == nil {
		t.Error("unknown attribute type should fail")
	}
}

func TestParseEncoding(t *testing.T) {
	scene := []*testNode{
		n("Objects").with(
			n("Texture", int64(1), "\x83e\x83X\x83g\x00\x01Texture", "").with(
				n("FileName", "\x83e\x83X\x83g.png"),
			),
		),
	}
	doc, err := ParseWithOption(bytes.NewReader(writeBinaryFBX(7400, scene...)), &ParseOption{Encoding: japanese.ShiftJIS})
	if err != nil {
		t.Fatal(err)
	}
	if doc.Textures[0].Name() != "テスト" || doc.Textures[0].FileName != "テスト.png" {
		t.Error("shift_jis names", doc.Textures[0].Name(), doc.Textures[0].FileName)
	}
}

const testASCII = `; FBX 7.3.0 project file
; ----------------------------------------------------

FBXHeaderExtension:  {
	FBXHeaderVersion: 1003
	FBXVersion: 7300
	Creator: "FBX SDK/FBX Plugins version 2020.0"
	SceneInfo: "SceneInfo::GlobalInfo", "UserData" {
		Type: "UserData"
		Version: 100
		MetaData:  {
			Version: 100
			Title: "ascii box"
			Subject: ""
			Author: ""
			Keywords: ""
			Revision: ""
			Comment: "hello"
		}
		Properties70:  {
			P: "DocumentUrl", "KString", "Url", "", "C:\box.fbx"
			P: "Original|ApplicationName", "KString", "", "", "3ds Max"
		}
	}
}
GlobalSettings:  {
	Version: 1000
	Properties70:  {
		P: "TimeMode", "enum", "", "",14
		P: "CustomFrameRate", "double", "Number", "",12.5
	}
}
Objects:  {
	Material: 1001, "Material::red", "" {
		Version: 102
		ShadingModel: "Lambert"
		MultiLayer: 0
		Properties70:  {
			P: "DiffuseColor", "Color", "", "A",1,0,0
			P: "EmissiveFactor", "Number", "", "A",0.5
		}
	}
	Geometry: 2001, "Geometry::", "Mesh" {
		Vertices: *6 {
			a: 0,0,0,1.5,1,-1e-05
		}
		PolygonVertexIndex: *3 {
			a: 0,1,-3
		}
	}
}
Connections:  {
	;Material::red, Model::box
	C: "OO",1001,3001
}
`

func TestParseASCII(t *testing.T) {
	doc, err := Parse(strings.NewReader(testASCII))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Version != 7300 || doc.VersionString() != "7.3" {
		t.Error("Version", doc.Version, doc.VersionString())
	}
	if doc.Creator != "FBX SDK/FBX Plugins version 2020.0" {
		t.Error("Creator", doc.Creator)
	}
	h := doc.HeaderExtension
	if h.CreationTimeStamp != nil {
		t.Error("CreationTimeStamp should be absent")
	}
	if h.SceneInfo.Title != "ascii box" || h.SceneInfo.Comment != "hello" || h.SceneInfo.Original.ApplicationName != "3ds Max" {
		t.Error("SceneInfo", spew.Sdump(h.SceneInfo.Original))
	}
	if doc.GlobalSettings.TimeMode != TimeModeCustom || doc.GlobalSettings.FrameRate() != 12.5 {
		t.Error("custom frame rate", doc.GlobalSettings.TimeMode, doc.GlobalSettings.FrameRate())
	}
	mat := doc.Materials[0]
	if mat.Name() != "red" || mat.ID() != 1001 || mat.Shading() != ShadingLambert {
		t.Error("material", mat.Name(), mat.ID(), mat.ShadingModel)
	}
	if mat.Color(PropDiffuse) != geom.NewDouble3(1, 0, 0) || mat.Factor(PropEmissiveFactor) != 0.5 {
		t.Error("material properties")
	}
	v := doc.Objects[2001].FindChild("Vertices").Attr(0).ToFloat64Array()
	if len(v) != 6 || v[3] != 1.5 || v[5] != -1e-05 {
		t.Error("array", v)
	}
	idx := doc.Objects[2001].FindChild("PolygonVertexIndex").Attr(0)
	if vv, ok := idx.Value.([]int64); !ok || vv[2] != -3 {
		t.Error("int array", spew.Sdump(idx))
	}
	if len(doc.Connections) != 1 || doc.Connections[0].To != 3001 {
		t.Error("connections", doc.Connections)
	}
}

func TestParseASCIIErrors(t *testing.T) {
	for _, src := range []string{
		"Objects:  {\n\tVertices: *3 {\n\t\ta: 1,2\n\t}\n}\n",
		"Creator: \"unterminated\n",
		"Creator \"missing colon\"\n",
	} {
		if _, err := Parse(strings.NewReader(src)); err == nil {
			t.Errorf("%q should fail", src)
		}
	}
}

func TestNodeDump(t *testing.T) {
	doc, err := Parse(strings.NewReader(testASCII))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	doc.RawNode.FindChild("Objects").Dump(&buf, 0, true)
	out := buf.String()
	for _, s := range []string{`Material: 1001, "Material::red", ""`, "Vertices: *6 { a:0,0,0,1.5,1,-1e-05}"} {
		if !strings.Contains(out, s) {
			t.Errorf("dump should contain %q:\n%s", s, out)
		}
	}
}

func TestTimeModes(t *testing.T) {
	tests := []struct {
		rate float64
		mode TimeMode
	}{
		{30, TimeModeFrames30},
		{24, TimeModeFrames24},
		{25, TimeModePAL},
		{29.97002617, TimeModeNTSCDropFrame},
		{59.94, TimeModeFrames59dot94},
		{12.5, TimeModeCustom},
	}
	for _, test := range tests {
		if mode := TimeModeForFrameRate(test.rate); mode != test.mode {
			t.Errorf("TimeModeForFrameRate(%v) = %v, expected %v", test.rate, mode, test.mode)
		}
		if test.mode == TimeModeCustom {
			continue
		}
		if rate, ok := FrameRateForTimeMode(test.mode); !ok || rate != test.rate {
			t.Errorf("FrameRateForTimeMode(%v) = %v", test.mode, rate)
		}
	}
	if _, ok := FrameRateForTimeMode(TimeModeCustom); ok {
		t.Error("custom time mode has no fixed rate")
	}
	if (*GlobalSettings)(nil).FrameRate() != 30 {
		t.Error("default frame rate")
	}
}

func TestLookupEncoding(t *testing.T) {
	for _, name := range []string{"", "windows-1252", "shift_jis", "sjis", "utf-8"} {
		if _, err := LookupEncoding(name); err != nil {
			t.Error(name, err)
		}
	}
	if _, err := LookupEncoding("no-such-encoding"); err == nil {
		t.Error("unknown encoding should fail")
	}
}
