package fbx

func parseLocalTime(node *Node) *LocalTime {
	if node == nil {
		return nil
	}
	return &LocalTime{
		Year:        node.FindChild("Year").GetInt(),
		Month:       node.FindChild("Month").GetInt(),
		Day:         node.FindChild("Day").GetInt(),
		Hour:        node.FindChild("Hour").GetInt(),
		Minute:      node.FindChild("Minute").GetInt(),
		Second:      node.FindChild("Second").GetInt(),
		Millisecond: node.FindChild("Millisecond").GetInt(),
	}
}

func parseSceneInfo(node *Node) *SceneInfo {
	if node == nil {
		return nil
	}
	s := &SceneInfo{Obj: Obj{Node: node}}
	str := func(name string) string {
		return s.GetProperty70(name).ToString("")
	}
	s.URL = str("DocumentUrl")
	s.Original = OriginalInfo{
		ApplicationVendor:  str("Original|ApplicationVendor"),
		ApplicationName:    str("Original|ApplicationName"),
		ApplicationVersion: str("Original|ApplicationVersion"),
		FileName:           str("Original|FileName"),
		DateTimeGMT:        str("Original|DateTime_GMT"),
	}
	meta := node.FindChild("MetaData")
	s.Title = meta.FindChild("Title").GetString()
	s.Subject = meta.FindChild("Subject").GetString()
	s.Author = meta.FindChild("Author").GetString()
	s.Keywords = meta.FindChild("Keywords").GetString()
	s.Revision = meta.FindChild("Revision").GetString()
	s.Comment = meta.FindChild("Comment").GetString()
	return s
}

func parseHeaderExtension(node *Node) *HeaderExtension {
	if node == nil {
		return nil
	}
	return &HeaderExtension{
		FBXHeaderVersion:  node.FindChild("FBXHeaderVersion").GetInt(),
		FBXVersion:        node.FindChild("FBXVersion").GetInt(),
		Creator:           node.FindChild("Creator").GetString(),
		CreationTimeStamp: parseLocalTime(node.FindChild("CreationTimeStamp")),
		SceneInfo:         parseSceneInfo(node.FindChild("SceneInfo")),
	}
}

func parseGlobalSettings(node *Node, template *Obj) *GlobalSettings {
	g := &GlobalSettings{Obj: Obj{Node: node, Template: template}}
	g.TimeMode = TimeMode(g.GetProperty70("TimeMode").ToInt64(int64(TimeModeDefault)))
	g.CustomFrameRate = g.GetProperty70("CustomFrameRate").ToFloat64(-1)
	return g
}

func parseMaterial(base *Obj) *Material {
	m := &Material{Obj: *base}
	m.ShadingModel = m.FindChild("ShadingModel").GetString()
	if m.ShadingModel == "" {
		m.ShadingModel = m.GetProperty70("ShadingModel").ToString("")
	}
	return m
}

func parseTexture(base *Obj) *Texture {
	t := &Texture{Obj: *base}
	t.FileName = t.FindChild("FileName").GetString()
	if t.FileName == "" {
		t.FileName = t.GetProperty70("Path").ToString("")
	}
	t.RelativeFileName = t.FindChild("RelativeFilename").GetString()
	return t
}

func BuildDocument(root *Node) (*Document, error) {
	doc := &Document{RawNode: root, Objects: map[int64]*Obj{}}

	doc.HeaderExtension = parseHeaderExtension(root.FindChild("FBXHeaderExtension"))
	if doc.HeaderExtension != nil {
		doc.Version = doc.HeaderExtension.FBXVersion
		doc.Creator = doc.HeaderExtension.Creator
	}
	if c := root.FindChild("Creator"); c != nil {
		doc.Creator = c.GetString()
	}
	doc.CreationTime = root.FindChild("CreationTime").GetString()
	if id := root.FindChild("FileId").Attr(0); id != nil {
		doc.FileId, _ = id.Value.([]byte)
	}

	templates := map[string]*Obj{}
	for _, node := range root.FindChild("Definitions").GetChildren() {
		if node.Name != "ObjectType" {
			continue
		}
		if t := node.FindChild("PropertyTemplate"); t != nil {
			templates[node.Attr(0).ToString()] = &Obj{Node: t}
		}
	}
	doc.GlobalSettings = parseGlobalSettings(root.FindChild("GlobalSettings"), templates["GlobalSettings"])

	textures := map[int64]*Texture{}
	materials := map[int64]*Material{}
	for _, node := range root.FindChild("Objects").GetChildren() {
		base := &Obj{Node: node, Template: templates[node.Name]}
		switch node.Name {
		case "Material":
			m := parseMaterial(base)
			doc.Materials = append(doc.Materials, m)
			materials[m.ID()] = m
			base = &m.Obj
		case "Texture":
			t := parseTexture(base)
			doc.Textures = append(doc.Textures, t)
			textures[t.ID()] = t
			base = &t.Obj
		}
		doc.Objects[base.ID()] = base
	}

	for _, node := range root.FindChild("Connections").GetChildren() {
		if node.Name != "C" {
			continue
		}
		c := parseConnection(node)
		doc.Connections = append(doc.Connections, c)
		if c.Type != "OP" {
			continue
		}
		if t, m := textures[c.From], materials[c.To]; t != nil && m != nil {
			m.connectTexture(c.Prop, t)
		}
	}

	return doc, nil
}
