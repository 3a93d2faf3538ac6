package fbx

import (
	"strings"

	"github.com/binzume/fbxgltfextras/geom"
)

// Property70 is one "P" entry of a Properties70 block.
type Property70 struct {
	AttributeList
	Type  string
	Label string
	Flag  string
}

func (p *Property70) ToFloat64(def float64) float64 {
	return p.Get(0).ToFloat64(def)
}

func (p *Property70) ToInt64(def int64) int64 {
	return p.Get(0).ToInt64(def)
}

func (p *Property70) ToString(def string) string {
	if a := p.Get(0); a != nil {
		return a.ToString()
	}
	return def
}

func (p *Property70) ToDouble3(def geom.Double3) geom.Double3 {
	return p.AttributeList.ToDouble3(def)
}

// Valid reports whether the property was found on the object or its template.
func (p *Property70) Valid() bool {
	return p.Type != "" || len(p.AttributeList) > 0
}

func parseProperties70(node *Node) map[string]*Property70 {
	props := map[string]*Property70{}
	for _, p := range node.FindChild("Properties70").GetChildren() {
		if p.Name != "P" || len(p.Attributes) < 4 {
			continue
		}
		props[p.Attr(0).ToString()] = &Property70{
			AttributeList: p.Attributes[4:],
			Type:          p.Attr(1).ToString(),
			Label:         p.Attr(2).ToString(),
			Flag:          p.Attr(3).ToString(),
		}
	}
	return props
}

type Connection struct {
	Type string
	From int64
	To   int64
	Prop string
}

func parseConnection(node *Node) *Connection {
	c := &Connection{
		Type: node.Attr(0).ToString(),
		From: node.Attr(1).ToInt64(0),
		To:   node.Attr(2).ToInt64(0),
	}
	if c.Type == "OP" {
		c.Prop = node.Attr(3).ToString()
	}
	return c
}

// Obj is an element of the Objects section. Properties fall back to the
// PropertyTemplate of its type in Definitions.
type Obj struct {
	*Node
	Template   *Obj
	properties map[string]*Property70 // lazy initialize
}

func (o *Obj) ID() int64 {
	return o.Attr(0).ToInt64(0)
}

// Name returns the object name without its class part. Binary files store
// "name\x00\x01Class" and ASCII files "Class::name".
func (o *Obj) Name() string {
	s := o.Attr(1).ToString()
	if i := strings.Index(s, "\x00\x01"); i >= 0 {
		return s[:i]
	}
	if i := strings.Index(s, "::"); i >= 0 {
		return s[i+2:]
	}
	return s
}

func (o *Obj) Kind() string {
	return o.Attr(2).ToString()
}

func (o *Obj) GetProperty70(name string) *Property70 {
	if o == nil || o.Node == nil {
		return &Property70{}
	}
	if o.properties == nil {
		o.properties = parseProperties70(o.Node)
	}
	if p, ok := o.properties[name]; ok {
		return p
	} else if o.Template != nil {
		return o.Template.GetProperty70(name)
	}
	return &Property70{}
}

// PropertyNames returns the names of the object's own properties in file
// order.
func (o *Obj) PropertyNames() []string {
	var names []string
	for _, p := range o.FindChild("Properties70").GetChildren() {
		if p.Name == "P" {
			names = append(names, p.Attr(0).ToString())
		}
	}
	return names
}
