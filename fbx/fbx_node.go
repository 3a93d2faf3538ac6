package fbx

import (
	"fmt"
	"io"
	"strings"

	"github.com/binzume/fbxgltfextras/geom"
)

type Node struct {
	Name       string
	Attributes AttributeList
	Children   []*Node
}

func (n *Node) FindChild(name string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (n *Node) GetChildren() []*Node {
	if n == nil {
		return nil
	}
	return n.Children
}

func (n *Node) Attr(i int) *Attribute {
	if n == nil {
		return nil
	}
	return n.Attributes.Get(i)
}

func (n *Node) GetInt() int {
	return int(n.Attr(0).ToInt64(0))
}

func (n *Node) GetInt64() int64 {
	return n.Attr(0).ToInt64(0)
}

func (n *Node) GetFloat64() float64 {
	return n.Attr(0).ToFloat64(0)
}

func (n *Node) GetString() string {
	return n.Attr(0).ToString()
}

type Attribute struct {
	Value     interface{}
	ArraySize uint
}

type AttributeList []*Attribute

func (l AttributeList) Get(i int) *Attribute {
	if i < 0 || i >= len(l) {
		return nil
	}
	return l[i]
}

func (a *Attribute) ToInt64(defvalue int64) int64 {
	if a == nil {
		return defvalue
	}
	switch v := a.Value.(type) {
	case bool:
		if v {
			return 1
		}
		return 0
	case byte:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case float32:
		return int64(v)
	case float64:
		return int64(v)
	}
	return defvalue
}

func (a *Attribute) ToFloat64(defvalue float64) float64 {
	if a == nil {
		return defvalue
	}
	switch v := a.Value.(type) {
	case float32:
		return float64(v)
	case float64:
		return v
	case int16:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	}
	return defvalue
}

func (a *Attribute) ToString() string {
	if a == nil {
		return ""
	}
	if v, ok := a.Value.(string); ok {
		return v
	} else if v, ok := a.Value.([]byte); ok {
		return string(v)
	}
	return ""
}

// ToFloat64Array returns array values, or nil if a is not a numeric array.
func (a *Attribute) ToFloat64Array() []float64 {
	if a == nil {
		return nil
	}
	var r []float64
	switch vv := a.Value.(type) {
	case []float64:
		return vv
	case []float32:
		for _, v := range vv {
			r = append(r, float64(v))
		}
	case []int32:
		for _, v := range vv {
			r = append(r, float64(v))
		}
	case []int64:
		for _, v := range vv {
			r = append(r, float64(v))
		}
	}
	return r
}

// ToDouble3 reads the first three scalar attributes of l.
func (l AttributeList) ToDouble3(def geom.Double3) geom.Double3 {
	if len(l) < 3 {
		return def
	}
	return geom.NewDouble3(l[0].ToFloat64(def[0]), l[1].ToFloat64(def[1]), l[2].ToFloat64(def[2]))
}

func (a *Attribute) String() string {
	switch v := a.Value.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case []byte:
		return fmt.Sprintf("\"%v\"", v)
	default:
		return fmt.Sprint(v)
	}
}

// Dump writes n in the FBX ASCII layout. Arrays longer than 16 elements are
// elided unless full is set.
func (n *Node) Dump(w io.Writer, d int, full bool) {
	fmt.Fprint(w, strings.Repeat("  ", d), n.Name, ":")
	var arrayReplacer = strings.NewReplacer("[", "{ a:", "]", "}", " ", ",")
	for i, p := range n.Attributes {
		if !full && p.ArraySize > 16 {
			fmt.Fprintf(w, " *%d { SKIPPED }", p.ArraySize)
			continue
		}
		s := p.String()
		if p.ArraySize > 0 {
			s = fmt.Sprint("*", p.ArraySize, " ", arrayReplacer.Replace(s))
		}
		if i == 0 {
			fmt.Fprint(w, " ", s)
		} else {
			fmt.Fprint(w, ", ", s)
		}
	}
	if len(n.Children) > 0 || len(n.Attributes) == 0 {
		fmt.Fprintln(w, " {")
		for _, c := range n.Children {
			c.Dump(w, d+1, full)
		}
		fmt.Fprintln(w, strings.Repeat("  ", d)+"}")
	} else {
		fmt.Fprintln(w, "")
	}
}
