package fbx

import (
	"fmt"
	"time"
)

type Document struct {
	// Version is the file format version, e.g. 7400.
	Version      int
	Creator      string
	CreationTime string
	FileId       []byte

	HeaderExtension *HeaderExtension
	GlobalSettings  *GlobalSettings

	Objects     map[int64]*Obj
	Materials   []*Material
	Textures    []*Texture
	Connections []*Connection

	RawNode *Node
}

// VersionString formats Version as "major.minor", e.g. "7.4".
func (d *Document) VersionString() string {
	major, minor := d.Version/1000, d.Version%1000
	for minor != 0 && minor%10 == 0 {
		minor /= 10
	}
	return fmt.Sprintf("%d.%d", major, minor)
}

// LocalTime is a CreationTimeStamp node.
type LocalTime struct {
	Year        int
	Month       int
	Day         int
	Hour        int
	Minute      int
	Second      int
	Millisecond int
}

func (t *LocalTime) Time() time.Time {
	return time.Date(t.Year, time.Month(t.Month), t.Day, t.Hour, t.Minute, t.Second, t.Millisecond*int(time.Millisecond), time.Local)
}

type HeaderExtension struct {
	FBXHeaderVersion int
	FBXVersion       int
	Creator          string

	// CreationTimeStamp is nil when the file has no timestamp.
	CreationTimeStamp *LocalTime
	SceneInfo         *SceneInfo
}

type OriginalInfo struct {
	ApplicationVendor  string
	ApplicationName    string
	ApplicationVersion string
	FileName           string
	DateTimeGMT        string
}

// SceneInfo is the document information of FBXHeaderExtension.
type SceneInfo struct {
	Obj

	URL      string
	Original OriginalInfo

	Title    string
	Subject  string
	Author   string
	Keywords string
	Revision string
	Comment  string
}

type GlobalSettings struct {
	Obj
	TimeMode        TimeMode
	CustomFrameRate float64
}

// FrameRate returns the scene frame rate. A custom time mode without a
// usable CustomFrameRate falls back to the default mode.
func (g *GlobalSettings) FrameRate() float64 {
	if g == nil {
		rate, _ := FrameRateForTimeMode(TimeModeDefault)
		return rate
	}
	if g.TimeMode == TimeModeCustom && g.CustomFrameRate > 0 {
		return g.CustomFrameRate
	}
	if rate, ok := FrameRateForTimeMode(g.TimeMode); ok {
		return rate
	}
	rate, _ := FrameRateForTimeMode(TimeModeDefault)
	return rate
}

type Texture struct {
	Obj
	FileName         string
	RelativeFileName string
}
