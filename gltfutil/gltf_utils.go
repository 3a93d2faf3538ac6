package gltfutil

import (
	"io/ioutil"
	"log"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

func Load(path string) (*gltf.Document, error) {
	return gltf.Open(path)
}

// Save writes doc as a binary glTF if path ends with .glb.
func Save(doc *gltf.Document, path string) error {
	if strings.ToLower(filepath.Ext(path)) == ".glb" {
		return gltf.SaveBinary(doc, path)
	}
	return gltf.Save(doc, path)
}

// ImageMimeType returns the glTF mime type for an image file name, or "" if
// glTF cannot embed it.
func ImageMimeType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	}
	return ""
}

// ToSingleFile moves the images referenced by relative URIs into buffer
// views. Images that cannot be read keep their URI.
func ToSingleFile(doc *gltf.Document, srcDir string) error {
	for _, b := range doc.Buffers {
		b.URI = ""
	}
	failed := 0
	for _, m := range doc.Images {
		if m.BufferView != nil || m.URI == "" || strings.HasPrefix(m.URI, "data:") {
			continue
		}
		mimeType := m.MimeType
		if mimeType == "" {
			mimeType = ImageMimeType(m.URI)
		}
		if mimeType == "" {
			log.Print("unsupported image type: ", m.URI)
			failed++
			continue
		}
		buf, err := ioutil.ReadFile(filepath.Join(srcDir, filepath.FromSlash(m.URI)))
		if err != nil {
			log.Print(err)
			failed++
			continue
		}
		m.MimeType = mimeType
		m.BufferView = gltf.Index(modeler.WriteBufferView(doc, gltf.TargetNone, buf))
		m.URI = ""
	}
	for _, b := range doc.Buffers {
		b.ByteLength = uint32(len(b.Data)) // avoid WriteBufferView bug
	}
	if failed > 0 {
		return errors.Errorf("%d of %d images not embedded", failed, len(doc.Images))
	}
	return nil
}
