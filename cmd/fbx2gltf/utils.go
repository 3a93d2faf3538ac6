package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/binzume/fbxgltfextras/converter"
	"github.com/binzume/fbxgltfextras/extras"
	"github.com/binzume/fbxgltfextras/fbx"
	"github.com/binzume/fbxgltfextras/gltfutil"
	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
)

var spewConfig *spew.ConfigState

func init() {
	spewConfig = spew.NewDefaultConfig()
	spewConfig.DisableCapacities = true
	spewConfig.DisablePointerAddresses = true
}

func isGLTF(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".gltf" || ext == ".glb"
}

func defaultOutputFile(input string) string {
	ext := filepath.Ext(input)
	return input[0:len(input)-len(ext)] + ".glb"
}

func defaultConfigFile(input string) string {
	conf := input[0:len(input)-len(filepath.Ext(input))] + ".fbx2gltf.yaml"
	if _, err := os.Stat(conf); err != nil {
		return ""
	}
	return conf
}

func loadFBX(input string, opt *converter.FBXToGLTFOption) (*fbx.Document, error) {
	parseOpt, err := opt.ParseOption()
	if err != nil {
		return nil, err
	}
	return fbx.LoadWithOption(input, parseOpt)
}

func printWarnings(warnings []extras.Warning) {
	for _, w := range warnings {
		log.Print("WARNING: ", w)
	}
}

// dumpExtras writes the parsed FBX-glTF-conv objects of doc to w.
func dumpExtras(w io.Writer, doc *gltf.Document) {
	if e, err := extras.DocumentExtraOf(doc); e != nil || err != nil {
		fmt.Fprint(w, "document: ", spewConfig.Sdump(e))
	}
	for i, m := range doc.Materials {
		if e, _ := extras.MaterialExtraOf(m); e != nil {
			fmt.Fprintf(w, "materials[%d] %s (%v): %s", i, m.Name, e.Kind(), spewConfig.Sdump(e))
		}
	}
	for i, img := range doc.Images {
		if e, _ := extras.ImageExtraOf(img); e != nil {
			fmt.Fprintf(w, "images[%d] %s: %s", i, img.Name, spewConfig.Sdump(e))
		}
	}
}

func checkGLTF(input string, dump bool) (int, error) {
	doc, err := gltfutil.Load(input)
	if err != nil {
		return 0, errors.Wrap(err, input)
	}
	warnings := extras.CheckDocument(doc)
	printWarnings(warnings)
	if dump {
		dumpExtras(os.Stdout, doc)
	}
	return len(warnings), nil
}
