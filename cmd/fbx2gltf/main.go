package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/binzume/fbxgltfextras/converter"
	"github.com/binzume/fbxgltfextras/gltfutil"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s input.fbx [output.glb|output.gltf]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s -check input.glb\n", os.Args[0])
		flag.PrintDefaults()
	}
	exportHeaderInfo := flag.Bool("export-fbx-file-header-info", false, "write the FBX file header info to the document extras")
	exportRawMaterials := flag.Bool("export-raw-materials", false, "write the FBX material properties to the material extras")
	bakeRate := flag.Float64("animation-bake-rate", 0, "animation frame rate. 0: scene time mode")
	encoding := flag.String("encoding", "", "encoding of non UTF-8 strings (default windows-1252)")
	embedTextures := flag.Bool("embed-textures", false, "embed texture files")
	confFile := flag.String("config", "", "option file (.yaml)")
	verbose := flag.Bool("verbose", false, "verbose log")
	check := flag.Bool("check", false, "validate the extras of a .gltf/.glb file")
	dump := flag.Bool("dump", false, "print the parsed extras")
	dumpFBX := flag.Bool("dump-fbx", false, "print the FBX node tree")
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		return
	}
	input := flag.Arg(0)

	if *check || isGLTF(input) {
		n, err := checkGLTF(input, *dump)
		if err != nil {
			log.Fatal(err)
		}
		if n > 0 {
			log.Fatalf("%d warnings", n)
		}
		log.Print("ok")
		return
	}

	output := defaultOutputFile(input)
	if flag.NArg() > 1 {
		output = flag.Arg(1)
	}
	if *confFile == "" {
		*confFile = defaultConfigFile(input)
	}

	opt := &converter.FBXToGLTFOption{}
	if *confFile != "" {
		conf, err := converter.LoadConfig(*confFile)
		if err != nil {
			log.Fatal(err)
		}
		opt = conf
	}
	// flags on the command line override the option file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "export-fbx-file-header-info":
			opt.ExportFBXFileHeaderInfo = *exportHeaderInfo
		case "export-raw-materials":
			opt.ExportRawMaterials = *exportRawMaterials
		case "animation-bake-rate":
			opt.AnimationBakeRate = *bakeRate
		case "encoding":
			opt.Encoding = *encoding
		case "embed-textures":
			opt.EmbedTextures = *embedTextures
		case "verbose":
			opt.Verbose = *verbose
		}
	})
	if opt.TextureDir == "" {
		opt.TextureDir = filepath.Dir(input)
	}

	doc, err := loadFBX(input, opt)
	if err != nil {
		log.Fatal(err)
	}
	if *dumpFBX {
		doc.RawNode.Dump(os.Stdout, 0, false)
	}

	gltfdoc, warnings, err := converter.NewFBXToGLTFConverter(opt).Convert(doc)
	if err != nil {
		log.Fatal(err)
	}
	printWarnings(warnings)
	if *dump {
		dumpExtras(os.Stdout, gltfdoc)
	}

	log.Print("out: ", output)
	if err := gltfutil.Save(gltfdoc, output); err != nil {
		log.Fatal(err)
	}
}
