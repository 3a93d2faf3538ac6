package fbx

import (
	"bufio"
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
)

type ParseOption struct {
	// Encoding decodes strings that are not valid UTF-8. nil means
	// DefaultEncoding.
	Encoding encoding.Encoding
}

func Load(path string) (*Document, error) {
	return LoadWithOption(path, nil)
}

func LoadWithOption(path string, opt *ParseOption) (*Document, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	doc, err := ParseWithOption(r, opt)
	return doc, errors.Wrap(err, path)
}

func Parse(r io.Reader) (*Document, error) {
	return ParseWithOption(r, nil)
}

// ParseWithOption reads a binary or ASCII FBX file.
func ParseWithOption(r io.Reader, opt *ParseOption) (*Document, error) {
	if opt == nil {
		opt = &ParseOption{}
	}
	br := bufio.NewReader(r)
	dec := newStringDecoder(opt.Encoding)

	var root *Node
	var err error
	if head, _ := br.Peek(len(binaryMagic)); bytes.Equal(head, []byte(binaryMagic)) {
		p := binaryParser{r: &positionReader{r: br}, strings: dec}
		root, err = p.Parse()
		if err == nil {
			root.Attributes = AttributeList{{Value: int32(p.version)}}
		}
	} else {
		p := textParser{r: br, strings: dec}
		root, err = p.Parse()
	}
	if err != nil {
		return nil, err
	}
	doc, err := BuildDocument(root)
	if err != nil {
		return nil, err
	}
	if v := root.GetInt(); v != 0 {
		doc.Version = v
	}
	return doc, nil
}
