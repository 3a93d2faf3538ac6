package fbx

import (
	"compress/zlib"
	"encoding/binary"
	"io"
	"io/ioutil"

	"github.com/pkg/errors"
)

const binaryMagic = "Kaydara FBX Binary  \x00"

type positionReader struct {
	r        io.Reader
	position int64
}

func (r *positionReader) Read(p []byte) (n int, err error) {
	n, err = r.r.Read(p)
	r.position += int64(n)
	return n, err
}

func (r *positionReader) SkipTo(pos int64) error {
	offset := pos - r.position
	if offset < 0 {
		return errors.Errorf("cannot rewind to %d from %d", pos, r.position)
	}
	_, err := io.CopyN(ioutil.Discard, r, offset)
	return err
}

type binaryParser struct {
	r       *positionReader
	strings *stringDecoder
	version int
	err     error
}

func (p *binaryParser) read(v interface{}) error {
	if p.err == nil {
		p.err = binary.Read(p.r, binary.LittleEndian, v)
	}
	return p.err
}

func (p *binaryParser) readUint8() uint8 {
	var v uint8
	p.read(&v)
	return v
}

func (p *binaryParser) readInt16() int16 {
	var v int16
	p.read(&v)
	return v
}

func (p *binaryParser) readInt32() int32 {
	var v int32
	p.read(&v)
	return v
}

func (p *binaryParser) readInt64() int64 {
	var v int64
	p.read(&v)
	return v
}

func (p *binaryParser) readUint32() uint32 {
	var v uint32
	p.read(&v)
	return v
}

// readOffset reads a record header field, which is 64-bit from 7.5 on.
func (p *binaryParser) readOffset() uint64 {
	if p.version >= 7500 {
		var v uint64
		p.read(&v)
		return v
	}
	return uint64(p.readUint32())
}

func (p *binaryParser) readFloat32() float32 {
	var v float32
	p.read(&v)
	return v
}

func (p *binaryParser) readFloat64() float64 {
	var v float64
	p.read(&v)
	return v
}

func (p *binaryParser) readBytes(n uint64) []byte {
	if p.err != nil {
		return nil
	}
	buf := make([]byte, n)
	_, p.err = io.ReadFull(p.r, buf)
	return buf
}

func (p *binaryParser) readName() string {
	return string(p.readBytes(uint64(p.readUint8())))
}

func (p *binaryParser) readArray(typ uint8) *Attribute {
	count := p.readUint32()
	encoding := p.readUint32()
	sz := p.readUint32()
	if p.err != nil {
		return nil
	}
	var buf interface{}
	switch typ {
	case 'b':
		buf = make([]bool, count)
	case 'i':
		buf = make([]int32, count)
	case 'l':
		buf = make([]int64, count)
	case 'f':
		buf = make([]float32, count)
	case 'd':
		buf = make([]float64, count)
	}
	switch encoding {
	case 0:
		p.read(buf)
	case 1:
		next := p.r.position + int64(sz)
		r, err := zlib.NewReader(io.LimitReader(p.r, int64(sz)))
		if err != nil {
			p.err = errors.Wrap(err, "array")
			return nil
		}
		defer r.Close()
		if err := binary.Read(r, binary.LittleEndian, buf); err != nil {
			p.err = errors.Wrap(err, "compressed array")
			return nil
		}
		p.err = p.r.SkipTo(next)
	default:
		p.err = errors.Errorf("unknown array encoding: %d", encoding)
		return nil
	}
	return &Attribute{Value: buf, ArraySize: uint(count)}
}

func (p *binaryParser) readAttribute() *Attribute {
	typ := p.readUint8()
	switch typ {
	case 'C':
		return &Attribute{Value: p.readUint8() != 0}
	case 'Y':
		return &Attribute{Value: p.readInt16()}
	case 'I':
		return &Attribute{Value: p.readInt32()}
	case 'L':
		return &Attribute{Value: p.readInt64()}
	case 'F':
		return &Attribute{Value: p.readFloat32()}
	case 'D':
		return &Attribute{Value: p.readFloat64()}
	case 'S':
		return &Attribute{Value: p.strings.decode(p.readBytes(uint64(p.readUint32())))}
	case 'R':
		return &Attribute{Value: p.readBytes(uint64(p.readUint32()))}
	case 'b', 'i', 'l', 'f', 'd':
		return p.readArray(typ)
	}
	if p.err == nil {
		p.err = errors.Errorf("unknown attribute type: %q at %d", typ, p.r.position-1)
	}
	return nil
}

// readNode returns nil at a null record, which ends a node list.
func (p *binaryParser) readNode() *Node {
	next := p.readOffset()
	if p.err != nil {
		return nil
	}
	nattrs := p.readOffset()
	_ = p.readOffset() // attribute list length
	name := p.readName()
	if p.err != nil {
		return nil
	}
	if next == 0 {
		return nil
	}
	if int64(next) < p.r.position {
		p.err = errors.Errorf("node %s: invalid end offset %d", name, next)
		return nil
	}

	n := &Node{Name: name}
	for i := uint64(0); i < nattrs && p.err == nil; i++ {
		n.Attributes = append(n.Attributes, p.readAttribute())
	}
	for p.r.position < int64(next) && p.err == nil {
		child := p.readNode()
		if child == nil {
			break
		}
		n.Children = append(n.Children, child)
	}
	if p.err == nil {
		p.err = p.r.SkipTo(int64(next))
	}
	if p.err != nil {
		p.err = errors.Wrap(p.err, n.Name)
		return nil
	}
	return n
}

func (p *binaryParser) Parse() (*Node, error) {
	if string(p.readBytes(uint64(len(binaryMagic)))) != binaryMagic {
		return nil, errors.New("unknown fbx format")
	}
	p.readBytes(2)
	p.version = int(p.readUint32())
	if p.err != nil {
		return nil, errors.Wrap(p.err, "header")
	}

	root := &Node{Name: "_FBX_ROOT"}
	for {
		start := p.r.position
		node := p.readNode()
		if node == nil {
			if p.err == io.EOF && p.r.position == start {
				// some writers omit the null record and footer
				p.err = nil
			} else if p.err == io.EOF {
				p.err = io.ErrUnexpectedEOF
			}
			break
		}
		root.Children = append(root.Children, node)
	}
	if p.err != nil {
		return nil, p.err
	}
	return root, nil
}
