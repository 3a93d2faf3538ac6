package extras

import "encoding/json"

// ImageExtra records where the image of an FBX file texture came from.
type ImageExtra struct {
	FileName         string
	RelativeFileName string

	Unknown map[string]json.RawMessage
}

var imageExtraFields = []string{"fileName", "relativeFileName"}

func ParseImageExtra(data []byte) (*ImageExtra, error) {
	o, err := decodeObject(data, "")
	if err != nil {
		return nil, err
	}
	e := &ImageExtra{}
	if e.FileName, err = o.requireString("fileName"); err != nil {
		return nil, err
	}
	if e.RelativeFileName, err = o.requireString("relativeFileName"); err != nil {
		return nil, err
	}
	e.Unknown = o.unknown(imageExtraFields...)
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *ImageExtra) Validate() error {
	return validateUnknown(e.Unknown, imageExtraFields)
}

func (e *ImageExtra) MarshalJSON() ([]byte, error) {
	fields := copyUnknown(e.Unknown)
	var err error
	if fields["fileName"], err = encode(e.FileName); err != nil {
		return nil, err
	}
	if fields["relativeFileName"], err = encode(e.RelativeFileName); err != nil {
		return nil, err
	}
	return encodeObject(fields)
}

func (e *ImageExtra) UnmarshalJSON(data []byte) error {
	v, err := ParseImageExtra(data)
	if err != nil {
		return err
	}
	*e = *v
	return nil
}
