package converter

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// LoadConfig reads converter options from a YAML file.
//
//	exportFbxFileHeaderInfo: true
//	exportRawMaterials: true
//	animationBakeRate: 24
//	encoding: shift_jis
func LoadConfig(confpath string) (*FBXToGLTFOption, error) {
	data, err := ioutil.ReadFile(confpath)
	if err != nil {
		return nil, err
	}
	return ParseConfig(data)
}

func ParseConfig(data []byte) (*FBXToGLTFOption, error) {
	var conf FBXToGLTFOption
	if err := yaml.UnmarshalStrict(data, &conf); err != nil {
		return nil, errors.Wrap(err, "config")
	}
	if conf.AnimationBakeRate < 0 {
		return nil, errors.Errorf("config: animationBakeRate must be >= 0, got %v", conf.AnimationBakeRate)
	}
	return &conf, nil
}
