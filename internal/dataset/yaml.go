package dataset

import "gopkg.in/yaml.v3"

type yamlDecoder struct{}

func (yamlDecoder) CanDecode(filename string) bool { return hasExt(filename, ".yaml", ".yml") }

func (yamlDecoder) Decode(_ string, content []byte, _ Options) (*Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(content, &ds); err != nil {
		return nil, err
	}
	return &ds, nil
}
