package dataset

import (
	"bytes"

	json "github.com/goccy/go-json"
)

type jsonDecoder struct{}

func (jsonDecoder) CanDecode(filename string) bool { return hasExt(filename, ".json") }

func (jsonDecoder) Decode(_ string, content []byte, _ Options) (*Dataset, error) {
	var ds Dataset
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ds); err != nil {
		return nil, err
	}
	return &ds, nil
}
