package source

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/buyside-cli/internal/model"
)

// FileSource serves buyers from a local YAML fixture, for offline runs and
// tests.
type FileSource struct {
	buyers []model.BuyerRecord
}

// NewFile loads a buyer fixture file. The file holds a top-level `buyers`
// list.
func NewFile(path string) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "source: read fixture %s", path)
	}

	var doc struct {
		Buyers []model.BuyerRecord `yaml:"buyers"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrapf(err, "source: parse fixture %s", path)
	}

	return &FileSource{buyers: doc.Buyers}, nil
}

// NewStatic wraps an in-memory buyer list as a Source.
func NewStatic(buyers []model.BuyerRecord) *FileSource {
	return &FileSource{buyers: buyers}
}

func (f *FileSource) ListBuyers(_ context.Context, kind model.BuyerKind) ([]model.BuyerRecord, error) {
	var out []model.BuyerRecord
	for _, b := range f.buyers {
		if b.Kind == kind {
			out = append(out, b)
		}
	}
	return out, nil
}
