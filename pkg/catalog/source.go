package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Data is the raw catalog content a Source provides.
type Data struct {
	Version string     `yaml:"version"`
	Plans   []PlanTier `yaml:"plans"`
	Addons  []AddonSKU `yaml:"addons"`
}

// Source loads catalog data.
type Source interface {
	Load(ctx context.Context) (Data, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (Data, error)

func (f SourceFunc) Load(ctx context.Context) (Data, error) { return f(ctx) }

type inMemSource struct {
	data Data
}

// NewInMemSource returns a Source serving a deep copy of data.
func NewInMemSource(data Data) Source {
	return &inMemSource{data: cloneData(data)}
}

func (s *inMemSource) Load(context.Context) (Data, error) {
	return cloneData(s.data), nil
}

type fileSource struct {
	path string
}

// NewFileSource reads the catalog from a YAML file on every Load.
func NewFileSource(path string) Source {
	return &fileSource{path: path}
}

func (s *fileSource) Load(context.Context) (Data, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return Data{}, fmt.Errorf("read catalog %s: %w", s.path, err)
	}
	return ParseYAML(raw)
}

// ParseYAML decodes catalog data from YAML. Money currencies default to INR.
func ParseYAML(raw []byte) (Data, error) {
	var d Data
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return Data{}, errors.Join(ErrInvalidCatalog, err)
	}
	for i := range d.Plans {
		if d.Plans[i].Price.Currency == "" {
			d.Plans[i].Price.Currency = Currency
		}
	}
	for i := range d.Addons {
		if d.Addons[i].UnitPrice.Currency == "" {
			d.Addons[i].UnitPrice.Currency = Currency
		}
	}
	return d, nil
}

func cloneData(d Data) Data {
	out := Data{Version: d.Version}
	out.Plans = make([]PlanTier, len(d.Plans))
	for i, p := range d.Plans {
		out.Plans[i] = p.clone()
	}
	out.Addons = append([]AddonSKU(nil), d.Addons...)
	return out
}
