package contract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	yaml "gopkg.in/yaml.v3"
)

// Usage is a headless component placed on a page under a usage key.
type Usage struct {
	Key          string    `yaml:"key"`
	Plugin       string    `yaml:"plugin"`
	Component    string    `yaml:"component"`
	ContractFile string    `yaml:"contract"`
	Contract     *Contract `yaml:"-"`
}

// Page is a page configuration: route, page contract and headless
// component usages.
type Page struct {
	Route        string    `yaml:"route"`
	Name         string    `yaml:"name"`
	ContractFile string    `yaml:"contract"`
	Usages       []*Usage  `yaml:"components"`
	Contract     *Contract `yaml:"-"`
}

// Usage returns headless usage by key.
func (p *Page) Usage(key string) *Usage {
	if p == nil {
		return nil
	}
	for _, u := range p.Usages {
		if u.Key == key {
			return u
		}
	}
	return nil
}

// UsagesOf returns usages provided by the plugin, all of them when component
// is empty.
func (p *Page) UsagesOf(plugin, component string) []*Usage {
	if p == nil {
		return nil
	}
	var out []*Usage
	for _, u := range p.Usages {
		if u.Plugin == plugin && (component == "" || u.Component == component) {
			out = append(out, u)
		}
	}
	return out
}

// HasPlugin reports whether any usage comes from the plugin.
func (p *Page) HasPlugin(plugin string) bool {
	return len(p.UsagesOf(plugin, "")) > 0
}

// Decode reads contract from YAML, only known fields are accepted.
func Decode(r io.Reader) (*Contract, error) {
	var c Contract
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return &c, nil
		}
		return nil, fmt.Errorf("failed to decode contract: %w", err)
	}
	return &c, nil
}

// LoadContract reads contract file.
func LoadContract(path string) (*Contract, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read contract: %w", err)
	}
	c, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("contract %s: %w", path, err)
	}
	return c, nil
}

// DecodePage reads page configuration from YAML without loading referenced
// contracts.
func DecodePage(r io.Reader) (*Page, error) {
	var p Page
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode page configuration: %w", err)
	}
	seen := make(map[string]bool, len(p.Usages))
	for _, u := range p.Usages {
		if u.Key == "" {
			return nil, fmt.Errorf("component usage of %s/%s has no key", u.Plugin, u.Component)
		}
		if seen[u.Key] {
			return nil, fmt.Errorf("duplicate component usage key %q", u.Key)
		}
		seen[u.Key] = true
	}
	return &p, nil
}

// LoadPage reads page configuration and every contract it references.
// Relative contract paths are resolved against configuration directory.
func LoadPage(path string) (*Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read page configuration: %w", err)
	}
	p, err := DecodePage(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("page configuration %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	resolve := func(f string) string {
		if filepath.IsAbs(f) {
			return f
		}
		return filepath.Join(dir, f)
	}

	if p.ContractFile != "" {
		if p.Contract, err = LoadContract(resolve(p.ContractFile)); err != nil {
			return nil, err
		}
	} else {
		p.Contract = &Contract{}
	}
	for _, u := range p.Usages {
		if u.ContractFile == "" {
			continue
		}
		if u.Contract, err = LoadContract(resolve(u.ContractFile)); err != nil {
			return nil, fmt.Errorf("component usage %q: %w", u.Key, err)
		}
	}
	return p, nil
}
