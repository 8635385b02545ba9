package pkgload

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/npillmayer/matpack/header"
	"github.com/npillmayer/matpack/shader"
)

// MaterialPackage is a loaded material package with its original bytes and a
// reader view on them.
type MaterialPackage struct {
	Name   string
	Binary []byte
	Reader *shader.Reader
}

// LoadMaterialPackage loads a material package from a file. Files ending in
// ".inc" or ".h" are taken to be byte listings as written by package header
// and are decoded first.
func LoadMaterialPackage(path string, backend shader.Backend) (*MaterialPackage, error) {
	bytez, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".inc", ".h":
		if bytez, err = header.Decode(bytez); err != nil {
			return nil, err
		}
	}
	p, err := ParseMaterialPackage(bytez, backend)
	if err != nil {
		return nil, err
	}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return p, nil
}

// ParseMaterialPackage loads a material package from memory.
func ParseMaterialPackage(pbytes []byte, backend shader.Backend) (p *MaterialPackage, err error) {
	p = &MaterialPackage{Binary: pbytes}
	p.Reader, err = shader.Parse(p.Binary, backend)
	if err != nil {
		return nil, err
	}
	p.Name, _ = p.Reader.Name()
	return p, nil
}
