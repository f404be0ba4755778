package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// catalogFile is the on-disk YAML shape of a catalog overlay
type catalogFile struct {
	NodeTypes []NodeType `yaml:"nodeTypes"`
}

// LoadFile reads a YAML catalog overlay and merges it over the builtin
// table. Overlay entries replace builtin entries with the same name,
// letting deployments tune defaults or add experimental node types
// without a rebuild.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return loadBytes(data)
}

func loadBytes(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	merged := builtinTypes()
	index := make(map[string]int, len(merged))
	for i, t := range merged {
		index[t.Name] = i
	}

	for _, t := range file.NodeTypes {
		if i, ok := index[t.Name]; ok {
			merged[i] = t
			continue
		}
		index[t.Name] = len(merged)
		merged = append(merged, t)
	}

	return New(merged)
}
