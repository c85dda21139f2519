package criteria

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Criteria []CreateCommand `yaml:"criteria"`
}

// LoadCatalog reads criteria definitions from a YAML file. Every entry is
// normalized, and names must be unique within the file.
func LoadCatalog(path string) ([]CreateCommand, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read criteria catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes catalog YAML.
func ParseCatalog(data []byte) ([]CreateCommand, error) {
	var file catalogFile

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: parse criteria catalog: %v", ErrInvalid, err)
	}

	seen := make(map[string]struct{}, len(file.Criteria))
	for i := range file.Criteria {
		cmd := &file.Criteria[i]
		if err := cmd.Normalize(); err != nil {
			return nil, fmt.Errorf("catalog entry %d: %w", i+1, err)
		}
		if _, dup := seen[cmd.Name]; dup {
			return nil, fmt.Errorf("catalog entry %d: %w", i+1, ErrDuplicate)
		}
		seen[cmd.Name] = struct{}{}
	}

	return file.Criteria, nil
}
