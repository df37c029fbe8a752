package main

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// referenceFile is the YAML shape accepted by --file. A bare sequence of
// strings is accepted as well.
type referenceFile struct {
	References []string `yaml:"references"`
}

// readReferenceFile loads references from a text or YAML file. Text files
// hold one reference per line; blank lines and # comments are ignored.
func readReferenceFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reference file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return parseYAMLReferences(data)
	default:
		return parseTextReferences(data)
	}
}

func parseYAMLReferences(data []byte) ([]string, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse reference yaml: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	var refs []string
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&refs); err != nil {
			return nil, fmt.Errorf("decode reference list: %w", err)
		}
	case yaml.MappingNode:
		var file referenceFile
		if err := root.Decode(&file); err != nil {
			return nil, fmt.Errorf("decode reference file: %w", err)
		}
		refs = file.References
	default:
		return nil, fmt.Errorf("reference yaml must be a list or a mapping with a references key")
	}
	return compactReferences(refs), nil
}

func parseTextReferences(data []byte) ([]string, error) {
	var refs []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		refs = append(refs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan reference file: %w", err)
	}
	return refs, nil
}

func compactReferences(refs []string) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref = strings.TrimSpace(ref); ref != "" {
			out = append(out, ref)
		}
	}
	return out
}
