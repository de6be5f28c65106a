// Package ingest loads the static tech-tree configuration.
package ingest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/TFMV/techgraph/models"
	"github.com/pkg/errors"
)

// DataProcessor defines the interface that all tree loaders must implement
type DataProcessor interface {
	// ProcessData takes raw data bytes and returns the node table
	ProcessData(data []byte) (*models.TechTree, error)

	// GetName returns the name of the processor
	GetName() string
}

// nodeDef is the on-disk shape of one node, shared by all formats
type nodeDef struct {
	ID            string        `json:"id" toml:"id"`
	Name          string        `json:"name" toml:"name"`
	Description   string        `json:"description" toml:"description"`
	Cost          float64       `json:"cost" toml:"cost"`
	Effect        models.Effect `json:"effect" toml:"effect"`
	Prerequisites []string      `json:"prerequisites" toml:"prerequisites"`
}

type treeDef struct {
	Name  string    `json:"name" toml:"name"`
	Nodes []nodeDef `json:"nodes" toml:"node"`
}

// build turns decoded specs into a tree. Duplicate identifiers are fatal;
// prerequisites naming unknown nodes are kept and resolved at runtime.
func build(def treeDef, fallbackName string) (*models.TechTree, error) {
	name := def.Name
	if name == "" {
		name = fallbackName
	}
	tree := models.NewTechTree(name)

	for i, nd := range def.Nodes {
		node := models.NewNode(strings.TrimSpace(nd.ID), nd.Cost, nd.Effect, nd.Prerequisites...)
		if nd.Name != "" {
			node.Name = nd.Name
		}
		node.Description = nd.Description

		if err := tree.AddNode(node); err != nil {
			return nil, errors.Wrapf(err, "node #%d", i+1)
		}
	}
	return tree, nil
}

// JSONProcessor handles JSON node tables
type JSONProcessor struct{}

// NewJSONProcessor creates a new JSON processor
func NewJSONProcessor() *JSONProcessor {
	return &JSONProcessor{}
}

// GetName returns the name of the processor
func (p *JSONProcessor) GetName() string {
	return "JSON Processor"
}

// ProcessData processes JSON data
func (p *JSONProcessor) ProcessData(data []byte) (*models.TechTree, error) {
	var def treeDef
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, errors.Wrap(err, "error parsing JSON")
	}
	return build(def, "JSON Import")
}

// TOMLProcessor handles TOML node tables with one [[node]] table per node
type TOMLProcessor struct{}

// NewTOMLProcessor creates a new TOML processor
func NewTOMLProcessor() *TOMLProcessor {
	return &TOMLProcessor{}
}

// GetName returns the name of the processor
func (p *TOMLProcessor) GetName() string {
	return "TOML Processor"
}

// ProcessData processes TOML data
func (p *TOMLProcessor) ProcessData(data []byte) (*models.TechTree, error) {
	var def treeDef
	if _, err := toml.Decode(string(data), &def); err != nil {
		return nil, errors.Wrap(err, "error parsing TOML")
	}
	return build(def, "TOML Import")
}

// GetProcessor returns a processor for the given format or file extension
func GetProcessor(format string) (DataProcessor, error) {
	switch strings.TrimPrefix(strings.ToLower(format), ".") {
	case "json":
		return NewJSONProcessor(), nil
	case "toml":
		return NewTOMLProcessor(), nil
	default:
		return nil, errors.Errorf("unsupported tree format: %s", format)
	}
}

// LoadFile reads a node table, picking the processor by file extension
func LoadFile(path string) (*models.TechTree, error) {
	processor, err := GetProcessor(filepath.Ext(path))
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read tree file")
	}

	tree, err := processor.ProcessData(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", path)
	}
	return tree, nil
}
