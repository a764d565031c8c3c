// internal/schema/importer.go
//
// YAML catalog import.
//
// Context
//   Host applications describe their models in a YAML document so the
//   catalog can be seeded at deploy time (`adeptctl catalog import`):
//
//       models:
//         - name: res.partner
//           label: Contact
//           fields:
//             - { name: email, label: Email, type: char }
//             - { name: phone, label: Phone }
//
//   LoadFile parses and validates the document; Import upserts every model
//   and field in one transaction.  Import never deletes: rows absent from
//   the document stay untouched.
//
//------------------------------------------------------------------------------

package schema

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yanizio/adept-reqfields/internal/database"
)

// Document is the YAML root.
type Document struct {
	Models []ModelDef `yaml:"models"`
}

// ModelDef is one model with its fields.
type ModelDef struct {
	Name   string  `yaml:"name"`
	Label  string  `yaml:"label"`
	Fields []Field `yaml:"fields"`
}

// LoadFile reads and validates a catalog document.
func LoadFile(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(raw, path)
}

// Parse decodes raw YAML; src names the origin in error messages.
func Parse(raw []byte, src string) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse YAML %s: %w", src, err)
	}
	if err := validateDocument(&doc, src); err != nil {
		return nil, err
	}
	return &doc, nil
}

// validateDocument enforces names, labels, and per-model field uniqueness.
// Missing labels default to the name.
func validateDocument(doc *Document, src string) error {
	seenModels := make(map[string]struct{}, len(doc.Models))
	for mi := range doc.Models {
		m := &doc.Models[mi]
		if m.Name == "" {
			return fmt.Errorf("catalog %s: model #%d missing 'name'", src, mi+1)
		}
		if _, dup := seenModels[m.Name]; dup {
			return fmt.Errorf("catalog %s: duplicate model '%s'", src, m.Name)
		}
		seenModels[m.Name] = struct{}{}
		if m.Label == "" {
			m.Label = m.Name
		}

		seenFields := make(map[string]struct{}, len(m.Fields))
		for fi := range m.Fields {
			f := &m.Fields[fi]
			if f.Name == "" {
				return fmt.Errorf("catalog %s: model '%s' field #%d missing 'name'", src, m.Name, fi+1)
			}
			if _, dup := seenFields[f.Name]; dup {
				return fmt.Errorf("catalog %s: model '%s' duplicate field '%s'", src, m.Name, f.Name)
			}
			seenFields[f.Name] = struct{}{}
			if f.Label == "" {
				f.Label = f.Name
			}
		}
	}
	return nil
}

// ImportStats summarises an Import run.
type ImportStats struct {
	Models int `json:"models"`
	Fields int `json:"fields"`
}

// Import upserts doc into the catalog atomically.
func (c *Catalog) Import(ctx context.Context, doc *Document) (ImportStats, error) {
	var st ImportStats
	err := database.WithTx(ctx, c.db, func(ctx context.Context) error {
		for _, m := range doc.Models {
			id, err := c.UpsertModel(ctx, Model{Name: m.Name, Label: m.Label})
			if err != nil {
				return err
			}
			st.Models++
			for _, f := range m.Fields {
				f.ModelID = id
				if _, err := c.UpsertField(ctx, f); err != nil {
					return err
				}
				st.Fields++
			}
		}
		return nil
	})
	if err != nil {
		return ImportStats{}, err
	}
	return st, nil
}
