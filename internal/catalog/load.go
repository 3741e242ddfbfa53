package catalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/neetkit/cardforge/internal/contenthash"
	apperrors "github.com/neetkit/cardforge/internal/platform/errors"
)

type fileCatalog struct {
	Templates []fileTemplate `yaml:"templates"`
}

type fileTemplate struct {
	Name        string    `yaml:"name"`
	ObjectType  string    `yaml:"object_type"`
	Description string    `yaml:"description"`
	Fields      yaml.Node `yaml:"fields"`
}

// LoadFile reads a YAML (or JSON) template file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read templates %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a template document. Field order follows the document.
func Parse(data []byte) (*Catalog, error) {
	var doc fileCatalog
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, invalidTemplate("", "decode document", err)
	}

	seen := make(map[string]bool, len(doc.Templates))
	templates := make([]Template, 0, len(doc.Templates))
	for i, raw := range doc.Templates {
		name := strings.TrimSpace(raw.Name)
		if name == "" {
			return nil, invalidTemplate(fmt.Sprintf("#%d", i+1), "name is required", nil)
		}
		if seen[name] {
			return nil, invalidTemplate(name, "duplicate template name", nil)
		}
		seen[name] = true
		objectType := strings.TrimSpace(raw.ObjectType)
		if objectType == "" {
			return nil, invalidTemplate(name, "object_type is required", nil)
		}
		fields, err := parseFields(raw.Fields)
		if err != nil {
			return nil, invalidTemplate(name, err.Error(), nil)
		}
		templates = append(templates, Template{
			Name:        name,
			ObjectType:  objectType,
			Description: raw.Description,
			Fields:      fields,
		})
	}
	return New(templates...), nil
}

func parseFields(node yaml.Node) ([]Field, error) {
	if node.Kind == 0 || node.Tag == "!!null" {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("fields must be a mapping")
	}
	fields := make([]Field, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		var raw any
		if err := node.Content[i+1].Decode(&raw); err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		rule, err := ParseRule(name, raw)
		if err != nil {
			return nil, err
		}
		if rule.Kind == KindLiteral {
			if _, err := contenthash.Canonicalize(rule.Value); err != nil {
				return nil, fmt.Errorf("field %s: literal cannot be hashed: %w", name, err)
			}
		}
		fields = append(fields, Field{Name: name, Rule: rule})
	}
	return fields, nil
}

func invalidTemplate(name, reason string, cause error) error {
	metadata := map[string]string{"Template": name, "Reason": reason}
	message := "invalid template " + name + ": " + reason
	if cause != nil {
		return apperrors.WrapWithMetadata(apperrors.CodeInvalidTemplate, message, metadata, cause)
	}
	return apperrors.WithMetadata(apperrors.CodeInvalidTemplate, message, metadata)
}
