package language

import (
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"
)

// ParseQuery parses an executable document. Only syntax is checked here; the
// semantic rules run later against the constructed document.
func ParseQuery(source string) (*QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func ParseSchema(name, source string) (*SchemaDocument, error) {
	doc, err := parser.ParseSchema(&ast.Source{Name: name, Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadSchema parses and validates SDL, merging it with the GraphQL prelude.
func LoadSchema(name, source string) (*Schema, error) {
	s, err := validator.LoadSchema(validator.Prelude, &ast.Source{Name: name, Input: source})
	if err != nil {
		return nil, err
	}
	return s, nil
}
