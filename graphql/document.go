package graphql

import (
	"fmt"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"
)

// Schema is a parsed GraphQL schema against which operation documents can be
// checked before they are sent.
type Schema struct {
	schema *ast.Schema
}

// LoadSchema parses schema SDL.  name is used in error positions.
func LoadSchema(name, sdl string) (*Schema, error) {
	parsed, err := gqlparser.LoadSchema(&ast.Source{Name: name, Input: sdl})
	if err != nil {
		return nil, err
	}
	return &Schema{schema: parsed}, nil
}

// ValidateQuery parses query and checks it against the schema, returning
// the names of the operations it defines.
func (s *Schema) ValidateQuery(name, query string) ([]string, error) {
	queryDoc, err := parser.ParseQuery(&ast.Source{Name: name, Input: query})
	if err != nil {
		return nil, err
	}

	// Cf. gqlparser.LoadQuery
	graphqlErrors := validator.Validate(s.schema, queryDoc)
	if graphqlErrors != nil {
		return nil, fmt.Errorf("query does not match schema: %w", graphqlErrors)
	}

	names := make([]string, len(queryDoc.Operations))
	for i, op := range queryDoc.Operations {
		names[i] = op.Name
	}
	return names, nil
}
