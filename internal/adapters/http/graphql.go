package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"

	"github.com/bsvalues/TerraFusionMono-sub005/internal/core/domain"
)

// jsonScalar passes arbitrary JSON values (GeoJSON, metadata) through GraphQL.
var jsonScalar = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "JSON",
	Description: "Arbitrary JSON value",
	Serialize:   func(v interface{}) interface{} { return v },
	ParseValue:  func(v interface{}) interface{} { return v },
	ParseLiteral: func(v ast.Value) interface{} {
		return literalValue(v)
	},
})

func literalValue(v ast.Value) interface{} {
	switch v := v.(type) {
	case *ast.StringValue:
		return v.Value
	case *ast.BooleanValue:
		return v.Value
	case *ast.IntValue:
		n, _ := strconv.ParseInt(v.Value, 10, 64)
		return float64(n)
	case *ast.FloatValue:
		f, _ := strconv.ParseFloat(v.Value, 64)
		return f
	case *ast.ListValue:
		out := make([]interface{}, 0, len(v.Values))
		for _, item := range v.Values {
			out = append(out, literalValue(item))
		}
		return out
	case *ast.ObjectValue:
		out := make(map[string]interface{}, len(v.Fields))
		for _, f := range v.Fields {
			out[f.Name.Value] = literalValue(f.Value)
		}
		return out
	}
	return nil
}

// toMap flattens a domain value into the plain map the default resolver reads.
func toMap(v interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	err = json.Unmarshal(data, &m)
	return m, err
}

// remarshal decodes a GraphQL input value into dst through JSON.
func remarshal(v interface{}, dst interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	parseResultType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ParseResult",
		Fields: graphql.Fields{
			"descriptionType": &graphql.Field{Type: graphql.String},
			"confidence":      &graphql.Field{Type: graphql.String},
			"rawText":         &graphql.Field{Type: graphql.String},
			"errorMessage":    &graphql.Field{Type: graphql.String},
			"referencePoint":  &graphql.Field{Type: jsonScalar},
			"segments":        &graphql.Field{Type: jsonScalar},
			"skippedClauses":  &graphql.Field{Type: jsonScalar},
			"polygonFeature":  &graphql.Field{Type: jsonScalar},
		},
	})

	operationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Operation",
		Fields: graphql.Fields{
			"name":        &graphql.Field{Type: graphql.String},
			"title":       &graphql.Field{Type: graphql.String},
			"minFeatures": &graphql.Field{Type: graphql.Int},
		},
	})

	analysisResultType := graphql.NewObject(graphql.ObjectConfig{
		Name: "AnalysisResult",
		Fields: graphql.Fields{
			"operation": &graphql.Field{Type: graphql.String},
			"result":    &graphql.Field{Type: jsonScalar},
			"metadata":  &graphql.Field{Type: jsonScalar},
			"error":     &graphql.Field{Type: graphql.String},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"classify": &graphql.Field{
				Type:        graphql.String,
				Description: "Classify a legal description",
				Args: graphql.FieldConfigArgument{
					"text": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					text := p.Args["text"].(string)
					return string(deps.Legal.Classify(p.Context, text)), nil
				},
			},
			"parseLegalDescription": &graphql.Field{
				Type:        parseResultType,
				Description: "Parse a legal description into segments and a parcel polygon",
				Args: graphql.FieldConfigArgument{
					"text":           &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"referencePoint": &graphql.ArgumentConfig{Type: graphql.NewList(graphql.NewNonNull(graphql.Float))},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					text := p.Args["text"].(string)
					if len(text) > maxDescriptionLength {
						return nil, errors.New("text too long")
					}
					var ref *domain.Coordinate
					if raw, ok := p.Args["referencePoint"]; ok && raw != nil {
						ref = &domain.Coordinate{}
						if err := remarshal(raw, ref); err != nil {
							return nil, fmt.Errorf("referencePoint: %w", err)
						}
					}
					return toMap(deps.Legal.Parse(p.Context, RequestIDFromCtx(p.Context), text, ref))
				},
			},
			"operations": &graphql.Field{
				Type:        graphql.NewList(operationType),
				Description: "List the geometric operation catalog",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var out []map[string]interface{}
					for _, info := range deps.Analysis.Operations() {
						out = append(out, map[string]interface{}{
							"name":        string(info.Name),
							"title":       info.Title,
							"minFeatures": info.MinFeatures,
						})
					}
					return out, nil
				},
			},
			"analyze": &graphql.Field{
				Type:        analysisResultType,
				Description: "Run a geometric operation over GeoJSON features",
				Args: graphql.FieldConfigArgument{
					"operation": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"features":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(jsonScalar)},
					"params":    &graphql.ArgumentConfig{Type: jsonScalar},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					op := domain.Operation(p.Args["operation"].(string))

					raw, err := json.Marshal(p.Args["features"])
					if err != nil {
						return nil, err
					}
					features, err := domain.DecodeFeatures(raw)
					if err != nil {
						return nil, err
					}
					var params domain.OperationParams
					if v, ok := p.Args["params"]; ok && v != nil {
						if err := remarshal(v, &params); err != nil {
							return nil, fmt.Errorf("params: %w", err)
						}
					}
					if err := deps.Analysis.Check(op, len(features)); err != nil {
						return nil, err
					}
					return toMap(deps.Analysis.Run(p.Context, RequestIDFromCtx(p.Context), op, features, params))
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
