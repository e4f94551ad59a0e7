package api

import (
	"reflect"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/artpar/relay/internal/core/pipeline"
)

// =============================================================================
// OpenAPI Generation
// =============================================================================

// buildOpenAPI produces the spec served at /openapi.json by reflecting
// over the registered request types behind each route. The spec is
// rendered once at startup; routes cannot change afterwards.
func buildOpenAPI(version string, routes []Route, registry *pipeline.Registry) ([]byte, error) {
	spec := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       "Relay API",
			Version:     version,
			Description: "Order pipeline service",
		},
		Paths: &openapi3.Paths{},
		Components: &openapi3.Components{
			Schemas: make(openapi3.Schemas),
		},
	}
	addResultSchemas(spec)

	for _, rt := range routes {
		reg, ok := registry.Lookup(rt.Request)
		if !ok {
			continue
		}

		op := &openapi3.Operation{
			Summary:     rt.Summary,
			OperationID: rt.Request,
			Responses:   openapi3.NewResponses(),
		}
		op.Responses.Set("200", resultResponse("Request succeeded"))
		op.Responses.Set("400", resultResponse("Request validation failed"))

		schemaName := requestSchemaName(rt.Request)
		spec.Components.Schemas[schemaName] = schemaFor(reg.New())

		if rt.Bind == nil {
			op.RequestBody = &openapi3.RequestBodyRef{
				Value: &openapi3.RequestBody{
					Required: true,
					Content: openapi3.NewContentWithJSONSchemaRef(
						openapi3.NewSchemaRef("#/components/schemas/"+schemaName, nil),
					),
				},
			}
		} else {
			op.Parameters = paramsFor(rt.Path)
		}

		path := chiToOpenAPIPath(rt.Path)
		item := spec.Paths.Value(path)
		if item == nil {
			item = &openapi3.PathItem{}
			spec.Paths.Set(path, item)
		}
		item.SetOperation(rt.Method, op)
	}

	return spec.MarshalJSON()
}

// addResultSchemas registers the envelope every endpoint returns.
func addResultSchemas(spec *openapi3.T) {
	spec.Components.Schemas["Failure"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"field":   stringSchema(),
				"message": stringSchema(),
				"rule":    stringSchema(),
			},
		},
	}

	spec.Components.Schemas["Error"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"kind":    stringSchema(),
				"message": stringSchema(),
				"failures": {
					Value: &openapi3.Schema{
						Type:  &openapi3.Types{"array"},
						Items: openapi3.NewSchemaRef("#/components/schemas/Failure", nil),
					},
				},
				"correlation_id": stringSchema(),
			},
		},
	}

	spec.Components.Schemas["Result"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"value":          {Value: &openapi3.Schema{}},
				"error":          openapi3.NewSchemaRef("#/components/schemas/Error", nil),
				"correlation_id": stringSchema(),
			},
		},
	}
}

func resultResponse(description string) *openapi3.ResponseRef {
	return &openapi3.ResponseRef{
		Value: &openapi3.Response{
			Description: &description,
			Content: openapi3.NewContentWithJSONSchemaRef(
				openapi3.NewSchemaRef("#/components/schemas/Result", nil),
			),
		},
	}
}

// =============================================================================
// Schema Reflection
// =============================================================================

// schemaFor reflects a request type into an object schema using json
// tags for property names.
func schemaFor(model any) *openapi3.SchemaRef {
	t := reflect.TypeOf(model)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	schema := &openapi3.Schema{
		Type:       &openapi3.Types{"object"},
		Properties: make(openapi3.Schemas),
	}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}
		name := field.Name
		if jsonTag != "" {
			if first := strings.Split(jsonTag, ",")[0]; first != "" {
				name = first
			}
		}
		if prop := typeSchema(field.Type); prop != nil {
			schema.Properties[name] = prop
		}
	}
	return &openapi3.SchemaRef{Value: schema}
}

func typeSchema(t reflect.Type) *openapi3.SchemaRef {
	switch t.Kind() {
	case reflect.String:
		return stringSchema()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32:
		return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int32"}}
	case reflect.Int64:
		return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int64"}}
	case reflect.Bool:
		return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"boolean"}}}
	case reflect.Slice, reflect.Array:
		return &openapi3.SchemaRef{Value: &openapi3.Schema{
			Type:  &openapi3.Types{"array"},
			Items: typeSchema(t.Elem()),
		}}
	case reflect.Ptr:
		return typeSchema(t.Elem())
	default:
		return stringSchema()
	}
}

func stringSchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}}}
}

// =============================================================================
// Path Helpers
// =============================================================================

// chiToOpenAPIPath is an identity today since chi and OpenAPI share the
// {param} placeholder syntax; kept as the single conversion point.
func chiToOpenAPIPath(path string) string {
	return path
}

func paramsFor(path string) openapi3.Parameters {
	var params openapi3.Parameters
	for _, seg := range strings.Split(path, "/") {
		if !strings.HasPrefix(seg, "{") || !strings.HasSuffix(seg, "}") {
			continue
		}
		name := strings.Trim(seg, "{}")
		params = append(params, &openapi3.ParameterRef{
			Value: &openapi3.Parameter{
				Name:     name,
				In:       "path",
				Required: true,
				Schema:   stringSchema(),
			},
		})
	}
	return params
}

func requestSchemaName(request string) string {
	parts := strings.Split(request, ".")
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]) + p[1:])
	}
	return b.String()
}
