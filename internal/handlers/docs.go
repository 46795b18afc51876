package handlers

import (
	"encoding/json"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"alfredoptarigan/kryptohire/internal/apperrors"
)

// OpenAPIDocument is an OpenAPI 3.0 object ready to be marshalled.
type OpenAPIDocument map[string]interface{}

var pathParam = regexp.MustCompile(`:([A-Za-z_]+)`)

// OpenAPIPath converts a Fiber path ("/resumes/:id") to OpenAPI form ("/resumes/{id}").
func OpenAPIPath(path string) string {
	return pathParam.ReplaceAllString(path, "{$1}")
}

func NewOpenAPIDocument(baseURL string, routes []Route) OpenAPIDocument {
	gen := &schemaGen{components: map[string]interface{}{}}
	gen.components["Error"] = gen.inline(reflect.TypeOf(apperrors.Response{}))
	gen.components["Pagination"] = gen.inline(reflect.TypeOf(paginationDoc{}))

	paths := map[string]map[string]interface{}{}
	for _, r := range routes {
		p := OpenAPIPath(r.Path)
		if paths[p] == nil {
			paths[p] = map[string]interface{}{}
		}
		paths[p][strings.ToLower(r.Method)] = gen.operation(r)
	}

	return OpenAPIDocument{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "Kryptohire API",
			"version":     "1.0.0",
			"description": "AI-powered resume builder and optimization platform API",
		},
		"servers": []map[string]interface{}{
			{"url": strings.TrimRight(baseURL, "/") + APIPrefix, "description": "API Server"},
		},
		"components": map[string]interface{}{
			"securitySchemes": map[string]interface{}{
				"BearerAuth": map[string]interface{}{
					"type":         "http",
					"scheme":       "bearer",
					"bearerFormat": "JWT",
					"description":  "JWT access token obtained from /auth/login",
				},
			},
			"schemas": gen.components,
		},
		"paths": paths,
	}
}

// Paths returns "METHOD /openapi/path" for every operation in the document.
func (d OpenAPIDocument) Paths() []string {
	paths, _ := d["paths"].(map[string]map[string]interface{})
	var out []string
	for p, ops := range paths {
		for method := range ops {
			out = append(out, strings.ToUpper(method)+" "+p)
		}
	}
	return out
}

type paginationDoc struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

var errorResponses = map[string]string{
	"400": "Validation error",
	"401": "Authentication required",
	"404": "Resource not found",
	"429": "Rate limit exceeded",
	"500": "Internal error",
}

func (g *schemaGen) operation(r Route) map[string]interface{} {
	op := map[string]interface{}{
		"summary": r.Summary,
		"tags":    []string{r.Tag},
	}

	if r.Auth {
		op["security"] = []map[string][]string{{"BearerAuth": {}}}
	}

	var params []map[string]interface{}
	for _, m := range pathParam.FindAllStringSubmatch(r.Path, -1) {
		params = append(params, map[string]interface{}{
			"name":     m[1],
			"in":       "path",
			"required": true,
			"schema":   map[string]interface{}{"type": "string", "format": "uuid"},
		})
	}
	if r.Paginated {
		for _, q := range []string{"page", "limit"} {
			params = append(params, map[string]interface{}{
				"name":   q,
				"in":     "query",
				"schema": map[string]interface{}{"type": "integer", "minimum": 1},
			})
		}
	}
	if len(params) > 0 {
		op["parameters"] = params
	}

	switch {
	case r.Multipart:
		op["requestBody"] = map[string]interface{}{
			"required": true,
			"content": map[string]interface{}{
				"multipart/form-data": map[string]interface{}{
					"schema": map[string]interface{}{
						"type":     "object",
						"required": []string{"file"},
						"properties": map[string]interface{}{
							"file":   map[string]interface{}{"type": "string", "format": "binary"},
							"name":   map[string]interface{}{"type": "string"},
							"config": map[string]interface{}{"type": "string", "description": "JSON-encoded AI config"},
						},
					},
				},
			},
		}
	case r.Request != nil:
		op["requestBody"] = map[string]interface{}{
			"required": true,
			"content": map[string]interface{}{
				fiber.MIMEApplicationJSON: map[string]interface{}{"schema": g.schema(reflect.TypeOf(r.Request))},
			},
		}
	}

	status := r.Status
	if status == 0 {
		status = fiber.StatusOK
	}

	responses := map[string]interface{}{}
	success := map[string]interface{}{"description": "Success"}
	switch {
	case r.Path == "/resumes/:id/pdf":
		success["content"] = map[string]interface{}{
			"application/pdf": map[string]interface{}{"schema": map[string]interface{}{"type": "string", "format": "binary"}},
		}
	case r.Response != nil:
		props := map[string]interface{}{"data": g.schema(reflect.TypeOf(r.Response))}
		if r.Paginated {
			props["pagination"] = ref("Pagination")
		}
		success["content"] = map[string]interface{}{
			fiber.MIMEApplicationJSON: map[string]interface{}{
				"schema": map[string]interface{}{"type": "object", "properties": props},
			},
		}
	}
	responses[strconv.Itoa(status)] = success

	for code, desc := range errorResponses {
		if code == "401" && !r.Auth {
			continue
		}
		if code == "429" && !r.AI && !r.Throttled {
			continue
		}
		responses[code] = map[string]interface{}{
			"description": desc,
			"content": map[string]interface{}{
				fiber.MIMEApplicationJSON: map[string]interface{}{"schema": ref("Error")},
			},
		}
	}
	op["responses"] = responses
	return op
}

func ref(name string) map[string]interface{} {
	return map[string]interface{}{"$ref": "#/components/schemas/" + name}
}

var (
	uuidType    = reflect.TypeOf(uuid.UUID{})
	timeType    = reflect.TypeOf(time.Time{})
	jsonType    = reflect.TypeOf(datatypes.JSON{})
	rawJSONType = reflect.TypeOf(json.RawMessage{})
)

// schemaGen derives JSON Schemas from Go types using their json and validate tags.
// Named structs outside this package become components and are referenced.
type schemaGen struct {
	components map[string]interface{}
}

func (g *schemaGen) schema(t reflect.Type) map[string]interface{} {
	switch t {
	case uuidType:
		return map[string]interface{}{"type": "string", "format": "uuid"}
	case timeType:
		return map[string]interface{}{"type": "string", "format": "date-time"}
	case jsonType, rawJSONType:
		return map[string]interface{}{"type": "object"}
	}

	switch t.Kind() {
	case reflect.Ptr:
		s := g.schema(t.Elem())
		if _, isRef := s["$ref"]; !isRef {
			s["nullable"] = true
		}
		return s
	case reflect.String:
		return map[string]interface{}{"type": "string"}
	case reflect.Bool:
		return map[string]interface{}{"type": "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return map[string]interface{}{"type": "integer"}
	case reflect.Float32, reflect.Float64:
		return map[string]interface{}{"type": "number"}
	case reflect.Slice, reflect.Array:
		return map[string]interface{}{"type": "array", "items": g.schema(t.Elem())}
	case reflect.Map:
		return map[string]interface{}{"type": "object", "additionalProperties": g.schema(t.Elem())}
	case reflect.Struct:
		return g.structSchema(t)
	default:
		return map[string]interface{}{}
	}
}

func (g *schemaGen) structSchema(t reflect.Type) map[string]interface{} {
	name := t.Name()
	component := name != "" && t.PkgPath() != reflect.TypeOf(Route{}).PkgPath()
	if component {
		if _, seen := g.components[name]; seen {
			return ref(name)
		}
		// placeholder so recursive types terminate
		g.components[name] = map[string]interface{}{}
	}

	s := g.inline(t)
	if !component {
		return s
	}
	g.components[name] = s
	return ref(name)
}

// inline builds an object schema for t without registering t itself as a component.
func (g *schemaGen) inline(t reflect.Type) map[string]interface{} {
	props := map[string]interface{}{}
	var required []string
	g.collectFields(t, props, &required)
	s := map[string]interface{}{"type": "object", "properties": props}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func (g *schemaGen) collectFields(t reflect.Type, props map[string]interface{}, required *[]string) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		jsonName := strings.SplitN(tag, ",", 2)[0]

		if f.Anonymous && jsonName == "" {
			ft := f.Type
			if ft.Kind() == reflect.Ptr {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				g.collectFields(ft, props, required)
				continue
			}
		}
		if !f.IsExported() || jsonName == "-" {
			continue
		}
		if jsonName == "" {
			jsonName = f.Name
		}

		props[jsonName] = g.schema(f.Type)
		if strings.Contains(f.Tag.Get("validate"), "required") {
			*required = append(*required, jsonName)
		}
	}
}
