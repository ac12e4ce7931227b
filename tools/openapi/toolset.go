// Package openapi turns an OpenAPI 3.0 document into a callable
// toolset: one tool per operation, executed as real HTTP requests
// against the document's server URL.
package openapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/BaSui01/agentbridge/llm"
	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"
)

// Config configures a Toolset built from a spec document.
type Config struct {
	// SpecJSON is the literal OpenAPI 3.0 JSON document.
	SpecJSON string

	// BaseURL overrides the document's first server URL.
	BaseURL string

	// IncludeTags/ExcludeTags filter operations by tag.
	IncludeTags []string
	ExcludeTags []string

	// Timeout bounds each HTTP call. Default 30s.
	Timeout time.Duration
}

// operation binds a generated tool name to its document operation.
type operation struct {
	method string
	path   string
	op     *openapi3.Operation
}

// Toolset implements tools.Toolset over one OpenAPI document.
type Toolset struct {
	title   string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
	schemas []llm.ToolSchema
	ops     map[string]operation
}

// NewToolset parses, resolves and validates the document, then
// generates one tool per operation.
func NewToolset(cfg Config, logger *zap.Logger) (*Toolset, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(cfg.SpecJSON) == "" {
		return nil, fmt.Errorf("openapi: spec document is empty")
	}

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData([]byte(cfg.SpecJSON))
	if err != nil {
		return nil, fmt.Errorf("openapi: failed to parse spec: %w", err)
	}
	// Full-document validation rejects sibling templated paths such as
	// /users/{id} next to /users/{delay}; validate components only so
	// schema refs are still checked.
	if doc.Components != nil {
		if err := doc.Components.Validate(loader.Context); err != nil {
			return nil, fmt.Errorf("openapi: invalid components: %w", err)
		}
	}

	baseURL := cfg.BaseURL
	if baseURL == "" && len(doc.Servers) > 0 {
		baseURL = doc.Servers[0].URL
	}
	if baseURL == "" {
		return nil, fmt.Errorf("openapi: no server URL in spec and no BaseURL override")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	t := &Toolset{
		title:   doc.Info.Title,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With(zap.String("component", "openapi_toolset")),
		ops:     make(map[string]operation),
	}

	// Deterministic tool order regardless of map iteration.
	paths := make([]string, 0, len(doc.Paths.Map()))
	for path := range doc.Paths.Map() {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		item := doc.Paths.Map()[path]
		methods := make([]string, 0, len(item.Operations()))
		for method := range item.Operations() {
			methods = append(methods, method)
		}
		sort.Strings(methods)

		for _, method := range methods {
			op := item.Operations()[method]
			if len(cfg.IncludeTags) > 0 && !hasAnyTag(op.Tags, cfg.IncludeTags) {
				continue
			}
			if len(cfg.ExcludeTags) > 0 && hasAnyTag(op.Tags, cfg.ExcludeTags) {
				continue
			}

			name := ToolName(method, path, op.OperationID)
			if _, exists := t.ops[name]; exists {
				return nil, fmt.Errorf("openapi: duplicate tool name %q", name)
			}

			schema, err := buildToolSchema(name, method, path, op)
			if err != nil {
				return nil, fmt.Errorf("openapi: operation %s %s: %w", method, path, err)
			}
			t.ops[name] = operation{method: method, path: path, op: op}
			t.schemas = append(t.schemas, schema)
		}
	}

	t.logger.Info("generated tools from spec",
		zap.String("title", t.title),
		zap.String("base_url", t.baseURL),
		zap.Int("count", len(t.schemas)))
	return t, nil
}

func (t *Toolset) Name() string { return "openapi" }

func (t *Toolset) Tools(ctx context.Context) ([]llm.ToolSchema, error) {
	out := make([]llm.ToolSchema, len(t.schemas))
	copy(out, t.schemas)
	return out, nil
}

func (t *Toolset) Close() error { return nil }

// Call executes the bound HTTP operation: path parameters substituted
// into the template, query parameters encoded, body forwarded as JSON.
func (t *Toolset) Call(ctx context.Context, call llm.ToolCall) (json.RawMessage, error) {
	bound, ok := t.ops[call.Name]
	if !ok {
		return nil, fmt.Errorf("openapi: unknown tool %q", call.Name)
	}

	args := map[string]any{}
	if len(call.Arguments) > 0 {
		if err := json.Unmarshal(call.Arguments, &args); err != nil {
			return nil, fmt.Errorf("openapi: invalid arguments for %q: %w", call.Name, err)
		}
	}

	path := bound.path
	query := url.Values{}
	for _, ref := range bound.op.Parameters {
		param := ref.Value
		val, present := args[param.Name]
		if !present {
			if param.Required {
				return nil, fmt.Errorf("openapi: missing required parameter %q for %q", param.Name, call.Name)
			}
			continue
		}
		switch param.In {
		case openapi3.ParameterInPath:
			path = strings.ReplaceAll(path, "{"+param.Name+"}", formatValue(val))
		case openapi3.ParameterInQuery:
			query.Set(param.Name, formatValue(val))
		case openapi3.ParameterInHeader:
			// handled below on the request
		}
	}

	endpoint := t.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	var body io.Reader
	if raw, ok := args["body"]; ok && bound.op.RequestBody != nil {
		payload, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("openapi: failed to encode body for %q: %w", call.Name, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, bound.method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("openapi: failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for _, ref := range bound.op.Parameters {
		param := ref.Value
		if param.In == openapi3.ParameterInHeader {
			if val, present := args[param.Name]; present {
				req.Header.Set(param.Name, formatValue(val))
			}
		}
	}

	t.logger.Debug("calling operation",
		zap.String("tool", call.Name),
		zap.String("method", bound.method),
		zap.String("url", endpoint))

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openapi: request failed for %q: %w", call.Name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("openapi: failed to read response for %q: %w", call.Name, err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("openapi: %s returned HTTP %d: %s", call.Name, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if len(data) == 0 {
		return json.Marshal(map[string]any{"status": resp.StatusCode})
	}
	if json.Valid(data) {
		return data, nil
	}
	return json.Marshal(map[string]any{"status": resp.StatusCode, "body": string(data)})
}

// ToolName derives the tool name for an operation: operationId when
// present, otherwise method_path with braces stripped.
func ToolName(method, path, operationID string) string {
	if operationID != "" {
		return operationID
	}
	return fmt.Sprintf("%s_%s", strings.ToLower(method), sanitizePath(path))
}

func sanitizePath(path string) string {
	path = strings.ReplaceAll(path, "/", "_")
	path = strings.ReplaceAll(path, "{", "")
	path = strings.ReplaceAll(path, "}", "")
	return strings.Trim(path, "_")
}

func hasAnyTag(tags, targets []string) bool {
	set := make(map[string]bool, len(tags))
	for _, t := range tags {
		set[t] = true
	}
	for _, t := range targets {
		if set[t] {
			return true
		}
	}
	return false
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		// JSON numbers decode as float64; integers should not grow a ".0".
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case bool:
		return fmt.Sprintf("%t", val)
	default:
		data, _ := json.Marshal(val)
		return string(data)
	}
}

// buildToolSchema assembles the parameter JSON Schema the model sees:
// path/query/header parameters as top-level properties plus a "body"
// property for JSON request bodies.
func buildToolSchema(name, method, path string, op *openapi3.Operation) (llm.ToolSchema, error) {
	description := op.Summary
	if description == "" {
		description = op.Description
	}
	if description == "" {
		description = fmt.Sprintf("%s %s", method, path)
	}

	properties := make(map[string]json.RawMessage)
	var required []string

	for _, ref := range op.Parameters {
		param := ref.Value
		prop, err := parameterSchema(param)
		if err != nil {
			return llm.ToolSchema{}, err
		}
		properties[param.Name] = prop
		if param.Required {
			required = append(required, param.Name)
		}
	}

	if op.RequestBody != nil && op.RequestBody.Value != nil {
		if media := op.RequestBody.Value.Content.Get("application/json"); media != nil && media.Schema != nil && media.Schema.Value != nil {
			// Marshal the resolved schema, not the SchemaRef: the ref
			// form would re-emit "$ref" the model cannot follow.
			raw, err := media.Schema.Value.MarshalJSON()
			if err != nil {
				return llm.ToolSchema{}, fmt.Errorf("failed to encode body schema: %w", err)
			}
			properties["body"] = raw
			if op.RequestBody.Value.Required {
				required = append(required, "body")
			}
		}
	}

	sort.Strings(required)

	params := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		params["required"] = required
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return llm.ToolSchema{}, fmt.Errorf("failed to encode parameters schema: %w", err)
	}

	return llm.ToolSchema{
		Name:        name,
		Description: description,
		Parameters:  paramsJSON,
	}, nil
}

// parameterSchema renders one parameter's schema, folding the parameter
// description in when the schema itself has none.
func parameterSchema(param *openapi3.Parameter) (json.RawMessage, error) {
	var schema map[string]any
	if param.Schema != nil && param.Schema.Value != nil {
		raw, err := param.Schema.Value.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", param.Name, err)
		}
		if err := json.Unmarshal(raw, &schema); err != nil {
			return nil, fmt.Errorf("parameter %q: %w", param.Name, err)
		}
	} else {
		schema = map[string]any{"type": "string"}
	}
	if _, ok := schema["description"]; !ok && param.Description != "" {
		schema["description"] = param.Description
	}
	return json.Marshal(schema)
}
