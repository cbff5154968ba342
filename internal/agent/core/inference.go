package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Completer is the vendor transport: one chat completion per call.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Schema names and carries the JSON Schema a stage's output must match.
type Schema struct {
	Name string
	Doc  string
}

// InferenceFailure marks an LLM call whose output could not be turned
// into a valid record: transport errors, unparseable completions, or
// schema violations. Stages catch it and fall back; any other error
// aborts the run.
type InferenceFailure struct {
	Cause  error
	Output string
}

func (f *InferenceFailure) Error() string {
	return fmt.Sprintf("inference failure: %v", f.Cause)
}

func (f *InferenceFailure) Unwrap() error { return f.Cause }

// InferenceClient produces schema-valid JSON for a prompt. Invoke makes
// exactly one attempt per call; there are no retries at this layer.
type InferenceClient interface {
	Invoke(ctx context.Context, prompt string, schema Schema) (json.RawMessage, error)
	ToolID() string
}

type llmClient struct {
	completer Completer
	toolID    string
	logger    *log.Logger
}

// NewInferenceClient wraps a vendor transport in schema-constrained
// decoding. toolID is appended to tools_used by every stage that runs
// through this client.
func NewInferenceClient(completer Completer, toolID string) InferenceClient {
	return &llmClient{
		completer: completer,
		toolID:    toolID,
		logger:    log.New(log.Writer(), "[INFERENCE] ", log.LstdFlags),
	}
}

const responseFormatPrompt = `RESPONSE FORMAT:
Respond ONLY with valid JSON matching this JSON Schema:
%s
Do not include any other text or explanation.`

func (c *llmClient) ToolID() string { return c.toolID }

func (c *llmClient) Invoke(ctx context.Context, prompt string, schema Schema) (json.RawMessage, error) {
	system := fmt.Sprintf(responseFormatPrompt, schema.Doc)
	completion, err := c.completer.Complete(ctx, system, prompt)
	if err != nil {
		c.logger.Printf("%s: completion failed: %v", schema.Name, err)
		return nil, &InferenceFailure{Cause: err}
	}
	jsonText := extractJSON(completion)
	if jsonText == "" {
		c.logger.Printf("%s: no JSON object in completion", schema.Name)
		return nil, &InferenceFailure{Cause: fmt.Errorf("no JSON object in completion"), Output: completion}
	}
	result, err := gojsonschema.Validate(gojsonschema.NewStringLoader(schema.Doc), gojsonschema.NewStringLoader(jsonText))
	if err != nil {
		return nil, &InferenceFailure{Cause: fmt.Errorf("schema validation: %w", err), Output: completion}
	}
	if !result.Valid() {
		issues := formatSchemaIssues(result)
		c.logger.Printf("%s: completion violates schema: %s", schema.Name, issues)
		return nil, &InferenceFailure{Cause: fmt.Errorf("completion violates %s schema: %s", schema.Name, issues), Output: completion}
	}
	return json.RawMessage(jsonText), nil
}

// extractJSON pulls the outermost JSON object out of a completion,
// tolerating markdown code fences around it.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

func formatSchemaIssues(result *gojsonschema.Result) string {
	issues := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		issues = append(issues, desc.String())
	}
	return strings.Join(issues, "; ")
}
