package analyzer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/kaptinlin/jsonschema"
)

const responseSchema = `{
  "type": "object",
  "required": ["scores"],
  "properties": {
    "scores": {
      "type": "object",
      "required": ["pain", "willingness_to_pay", "technical_feasibility", "ai_synergy"],
      "properties": {
        "pain": {"type": "number", "minimum": 0, "maximum": 10},
        "willingness_to_pay": {"type": "number", "minimum": 0, "maximum": 10},
        "technical_feasibility": {"type": "number", "minimum": 0, "maximum": 10},
        "ai_synergy": {"type": "number", "minimum": 0, "maximum": 10}
      }
    },
    "sector": {"type": "string"},
    "solution_type": {"type": "string"},
    "proposed_app": {
      "type": "object",
      "properties": {
        "name": {"type": "string"},
        "description": {"type": "string"},
        "key_features": {"type": "array", "items": {"type": "string"}},
        "pricing_model": {"type": "string"},
        "mvp_estimate": {"type": "string"}
      }
    },
    "ideal_users": {
      "type": "object",
      "properties": {
        "profile": {"type": "string"},
        "market_size": {"type": "string"},
        "buying_capacity": {"type": "string"}
      }
    },
    "tags": {"type": "array", "items": {"type": "string"}}
  }
}`

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiledSchema, compileErr = compiler.Compile([]byte(responseSchema))
	})
	return compiledSchema, compileErr
}

// ValidateResponse checks a raw backend response against the response
// schema and decodes it. Errors wrap ErrInvalidResponse.
func ValidateResponse(raw []byte) (*Analysis, error) {
	raw = stripCodeFence(raw)

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	s, err := schema()
	if err != nil {
		return nil, fmt.Errorf("failed to compile response schema: %w", err)
	}

	result := s.Validate(doc)
	if !result.IsValid() {
		var errorMessages []string
		for field, evalErr := range result.Errors {
			errorMessages = append(errorMessages, fmt.Sprintf("%s: %s", field, evalErr.Error()))
		}
		sort.Strings(errorMessages)
		return nil, fmt.Errorf("%w: %s", ErrInvalidResponse, strings.Join(errorMessages, "; "))
	}

	var analysis Analysis
	if err := json.Unmarshal(raw, &analysis); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if analysis.ProposedApp.KeyFeatures == nil {
		analysis.ProposedApp.KeyFeatures = []string{}
	}
	if analysis.Tags == nil {
		analysis.Tags = []string{}
	}
	return &analysis, nil
}

// stripCodeFence removes a surrounding ```json fence some LLMs add despite instructions
func stripCodeFence(raw []byte) []byte {
	trimmed := bytes.TrimSpace(raw)
	if !bytes.HasPrefix(trimmed, []byte("```")) {
		return trimmed
	}
	trimmed = bytes.TrimPrefix(trimmed, []byte("```"))
	if nl := bytes.IndexByte(trimmed, '\n'); nl >= 0 {
		trimmed = trimmed[nl+1:]
	}
	trimmed = bytes.TrimSuffix(bytes.TrimSpace(trimmed), []byte("```"))
	return bytes.TrimSpace(trimmed)
}
