package proxyclient

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed provider_payload.schema.json
var providerPayloadSchemaJSON string

const providerPayloadSchemaName = "provider_payload.schema.json"

// ProviderPayload is the part of a forwarded provider body the client reads.
type ProviderPayload struct {
	Code int     `json:"code"`
	Msg  *string `json:"msg,omitempty"`
	Data *struct {
		TranslatedText string `json:"translatedText"`
	} `json:"data,omitempty"`
}

// TranslatedText returns the translation, or "" when the payload has none.
func (p *ProviderPayload) TranslatedText() string {
	if p == nil || p.Data == nil {
		return ""
	}
	return p.Data.TranslatedText
}

// Message returns the provider message, or "" when absent.
func (p *ProviderPayload) Message() string {
	if p == nil || p.Msg == nil {
		return ""
	}
	return strings.TrimSpace(*p.Msg)
}

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
)

// ValidateProviderPayload checks a forwarded provider body against the
// embedded schema. A code of 200 must carry a non-empty data.translatedText.
func ValidateProviderPayload(payload []byte) (*ProviderPayload, error) {
	value, err := decodeStrictJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("decode payload JSON: %w", err)
	}

	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	if err := schema.Validate(value); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	var decoded ProviderPayload
	if err := json.Unmarshal(bytes.TrimSpace(payload), &decoded); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return &decoded, nil
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020

		if err := compiler.AddResource(providerPayloadSchemaName, strings.NewReader(providerPayloadSchemaJSON)); err != nil {
			compiledSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}

		schema, err := compiler.Compile(providerPayloadSchemaName)
		if err != nil {
			compiledSchemaErr = fmt.Errorf("compile schema: %w", err)
			return
		}

		compiledSchema = schema
	})

	if compiledSchemaErr != nil {
		return nil, compiledSchemaErr
	}
	if compiledSchema == nil {
		return nil, fmt.Errorf("schema not initialized")
	}
	return compiledSchema, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("payload is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("payload contains trailing content")
	}

	return value, nil
}
