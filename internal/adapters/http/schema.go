package httpadapter

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/kirillkom/oracion-board/internal/core/domain"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const (
	schemaReflection     = "reflection"
	schemaInterpretation = "interpretation"
	schemaActuatorMove   = "actuator_move"
)

var (
	schemasOnce sync.Once
	schemas     map[string]*gojsonschema.Schema
	schemasErr  error
)

func loadSchemas() (map[string]*gojsonschema.Schema, error) {
	schemasOnce.Do(func() {
		out := make(map[string]*gojsonschema.Schema)
		for _, name := range []string{schemaReflection, schemaInterpretation, schemaActuatorMove} {
			raw, err := schemaFS.ReadFile("schemas/" + name + ".json")
			if err != nil {
				schemasErr = fmt.Errorf("read schema %s: %w", name, err)
				return
			}
			schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
			if err != nil {
				schemasErr = fmt.Errorf("compile schema %s: %w", name, err)
				return
			}
			out[name] = schema
		}
		schemas = out
	})
	return schemas, schemasErr
}

// decodeValidated checks body against the named schema and then unmarshals it.
func decodeValidated(name string, body []byte, out any) error {
	all, err := loadSchemas()
	if err != nil {
		return err
	}
	if !json.Valid(body) {
		return domain.WrapError(domain.ErrInvalidInput, "decode request", errors.New("invalid json"))
	}
	result, err := all[name].Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return domain.WrapError(domain.ErrInvalidInput, "decode request", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return domain.WrapError(domain.ErrInvalidInput, "decode request", errors.New(strings.Join(msgs, "; ")))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return domain.WrapError(domain.ErrInvalidInput, "decode request", err)
	}
	return nil
}
