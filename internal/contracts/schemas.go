package contracts

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"marketplace-service/internal/core/domain"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Имена схем тел запросов.
const (
	RegisterRequest       = "register"
	LoginRequest          = "login"
	PropertyRequest       = "property"
	PropertyStatusRequest = "property-status"
	CreateCompanyRequest  = "company-create"
	UpdateCompanyRequest  = "company-update"
	SavedSearchRequest    = "saved-search"
	AgentProfileRequest   = "agent-profile"
	ChangeRoleRequest     = "user-role"
)

// MarketplaceEvent - имя схемы конверта доменных событий.
const MarketplaceEvent = "marketplace-event"

//go:embed schemas
var schemasFS embed.FS

var (
	requestSchemas = map[string]*jsonschema.Schema{}
	eventSchemas   = map[string]*jsonschema.Schema{}
)

func init() {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true

	var paths []string
	err := fs.WalkDir(schemasFS, "schemas", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		file, err := schemasFS.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()
		if err := compiler.AddResource(path, file); err != nil {
			return fmt.Errorf("failed to add schema resource %s: %w", path, err)
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		panic(fmt.Sprintf("contracts: %v", err))
	}

	// Встроенные схемы обязаны компилироваться, иначе это ошибка сборки
	for _, path := range paths {
		schema := compiler.MustCompile(path)
		rel := strings.TrimSuffix(strings.TrimPrefix(path, "schemas/"), ".json")
		switch {
		case strings.HasPrefix(rel, "requests/"):
			requestSchemas[strings.TrimPrefix(rel, "requests/")] = schema
		case strings.HasPrefix(rel, "events/"):
			// events/marketplace-event/v1 -> marketplace-event/1
			name, version, _ := strings.Cut(strings.TrimPrefix(rel, "events/"), "/")
			eventSchemas[name+"/"+strings.TrimPrefix(version, "v")] = schema
		}
	}
}

// ValidateRequest проверяет тело запроса по схеме. Нарушения возвращаются как domain.ErrValidation.
func ValidateRequest(name string, body []byte) error {
	schema, ok := requestSchemas[name]
	if !ok {
		return fmt.Errorf("schema for request %q not found", name)
	}
	return validate(schema, body)
}

// ValidateEvent проверяет тело события перед публикацией.
func ValidateEvent(name, version string, body []byte) error {
	schema, ok := eventSchemas[name+"/"+version]
	if !ok {
		return fmt.Errorf("schema for event %q version %q not found", name, version)
	}
	return validate(schema, body)
}

func validate(schema *jsonschema.Schema, body []byte) error {
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return domain.NewValidationError("body is not valid JSON: %v", err)
	}

	err := schema.Validate(v)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if errors.As(err, &ve) {
		return domain.NewValidationError("%s", describe(ve))
	}
	return domain.NewValidationError("%v", err)
}

// describe собирает листовые нарушения в строку вида "/price: must be > 0 but found 0".
func describe(ve *jsonschema.ValidationError) string {
	var leaves []string
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			leaves = append(leaves, loc+": "+e.Message)
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	sort.Strings(leaves)
	return strings.Join(leaves, "; ")
}
