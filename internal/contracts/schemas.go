package contracts

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"strings"

	"monitoring-service/schemas"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var compiledSchemas = make(map[string]*jsonschema.Schema)

// Каталоги со схемами и суффикс ключа для каждого из них
var schemaRoots = map[string]string{
	"events": "Event",
	"config": "Config",
}

func init() {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	// Добавляем все схемы как ресурсы
	// Это нужно, чтобы схемы могли ссылаться друг на друга через `$ref`
	for root := range schemaRoots {
		err := fs.WalkDir(schemas.SchemasFS, root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(path, ".json") {
				file, _ := schemas.SchemasFS.Open(path)
				defer file.Close()
				if err := compiler.AddResource(path, file); err != nil {
					log.Fatalf("failed to add schema resource %s: %v", path, err)
				}
			}
			return nil
		})
		if err != nil {
			log.Fatalf("error walking and adding schema resources: %v", err)
		}
	}

	// Снова обходим для компиляции и регистрации
	for root := range schemaRoots {
		err := fs.WalkDir(schemas.SchemasFS, root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(path, ".json") {
				schema, err := compiler.Compile(path)
				if err != nil {
					log.Printf("WARNING: could not compile schema %s: %v. Skipping.", path, err)
					return nil
				}

				key := generateKeyFromPath(path)
				compiledSchemas[key] = schema
				log.Printf("Successfully compiled and registered schema: %s -> %s", path, key)
			}
			return nil
		})
		if err != nil {
			log.Fatalf("error walking and compiling schemas: %v", err)
		}
	}
}

// generateKeyFromPath преобразует путь вида "events/new-listings/v1.json"
// в ключ вида "NewListingsEvent/1.0.0".
func generateKeyFromPath(path string) string {
	trimmedPath := strings.TrimSuffix(path, ".json")

	parts := strings.Split(trimmedPath, "/")
	if len(parts) != 3 {
		return "" // Некорректный путь, возвращаем пустой ключ
	}

	suffix, ok := schemaRoots[parts[0]]
	if !ok {
		return ""
	}

	caser := cases.Title(language.English)

	nameParts := strings.Split(parts[1], "-")
	var nameBuilder strings.Builder
	for _, p := range nameParts {
		nameBuilder.WriteString(caser.String(p))
	}
	nameBuilder.WriteString(suffix)

	version := strings.Replace(parts[2], "v", "", 1) + ".0.0"

	return fmt.Sprintf("%s/%s", nameBuilder.String(), version)
}

// ValidateEvent принимает тело сообщения и его метаданные и проверяет по схеме
func ValidateEvent(eventType, eventVersion string, body []byte) error {
	return validate(eventType, eventVersion, body)
}

// ValidateConfig проверяет содержимое конфигурационного файла по схеме
func ValidateConfig(configType, configVersion string, body []byte) error {
	return validate(configType, configVersion, body)
}

func validate(name, version string, body []byte) error {
	key := fmt.Sprintf("%s/%s", name, version)
	schema, ok := compiledSchemas[key]
	if !ok {
		return fmt.Errorf("schema for contract '%s' version '%s' not found", name, version)
	}

	// Распарсить JSON в универсальный тип interface{}
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		// Если это невалидный JSON, валидация по схеме невозможна
		return fmt.Errorf("body is not a valid JSON: %w", err)
	}

	// Валидировать уже распарсенные данные
	if err := schema.Validate(v); err != nil {
		// Возвращаем подробную ошибку валидации
		return fmt.Errorf("JSON schema validation failed: %w", err)
	}

	return nil
}
