package llm

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// GenerateSchema 为 T 生成内联的 JSON Schema 文本，用于嵌入提示词
func GenerateSchema[T any]() string {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	var zero T
	schema := reflector.Reflect(zero)
	// 提示词里不需要 $schema / $id
	schema.Version = ""
	schema.ID = ""

	b, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}
