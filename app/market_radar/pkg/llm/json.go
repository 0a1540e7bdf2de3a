package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StripFences 去掉模型常见的 ```json 包裹
func StripFences(out string) string {
	s := strings.TrimSpace(out)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ParseObject 从模型输出中解析出一个 JSON 对象。
// 空输出、非对象或无法解析时返回 false。
func ParseObject(out string) (map[string]json.RawMessage, bool) {
	s := StripFences(out)
	if s == "" || strings.HasPrefix(s, "[") {
		return nil, false
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &obj); err == nil {
		return obj, obj != nil
	}

	// 模型偶尔会在 JSON 前后输出说明文字
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	if err := json.Unmarshal([]byte(s[start:end+1]), &obj); err != nil {
		return nil, false
	}
	return obj, obj != nil
}

// StringList 把字段解码为字符串列表。
// 单个字符串视为单元素列表，非字符串元素转为文本；null 或其他类型返回 false。
func StringList(raw json.RawMessage) ([]string, bool) {
	if len(raw) == 0 {
		return nil, false
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if strings.TrimSpace(single) == "" {
			return []string{}, true
		}
		return []string{single}, true
	}

	var items []any
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil, false
	}

	out := make([]string, 0, len(items))
	for _, it := range items {
		switch v := it.(type) {
		case nil:
			continue
		case string:
			out = append(out, v)
		case map[string]any, []any:
			b, _ := json.Marshal(v)
			out = append(out, string(b))
		default:
			out = append(out, fmt.Sprint(v))
		}
	}
	return out, true
}

// String 把字段解码为字符串，非字符串返回 false
func String(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
