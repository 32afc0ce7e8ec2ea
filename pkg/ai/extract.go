package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	apperrors "cmms-system/pkg/errors"
)

var (
	fencedBlock = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*\\n?(.*?)```")
	looseArray  = regexp.MustCompile(`(?s)\[.*\]`)
)

// ExtractJSONArray находит массив в ответе модели: сначала весь текст как JSON,
// затем блоки ```json, затем первый сбалансированный фрагмент [...], затем от [ до последней ].
// Элементы возвращаются неразобранными, чтобы вызывающий мог отбросить негодные по одному.
func ExtractJSONArray(text string) ([]json.RawMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: пустой ответ", apperrors.ErrAIMalformedResponse)
	}

	if items, ok := decodeArray(text); ok {
		return items, nil
	}

	for _, m := range fencedBlock.FindAllStringSubmatch(text, -1) {
		if items, ok := decodeArray(strings.TrimSpace(m[1])); ok {
			return items, nil
		}
	}

	for start := strings.IndexByte(text, '['); start >= 0; {
		if end := matchingBracket(text, start); end > start {
			if items, ok := decodeArray(text[start : end+1]); ok {
				return items, nil
			}
		}
		next := strings.IndexByte(text[start+1:], '[')
		if next < 0 {
			break
		}
		start += next + 1
	}

	if loose := looseArray.FindString(text); loose != "" {
		if items, ok := decodeArray(loose); ok {
			return items, nil
		}
	}

	return nil, fmt.Errorf("%w: массив JSON не найден", apperrors.ErrAIMalformedResponse)
}

func decodeArray(s string) ([]json.RawMessage, bool) {
	var items []json.RawMessage
	if json.Unmarshal([]byte(s), &items) != nil || items == nil {
		return nil, false
	}
	return items, true
}

// matchingBracket возвращает индекс ], закрывающей [ в позиции start, или -1.
// Скобки внутри строк JSON не учитываются.
func matchingBracket(s string, start int) int {
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
