package prompt

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/reab5555/AI-Data-Cleaner/internal/model"
)

// errNoJSON is returned when an answer contains no JSON value at all.
var errNoJSON = errors.New("no JSON value in response")

// extractJSON returns the JSON value embedded in an answer. It drops
// markdown code fences and any prose before the first bracket or after the
// matching last bracket.
func extractJSON(content string) (string, error) {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}

	start := strings.IndexAny(s, "[{")
	if start < 0 {
		return "", errNoJSON
	}
	closer := byte('}')
	if s[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(s, closer)
	if end < start {
		return "", errNoJSON
	}
	return s[start : end+1], nil
}

// parseJSON extracts and decodes the JSON value of an answer.
func parseJSON[T any](content string) (T, error) {
	var out T
	raw, err := extractJSON(content)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return out, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}

// indexList decodes a JSON array of non-negative integers. Entries given as
// strings or integral floats are accepted; anything else is skipped.
type indexList []int

// UnmarshalJSON implements json.Unmarshaler.
func (l *indexList) UnmarshalJSON(b []byte) error {
	var raw []any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make([]int, 0, len(raw))
	for _, v := range raw {
		switch x := v.(type) {
		case float64:
			if x >= 0 && x == math.Trunc(x) && x <= math.MaxInt32 {
				out = append(out, int(x))
			}
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(x)); err == nil && n >= 0 {
				out = append(out, n)
			}
		}
	}
	*l = out
	return nil
}

func parseIndices(content string) ([]int, error) {
	l, err := parseJSON[indexList](content)
	return []int(l), err
}

// parseStringMap decodes a JSON object and keeps the entries whose values
// are strings.
func parseStringMap(content string) (map[string]string, error) {
	raw, err := parseJSON[map[string]any](content)
	if err != nil {
		return nil, err
	}
	return stringEntries(raw), nil
}

func stringEntries(raw map[string]any) map[string]string {
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

// parseValueList decodes a JSON array of scalar values as strings.
func parseValueList(content string) ([]string, error) {
	raw, err := parseJSON[[]any](content)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		switch x := v.(type) {
		case string:
			out = append(out, x)
		case float64:
			out = append(out, strconv.FormatFloat(x, 'f', -1, 64))
		}
	}
	return out, nil
}

// parseTypos decodes {"typos": {...}}. A missing "typos" key is an error.
func parseTypos(content string) (map[string]string, error) {
	raw, err := parseJSON[map[string]json.RawMessage](content)
	if err != nil {
		return nil, err
	}
	typos, ok := raw["typos"]
	if !ok {
		return nil, errors.New(`response has no "typos" key`)
	}
	var entries map[string]any
	if err := json.Unmarshal(typos, &entries); err != nil {
		return nil, fmt.Errorf("decode typos: %w", err)
	}
	return stringEntries(entries), nil
}

// parseClassification decodes a classification answer. All three keys must
// be present. An unrecognized data type is read as string.
func parseClassification(content string) (model.Classification, error) {
	raw, err := parseJSON[map[string]json.RawMessage](content)
	if err != nil {
		return model.Classification{}, err
	}
	for _, key := range []string{"data_type", "empty_indices", "invalid_indices"} {
		if _, ok := raw[key]; !ok {
			return model.Classification{}, fmt.Errorf("response has no %q key", key)
		}
	}

	var label string
	if err := json.Unmarshal(raw["data_type"], &label); err != nil {
		return model.Classification{}, fmt.Errorf("decode data_type: %w", err)
	}
	dt, err := model.ParseDataType(label)
	if err != nil {
		dt = model.TypeString
	}

	var empty, invalid indexList
	if err := json.Unmarshal(raw["empty_indices"], &empty); err != nil {
		return model.Classification{}, fmt.Errorf("decode empty_indices: %w", err)
	}
	if err := json.Unmarshal(raw["invalid_indices"], &invalid); err != nil {
		return model.Classification{}, fmt.Errorf("decode invalid_indices: %w", err)
	}

	return model.Classification{
		DataType:       dt,
		EmptyIndices:   []int(empty),
		InvalidIndices: []int(invalid),
	}, nil
}
