package prompt

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/reab5555/AI-Data-Cleaner/internal/model"
)

// ValueCount is one entry of a value frequency table.
type ValueCount struct {
	Value string
	Count int
}

func checkHeadersPrompt(names []string) string {
	var sb strings.Builder
	sb.WriteString("Review the column headers of a table and find headers that are missing, blank or unusable as names.\n")
	sb.WriteString("Reply with a JSON array of the 0-based positions of those headers and nothing else. Reply [] if all headers are fine.\n\n")
	sb.WriteString("Headers: ")
	sb.WriteString(jsonList(names))
	sb.WriteString("\n")
	return sb.String()
}

func normalizeHeadersPrompt(names []string) string {
	var sb strings.Builder
	sb.WriteString("Normalize the following table column headers:\n")
	sb.WriteString("1. Use lowercase letters.\n")
	sb.WriteString("2. Replace spaces and empty names with underscores.\n")
	sb.WriteString("3. Keep only letters, digits and underscores.\n\n")
	sb.WriteString("Reply with a JSON object mapping every original header to its normalized form and nothing else.\n\n")
	sb.WriteString("Headers: ")
	sb.WriteString(jsonList(names))
	sb.WriteString("\n")
	return sb.String()
}

func classifyColumnPrompt(column string, values []model.Cell) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Below is a sample of values from the column %q, listed by position.\n", column)
	sb.WriteString("Decide:\n")
	sb.WriteString("1. The data type that fits the values best: float, integer, string or date.\n")
	sb.WriteString("2. The positions of empty or blank values.\n")
	sb.WriteString("3. The positions of values that do not fit that data type.\n\n")
	sb.WriteString("Values:\n")
	sb.WriteString(jsonCells(values))
	sb.WriteString("\n\nReply with this JSON object and nothing else:\n")
	sb.WriteString(`{"data_type": "<type>", "empty_indices": [<positions>], "invalid_indices": [<positions>]}`)
	sb.WriteString("\n")
	return sb.String()
}

func typosPrompt(column string, values []model.Cell) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Below is a sample of values from the column %q.\n", column)
	sb.WriteString("Find values that look like typos or misspellings of other values and suggest a correction for each.\n\n")
	sb.WriteString("Values:\n")
	sb.WriteString(jsonCells(values))
	sb.WriteString("\n\nReply with this JSON object and nothing else, using an empty object when there are no typos:\n")
	sb.WriteString(`{"typos": {"<original>": "<correction>"}}`)
	sb.WriteString("\n")
	return sb.String()
}

func transformPrompt(column string, distinct []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Below are the distinct text values of the column %q.\n", column)
	sb.WriteString("Convert each value to lowercase. Map any spelling of \"nan\" to \"nan\".\n\n")
	sb.WriteString("Values:\n")
	sb.WriteString(jsonList(distinct))
	sb.WriteString("\n\nReply with a JSON object mapping every original value to its transformed value and nothing else.\n")
	return sb.String()
}

func lowCountPrompt(column string, counts []ValueCount) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Below are the value counts of the column %q.\n", column)
	sb.WriteString("List the values that occur fewer than 2 times.\n\n")
	sb.WriteString("Counts:\n")
	for _, vc := range counts {
		fmt.Fprintf(&sb, "%s: %d\n", quote(vc.Value), vc.Count)
	}
	sb.WriteString("\nReply with a JSON array of those values and nothing else.\n")
	return sb.String()
}

// sortCounts orders counts by descending frequency, then by value.
func sortCounts(counts map[string]int) []ValueCount {
	out := make([]ValueCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, ValueCount{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}

func jsonList(values []string) string {
	b, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// jsonCells renders cells as a JSON array; missing cells become null.
func jsonCells(cells []model.Cell) string {
	out := make([]any, len(cells))
	for i, c := range cells {
		if c.IsMissing() {
			continue
		}
		out[i] = c.String()
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func quote(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(b)
}
