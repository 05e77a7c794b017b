package cleaner

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/reab5555/AI-Data-Cleaner/internal/model"
)

// NormalizeHeaders renames columns in three passes: invalid headers flagged
// by the oracle become column_<index>, then the oracle's normalization map is
// applied, then every name is normalized mechanically. The column count never
// changes.
func (c *Cleaner) NormalizeHeaders(ctx context.Context, b *model.Bundle) {
	t := b.Table
	if t.NumColumns() == 0 {
		return
	}

	for _, i := range c.advisor.InvalidHeaders(ctx, t.Names()) {
		c.rename(b, t.Column(i), placeholderName(i), "invalid header")
	}

	mapping := c.advisor.NormalizeHeaders(ctx, t.Names())
	for _, col := range t.Columns() {
		if to, ok := mapping[col.Name]; ok && strings.TrimSpace(to) != "" {
			c.rename(b, col, to, "oracle normalization")
		}
	}

	names := NormalizeNames(t.Names())
	for i, col := range t.Columns() {
		c.rename(b, col, names[i], "mechanical normalization")
	}
}

func (c *Cleaner) rename(b *model.Bundle, col *model.Column, to, reason string) {
	if col.Name == to {
		return
	}
	c.logger.Debug("renaming column", "from", col.Name, "to", to, "reason", reason)
	b.Record(model.CleaningOperation{
		Step:      model.StepNormalizeHeaders,
		Column:    to,
		Operation: model.OpRename,
		Reason:    fmt.Sprintf("%s: %q", reason, col.Name),
		Cells:     1,
	})
	col.Name = to
}

func placeholderName(i int) string {
	return fmt.Sprintf("column_%d", i)
}

// MechanicalName normalizes one header: invisible and control characters are
// dropped, the text is lowercased in Unicode NFC form, and spaces become
// underscores. Applying it twice gives the same result as applying it once.
func MechanicalName(name string) string {
	strip := transform.Chain(
		norm.NFC,
		runes.Remove(runes.In(unicode.Cc)),
		runes.Remove(runes.In(unicode.Cf)),
	)
	cleaned, _, err := transform.String(strip, name)
	if err != nil {
		cleaned = name
	}
	lowered := norm.NFC.String(cases.Lower(language.Und).String(cleaned))
	return strings.ReplaceAll(lowered, " ", "_")
}

// NormalizeNames applies MechanicalName to every header, names empty headers
// column_<index>, and suffixes duplicates with _<n> so names stay unique.
func NormalizeNames(names []string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		n := MechanicalName(name)
		if n == "" {
			n = placeholderName(i)
		}
		out[i] = n
	}

	taken := make(map[string]bool, len(out))
	for _, n := range out {
		taken[n] = true
	}
	seen := make(map[string]bool, len(out))
	for i, n := range out {
		if !seen[n] {
			seen[n] = true
			continue
		}
		for k := 1; ; k++ {
			candidate := fmt.Sprintf("%s_%d", n, k)
			if !taken[candidate] {
				out[i] = candidate
				taken[candidate] = true
				seen[candidate] = true
				break
			}
		}
	}
	return out
}
