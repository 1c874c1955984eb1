package secret

import "strings"

// placeholder replaces redacted content in recorded output.
const placeholder = "********"

// Redactor scrubs registered secret values from captured output before it
// reaches results or the run log. Values are replaced longest-first so a
// secret that contains another secret is still fully masked.
type Redactor struct {
	replacer *strings.Replacer
	empty    bool
}

// NewRedactor creates a Redactor for the store's sensitive values.
func NewRedactor(store *Store) *Redactor {
	if store == nil {
		return &Redactor{empty: true}
	}
	values := store.SensitiveValues()
	if len(values) == 0 {
		return &Redactor{empty: true}
	}

	pairs := make([]string, 0, len(values)*2)
	for _, v := range values {
		pairs = append(pairs, v, placeholder)
	}
	return &Redactor{replacer: strings.NewReplacer(pairs...)}
}

// Scrub returns s with every registered secret replaced.
func (r *Redactor) Scrub(s string) string {
	if r.empty || s == "" {
		return s
	}
	return r.replacer.Replace(s)
}
