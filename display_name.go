package mapcycle

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NameResolver turns a map record into the name shown to participants.
//
// Resolution order: explicit full name from the pool file, then the localized
// name table, then (optionally) a name guessed from the filename, and finally
// the raw filename.
type NameResolver struct {
	UseFullName  bool
	Predict      bool
	SkipPrefix   bool
	Names        map[string]string
	ExtendLabel  string
	AbstainLabel string
}

func newNameResolver(cfg Config, names map[string]string) *NameResolver {
	return &NameResolver{
		UseFullName:  cfg.UseFullName,
		Predict:      cfg.PredictMissingFullName,
		SkipPrefix:   cfg.FullNameSkipsPrefix,
		Names:        names,
		ExtendLabel:  "Extend this map",
		AbstainLabel: "I don't care",
	}
}

// Name returns the display name of the entry.
func (r *NameResolver) Name(m *MapRecord) string {
	switch m.Kind {
	case KindExtend:
		return r.ExtendLabel
	case KindAbstain:
		return r.AbstainLabel
	}

	if !r.UseFullName {
		return m.Filename
	}

	if m.FullName != "" {
		return m.FullName
	}

	if name, ok := r.Names[strings.ToLower(m.Filename)]; ok && name != "" {
		return name
	}

	if r.Predict {
		return r.predict(m.Filename)
	}

	return m.Filename
}

// predict guesses a name from a prefixed filename: "de_dust2" becomes "Dust2",
// or "DE Dust2" when the prefix is kept.
func (r *NameResolver) predict(filename string) string {
	var caser = cases.Title(language.Und)

	prefix, rest, found := strings.Cut(filename, "_")
	if !found {
		return caser.String(filename)
	}

	var title = caser.String(strings.ReplaceAll(rest, "_", " "))
	if r.SkipPrefix {
		return title
	}

	return strings.ToUpper(prefix) + " " + title
}
