// Package naming decides the display name of each uploaded asset.
package naming

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// IndexToken is replaced with the 1-based item position in a pattern.
const IndexToken = "{index}"

// Kind selects how names are produced.
type Kind int

const (
	// UseSourceName derives the name from the item's file name.
	UseSourceName Kind = iota
	// Pattern substitutes IndexToken in a template.
	Pattern
	// ExplicitList takes names from an ordered list.
	ExplicitList
)

func (k Kind) String() string {
	switch k {
	case UseSourceName:
		return "filename"
	case Pattern:
		return "pattern"
	case ExplicitList:
		return "list"
	default:
		return "unknown"
	}
}

// ParseKind accepts the CLI spelling of a naming kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "filename", "filenames", "source":
		return UseSourceName, nil
	case "pattern":
		return Pattern, nil
	case "list", "names":
		return ExplicitList, nil
	default:
		return 0, fmt.Errorf("unknown naming method %q (use filename, pattern or list)", s)
	}
}

// Strategy is chosen once per batch and applied to every item by position.
type Strategy struct {
	Kind     Kind
	Template string
	Names    []string
}

func SourceName() Strategy {
	return Strategy{Kind: UseSourceName}
}

func WithPattern(template string) Strategy {
	return Strategy{Kind: Pattern, Template: template}
}

func WithNames(names []string) Strategy {
	return Strategy{Kind: ExplicitList, Names: names}
}

// ConfigWarning is a non-fatal mismatch between the strategy and the input.
type ConfigWarning struct {
	Message string
}

func (w ConfigWarning) String() string {
	return w.Message
}

// Resolve returns the name for the item at the 0-based index. Empty results are returned as is.
func (s Strategy) Resolve(index int, sourceName string) string {
	position := index + 1
	switch s.Kind {
	case Pattern:
		return strings.ReplaceAll(s.Template, IndexToken, strconv.Itoa(position))
	case ExplicitList:
		if index >= 0 && index < len(s.Names) {
			return s.Names[index]
		}
		return DefaultName(position)
	default:
		return StripExtension(sourceName)
	}
}

// Check reports problems once, before any item is processed.
func (s Strategy) Check(itemCount int) []ConfigWarning {
	if s.Kind != ExplicitList || len(s.Names) >= itemCount {
		return nil
	}
	return []ConfigWarning{{
		Message: fmt.Sprintf("Only %d names provided for %d files. Some files will use default naming.", len(s.Names), itemCount),
	}}
}

// DefaultName is used when an explicit list runs out.
func DefaultName(position int) string {
	return fmt.Sprintf("Decal %d", position)
}

// StripExtension drops the last extension. A leading dot alone does not count as one.
func StripExtension(name string) string {
	base := filepath.Base(name)
	ext := filepath.Ext(base)
	if ext == "" || ext == base {
		return name
	}
	return strings.TrimSuffix(name, ext)
}

// ParseNames splits one name per line, trimming whitespace and dropping blank lines.
func ParseNames(text string) []string {
	var names []string
	for _, line := range strings.Split(text, "\n") {
		if name := strings.TrimSpace(line); name != "" {
			names = append(names, name)
		}
	}
	return names
}
