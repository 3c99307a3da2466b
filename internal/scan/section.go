package scan

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// TitleCase title-cases a phrase using the English caser shared by section
// and recipe naming.
func TitleCase(s string) string { return titleCaser.String(s) }

// DisplayName converts a section directory name to its display title.
// A numeric ordering prefix ("01-", "02_") is stripped, the remaining
// separators become spaces and each word is title-cased:
//
//	"01-appetizers" -> "Appetizers"
//	"main_dishes"   -> "Main Dishes"
func DisplayName(directory string) string {
	name := directory
	if _, rest, ok := splitNumericPrefix(name); ok {
		name = rest
	}
	name = strings.ReplaceAll(name, "-", " ")
	name = strings.ReplaceAll(name, "_", " ")
	return titleCaser.String(strings.TrimSpace(name))
}

// OrderKey is the composite sort key for sections: an optional numeric
// prefix, then the bare name. Comparing the prefix numerically avoids the
// lexical trap of "10-x" sorting before "2-y".
type OrderKey struct {
	Num    int
	HasNum bool
	Name   string
}

// ParseOrderKey derives the ordering key from a directory name.
func ParseOrderKey(directory string) OrderKey {
	if n, rest, ok := splitNumericPrefix(directory); ok {
		return OrderKey{Num: n, HasNum: true, Name: rest}
	}
	return OrderKey{Name: directory}
}

// Less orders numeric-prefixed sections first (by prefix, then name),
// then the remainder lexically.
func (k OrderKey) Less(o OrderKey) bool {
	switch {
	case k.HasNum && !o.HasNum:
		return true
	case !k.HasNum && o.HasNum:
		return false
	case k.HasNum && o.HasNum && k.Num != o.Num:
		return k.Num < o.Num
	default:
		return k.Name < o.Name
	}
}

// splitNumericPrefix splits "01-starters" into (1, "starters", true).
// The prefix must be all digits followed by a '-' or '_' separator.
func splitNumericPrefix(name string) (int, string, bool) {
	i := 0
	n := 0
	for i < len(name) && name[i] >= '0' && name[i] <= '9' {
		n = n*10 + int(name[i]-'0')
		i++
	}
	if i == 0 || i >= len(name) {
		return 0, "", false
	}
	if name[i] != '-' && name[i] != '_' {
		return 0, "", false
	}
	return n, name[i+1:], true
}

// SortSections returns the directory names ordered by their composite keys.
func SortSections(dirs []string) []string {
	out := make([]string, len(dirs))
	copy(out, dirs)
	sort.SliceStable(out, func(i, j int) bool {
		return ParseOrderKey(out[i]).Less(ParseOrderKey(out[j]))
	})
	return out
}
