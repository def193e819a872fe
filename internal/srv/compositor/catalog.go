package compositor

import (
	"github.com/jypelle/piratedisplay/apimodel"
	"sort"
	"strings"
)

// IconTypes lists the valid symbols of every icon category.
var IconTypes = map[string][]string{
	"alarm": {"check", "none", "note", "off", "plus"},
	"wifi":  {"connected", "disconnected", "wait"},
}

// IconIds returns every "<category>_<symbol>" of the catalog, sorted.
func IconIds() []string {
	var iconIds []string
	for category, symbols := range IconTypes {
		for _, symbol := range symbols {
			iconIds = append(iconIds, category+"_"+symbol)
		}
	}
	sort.Strings(iconIds)
	return iconIds
}

// ParseIcon splits an icon id on its first underscore and checks it against the catalog.
func ParseIcon(iconId string) (category string, symbol string, err error) {
	category, symbol, _ = strings.Cut(iconId, "_")
	symbols, ok := IconTypes[category]
	if !ok {
		return "", "", apimodel.NewException(apimodel.UnknownCategory, "unknown icon category %q in %q", category, iconId)
	}
	for _, s := range symbols {
		if s == symbol {
			return category, symbol, nil
		}
	}
	return "", "", apimodel.NewException(apimodel.UnknownSymbol, "unknown symbol %q for icon category %q", symbol, category)
}
