package catalog

import "strings"

// PeriodSelector is the stable key a caller uses to ask for one named
// seasonal window.
type PeriodSelector string

const (
	PeriodDecemberSecondHalf PeriodSelector = "diciembre_2q"
	PeriodChristmas          PeriodSelector = "navidad"
	PeriodNewYear            PeriodSelector = "ano_nuevo"
	PeriodJanuaryFirstHalf   PeriodSelector = "enero_1q"
	PeriodJanuarySecondHalf  PeriodSelector = "enero_2q"
	PeriodFebruaryFirstHalf  PeriodSelector = "febrero_1q"
	PeriodCarnival           PeriodSelector = "carnaval"
	PeriodFebruarySecondHalf PeriodSelector = "febrero_2q"
	PeriodEaster             PeriodSelector = "semana_santa"
)

// PeriodDefinition describes how a selector is recognized inside the
// free-form period names written by the office staff.
type PeriodDefinition struct {
	Selector PeriodSelector `json:"selector"`
	Label    string         `json:"label"`
	// Fragments are matched by substring containment against period names.
	// They include the names of related package periods, so asking for the
	// first half of January also finds the New Year package that covers it.
	Fragments []string `json:"fragments"`
}

var periodTable = []PeriodDefinition{
	{PeriodDecemberSecondHalf, "2da quincena de diciembre", []string{"2da q de diciembre", "16/12"}},
	{PeriodChristmas, "Navidad", []string{"Navidad", "19 al 26"}},
	{PeriodNewYear, "Año Nuevo", []string{"Año Nuevo", "26/12 al 2/1"}},
	{PeriodJanuaryFirstHalf, "1ra quincena de enero", []string{"1er q de enero", "30/12"}},
	{PeriodJanuarySecondHalf, "2da quincena de enero", []string{"2da q de enero", "16/1/"}},
	{PeriodFebruaryFirstHalf, "1ra quincena de febrero", []string{"1er q de febrero", "del 1/2"}},
	{PeriodCarnival, "Carnaval", []string{"Carnaval", "14/2"}},
	{PeriodFebruarySecondHalf, "2da quincena de febrero", []string{"2da q de febrero", "18/2"}},
	{PeriodEaster, "Semana Santa", []string{"Semana Santa"}},
}

var periodIndex = func() map[PeriodSelector]PeriodDefinition {
	idx := make(map[PeriodSelector]PeriodDefinition, len(periodTable))
	for _, def := range periodTable {
		idx[def.Selector] = def
	}
	return idx
}()

// ParsePeriodSelector maps a caller value ("navidad", "Año Nuevo",
// "enero_1q") to its selector. An empty value means no selector.
func ParsePeriodSelector(s string) (PeriodSelector, bool) {
	k := strings.ReplaceAll(Key(s), " ", "_")
	if k == "" {
		return "", true
	}
	if _, ok := periodIndex[PeriodSelector(k)]; ok {
		return PeriodSelector(k), true
	}
	for _, def := range periodTable {
		if strings.ReplaceAll(Key(def.Label), " ", "_") == k {
			return def.Selector, true
		}
	}
	return "", false
}

// Fragments returns the keyword fragments a period name must contain (any of)
// to match the selector. Unknown selectors have none.
func (p PeriodSelector) Fragments() []string {
	def, ok := periodIndex[p]
	if !ok {
		return nil
	}
	out := make([]string, len(def.Fragments))
	copy(out, def.Fragments)
	return out
}

// Periods returns the selector vocabulary in calendar order.
func Periods() []PeriodDefinition {
	out := make([]PeriodDefinition, len(periodTable))
	copy(out, periodTable)
	return out
}
