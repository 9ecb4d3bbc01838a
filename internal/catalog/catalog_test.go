package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOperation(t *testing.T) {
	tests := []struct {
		input    string
		expected Operation
		ok       bool
	}{
		{"venta", OperationSale, true},
		{" Alquiler_Temporal ", OperationSeasonalRental, true},
		{"annual-rental", OperationAnnualRental, true},
		{"permuta", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			op, ok := ParseOperation(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, op)
		})
	}
}

func TestOperationCategories(t *testing.T) {
	assert.Equal(t, []int{CategorySale}, OperationSale.Categories(false))
	assert.Equal(t, []int{CategorySeasonalPeak}, OperationSeasonalRental.Categories(false))
	assert.Equal(t, []int{CategorySeasonal}, OperationSeasonalRental.Categories(true))
	assert.Equal(t, []int{CategoryAnnual, CategoryAnnualFurnished}, OperationAnnualRental.Categories(false))
	assert.Nil(t, Operation("x").Categories(false))
}

func TestParsePropertyType(t *testing.T) {
	pt, ok := ParsePropertyType("Lote")
	assert.True(t, ok)
	assert.Equal(t, TypeLot, pt)
	assert.Equal(t, LotTypeID, pt.ID())

	_, ok = ParsePropertyType("castillo")
	assert.False(t, ok)
}

func TestParseSortMode(t *testing.T) {
	mode, ok := ParseSortMode("")
	assert.True(t, ok)
	assert.Equal(t, SortDefault, mode)

	mode, ok = ParseSortMode("PRICE_DESC")
	assert.True(t, ok)
	assert.Equal(t, SortPriceDesc, mode)

	_, ok = ParseSortMode("rating")
	assert.False(t, ok)
}

func TestIsAvailable(t *testing.T) {
	assert.True(t, IsAvailable("Disponible"))
	assert.True(t, IsAvailable(" disponible "))
	assert.False(t, IsAvailable("Reservada"))
	assert.False(t, IsAvailable("Alquilada"))
	assert.False(t, IsAvailable(""))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "carilo", Key(" Cariló "))
	assert.Equal(t, "ano nuevo", Key("AÑO NUEVO"))
}

func TestParsePeriodSelector(t *testing.T) {
	tests := []struct {
		input    string
		expected PeriodSelector
		ok       bool
	}{
		{"navidad", PeriodChristmas, true},
		{"Año Nuevo", PeriodNewYear, true},
		{"enero_1q", PeriodJanuaryFirstHalf, true},
		{"1ra quincena de enero", PeriodJanuaryFirstHalf, true},
		{"", "", true},
		{"verano_2030", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			sel, ok := ParsePeriodSelector(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, sel)
		})
	}
}

func TestPeriodFragments(t *testing.T) {
	assert.Contains(t, PeriodChristmas.Fragments(), "19 al 26")
	assert.Contains(t, PeriodJanuaryFirstHalf.Fragments(), "30/12")
	assert.Nil(t, PeriodSelector("nope").Fragments())

	// callers get a copy
	f := PeriodChristmas.Fragments()
	f[0] = "changed"
	assert.NotContains(t, PeriodChristmas.Fragments(), "changed")
}

func TestRegions(t *testing.T) {
	r := NewRegions([]Region{
		{Name: "Cariló", Neighborhoods: []string{"Golf", "Centro Comercial"}},
		{Name: "Pinamar", Neighborhoods: []string{"Norte", "Golf"}},
		{Name: "cariló", Neighborhoods: []string{"Ignored"}},
	})

	name, ok := r.Region("CARILO")
	assert.True(t, ok)
	assert.Equal(t, "Cariló", name)

	name, ok = r.Neighborhood("centro comercial")
	assert.True(t, ok)
	assert.Equal(t, "Centro Comercial", name)

	_, ok = r.Neighborhood("Ignored")
	assert.False(t, ok)

	assert.Len(t, r.List(), 2)
}
