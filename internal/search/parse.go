package search

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/paulmach/orb"

	"propsearch/server/internal/catalog"
)

// Value is a loosely typed scalar sent by a caller. It accepts JSON strings,
// numbers, booleans and null, so tool-call arguments and query strings bind
// to the same shape.
type Value string

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Value(s)
		return nil
	}
	*v = Value(data)
	return nil
}

// List is a set of strings sent either as an array or as one comma
// separated string.
type List []string

func (l *List) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	var s Value
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	*l = List{string(s)}
	return nil
}

// RawCriteria is a search request as received from a caller, before
// validation. The same field names are used by the query string and by the
// chat tool arguments.
type RawCriteria struct {
	Operation      Value `json:"operacion" form:"operacion" validate:"required,operation"`
	Region         Value `json:"zona" form:"zona" validate:"omitempty,region"`
	Type           Value `json:"tipo" form:"tipo" validate:"omitempty,property_type"`
	Neighborhoods  List  `json:"barrios" form:"barrios" validate:"omitempty,dive,neighborhood"`
	Query          Value `json:"q" form:"q"`
	Pax            Value `json:"pax" form:"pax"`
	PaxOrMore      Value `json:"pax_or_more" form:"pax_or_more"`
	Bedrooms       Value `json:"dormitorios" form:"dormitorios"`
	BedroomsOrMore Value `json:"dormitorios_or_more" form:"dormitorios_or_more"`
	MinCoveredArea Value `json:"mts_min" form:"mts_min"`
	MinPrice       Value `json:"precio_min" form:"precio_min"`
	MaxPrice       Value `json:"precio_max" form:"precio_max"`
	Pets           Value `json:"mascotas" form:"mascotas"`
	Pool           Value `json:"piscina" form:"piscina"`
	Period         Value `json:"periodo" form:"periodo" validate:"omitempty,period"`
	ExplicitDates  Value `json:"fechas" form:"fechas"`
	Bounds         Value `json:"bbox" form:"bbox"`
	Sort           Value `json:"sort" form:"sort" validate:"omitempty,sort"`
	Limit          Value `json:"limit" form:"limit"`
	Offset         Value `json:"offset" form:"offset"`
}

// Limits bounds the page size a caller may ask for.
type Limits struct {
	DefaultLimit int
	MaxLimit     int
}

// Parser validates raw criteria against the closed vocabulary and builds
// Criteria. It is safe for concurrent use.
type Parser struct {
	regions  *catalog.Regions
	limits   Limits
	validate *validator.Validate
}

// NewParser creates a parser that checks regions and neighborhoods against
// regions.
func NewParser(regions *catalog.Regions, limits Limits) *Parser {
	if limits.DefaultLimit <= 0 {
		limits.DefaultLimit = 20
	}
	if limits.MaxLimit < limits.DefaultLimit {
		limits.MaxLimit = limits.DefaultLimit
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})

	p := &Parser{regions: regions, limits: limits, validate: v}
	mustRegister(v, "operation", func(s string) bool {
		_, ok := catalog.ParseOperation(s)
		return ok
	})
	mustRegister(v, "property_type", func(s string) bool {
		_, ok := catalog.ParsePropertyType(s)
		return ok
	})
	mustRegister(v, "region", func(s string) bool {
		_, ok := p.regions.Region(s)
		return ok
	})
	mustRegister(v, "neighborhood", func(s string) bool {
		for _, part := range splitList(s) {
			if _, ok := p.regions.Neighborhood(part); !ok {
				return false
			}
		}
		return true
	})
	mustRegister(v, "period", func(s string) bool {
		_, ok := catalog.ParsePeriodSelector(s)
		return ok
	})
	mustRegister(v, "sort", func(s string) bool {
		_, ok := catalog.ParseSortMode(s)
		return ok
	})
	return p
}

func mustRegister(v *validator.Validate, tag string, check func(string) bool) {
	err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return check(fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("failed to register %s validation: %v", tag, err))
	}
}

var reasons = map[string]string{
	"required":      "is required",
	"operation":     "unknown operation",
	"property_type": "unknown property type",
	"region":        "unknown region",
	"neighborhood":  "unknown neighborhood",
	"period":        "unknown period",
	"sort":          "unknown sort mode",
}

// Parse validates raw and converts it to Criteria. Enumerated fields with
// unknown values are rejected with a *ValidationError. Numeric and boolean
// fields that cannot be read are ignored.
func (p *Parser) Parse(raw RawCriteria) (Criteria, error) {
	if err := p.validate.Struct(raw); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return Criteria{}, fmt.Errorf("failed to validate criteria: %w", err)
		}
		out := &ValidationError{}
		for _, fe := range verrs {
			field := fe.Field()
			if i := strings.IndexByte(field, '['); i >= 0 {
				field = field[:i]
			}
			reason, ok := reasons[fe.Tag()]
			if !ok {
				reason = "is invalid"
			}
			out.Fields = append(out.Fields, FieldError{Field: field, Value: fmt.Sprint(fe.Value()), Reason: reason})
		}
		return Criteria{}, out
	}

	c := Criteria{
		Query:          strings.TrimSpace(string(raw.Query)),
		Pax:            parseInt(raw.Pax),
		PaxOrMore:      parseBool(raw.PaxOrMore),
		Bedrooms:       parseInt(raw.Bedrooms),
		BedroomsOrMore: parseBool(raw.BedroomsOrMore),
		MinCoveredArea: parseFloat(raw.MinCoveredArea),
		MinPrice:       parseAmount(raw.MinPrice),
		MaxPrice:       parseAmount(raw.MaxPrice),
		Pets:           parseBool(raw.Pets),
		Pool:           parseBool(raw.Pool),
		ExplicitDates:  parseBool(raw.ExplicitDates),
		Bounds:         parseBounds(raw.Bounds),
		Limit:          p.limits.DefaultLimit,
	}
	c.Operation, _ = catalog.ParseOperation(string(raw.Operation))
	c.Period, _ = catalog.ParsePeriodSelector(string(raw.Period))
	c.Sort, _ = catalog.ParseSortMode(string(raw.Sort))
	if raw.Type != "" {
		c.Type, _ = catalog.ParsePropertyType(string(raw.Type))
	}
	if raw.Region != "" {
		c.Region, _ = p.regions.Region(string(raw.Region))
	}

	seen := make(map[string]struct{})
	for _, item := range raw.Neighborhoods {
		for _, part := range splitList(item) {
			name, _ := p.regions.Neighborhood(part)
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			c.Neighborhoods = append(c.Neighborhoods, name)
		}
	}

	if n := parseInt(raw.Limit); n != nil && *n > 0 {
		c.Limit = min(*n, p.limits.MaxLimit)
	}
	if n := parseInt(raw.Offset); n != nil && *n > 0 {
		c.Offset = *n
	}
	return c, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseInt(v Value) *int {
	s := strings.TrimSpace(string(v))
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int(f)) {
			return nil
		}
		n = int(f)
	}
	if n < 0 {
		return nil
	}
	return &n
}

func parseFloat(v Value) *float64 {
	s := strings.TrimSpace(string(v))
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return nil
	}
	return &f
}

func parseAmount(v Value) *int64 {
	s := strings.TrimSpace(string(v))
	if s == "" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return nil
		}
		n = int64(f)
	}
	if n < 0 {
		return nil
	}
	return &n
}

func parseBool(v Value) bool {
	switch catalog.Key(string(v)) {
	case "1", "true", "si", "yes", "on":
		return true
	}
	return false
}

// parseBounds reads "minLng,minLat,maxLng,maxLat".
func parseBounds(v Value) *orb.Bound {
	parts := strings.Split(string(v), ",")
	if len(parts) != 4 {
		return nil
	}
	var nums [4]float64
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil
		}
		nums[i] = f
	}
	b := orb.MultiPoint{{nums[0], nums[1]}, {nums[2], nums[3]}}.Bound()
	return &b
}
