package domain

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Имена query-параметров фильтра на страницах объявлений.
const (
	ParamCity         = "city"
	ParamMinPrice     = "min_price"
	ParamMaxPrice     = "max_price"
	ParamPropertyType = "property_type"
	ParamMinBed       = "min_bed"
	ParamMaxBed       = "max_bed"
	ParamMinBath      = "min_bath"
	ParamMaxBath      = "max_bath"
	ParamMinArea      = "min_area"
	ParamMaxArea      = "max_area"
)

// ListingFilter - набор необязательных ограничений поиска.
// nil или пустое значение означает отсутствие ограничения по измерению.
type ListingFilter struct {
	City          string
	MinPrice      *float64
	MaxPrice      *float64
	PropertyTypes []string
	MinBed        *int
	MaxBed        *int
	MinBath       *int
	MaxBath       *int
	MinArea       *float64
	MaxArea       *float64
}

// IsEmpty сообщает, что ни одно ограничение не задано.
func (f ListingFilter) IsEmpty() bool {
	return f.City == "" && f.MinPrice == nil && f.MaxPrice == nil && len(f.PropertyTypes) == 0 &&
		f.MinBed == nil && f.MaxBed == nil && f.MinBath == nil && f.MaxBath == nil &&
		f.MinArea == nil && f.MaxArea == nil
}

// ParseListingFilter читает фильтр из URL. Нечисловые и пустые значения считаются отсутствующими.
func ParseListingFilter(q url.Values) ListingFilter {
	f := ListingFilter{
		City:     q.Get(ParamCity),
		MinPrice: parseFloatParam(q, ParamMinPrice),
		MaxPrice: parseFloatParam(q, ParamMaxPrice),
		MinBed:   parseIntParam(q, ParamMinBed),
		MaxBed:   parseIntParam(q, ParamMaxBed),
		MinBath:  parseIntParam(q, ParamMinBath),
		MaxBath:  parseIntParam(q, ParamMaxBath),
		MinArea:  parseFloatParam(q, ParamMinArea),
		MaxArea:  parseFloatParam(q, ParamMaxArea),
	}
	if pt := q.Get(ParamPropertyType); pt != "" {
		f.PropertyTypes = []string{pt}
	}
	return f
}

// Values кодирует фильтр обратно в URL. Из списка типов передается только первый.
func (f ListingFilter) Values() url.Values {
	q := url.Values{}
	if f.City != "" {
		q.Set(ParamCity, f.City)
	}
	setFloatParam(q, ParamMinPrice, f.MinPrice)
	setFloatParam(q, ParamMaxPrice, f.MaxPrice)
	if len(f.PropertyTypes) > 0 && f.PropertyTypes[0] != "" {
		q.Set(ParamPropertyType, f.PropertyTypes[0])
	}
	setIntParam(q, ParamMinBed, f.MinBed)
	setIntParam(q, ParamMaxBed, f.MaxBed)
	setIntParam(q, ParamMinBath, f.MinBath)
	setIntParam(q, ParamMaxBath, f.MaxBath)
	setFloatParam(q, ParamMinArea, f.MinArea)
	setFloatParam(q, ParamMaxArea, f.MaxArea)
	return q
}

// Normalized возвращает копию фильтра с нормализованным городом и типами в нижнем регистре.
func (f ListingFilter) Normalized() ListingFilter {
	out := f
	out.City = NormalizeCity(f.City)
	if len(f.PropertyTypes) > 0 {
		out.PropertyTypes = make([]string, 0, len(f.PropertyTypes))
		for _, pt := range f.PropertyTypes {
			if pt = strings.ToLower(strings.TrimSpace(pt)); pt != "" {
				out.PropertyTypes = append(out.PropertyTypes, pt)
			}
		}
		if len(out.PropertyTypes) == 0 {
			out.PropertyTypes = nil
		}
	}
	return out
}

func parseFloatParam(q url.Values, key string) *float64 {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func parseIntParam(q url.Values, key string) *int {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}

func setFloatParam(q url.Values, key string, v *float64) {
	if v == nil {
		return
	}
	q.Set(key, strconv.FormatFloat(*v, 'f', -1, 64))
}

func setIntParam(q url.Values, key string, v *int) {
	if v == nil {
		return
	}
	q.Set(key, strconv.Itoa(*v))
}

// Matches повторяет SQL предикат поиска для одного объявления.
// NULL в bed/bath/area не проходит заданное ограничение, как и в SQL.
func (f ListingFilter) Matches(listingType ListingType, p Property) bool {
	if p.Status != StatusPublished || p.ListingType != listingType {
		return false
	}
	if f.City != "" && p.City != f.City {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if len(f.PropertyTypes) > 0 && !containsString(f.PropertyTypes, string(p.PropertyType)) {
		return false
	}
	if !intAtLeast(p.Bed, f.MinBed) || !intAtMost(p.Bed, f.MaxBed) {
		return false
	}
	if !intAtLeast(p.Bath, f.MinBath) || !intAtMost(p.Bath, f.MaxBath) {
		return false
	}
	if f.MinArea != nil && (p.Area == nil || *p.Area < *f.MinArea) {
		return false
	}
	if f.MaxArea != nil && (p.Area == nil || *p.Area > *f.MaxArea) {
		return false
	}
	return true
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func intAtLeast(v, min *int) bool {
	return min == nil || (v != nil && *v >= *min)
}

func intAtMost(v, max *int) bool {
	return max == nil || (v != nil && *v <= *max)
}
