package postgres_adapter

import (
	"fmt"
	"strings"

	"marketplace-service/internal/core/domain"
)

type queryBuilder struct {
	conditions []string
	args       []interface{}
	argId      int
}

func newQueryBuilder(conditions ...string) *queryBuilder {
	return &queryBuilder{
		argId:      1,
		conditions: conditions,
		args:       make([]interface{}, 0),
	}
}

func (qb *queryBuilder) addCondition(condition string, fieldName string, arg interface{}) {
	qb.conditions = append(qb.conditions, fmt.Sprintf(condition, fieldName, qb.argId))
	qb.args = append(qb.args, arg)
	qb.argId++
}

// AddFloatFilter добавляет границы диапазона; nil граница пропускается
func (qb *queryBuilder) AddFloatFilter(fieldName string, min *float64, max *float64) {
	if min != nil {
		qb.addCondition("%s >= $%d", fieldName, *min)
	}
	if max != nil {
		qb.addCondition("%s <= $%d", fieldName, *max)
	}
}

func (qb *queryBuilder) AddIntFilter(fieldName string, min *int, max *int) {
	if min != nil {
		qb.addCondition("%s >= $%d", fieldName, *min)
	}
	if max != nil {
		qb.addCondition("%s <= $%d", fieldName, *max)
	}
}

// nextArg резервирует плейсхолдер для аргумента, который используется в выражении вручную
func (qb *queryBuilder) nextArg(arg interface{}) string {
	placeholder := fmt.Sprintf("$%d", qb.argId)
	qb.args = append(qb.args, arg)
	qb.argId++
	return placeholder
}

// build создает WHERE часть запроса и список аргументов
func (qb *queryBuilder) build() (string, []interface{}) {
	whereClause := ""
	if len(qb.conditions) > 0 {
		whereClause = "WHERE " + strings.Join(qb.conditions, " AND ")
	}
	return whereClause, qb.args
}

// applyListingFilter строит предикат поиска опубликованных объявлений.
// Сравнение с NULL в bed/bath/area дает NULL, такие строки отсекаются заданной границей.
func applyListingFilter(listingType domain.ListingType, filter domain.ListingFilter) (string, []interface{}) {
	qb := newQueryBuilder("p.status = 'published'")
	qb.addCondition("%s = $%d", "p.listing_type", string(listingType))

	if filter.City != "" {
		qb.addCondition("%s = $%d", "p.city", filter.City)
	}

	qb.AddFloatFilter("p.price", filter.MinPrice, filter.MaxPrice)

	if len(filter.PropertyTypes) > 0 {
		qb.addCondition("%s = ANY($%d)", "p.property_type", filter.PropertyTypes)
	}

	qb.AddIntFilter("p.bed", filter.MinBed, filter.MaxBed)
	qb.AddIntFilter("p.bath", filter.MinBath, filter.MaxBath)
	qb.AddFloatFilter("p.area", filter.MinArea, filter.MaxArea)

	return qb.build()
}

// applyOwnerFilter строит условие "объявления агента ИЛИ компании".
// ok=false, если не задан ни один владелец.
func applyOwnerFilter(owner domain.PropertyOwnerFilter) (string, []interface{}, bool) {
	qb := newQueryBuilder()

	var ownership []string
	if owner.AgentID != nil {
		ownership = append(ownership, "p.agent_id = "+qb.nextArg(*owner.AgentID))
	}
	if owner.CompanyID != nil {
		ownership = append(ownership, "p.company_id = "+qb.nextArg(*owner.CompanyID))
	}
	if len(ownership) == 0 {
		return "", nil, false
	}
	qb.conditions = append(qb.conditions, "("+strings.Join(ownership, " OR ")+")")

	if owner.PublishedOnly {
		qb.conditions = append(qb.conditions, "p.status = 'published'")
	}

	where, args := qb.build()
	return where, args, true
}
