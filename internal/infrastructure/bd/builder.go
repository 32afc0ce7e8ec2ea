package bd

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"cmms-system/pkg/types"
)

// Psql - билдер с плейсхолдерами $1, $2 для pgx.
var Psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// ApplyListParams применяет фильтры, сортировку и пагинацию. Поля, которых нет в allowedMap, игнорируются.
func ApplyListParams(builder sq.SelectBuilder, filter types.Filter, allowedMap map[string]string) sq.SelectBuilder {
	for jsonField, val := range filter.Filter {
		dbCol, ok := allowedMap[jsonField]
		if !ok {
			continue
		}

		if s, ok := val.(string); ok && strings.Contains(s, ",") {
			builder = builder.Where(sq.Eq{dbCol: strings.Split(s, ",")})
		} else {
			builder = builder.Where(sq.Eq{dbCol: val})
		}
	}

	if len(filter.Sort) > 0 {
		for jsonField, dir := range filter.Sort {
			dbCol, ok := allowedMap[jsonField]
			if !ok {
				continue
			}
			sqlDir := "ASC"
			if strings.ToLower(dir) == "desc" {
				sqlDir = "DESC"
			}
			builder = builder.OrderBy(fmt.Sprintf("%s %s", dbCol, sqlDir))
		}
	}

	if filter.WithPagination {
		if filter.Limit > 0 {
			builder = builder.Limit(uint64(filter.Limit))
		}
		if filter.Offset > 0 {
			builder = builder.Offset(uint64(filter.Offset))
		}
	}

	return builder
}

// ApplySearch добавляет ILIKE по любой из колонок.
func ApplySearch(builder sq.SelectBuilder, search string, columns ...string) sq.SelectBuilder {
	search = strings.TrimSpace(search)
	if search == "" || len(columns) == 0 {
		return builder
	}
	pat := "%" + search + "%"
	or := make(sq.Or, 0, len(columns))
	for _, col := range columns {
		or = append(or, sq.ILike{col: pat})
	}
	return builder.Where(or)
}

// CountFilter - копия фильтра без сортировки и пагинации для COUNT(*).
func CountFilter(filter types.Filter) types.Filter {
	countFilter := filter
	countFilter.WithPagination = false
	countFilter.Sort = nil
	return countFilter
}
