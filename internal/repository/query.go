package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// applyPagination 应用分页参数，统一处理非法页码与偏移量。
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if query == nil || pageSize <= 0 {
		return query
	}
	if page < 1 {
		page = 1
	}
	return query.Limit(pageSize).Offset((page - 1) * pageSize)
}

// applyCreatedRange 按创建时间区间过滤。
func applyCreatedRange(query *gorm.DB, column string, from, to *time.Time) *gorm.DB {
	if from != nil {
		query = query.Where(column+" >= ?", *from)
	}
	if to != nil {
		query = query.Where(column+" <= ?", *to)
	}
	return query
}

// dbDialectName 获取数据库方言名称，默认按 sqlite 处理。
func dbDialectName(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return "sqlite"
	}
	name := strings.ToLower(strings.TrimSpace(db.Dialector.Name()))
	if name == "" {
		return "sqlite"
	}
	return name
}

// likeOperator 返回大小写不敏感的模糊匹配运算符。
// sqlite 的 LIKE 对 ASCII 默认不区分大小写，postgres 需要 ILIKE。
func likeOperator(db *gorm.DB) string {
	switch dbDialectName(db) {
	case "postgres", "postgresql":
		return "ILIKE"
	default:
		return "LIKE"
	}
}

// applySearch 构建多列 OR 模糊匹配条件。
func applySearch(query *gorm.DB, db *gorm.DB, keyword string, columns ...string) *gorm.DB {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" || len(columns) == 0 {
		return query
	}
	operator := likeOperator(db)
	parts := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns))
	like := "%" + keyword + "%"
	for _, column := range columns {
		parts = append(parts, fmt.Sprintf("%s %s ?", column, operator))
		args = append(args, like)
	}
	return query.Where("("+strings.Join(parts, " OR ")+")", args...)
}

// orderClause 将 "-field" 形式的排序参数转换为 SQL 排序子句，字段需在白名单内。
func orderClause(sort string, allowed map[string]string, fallback string) string {
	sort = strings.TrimSpace(sort)
	desc := strings.HasPrefix(sort, "-")
	column, ok := allowed[strings.TrimPrefix(sort, "-")]
	if !ok {
		return fallback
	}
	if desc {
		return column + " DESC"
	}
	return column + " ASC"
}

// firstOrNil 取第一条记录，未找到时返回 nil, nil
func firstOrNil[T any](query *gorm.DB) (*T, error) {
	var row T
	if err := query.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}
