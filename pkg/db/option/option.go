// Package option provides composable gorm query modifiers used by the
// generic repository.
package option

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

type Operator string

const (
	EQ  Operator = "="
	GT  Operator = ">"
	GTE Operator = ">="
	LT  Operator = "<"
	LTE Operator = "<="
)

type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

type Condition struct {
	Field    string
	Operator Operator
	Value    any
}

func (c Condition) Apply(db *gorm.DB) *gorm.DB {
	return db.Where(fmt.Sprintf("%s %s ?", c.Field, c.Operator), c.Value)
}

// ApplyOperator wraps a Condition as a QueryOption.
func ApplyOperator(c Condition) QueryOption { return c }

// QuerySortBy restricts ordering to an allow-list of columns.
type QuerySortBy struct {
	Field string
	Desc  bool
	Allow map[string]bool
}

func (s QuerySortBy) Apply(db *gorm.DB) *gorm.DB {
	field := strings.TrimSpace(s.Field)
	if field == "" {
		field = "created_at"
	}
	if s.Allow != nil && !s.Allow[field] {
		field = "created_at"
	}
	direction := "ASC"
	if s.Desc {
		direction = "DESC"
	}
	return db.Order(fmt.Sprintf("%s %s", field, direction))
}

func WithSortBy(s QuerySortBy) QueryOption { return s }

type limitOption struct {
	limit int
}

func (l limitOption) Apply(db *gorm.DB) *gorm.DB {
	if l.limit <= 0 {
		return db
	}
	return db.Limit(l.limit)
}

func WithLimit(limit int) QueryOption { return limitOption{limit: limit} }
