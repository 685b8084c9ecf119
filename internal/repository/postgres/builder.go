package postgres

import (
	"strconv"
	"strings"
)

// queryBuilder собирает запрос из именованных CTE.
// Значения никогда не вклеиваются в SQL: фрагмент получает плейсхолдер через Arg,
// поэтому нумерация $n сквозная для всех CTE.
type queryBuilder struct {
	ctes []namedCTE
	args []interface{}
}

type namedCTE struct {
	name string
	body string
}

func newQueryBuilder() *queryBuilder {
	return &queryBuilder{}
}

// Arg регистрирует значение и возвращает его плейсхолдер
func (b *queryBuilder) Arg(v interface{}) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

// With добавляет CTE; порядок добавления сохраняется
func (b *queryBuilder) With(name, body string) *queryBuilder {
	b.ctes = append(b.ctes, namedCTE{name: name, body: body})
	return b
}

// Build возвращает итоговый SQL и аргументы
func (b *queryBuilder) Build(final string) (string, []interface{}) {
	var sb strings.Builder
	if len(b.ctes) > 0 {
		sb.WriteString("WITH ")
		for i, c := range b.ctes {
			if i > 0 {
				sb.WriteString(",\n")
			}
			sb.WriteString(c.name)
			sb.WriteString(" AS (\n")
			sb.WriteString(strings.TrimSpace(c.body))
			sb.WriteString("\n)")
		}
		sb.WriteString("\n")
	}
	sb.WriteString(strings.TrimSpace(final))
	return sb.String(), b.args
}
