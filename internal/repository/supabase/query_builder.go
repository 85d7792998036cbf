package supabase

import (
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// psql renders $n placeholders for pgx.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// filtered applies each predicate as its own AND-ed WHERE part.
func filtered(b sq.SelectBuilder, preds []sq.Sqlizer) sq.SelectBuilder {
	for _, p := range preds {
		b = b.Where(p)
	}
	return b
}

// orderBy sorts on column, with tie breaking equal keys so pages are stable.
func orderBy(b sq.SelectBuilder, column, tie string, desc bool) sq.SelectBuilder {
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	return b.OrderBy(column+" "+dir, tie)
}

// paginate applies LIMIT and OFFSET; negative values count as zero.
func paginate(b sq.SelectBuilder, limit, offset int) sq.SelectBuilder {
	return b.Limit(uint64(max(limit, 0))).Offset(uint64(max(offset, 0)))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern matches term anywhere, with its LIKE wildcards taken literally.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
