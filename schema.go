package ormlite

import (
	"fmt"
	"sort"
	"strings"
)

// buildCreateTableSQL renders "CREATE TABLE IF NOT EXISTS "<t>"(...)" from a
// TableDescriptor: column declarations joined by commas, in descriptor
// order.
func buildCreateTableSQL(td *TableDescriptor) string {
	decls := make([]string, 0, len(td.Columns))
	for _, c := range td.Columns {
		decls = append(decls, c.SQLDeclaration())
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s(%s)", quoteIdent(td.TableName), strings.Join(decls, ", "))
}

// buildIndexSQL resolves the per-column Indices annotations into named,
// possibly multi-column IndexSpecs, then renders one "CREATE [UNIQUE]
// INDEX IF NOT EXISTS" statement per index, columns ordered ascending by
// IndexParticipation.Order. Multi-column indices whose participating
// columns disagree on uniqueness are a SchemaError.
func buildIndexSQL(td *TableDescriptor) ([]string, error) {
	specs, err := resolveIndexSpecs(td)
	if err != nil {
		return nil, err
	}
	stmts := make([]string, 0, len(specs))
	for _, spec := range specs {
		uniqueKw := ""
		if spec.Unique {
			uniqueKw = "UNIQUE "
		}
		quotedCols := make([]string, len(spec.Columns))
		for i, c := range spec.Columns {
			quotedCols[i] = quoteIdent(c)
		}
		stmts = append(stmts, fmt.Sprintf(
			"CREATE %sINDEX IF NOT EXISTS %s ON %s(%s)",
			uniqueKw, quoteIdent(spec.Name), quoteIdent(td.TableName), strings.Join(quotedCols, ","),
		))
	}
	return stmts, nil
}

type indexColumn struct {
	column string
	order  int
	unique bool
}

func resolveIndexSpecs(td *TableDescriptor) ([]IndexSpec, error) {
	byName := map[string][]indexColumn{}
	// preserve first-seen order of index names for deterministic output
	var order []string
	for _, c := range td.Columns {
		for _, idx := range c.Indices {
			name := idx.IndexName
			if name == "" {
				name = fmt.Sprintf("%s_%s", td.TableName, c.Name)
			}
			if _, seen := byName[name]; !seen {
				order = append(order, name)
			}
			byName[name] = append(byName[name], indexColumn{column: c.Name, order: idx.Order, unique: idx.Unique})
		}
	}

	specs := make([]IndexSpec, 0, len(order))
	for _, name := range order {
		cols := byName[name]
		unique := cols[0].unique
		for _, c := range cols[1:] {
			if c.unique != unique {
				return nil, &SchemaError{
					Table:  td.TableName,
					Reason: fmt.Sprintf("index %q has columns disagreeing on uniqueness", name),
				}
			}
		}
		sort.SliceStable(cols, func(i, j int) bool { return cols[i].order < cols[j].order })
		columnNames := make([]string, len(cols))
		for i, c := range cols {
			columnNames[i] = c.column
		}
		specs = append(specs, IndexSpec{Name: name, Columns: columnNames, Unique: unique})
	}
	return specs, nil
}
