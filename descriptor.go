package ormlite

import "fmt"

// StorageType is the SQLite column affinity a ColumnDescriptor maps onto.
type StorageType int

const (
	StorageInteger StorageType = iota
	StorageReal
	StorageText
	StorageBlob
	StorageNull
)

// String returns the SQL affinity keyword for the storage type.
func (s StorageType) String() string {
	switch s {
	case StorageInteger:
		return "integer"
	case StorageReal:
		return "real"
	case StorageText:
		return "text"
	case StorageBlob:
		return "blob"
	case StorageNull:
		return "null"
	default:
		return "text"
	}
}

// IndexParticipation describes one column's membership in a named index.
type IndexParticipation struct {
	// IndexName, when empty, defaults to "<table>_<column>" at schema-build time.
	IndexName string
	// Order controls column position within a composite index (ascending).
	Order  int
	Unique bool
}

// ColumnDescriptor describes one mapped field of a record type. Get/Set are
// closures provided by whatever builds the descriptor; the core never
// introspects the record type itself.
type ColumnDescriptor struct {
	Name             string
	Storage          StorageType
	IsPrimaryKey     bool
	IsAutoIncrement  bool
	IsNullable       bool
	IsUnique         bool
	Collation        string
	DefaultExpr      string
	MaxLength        int
	Indices          []IndexParticipation
	Get              func(record any) any
	Set              func(record any, value any)
	// IsTime marks a date/time column; the wire representation is chosen by
	// Storage (StorageText: ISO-8601; StorageInteger: Unix ticks) combined
	// with TimeAsTicks.
	IsTime bool
	// TimeAsTicks, when true and Storage is StorageInteger, stores time.Time
	// values as Unix ticks instead of ISO-8601 text.
	TimeAsTicks bool
	// IsBool marks a boolean column stored under StorageInteger as 0/1.
	IsBool bool
	// EnumAsText marks an enum-like column as holding text labels rather
	// than integer ordinals. Binding and decoding follow Storage alone and
	// do not read this field: the Get closure supplies the label or ordinal,
	// and Storage must be StorageText for labels, StorageInteger for ordinals.
	EnumAsText bool
}

// SQLDeclaration renders the per-column fragment of a CREATE TABLE /
// ALTER TABLE ADD COLUMN statement: "name" storage [PRIMARY KEY
// [AUTOINCREMENT]] [NOT NULL] [UNIQUE] [COLLATE c] [DEFAULT expr].
func (c ColumnDescriptor) SQLDeclaration() string {
	decl := fmt.Sprintf("%s %s", quoteIdent(c.Name), c.Storage.String())
	if c.IsPrimaryKey {
		decl += " PRIMARY KEY"
		if c.IsAutoIncrement {
			decl += " AUTOINCREMENT"
		}
	}
	if !c.IsNullable {
		decl += " NOT NULL"
	}
	if c.IsUnique && !c.IsPrimaryKey {
		decl += " UNIQUE"
	}
	if c.Collation != "" {
		decl += " COLLATE " + c.Collation
	}
	if c.DefaultExpr != "" {
		decl += " DEFAULT " + c.DefaultExpr
	}
	return decl
}

// IndexSpec is a resolved, named index over one or more columns.
type IndexSpec struct {
	Name    string
	Columns []string
	Unique  bool
}

// RelationSpec is the many-to-many child-writeback hook. The core treats
// WriteChildren as opaque: it is invoked after a successful insert or
// update and is expected to persist join-table rows for obj.
type RelationSpec struct {
	Name          string
	WriteChildren func(conn *Connection, obj any) error
}

// TableDescriptor is an immutable description of a table schema and how to
// read/write instances of the record type it maps. Callers build one per
// record type (by hand, or via the descriptorbuilder package) and share it
// across connections.
type TableDescriptor struct {
	TableName        string
	Columns          []ColumnDescriptor
	Relations        []RelationSpec
	PrimaryKeyIndex  int // index into Columns, or -1 if none
	HasAutoIncPK     bool
}

// NewTableDescriptor validates and returns a TableDescriptor. It enforces
// the invariant that at most one auto-increment primary key exists and
// that its storage type is integer.
func NewTableDescriptor(tableName string, columns []ColumnDescriptor, relations ...RelationSpec) (*TableDescriptor, error) {
	td := &TableDescriptor{
		TableName:       tableName,
		Columns:         columns,
		Relations:       relations,
		PrimaryKeyIndex: -1,
	}
	autoIncCount := 0
	for i, c := range columns {
		if c.IsPrimaryKey && td.PrimaryKeyIndex == -1 {
			td.PrimaryKeyIndex = i
		}
		if c.IsAutoIncrement {
			autoIncCount++
			if c.Storage != StorageInteger {
				return nil, &SchemaError{Table: tableName, Reason: fmt.Sprintf("auto-increment column %q must be integer storage", c.Name)}
			}
			td.HasAutoIncPK = true
		}
	}
	if autoIncCount > 1 {
		return nil, &SchemaError{Table: tableName, Reason: "at most one auto-increment primary key is allowed"}
	}
	return td, nil
}

// PrimaryKeyColumn returns the primary key column descriptor, if any.
func (td *TableDescriptor) PrimaryKeyColumn() (ColumnDescriptor, bool) {
	if td.PrimaryKeyIndex < 0 {
		return ColumnDescriptor{}, false
	}
	return td.Columns[td.PrimaryKeyIndex], true
}

// InsertColumns returns the default insert column set: every column except
// an auto-increment primary key.
func (td *TableDescriptor) InsertColumns() []ColumnDescriptor {
	cols := make([]ColumnDescriptor, 0, len(td.Columns))
	for _, c := range td.Columns {
		if c.IsAutoIncrement {
			continue
		}
		cols = append(cols, c)
	}
	return cols
}

// NonPrimaryKeyColumns returns every column that is not the primary key.
func (td *TableDescriptor) NonPrimaryKeyColumns() []ColumnDescriptor {
	cols := make([]ColumnDescriptor, 0, len(td.Columns))
	for i, c := range td.Columns {
		if i == td.PrimaryKeyIndex {
			continue
		}
		cols = append(cols, c)
	}
	return cols
}

func quoteIdent(name string) string {
	return `"` + name + `"`
}

func quoteLiteral(s string) string {
	escaped := ""
	for _, r := range s {
		if r == '\'' {
			escaped += "''"
		} else {
			escaped += string(r)
		}
	}
	return "'" + escaped + "'"
}
