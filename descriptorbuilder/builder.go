// Package descriptorbuilder derives ormlite TableDescriptors from struct
// types. Reflection happens once, at registration time, to build the
// column list and its get/set closures; the descriptors it hands back
// never introspect records per row.
package descriptorbuilder

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/g960059/ormlite"
)

// Tag is the struct tag key the builder reads: `orm:"name,opt,opt=..."`.
// The first element is the column name (empty means the lower-cased field
// name, "-" skips the field). Recognized options: pk, autoinc, nullable,
// unique, ticks, collate=<c>, default=<expr>, index=<name>,
// unique_index=<name>.
const Tag = "orm"

var (
	mu    sync.Mutex
	cache = map[reflect.Type]*ormlite.TableDescriptor{}
)

// FromStruct builds (and memoizes, per struct type) a TableDescriptor for
// prototype, which must be a pointer to a struct. Records passed to the
// descriptor's Get/Set closures must be pointers to the same struct type.
func FromStruct(tableName string, prototype any) (*ormlite.TableDescriptor, error) {
	t := reflect.TypeOf(prototype)
	if t == nil || t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("descriptorbuilder: prototype must be a pointer to struct, got %T", prototype)
	}

	mu.Lock()
	if td, ok := cache[t]; ok {
		mu.Unlock()
		if td.TableName != tableName {
			return nil, fmt.Errorf("descriptorbuilder: %s is already registered as table %q", t, td.TableName)
		}
		return td, nil
	}
	mu.Unlock()

	td, err := build(tableName, t.Elem())
	if err != nil {
		return nil, err
	}

	mu.Lock()
	defer mu.Unlock()
	if existing, ok := cache[t]; ok {
		return existing, nil
	}
	cache[t] = td
	return td, nil
}

func build(tableName string, st reflect.Type) (*ormlite.TableDescriptor, error) {
	var cols []ormlite.ColumnDescriptor
	for i := 0; i < st.NumField(); i++ {
		field := st.Field(i)
		if !field.IsExported() {
			continue
		}
		col, skip, err := buildColumn(field, i)
		if err != nil {
			return nil, fmt.Errorf("descriptorbuilder: field %s.%s: %w", st.Name(), field.Name, err)
		}
		if skip {
			continue
		}
		cols = append(cols, col)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("descriptorbuilder: struct %s has no mappable fields", st.Name())
	}
	return ormlite.NewTableDescriptor(tableName, cols)
}

func buildColumn(field reflect.StructField, index int) (ormlite.ColumnDescriptor, bool, error) {
	name := strings.ToLower(field.Name)
	var opts []string
	if tag, ok := field.Tag.Lookup(Tag); ok {
		parts := strings.Split(tag, ",")
		if parts[0] == "-" {
			return ormlite.ColumnDescriptor{}, true, nil
		}
		if parts[0] != "" {
			name = parts[0]
		}
		opts = parts[1:]
	}

	col := ormlite.ColumnDescriptor{Name: name}

	ft := field.Type
	if ft.Kind() == reflect.Pointer {
		col.IsNullable = true
		ft = ft.Elem()
	}
	if err := applyFieldType(&col, ft); err != nil {
		return ormlite.ColumnDescriptor{}, false, err
	}

	for _, opt := range opts {
		key, val, _ := strings.Cut(opt, "=")
		switch key {
		case "pk":
			col.IsPrimaryKey = true
		case "autoinc":
			col.IsPrimaryKey = true
			col.IsAutoIncrement = true
		case "nullable":
			col.IsNullable = true
		case "unique":
			col.IsUnique = true
		case "ticks":
			if !col.IsTime {
				return ormlite.ColumnDescriptor{}, false, fmt.Errorf("option %q only applies to time.Time fields", key)
			}
			col.Storage = ormlite.StorageInteger
			col.TimeAsTicks = true
		case "collate":
			col.Collation = val
		case "default":
			col.DefaultExpr = val
		case "index":
			col.Indices = append(col.Indices, ormlite.IndexParticipation{IndexName: val})
		case "unique_index":
			col.Indices = append(col.Indices, ormlite.IndexParticipation{IndexName: val, Unique: true})
		case "":
		default:
			return ormlite.ColumnDescriptor{}, false, fmt.Errorf("unknown tag option %q", key)
		}
	}

	col.Get = makeGetter(index, field.Type)
	col.Set = makeSetter(index, field.Type)
	return col, false, nil
}

var timeType = reflect.TypeOf(time.Time{})

func applyFieldType(col *ormlite.ColumnDescriptor, ft reflect.Type) error {
	if ft == timeType {
		col.IsTime = true
		col.Storage = ormlite.StorageText
		return nil
	}
	switch ft.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		col.Storage = ormlite.StorageInteger
	case reflect.Float32, reflect.Float64:
		col.Storage = ormlite.StorageReal
	case reflect.String:
		col.Storage = ormlite.StorageText
	case reflect.Bool:
		col.Storage = ormlite.StorageInteger
		col.IsBool = true
	case reflect.Slice:
		if ft.Elem().Kind() != reflect.Uint8 {
			return fmt.Errorf("unsupported slice type %s", ft)
		}
		col.Storage = ormlite.StorageBlob
		col.IsNullable = true
	default:
		return fmt.Errorf("unsupported field type %s", ft)
	}
	return nil
}

// makeGetter returns a closure reading field index of a record pointer.
// Pointer fields dereference to their element value, or nil when unset,
// so NULL binding works without the caller special-casing.
func makeGetter(index int, ft reflect.Type) func(record any) any {
	if ft.Kind() == reflect.Pointer {
		return func(record any) any {
			fv := reflect.ValueOf(record).Elem().Field(index)
			if fv.IsNil() {
				return nil
			}
			return fv.Elem().Interface()
		}
	}
	return func(record any) any {
		return reflect.ValueOf(record).Elem().Field(index).Interface()
	}
}

// makeSetter returns a closure writing field index of a record pointer,
// converting the decoded value (int64, float64, string, []byte, bool,
// time.Time) to the field's declared type.
func makeSetter(index int, ft reflect.Type) func(record any, value any) {
	if ft.Kind() == reflect.Pointer {
		elem := ft.Elem()
		return func(record any, value any) {
			fv := reflect.ValueOf(record).Elem().Field(index)
			if value == nil {
				fv.Set(reflect.Zero(ft))
				return
			}
			p := reflect.New(elem)
			p.Elem().Set(reflect.ValueOf(value).Convert(elem))
			fv.Set(p)
		}
	}
	return func(record any, value any) {
		fv := reflect.ValueOf(record).Elem().Field(index)
		if value == nil {
			fv.Set(reflect.Zero(ft))
			return
		}
		fv.Set(reflect.ValueOf(value).Convert(ft))
	}
}
