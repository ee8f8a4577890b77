package store

import (
	"fmt"
	"strings"

	"entgo.io/ent"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	entschema "github.com/abhisek/fluent/ent/schema"
)

var (
	// KVTable holds the schema information for the "kv" table. The key
	// column is the primary key.
	KVTable = newTable("kv", "", entschema.KV{}.Fields(), nil)

	// LLMRequestsTable holds the schema information for the "llm_requests" table.
	LLMRequestsTable = newTable("llm_requests", "llmrequest", entschema.LLMRequest{}.Fields(), entschema.LLMRequest{}.Indexes())

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		KVTable,
		LLMRequestsTable,
	}
)

// newTable converts ent field and index descriptors into a migration table.
// When indexPrefix is empty the first field is the primary key; otherwise an
// auto-increment "id" column is prepended.
func newTable(name, indexPrefix string, fields []ent.Field, indexes []ent.Index) *schema.Table {
	var cols []*schema.Column
	if indexPrefix != "" {
		cols = append(cols, &schema.Column{Name: "id", Type: field.TypeInt, Increment: true})
	}
	for _, f := range fields {
		cols = append(cols, column(f.Descriptor()))
	}

	t := &schema.Table{
		Name:       name,
		Columns:    cols,
		PrimaryKey: []*schema.Column{cols[0]},
	}
	for _, idx := range indexes {
		d := idx.Descriptor()
		var idxCols []*schema.Column
		for _, fname := range d.Fields {
			idxCols = append(idxCols, lookupColumn(cols, fname))
		}
		t.Indexes = append(t.Indexes, &schema.Index{
			Name:    indexPrefix + "_" + strings.Join(d.Fields, "_"),
			Unique:  d.Unique,
			Columns: idxCols,
		})
	}
	return t
}

func column(d *field.Descriptor) *schema.Column {
	c := &schema.Column{
		Name:     d.Name,
		Type:     d.Info.Type,
		Unique:   d.Unique,
		Nullable: d.Optional,
		Size:     int64(d.Size),
	}
	// Function defaults (time.Now) are applied by the repositories.
	switch d.Default.(type) {
	case int, int64, bool, string:
		c.Default = d.Default
	}
	return c
}

func lookupColumn(cols []*schema.Column, name string) *schema.Column {
	for _, c := range cols {
		if c.Name == name {
			return c
		}
	}
	panic(fmt.Sprintf("store: index on unknown column %q", name))
}
