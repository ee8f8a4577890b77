package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// KV holds the learner's JSON documents (profile, lesson progress, stats)
// keyed by name.
type KV struct {
	ent.Schema
}

func (KV) Fields() []ent.Field {
	return []ent.Field{
		field.String("key").
			Unique().
			Immutable().
			Comment("Storage key, e.g. profile or lesson_progress"),
		field.Text("value").
			Comment("JSON document"),
		field.Time("updated_at").
			Comment("Last write time"),
	}
}
