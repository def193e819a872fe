package command

import (
	"github.com/jypelle/piratedisplay/apimodel"
)

type FieldType int

const (
	StringField FieldType = iota
	IntegerField
)

func (t FieldType) String() string {
	switch t {
	case StringField:
		return "string"
	case IntegerField:
		return "integer"
	default:
		return "unknown"
	}
}

type Field struct {
	Name string
	Type FieldType
}

// Values holds the decoded required fields of a request: string for StringField, int for
// IntegerField.
type Values map[string]interface{}

func (v Values) String(name string) string {
	return v[name].(string)
}

func (v Values) Int(name string) int {
	return v[name].(int)
}

type schemaEntry struct {
	fields []Field
	build  func(v Values) Command
}

// schema is the only description of the accepted commands: decoding checks the fields listed
// here and routes to the command built by the entry.
var schema = map[string]schemaEntry{
	apimodel.CommandDrawIcon: {
		fields: []Field{{"icon", StringField}},
		build:  func(v Values) Command { return DrawIcon{Icon: v.String("icon")} },
	},
	apimodel.CommandClearIcon: {
		fields: []Field{{"icon", StringField}},
		build:  func(v Values) Command { return ClearIcon{Icon: v.String("icon")} },
	},
	apimodel.CommandDrawImage: {
		fields: []Field{{"relative_path", StringField}},
		build:  func(v Values) Command { return DrawImage{RelativePath: v.String("relative_path")} },
	},
	apimodel.CommandIconBarColor: {
		fields: []Field{{"r", IntegerField}, {"g", IntegerField}, {"b", IntegerField}, {"a", IntegerField}},
		build: func(v Values) Command {
			return SetIconBarColor{R: v.Int("r"), G: v.Int("g"), B: v.Int("b"), A: v.Int("a")}
		},
	},
	apimodel.CommandBacklight: {
		build: func(v Values) Command { return WakeBacklight{} },
	},
}

// Fields returns the required fields of a command name.
func Fields(name string) ([]Field, bool) {
	entry, ok := schema[name]
	return entry.fields, ok
}
