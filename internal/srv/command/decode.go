package command

import (
	"bytes"
	"encoding/json"
	"errors"
	"github.com/jypelle/piratedisplay/apimodel"
	"io"
	"math"
	"strconv"
	"strings"
)

// Decode parses a request and checks it against the schema. Only the structure is validated:
// values are checked by the target.
func Decode(raw []byte) (Command, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var request map[string]interface{}
	if err := decoder.Decode(&request); err != nil {
		return nil, apimodel.NewException(apimodel.MalformedRequest, "message is not a json object: %v", err)
	}
	if _, err := decoder.Token(); err != io.EOF {
		return nil, apimodel.NewException(apimodel.MalformedRequest, "message contains data after the json object")
	}
	if request == nil {
		return nil, apimodel.NewException(apimodel.MalformedRequest, "message is not a json object")
	}

	rawName, ok := request["command"]
	if !ok {
		return nil, apimodel.NewException(apimodel.MissingCommand, "message does not contain a command")
	}
	name, ok := rawName.(string)
	if !ok {
		return nil, typeMismatch("message", "command", StringField, rawName)
	}

	entry, ok := schema[name]
	if !ok {
		return nil, apimodel.NewException(apimodel.UnknownCommand, "unknown command %q", name)
	}

	values := make(Values, len(entry.fields))
	for _, field := range entry.fields {
		rawValue, ok := request[field.Name]
		if !ok {
			return nil, apimodel.NewException(apimodel.MissingField, "%q does not contain required field: %q", name, field.Name)
		}
		value, ok := convert(field.Type, rawValue)
		if !ok {
			return nil, typeMismatch(name, field.Name, field.Type, rawValue)
		}
		values[field.Name] = value
	}
	return entry.build(values), nil
}

func convert(fieldType FieldType, rawValue interface{}) (interface{}, bool) {
	switch fieldType {
	case StringField:
		s, ok := rawValue.(string)
		return s, ok
	case IntegerField:
		number, ok := rawValue.(json.Number)
		if !ok {
			return nil, false
		}
		return integerValue(number)
	}
	return nil, false
}

// integerValue accepts integer literals only. Values out of the int range saturate.
func integerValue(number json.Number) (int, bool) {
	literal := number.String()
	if strings.ContainsAny(literal, ".eE") {
		return 0, false
	}
	i, err := strconv.ParseInt(literal, 10, 64)
	if err != nil {
		if !errors.Is(err, strconv.ErrRange) {
			return 0, false
		}
		if strings.HasPrefix(literal, "-") {
			return math.MinInt, true
		}
		return math.MaxInt, true
	}
	switch {
	case i > math.MaxInt:
		return math.MaxInt, true
	case i < math.MinInt:
		return math.MinInt, true
	}
	return int(i), true
}

func typeMismatch(name string, field string, expected FieldType, rawValue interface{}) error {
	return apimodel.NewException(apimodel.TypeMismatch, "%s[%q] must be %q not %q", name, field, expected.String(), jsonType(rawValue))
}

func jsonType(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number:
		if _, ok := integerValue(v); ok {
			return "integer"
		}
		return "number"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	default:
		return "unknown"
	}
}
