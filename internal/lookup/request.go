package lookup

import (
	"errors"

	"github.com/tidwall/gjson"
)

// Arguments are the tool-call parameters of a price lookup.
type Arguments struct {
	State     string `json:"state" jsonschema:"minLength=1,description=Indian state name e.g. Punjab"`
	District  string `json:"district" jsonschema:"minLength=1,description=District within the state e.g. Ludhiana"`
	Commodity string `json:"commodity" jsonschema:"minLength=1,description=Commodity name as listed by Agmarknet e.g. Wheat"`
}

// ParseToolCall extracts Arguments from a {"call":{"arguments":{...}}} body.
// It does not check that the arguments are filled in; see Validate.
func ParseToolCall(body []byte) (Arguments, error) {
	if len(body) == 0 {
		return Arguments{}, &Error{Kind: InvalidRequestFormat, Err: errors.New("empty body")}
	}
	if !gjson.ValidBytes(body) {
		return Arguments{}, &Error{Kind: InvalidRequestFormat, Err: errors.New("body is not valid JSON")}
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return Arguments{}, &Error{Kind: InvalidRequestFormat, Err: errors.New("body is not an object")}
	}
	call := root.Get("call")
	if !call.IsObject() {
		return Arguments{}, &Error{Kind: InvalidRequestFormat, Err: errors.New("call missing")}
	}
	args := call.Get("arguments")
	if !args.IsObject() {
		return Arguments{}, &Error{Kind: InvalidRequestFormat, Err: errors.New("call.arguments missing")}
	}
	return Arguments{
		State:     scalar(args.Get("state")),
		District:  scalar(args.Get("district")),
		Commodity: scalar(args.Get("commodity")),
	}, nil
}

// scalar renders strings and numbers as text; anything else counts as absent.
func scalar(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Number:
		return v.Raw
	}
	return ""
}

// Validate reports MissingParameters unless all three arguments are non-empty.
func (a Arguments) Validate() error {
	if a.State == "" || a.District == "" || a.Commodity == "" {
		return &Error{Kind: MissingParameters}
	}
	return nil
}
