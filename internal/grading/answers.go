package grading

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// UnmarshalJSON accepts either an object keyed by question index
// ({"0":"Paris"}) or an array in question order. A null or non-string
// value still counts as answered and never matches a key.
func (a *Answers) UnmarshalJSON(b []byte) error {
	out := Answers{}
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*a = out
		return nil
	}
	if len(b) > 0 && b[0] == '[' {
		var arr []json.RawMessage
		if err := json.Unmarshal(b, &arr); err != nil {
			return err
		}
		for i, v := range arr {
			out[i] = answerText(v)
		}
		*a = out
		return nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	for k, v := range obj {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 {
			return fmt.Errorf("grading: answer key %q is not a question index", k)
		}
		out[i] = answerText(v)
	}
	*a = out
	return nil
}

func answerText(v json.RawMessage) string {
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return ""
	}
	return s
}
