package model

import "encoding/json"

// canonicalMarshal produces the canonical byte encoding of v. Go's
// encoding/json marshals struct fields in declaration order (never map
// iteration order), so as long as every canonical struct's fields are
// declared in the order spec.md §4.2 specifies, two independent builds of
// this code emit byte-identical output for the same logical record -
// exactly the guarantee canonical encoding requires.
func canonicalMarshal(v any) ([]byte, error) {
	return json.Marshal(v)
}
