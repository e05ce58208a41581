package hint

import (
	"testing"
)

// FuzzFromYAML feeds arbitrary documents to the hint decoder: it must either
// return a hint that classifies under exactly one sign with a stable key, or
// reject the document with an error. It must never panic.
func FuzzFromYAML(f *testing.F) {
	f.Add([]byte("class: int"))
	f.Add([]byte("union:\n  - class: int\n  - literal: [\"a\", \"b\"]"))
	f.Add([]byte("slice:\n  map:\n    key: {class: string}\n    value: {any: true}"))
	f.Add([]byte("literal: [1, 2.5, true]"))
	f.Add([]byte("literal: [[1]]"))
	f.Add([]byte("ref: User"))
	f.Add([]byte("{}"))
	f.Add([]byte(":"))

	f.Fuzz(func(t *testing.T, data []byte) {
		h, err := FromYAML(data)
		if err != nil {
			return // rejected documents are fine, panics are not
		}
		sign, err := SignOf(h)
		if err != nil || sign == SignNone {
			t.Errorf("decoded hint %s does not classify: sign %s, err %v", h, sign, err)
			return
		}
		if h.Key() != h.Key() {
			t.Errorf("hint %s has an unstable key", h)
		}
	})
}
