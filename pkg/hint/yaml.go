package hint

import (
	"fmt"
	"reflect"

	"gopkg.in/yaml.v3"

	"github.com/hintcheck/hintcheck/pkg/hinterr"
)

// classNames maps the scalar class names accepted in YAML hint documents to
// their runtime types. YAML scalars decode to int, float64, string and bool,
// so hints written with these names line up with YAML-decoded values.
var classNames = map[string]reflect.Type{
	"int":     reflect.TypeOf(int(0)),
	"int8":    reflect.TypeOf(int8(0)),
	"int16":   reflect.TypeOf(int16(0)),
	"int32":   reflect.TypeOf(int32(0)),
	"int64":   reflect.TypeOf(int64(0)),
	"uint":    reflect.TypeOf(uint(0)),
	"uint8":   reflect.TypeOf(uint8(0)),
	"uint16":  reflect.TypeOf(uint16(0)),
	"uint32":  reflect.TypeOf(uint32(0)),
	"uint64":  reflect.TypeOf(uint64(0)),
	"float32": reflect.TypeOf(float32(0)),
	"float":   reflect.TypeOf(float64(0)),
	"float64": reflect.TypeOf(float64(0)),
	"string":  reflect.TypeOf(""),
	"bool":    reflect.TypeOf(false),
	"bytes":   reflect.TypeOf([]byte(nil)),
}

// yamlNode is the YAML shape of one hint. Exactly one field must be set.
type yamlNode struct {
	Class   string       `yaml:"class,omitempty"`
	Any     bool         `yaml:"any,omitempty"`
	Union   []yamlNode   `yaml:"union,omitempty"`
	Slice   *yamlNode    `yaml:"slice,omitempty"`
	Map     *yamlMapNode `yaml:"map,omitempty"`
	Literal []any        `yaml:"literal,omitempty"`
	Ref     string       `yaml:"ref,omitempty"`
	Proto   string       `yaml:"proto,omitempty"`
}

type yamlMapNode struct {
	Key   yamlNode `yaml:"key"`
	Value yamlNode `yaml:"value"`
}

func (n yamlNode) categories() int {
	count := 0
	if n.Class != "" {
		count++
	}
	if n.Any {
		count++
	}
	if len(n.Union) > 0 {
		count++
	}
	if n.Slice != nil {
		count++
	}
	if n.Map != nil {
		count++
	}
	if len(n.Literal) > 0 {
		count++
	}
	if n.Ref != "" {
		count++
	}
	if n.Proto != "" {
		count++
	}
	return count
}

// FromYAML decodes a YAML hint document, e.g.:
//
//	union:
//	  - class: int
//	  - literal: ["a", "b"]
//
// Decoding errors and unknown class names are hint-validity errors.
func FromYAML(data []byte) (Hint, error) {
	var node yamlNode
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("%w: decoding hint document: %v", hinterr.ErrHint, err)
	}
	return node.toHint()
}

func (n yamlNode) toHint() (Hint, error) {
	if n.categories() > 1 {
		return nil, &hinterr.SignError{Hint: "{...}", Detail: "hint document sets more than one category"}
	}
	switch {
	case n.Class != "":
		t, ok := classNames[n.Class]
		if !ok {
			return nil, &hinterr.SignError{
				Hint:   "class(" + n.Class + ")",
				Detail: "unknown class name",
			}
		}
		return ClassHint{Type: t}, nil
	case n.Any:
		return AnyHint{}, nil
	case len(n.Union) > 0:
		alts := make([]Hint, len(n.Union))
		for i, sub := range n.Union {
			alt, err := sub.toHint()
			if err != nil {
				return nil, err
			}
			alts[i] = alt
		}
		return UnionHint{Alternatives: alts}, nil
	case n.Slice != nil:
		elem, err := n.Slice.toHint()
		if err != nil {
			return nil, err
		}
		return SequenceHint{Elem: elem}, nil
	case n.Map != nil:
		key, err := n.Map.Key.toHint()
		if err != nil {
			return nil, err
		}
		value, err := n.Map.Value.toHint()
		if err != nil {
			return nil, err
		}
		return MappingHint{KeyHint: key, ValueHint: value}, nil
	case len(n.Literal) > 0:
		// YAML can smuggle sequences and mappings into the literal list;
		// classify now so an unusable literal set never leaves the decoder.
		lit := Literal(n.Literal...)
		if _, err := SignOf(lit); err != nil {
			return nil, err
		}
		return lit, nil
	case n.Ref != "":
		return RefHint{Name: n.Ref}, nil
	case n.Proto != "":
		return ProtoHint{Message: n.Proto}, nil
	default:
		return nil, &hinterr.SignError{Hint: "{}", Detail: "hint document sets no recognized category"}
	}
}
