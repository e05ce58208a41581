package hint

import (
	"fmt"
	"sync"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/protobuf/proto"
)

// Process-wide registry of message descriptors loaded from .proto files.
// Compiled generated messages carry their own descriptors and do not need
// the registry; it exists so dynamic messages can be built and checked
// without generated code.
var (
	protoRegistry   = make(map[string]*desc.MessageDescriptor)
	protoRegistryMu sync.RWMutex
)

// RegisterProtoFiles parses .proto files and registers every message type
// they declare, keyed by fully-qualified name.
func RegisterProtoFiles(importPaths []string, files ...string) error {
	parser := protoparse.Parser{ImportPaths: importPaths}
	fds, err := parser.ParseFiles(files...)
	if err != nil {
		return fmt.Errorf("parsing proto files: %w", err)
	}

	protoRegistryMu.Lock()
	defer protoRegistryMu.Unlock()
	for _, fd := range fds {
		for _, md := range fd.GetMessageTypes() {
			registerMessageLocked(md)
		}
	}
	return nil
}

func registerMessageLocked(md *desc.MessageDescriptor) {
	protoRegistry[md.GetFullyQualifiedName()] = md
	for _, nested := range md.GetNestedMessageTypes() {
		registerMessageLocked(nested)
	}
}

// ProtoDescriptor returns the registered descriptor for a fully-qualified
// message name, if any.
func ProtoDescriptor(name string) (*desc.MessageDescriptor, bool) {
	protoRegistryMu.RLock()
	defer protoRegistryMu.RUnlock()
	md, ok := protoRegistry[name]
	return md, ok
}

// NewProtoMessage builds an empty dynamic message for a registered
// descriptor name.
func NewProtoMessage(name string) (*dynamic.Message, error) {
	md, ok := ProtoDescriptor(name)
	if !ok {
		return nil, fmt.Errorf("proto message %q not registered", name)
	}
	return dynamic.NewMessage(md), nil
}

// MatchesValue reports whether a value is a protobuf message whose
// descriptor full name matches the hint. Dynamic messages are matched by
// their jhump descriptor; generated messages by their protobuf-go name.
// The dynamic case is tested first: dynamic messages do not implement the
// protobuf-go v2 message interface.
func (h ProtoHint) MatchesValue(v any) bool {
	switch m := v.(type) {
	case *dynamic.Message:
		return m.GetMessageDescriptor().GetFullyQualifiedName() == h.Message
	case proto.Message:
		return string(proto.MessageName(m)) == h.Message
	default:
		return false
	}
}
