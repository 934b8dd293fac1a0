package model

import (
	"sort"

	"meterc/internal/diag"
)

// NodeKind is the fixed vocabulary of object structure nodes.
type NodeKind string

const (
	NodeBoolean NodeKind = "boolean"
	NodeString  NodeKind = "string"
	NodeNumber  NodeKind = "number"
	NodeArray   NodeKind = "array"
	NodeObject  NodeKind = "object"
)

// ObjectNode describes one level of an object metric's structure.
type ObjectNode struct {
	Kind        NodeKind
	Description string
	Items       *ObjectNode            // NodeArray
	Properties  map[string]*ObjectNode // NodeObject
}

// PropertyNames returns the object's property names in sorted order.
func (n *ObjectNode) PropertyNames() []string {
	out := make([]string, 0, len(n.Properties))
	for k := range n.Properties {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func parseObjectNode(r raw, path string, top bool) (*ObjectNode, error) {
	for k := range r {
		switch k {
		case "type", "description", "items", "properties":
		default:
			return nil, errorf(diag.ObjInvalidStructure, "%s: unknown key '%s'", path, k)
		}
	}
	kind, err := r.str("type")
	if err != nil {
		return nil, errorf(diag.ObjInvalidStructure, "%s: %v", path, err)
	}
	desc, err := r.str("description")
	if err != nil {
		return nil, errorf(diag.ObjInvalidStructure, "%s: %v", path, err)
	}
	n := &ObjectNode{Kind: NodeKind(kind), Description: desc}

	switch n.Kind {
	case NodeBoolean, NodeString, NodeNumber:
		if top {
			return nil, errorf(diag.ObjInvalidStructure, "%s: top-level type must be 'array' or 'object', got '%s'", path, kind)
		}
		if r.has("items") || r.has("properties") {
			return nil, errorf(diag.ObjInvalidStructure, "%s: primitive '%s' cannot have items or properties", path, kind)
		}
	case NodeArray:
		if r.has("properties") {
			return nil, errorf(diag.ObjInvalidStructure, "%s: arrays take 'items', not 'properties'", path)
		}
		items, err := r.mapping("items")
		if err != nil || items == nil {
			return nil, errorf(diag.ObjInvalidStructure, "%s: array requires an 'items' node", path)
		}
		if n.Items, err = parseObjectNode(items, path+".items", false); err != nil {
			return nil, err
		}
	case NodeObject:
		if r.has("items") {
			return nil, errorf(diag.ObjInvalidStructure, "%s: objects take 'properties', not 'items'", path)
		}
		props, err := r.mapping("properties")
		if err != nil || props == nil {
			return nil, errorf(diag.ObjInvalidStructure, "%s: object requires a 'properties' mapping", path)
		}
		n.Properties = make(map[string]*ObjectNode, len(props))
		for name, v := range props {
			child, ok := v.(map[string]any)
			if !ok {
				return nil, errorf(diag.ObjInvalidStructure, "%s.%s: node must be a mapping", path, name)
			}
			if n.Properties[name], err = parseObjectNode(child, path+"."+name, false); err != nil {
				return nil, err
			}
		}
	default:
		return nil, errorf(diag.ObjInvalidStructure,
			"%s: unknown node type '%s' (expected boolean, string, number, array or object)", path, kind)
	}
	return n, nil
}
