package models

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"gopkg.in/yaml.v3"

	"github.com/BartekS5/fieldmap/pkg/utils"
)

var ErrDuplicateDestination = errors.New("duplicate destination field")

// MappingEntry is one row of the editable mapping.
type MappingEntry struct {
	SourceExpression string
	DestinationField string
}

// MappingPair is one key of the external mapping form.
type MappingPair struct {
	Destination string
	Expression  string
}

// Mapping is the ordered destination -> expression structure exchanged with
// configuration and storage. Order is significant and keys may repeat.
type Mapping []MappingPair

// LoadMapping parses a JSON object into a Mapping, keeping key order.
func LoadMapping(data []byte) (Mapping, error) {
	var m Mapping
	if err := m.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return m, nil
}

func (m Mapping) Keys() []string {
	out := make([]string, len(m))
	for i, p := range m {
		out[i] = p.Destination
	}
	return out
}

// Lookup returns the expression of the last pair for dst.
func (m Mapping) Lookup(dst string) (string, bool) {
	for i := len(m) - 1; i >= 0; i-- {
		if m[i].Destination == dst {
			return m[i].Expression, true
		}
	}
	return "", false
}

// Duplicates lists destinations that occur more than once, in order of
// their second occurrence.
func (m Mapping) Duplicates() []string {
	seen := make(map[string]int, len(m))
	var dups []string
	for _, p := range m {
		seen[p.Destination]++
		if seen[p.Destination] == 2 {
			dups = append(dups, p.Destination)
		}
	}
	return dups
}

// DuplicatePolicy decides what a consumer of an exported mapping does with
// repeated destinations.
type DuplicatePolicy int

const (
	KeepAll DuplicatePolicy = iota
	LastWins
	Reject
)

func (p DuplicatePolicy) String() string {
	switch p {
	case KeepAll:
		return "keep"
	case LastWins:
		return "last-wins"
	case Reject:
		return "reject"
	default:
		return fmt.Sprintf("DuplicatePolicy(%d)", int(p))
	}
}

func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "keep":
		return KeepAll, nil
	case "last-wins", "last":
		return LastWins, nil
	case "reject":
		return Reject, nil
	default:
		return KeepAll, fmt.Errorf("unknown duplicate policy %q (expected keep, last-wins or reject)", s)
	}
}

// Resolve applies policy to repeated destinations. LastWins keeps each key
// at its first position with the expression of its last occurrence.
func (m Mapping) Resolve(policy DuplicatePolicy) (Mapping, error) {
	switch policy {
	case KeepAll:
		return append(Mapping(nil), m...), nil
	case Reject:
		if dups := m.Duplicates(); len(dups) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDestination, strings.Join(dups, ", "))
		}
		return append(Mapping(nil), m...), nil
	case LastWins:
		pos := make(map[string]int, len(m))
		out := make(Mapping, 0, len(m))
		for _, p := range m {
			if i, ok := pos[p.Destination]; ok {
				out[i].Expression = p.Expression
				continue
			}
			pos[p.Destination] = len(out)
			out = append(out, p)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported duplicate policy %v", policy)
	}
}

// ToBSON returns the mapping as an ordered BSON document.
func (m Mapping) ToBSON() bson.D {
	d := make(bson.D, 0, len(m))
	for _, p := range m {
		d = append(d, bson.E{Key: p.Destination, Value: p.Expression})
	}
	return d
}

// MappingFromBSON converts an ordered BSON document back into a Mapping.
func MappingFromBSON(d bson.D) (Mapping, error) {
	m := make(Mapping, 0, len(d))
	for _, e := range d {
		expr, err := utils.ExpressionString(e.Value)
		if err != nil {
			return nil, fmt.Errorf("destination %q: %w", e.Key, err)
		}
		m = append(m, MappingPair{Destination: e.Key, Expression: expr})
	}
	return m, nil
}

// MarshalJSON writes the mapping as a JSON object in mapping order.
func (m Mapping) MarshalJSON() ([]byte, error) {
	return bson.MarshalExtJSON(m.ToBSON(), false, false)
}

func (m *Mapping) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = nil
		return nil
	}
	var d bson.D
	if err := bson.UnmarshalExtJSON(data, false, &d); err != nil {
		return fmt.Errorf("failed to parse mapping object: %w", err)
	}
	out, err := MappingFromBSON(d)
	if err != nil {
		return err
	}
	*m = out
	return nil
}

// MarshalYAML emits the mapping as an ordered YAML mapping node.
func (m Mapping) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, p := range m {
		node.Content = append(node.Content, stringNode(p.Destination), stringNode(p.Expression))
	}
	return node, nil
}

func stringNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func (m *Mapping) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null" {
		*m = nil
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: mapping must be a YAML mapping of destination: expression", node.Line)
	}

	out := make(Mapping, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]

		var dst string
		if err := key.Decode(&dst); err != nil {
			return fmt.Errorf("line %d: invalid destination: %w", key.Line, err)
		}

		if val.Kind == yaml.AliasNode {
			val = val.Alias
		}
		if val.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: expression for %q must be a scalar", val.Line, dst)
		}
		expr := val.Value
		if val.ShortTag() == "!!null" {
			expr = ""
		}
		out = append(out, MappingPair{Destination: dst, Expression: expr})
	}
	*m = out
	return nil
}
