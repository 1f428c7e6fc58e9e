package slack

import (
	"fmt"
)

// Kind is the JSON value kind a schema node expects.
type Kind int

const (
	KindObject Kind = iota
	KindArray
	KindString
	KindNumber
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Schema is a structural contract for a decoded JSON value: required keys,
// known property schemas, and the element schema for arrays. Properties not
// listed are ignored, so endpoints are free to grow new fields.
type Schema struct {
	Kind       Kind
	Required   []string
	Properties map[string]*Schema
	Items      *Schema
}

// SchemaError reports a payload that violated its schema. It is only raised
// after the transport and envelope checks pass, so it always means the server
// self-reported success with a body the archiver cannot consume.
type SchemaError struct {
	Path   string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema violation at %s: %s", e.Path, e.Reason)
}

// Validate checks a decoded JSON value against the schema and returns a
// *SchemaError on the first violation. The value is not modified.
func (s *Schema) Validate(v any) error {
	return s.validate(v, "$")
}

func (s *Schema) validate(v any, path string) error {
	switch s.Kind {
	case KindObject:
		obj, ok := v.(map[string]any)
		if !ok {
			return &SchemaError{Path: path, Reason: fmt.Sprintf("expected object, got %T", v)}
		}
		for _, key := range s.Required {
			if _, present := obj[key]; !present {
				return &SchemaError{Path: path, Reason: fmt.Sprintf("missing required key %q", key)}
			}
		}
		for key, sub := range s.Properties {
			val, present := obj[key]
			if !present || val == nil {
				continue
			}
			if err := sub.validate(val, path+"."+key); err != nil {
				return err
			}
		}
	case KindArray:
		arr, ok := v.([]any)
		if !ok {
			return &SchemaError{Path: path, Reason: fmt.Sprintf("expected array, got %T", v)}
		}
		if s.Items != nil {
			for i, item := range arr {
				if err := s.Items.validate(item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
					return err
				}
			}
		}
	case KindString:
		if _, ok := v.(string); !ok {
			return &SchemaError{Path: path, Reason: fmt.Sprintf("expected string, got %T", v)}
		}
	case KindNumber:
		if _, ok := v.(float64); !ok {
			return &SchemaError{Path: path, Reason: fmt.Sprintf("expected number, got %T", v)}
		}
	case KindBool:
		if _, ok := v.(bool); !ok {
			return &SchemaError{Path: path, Reason: fmt.Sprintf("expected bool, got %T", v)}
		}
	}
	return nil
}

// HistorySchema is the contract for conversations.history responses.
var HistorySchema = &Schema{
	Kind:     KindObject,
	Required: []string{"messages", "has_more"},
	Properties: map[string]*Schema{
		"has_more": {Kind: KindBool},
		"messages": {
			Kind: KindArray,
			Items: &Schema{
				Kind:     KindObject,
				Required: []string{"type", "ts"},
				Properties: map[string]*Schema{
					"type": {Kind: KindString},
					"ts":   {Kind: KindString},
					"user": {Kind: KindString},
					"text": {Kind: KindString},
				},
			},
		},
	},
}

// UsersSchema is the contract for users.list responses.
var UsersSchema = &Schema{
	Kind:     KindObject,
	Required: []string{"members"},
	Properties: map[string]*Schema{
		"members": {
			Kind: KindArray,
			Items: &Schema{
				Kind:     KindObject,
				Required: []string{"id", "profile"},
				Properties: map[string]*Schema{
					"id": {Kind: KindString},
					"profile": {
						Kind:     KindObject,
						Required: []string{"display_name"},
						Properties: map[string]*Schema{
							"display_name": {Kind: KindString},
						},
					},
				},
			},
		},
	},
}

// ChannelsSchema is the contract for conversations.list responses.
var ChannelsSchema = &Schema{
	Kind:     KindObject,
	Required: []string{"channels"},
	Properties: map[string]*Schema{
		"channels": {
			Kind: KindArray,
			Items: &Schema{
				Kind:     KindObject,
				Required: []string{"id"},
				Properties: map[string]*Schema{
					"id":   {Kind: KindString},
					"name": {Kind: KindString},
				},
			},
		},
	},
}
