package hcl

import (
	"context"
	"fmt"
	"slices"

	"github.com/specialistvlad/circles/internal/config"
	"github.com/specialistvlad/circles/internal/schema"
)

// translateNode converts a node block into the agnostic model.
func translateNode(ctx context.Context, file string, s *schema.Node) (*config.Node, error) {
	n := &config.Node{
		Name:      s.Name,
		Operation: s.Operation,
		Origin:    file,
	}
	if s.Scalar != nil {
		n.Scalar = float32(*s.Scalar)
	}
	if s.Rank != nil {
		if *s.Rank < 0 {
			return nil, fmt.Errorf("node %q: rank must not be negative", s.Name)
		}
		n.Rank = *s.Rank
	}

	var arr []float32
	set, err := decodeExpr(ctx, s.Array, numberList, &arr)
	if err != nil {
		return nil, fmt.Errorf("node %q: invalid array: %w", s.Name, err)
	}
	if set {
		n.Array = arr
	} else {
		n.Array = slices.Clone(config.DefaultArray)
	}
	return n, nil
}

// translateLink converts a link block into the agnostic model.
func translateLink(ctx context.Context, s *schema.Link) (*config.Link, error) {
	if s.FromSlot < 0 || s.ToSlot < 0 {
		return nil, fmt.Errorf("link %q -> %q: slots must not be negative", s.From, s.To)
	}
	l := &config.Link{
		From:     s.From,
		FromSlot: s.FromSlot,
		To:       s.To,
		ToSlot:   s.ToSlot,
		Open:     true,
	}
	if s.Open != nil {
		l.Open = *s.Open
	}

	var codes []int
	set, err := decodeExpr(ctx, s.Types, numberList, &codes)
	if err != nil {
		return nil, fmt.Errorf("link %q -> %q: invalid types: %w", s.From, s.To, err)
	}
	if set {
		if len(codes) != 2 {
			return nil, fmt.Errorf("link %q -> %q: types must be [source, sink], got %d values", s.From, s.To, len(codes))
		}
		l.Types = &config.Types{Source: codes[0], Sink: codes[1]}
	}
	return l, nil
}
