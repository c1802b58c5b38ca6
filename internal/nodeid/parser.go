// internal/nodeid/parser.go
package nodeid

import (
	"fmt"
	"regexp"
	"strconv"
)

// idRegex matches the canonical `kind[n]` form.
var idRegex = regexp.MustCompile(`^([a-z]+)\[(\d+)\]$`)

// Parse splits a canonical identifier into its kind and numeric value.
func Parse(rawID string) (Kind, uint64, error) {
	if rawID == "" {
		return "", 0, fmt.Errorf("identifier cannot be empty")
	}

	matches := idRegex.FindStringSubmatch(rawID)
	if matches == nil {
		return "", 0, fmt.Errorf("invalid identifier format: %q", rawID)
	}

	kind := Kind(matches[1])
	switch kind {
	case KindNode, KindLink, KindEndpoint:
	default:
		return "", 0, fmt.Errorf("unknown identifier kind: %q", matches[1])
	}

	n, err := strconv.ParseUint(matches[2], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid identifier value in %q: %w", rawID, err)
	}
	if n == None {
		return "", 0, fmt.Errorf("identifier %q uses the reserved zero value", rawID)
	}
	return kind, n, nil
}

// ParseHandle parses a `node[n]` identifier.
func ParseHandle(rawID string) (Handle, error) {
	n, err := parseKind(rawID, KindNode)
	return Handle(n), err
}

// ParseLink parses a `link[n]` identifier.
func ParseLink(rawID string) (LinkID, error) {
	n, err := parseKind(rawID, KindLink)
	return LinkID(n), err
}

func parseKind(rawID string, want Kind) (uint64, error) {
	kind, n, err := Parse(rawID)
	if err != nil {
		return 0, err
	}
	if kind != want {
		return 0, fmt.Errorf("expected a %s identifier, got %q", want, rawID)
	}
	return n, nil
}
