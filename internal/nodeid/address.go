// internal/nodeid/address.go
package nodeid

import "fmt"

// String renders the handle in its canonical `node[n]` form.
func (h Handle) String() string {
	return format(KindNode, uint64(h))
}

// Valid reports whether the handle is not the zero identifier.
func (h Handle) Valid() bool { return h != None }

// String renders the link id in its canonical `link[n]` form.
func (l LinkID) String() string {
	return format(KindLink, uint64(l))
}

// String renders the endpoint id in its canonical `endpoint[n]` form.
func (e EndpointID) String() string {
	return format(KindEndpoint, uint64(e))
}

// MarshalText implements encoding.TextMarshaler so handles serialize as
// strings in JSON and YAML payloads.
func (h Handle) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Handle) UnmarshalText(b []byte) error {
	parsed, err := ParseHandle(string(b))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (l LinkID) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *LinkID) UnmarshalText(b []byte) error {
	parsed, err := ParseLink(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

func format(k Kind, n uint64) string {
	return fmt.Sprintf("%s[%d]", k, n)
}
