package modem

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// Response is a parsed success envelope.
//
// A leaf element maps to its text, an element with children maps to a nested
// Response and a tag repeated among siblings maps to a []interface{}. A tag
// that occurs once is never wrapped in a slice, see normalizeList.
type Response map[string]interface{}

// String returns the text of a leaf element, or "" when key is absent or not a leaf.
func (r Response) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Int parses the text of a leaf element as an integer.
func (r Response) Int(key string) (int, error) {
	raw, ok := r[key].(string)
	if !ok {
		return 0, fmt.Errorf("missing field %s", key)
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

// ParseResponse converts an HTTP status and body returned by the modem into
// a Response or a typed error.
func ParseResponse(statusCode int, body []byte) (Response, error) {
	if statusCode != http.StatusOK {
		return nil, &TransportError{StatusCode: statusCode}
	}

	root, tree, err := decodeTree(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse XML response: %w", err)
	}

	switch root {
	case "response":
		if tree == nil {
			return Response{}, nil
		}
		return tree, nil
	case "error":
		code, err := tree.Int("code")
		if err != nil {
			return nil, fmt.Errorf("malformed error envelope: %w", err)
		}
		if code == CodeTokenInvalid {
			return nil, &TokenError{Code: code}
		}
		return nil, &APIError{Code: code, Message: errorMessage(code)}
	default:
		return nil, fmt.Errorf("unexpected envelope <%s>", root)
	}
}

// decodeTree reads the root element and returns its tag and children.
func decodeTree(body []byte) (string, Response, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	for {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				return "", nil, fmt.Errorf("empty document")
			}
			return "", nil, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			value, err := decodeElement(dec)
			if err != nil {
				return "", nil, err
			}
			tree, _ := value.(Response)
			return start.Name.Local, tree, nil
		}
	}
}

// decodeElement consumes tokens up to the end of the current element. It
// returns the element text when it has no child elements.
func decodeElement(dec *xml.Decoder) (interface{}, error) {
	var text strings.Builder
	var children Response

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			value, err := decodeElement(dec)
			if err != nil {
				return nil, err
			}
			if children == nil {
				children = Response{}
			}
			addChild(children, t.Name.Local, value)
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			if children != nil {
				return children, nil
			}
			return text.String(), nil
		}
	}
}

func addChild(parent Response, tag string, value interface{}) {
	existing, ok := parent[tag]
	if !ok {
		parent[tag] = value
		return
	}
	if list, ok := existing.([]interface{}); ok {
		parent[tag] = append(list, value)
		return
	}
	parent[tag] = []interface{}{existing, value}
}

// normalizeList turns a repeated-element value into a list, using the count
// reported by the modem to tell a single element from a list of them.
func normalizeList(count string, value interface{}) ([]Response, error) {
	switch strings.TrimSpace(count) {
	case "0":
		return nil, nil
	case "1":
		node, ok := value.(Response)
		if !ok {
			return nil, fmt.Errorf("expected a single element, got %T", value)
		}
		return []Response{node}, nil
	}

	list, ok := value.([]interface{})
	if !ok {
		return nil, fmt.Errorf("expected a list for count %s, got %T", count, value)
	}
	nodes := make([]Response, 0, len(list))
	for _, item := range list {
		node, ok := item.(Response)
		if !ok {
			return nil, fmt.Errorf("expected an element, got %T", item)
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}
