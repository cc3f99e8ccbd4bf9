package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Group is the product list of one feed category, in feed order.
type Group struct {
	Key      string
	Products []Product
}

// Feed is the decoded product document. Groups keep the key order of the
// source JSON object.
type Feed struct {
	Groups []Group
}

// Group returns the products of key, or nil.
func (f *Feed) Group(key string) []Product {
	if f == nil {
		return nil
	}
	for _, g := range f.Groups {
		if g.Key == key {
			return g.Products
		}
	}
	return nil
}

// Products returns every product across groups, in feed order.
func (f *Feed) Products() []Product {
	if f == nil {
		return nil
	}
	var out []Product
	for _, g := range f.Groups {
		out = append(out, g.Products...)
	}
	return out
}

// DecodeFeed parses a `{"products": {...}}` document. Products inherit the
// group key as their category and receive a derived id when they carry none.
func DecodeFeed(raw []byte) (*Feed, error) {
	var doc struct {
		Products orderedGroups `json:"products"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}
	feed := &Feed{Groups: doc.Products}
	seen := make(map[string]struct{})
	for gi := range feed.Groups {
		g := &feed.Groups[gi]
		for pi := range g.Products {
			p := &g.Products[pi]
			if p.Category == "" {
				p.Category = g.Key
			}
			if p.ID == "" {
				p.ID = DeriveID(p.Category, p.Title)
			}
			p.ID = uniqueID(seen, p.ID, pi)
			seen[p.ID] = struct{}{}
		}
	}
	return feed, nil
}

// uniqueID keeps id when it is unused. A repeated id gets the product's
// position within its group appended, then a counter if that is taken too,
// so every entry of the feed stays addressable.
func uniqueID(seen map[string]struct{}, id string, pos int) string {
	if _, taken := seen[id]; !taken {
		return id
	}
	candidate := id + "-" + strconv.Itoa(pos)
	for n := 2; ; n++ {
		if _, taken := seen[candidate]; !taken {
			return candidate
		}
		candidate = id + "-" + strconv.Itoa(pos) + "-" + strconv.Itoa(n)
	}
}

type orderedGroups []Group

// UnmarshalJSON walks the object token by token so group order survives.
// Group values that are not arrays are treated as empty groups.
func (o *orderedGroups) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		*o = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("products must be an object")
	}
	var groups []Group
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected key token %v", keyTok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return err
		}
		var products []Product
		if trimmed := bytes.TrimSpace(value); len(trimmed) > 0 && trimmed[0] == '[' {
			if err := json.Unmarshal(trimmed, &products); err != nil {
				return fmt.Errorf("group %q: %w", key, err)
			}
		}
		groups = append(groups, Group{Key: key, Products: products})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*o = groups
	return nil
}
