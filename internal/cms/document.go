package cms

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Item is one entry of a list section, keyed by the section's field keys.
// Items that came from the server may carry extra keys or miss some.
type Item map[string]any

func (it Item) clone() Item {
	out := make(Item, len(it))
	for k, v := range it {
		out[k] = v
	}
	return out
}

// Hero is the hero object as stored. Only badge, title and subtitle are
// edited; other keys and the JSON types of loaded values are written back
// as they came.
type Hero map[string]any

func (h Hero) Badge() string    { return Value(Item(h), "badge") }
func (h Hero) Title() string    { return Value(Item(h), "title") }
func (h Hero) Subtitle() string { return Value(Item(h), "subtitle") }

func defaultHero() Hero {
	return Hero{"badge": "", "title": "", "subtitle": ""}
}

// Document is the content document of one industry: the hero object plus an
// ordered list of items per section. Top-level keys that are neither are
// carried through untouched.
type Document struct {
	Hero  Hero
	Lists map[string][]Item

	extra map[string]json.RawMessage
}

// Defaults returns the empty document for industry: a hero with blank
// badge, title and subtitle and an empty list for every configured list
// section.
func Defaults(industry string) Document {
	cfg := Lookup(industry)
	doc := Document{Hero: defaultHero(), Lists: make(map[string][]Item, len(cfg.Sections))}
	for _, s := range cfg.Sections {
		if s == HeroSection {
			continue
		}
		doc.Lists[s] = []Item{}
	}
	return doc
}

// Items returns the list stored for section, or nil.
func (d Document) Items(section string) []Item {
	return d.Lists[section]
}

// Clone deep-copies the document down to item maps.
func (d Document) Clone() Document {
	out := Document{Lists: make(map[string][]Item, len(d.Lists))}
	if d.Hero != nil {
		out.Hero = Hero(Item(d.Hero).clone())
	}
	for k, items := range d.Lists {
		cp := make([]Item, len(items))
		for i, it := range items {
			cp[i] = it.clone()
		}
		out.Lists[k] = cp
	}
	if d.extra != nil {
		out.extra = make(map[string]json.RawMessage, len(d.extra))
		for k, v := range d.extra {
			out.extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return out
}

func (d Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Lists)+len(d.extra)+1)
	for k, v := range d.extra {
		out[k] = v
	}
	for k, items := range d.Lists {
		if items == nil {
			items = []Item{}
		}
		out[k] = items
	}
	hero := d.Hero
	if hero == nil {
		hero = defaultHero()
	}
	out[HeroSection] = hero
	return json.Marshal(out)
}

// UnmarshalJSON decodes a document with no defaults applied. Use Merge to
// overlay a payload on an industry's defaults.
func (d *Document) UnmarshalJSON(b []byte) error {
	doc, err := Merge(Document{}, b)
	if err != nil {
		return err
	}
	*d = doc
	return nil
}

// Merge shallow-merges a server payload over defaults. A key present in the
// payload replaces the default wholesale; sections the payload omits keep
// their default. Values of the wrong shape (hero not an object, a section
// not a list of objects) are ignored so the editor always has something to
// render. On malformed JSON the defaults are returned together with the
// error.
func Merge(defaults Document, raw []byte) (Document, error) {
	doc := defaults.Clone()
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return doc, nil
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return doc, fmt.Errorf("decode document: %w", err)
	}

	for key, val := range top {
		if key == HeroSection {
			if h, ok := decodeHero(val); ok {
				doc.Hero = h
			}
			continue
		}
		if items, ok := decodeList(val); ok {
			doc.Lists[key] = items
			delete(doc.extra, key)
			continue
		}
		if _, configured := doc.Lists[key]; configured {
			continue
		}
		if doc.extra == nil {
			doc.extra = make(map[string]json.RawMessage)
		}
		doc.extra[key] = append(json.RawMessage(nil), val...)
	}
	return doc, nil
}

func decode(raw json.RawMessage, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}

func decodeHero(raw json.RawMessage) (Hero, bool) {
	var m map[string]any
	if err := decode(raw, &m); err != nil || m == nil {
		return nil, false
	}
	return Hero(m), true
}

func decodeList(raw json.RawMessage) ([]Item, bool) {
	var elems []json.RawMessage
	if err := decode(raw, &elems); err != nil || elems == nil {
		return nil, false
	}
	items := make([]Item, 0, len(elems))
	for _, e := range elems {
		var it map[string]any
		if err := decode(e, &it); err != nil {
			return nil, false
		}
		if it == nil {
			it = map[string]any{}
		}
		items = append(items, Item(it))
	}
	return items, true
}

// Value reads key from item as display text. Missing keys and nulls read as
// the empty string.
func Value(item Item, key string) string {
	switch v := item[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
