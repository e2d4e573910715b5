package cms

// Editor holds the in-memory state of one industry's content document while
// it is being edited. Every mutation replaces the affected slice and item
// instead of writing through, so slices handed out earlier stay valid.
// An Editor is not safe for concurrent use.
type Editor struct {
	industry string
	config   IndustryConfig
	doc      Document
	active   string
}

func NewEditor(industry string) *Editor {
	return &Editor{
		industry: industry,
		config:   Lookup(industry),
		doc:      Defaults(industry),
		active:   HeroSection,
	}
}

func (e *Editor) Industry() string { return e.industry }

func (e *Editor) Title() string { return e.config.Title }

// Sections lists the sidebar entries for the editor's industry.
func (e *Editor) Sections() []string {
	return append([]string(nil), e.config.Sections...)
}

func (e *Editor) Active() string { return e.active }

// Select makes section the active one. Sections that are not configured for
// the industry are rejected and the current selection is kept.
func (e *Editor) Select(section string) bool {
	for _, s := range e.config.Sections {
		if s == section {
			e.active = section
			return true
		}
	}
	return false
}

// Document returns the current document. The caller must not mutate it.
func (e *Editor) Document() Document { return e.doc }

// Replace swaps in a freshly loaded document.
func (e *Editor) Replace(doc Document) {
	if doc.Lists == nil {
		doc.Lists = map[string][]Item{}
	}
	e.doc = doc
}

func (e *Editor) Hero() Hero { return e.doc.Hero }

// SetHero updates one of badge, title or subtitle. The hero map is copied
// so earlier snapshots keep their values.
func (e *Editor) SetHero(key, value string) bool {
	switch key {
	case "badge", "title", "subtitle":
	default:
		return false
	}
	h := Hero(Item(e.doc.Hero).clone())
	h[key] = value
	e.doc.Hero = h
	return true
}

func (e *Editor) Items(section string) []Item {
	return e.doc.Lists[section]
}

// AddItem appends the section's empty template and returns its index.
func (e *Editor) AddItem(section string) int {
	cur := e.doc.Lists[section]
	next := make([]Item, len(cur), len(cur)+1)
	copy(next, cur)
	next = append(next, NewItem(section))
	e.setList(section, next)
	return len(next) - 1
}

// RemoveItem drops the item at i, keeping the order of the rest.
func (e *Editor) RemoveItem(section string, i int) bool {
	cur := e.doc.Lists[section]
	if i < 0 || i >= len(cur) {
		return false
	}
	next := make([]Item, 0, len(cur)-1)
	next = append(next, cur[:i]...)
	next = append(next, cur[i+1:]...)
	e.setList(section, next)
	return true
}

// SetField writes value under key on item i of section.
func (e *Editor) SetField(section string, i int, key, value string) bool {
	cur := e.doc.Lists[section]
	if i < 0 || i >= len(cur) {
		return false
	}
	next := make([]Item, len(cur))
	copy(next, cur)
	it := cur[i].clone()
	it[key] = value
	next[i] = it
	e.setList(section, next)
	return true
}

func (e *Editor) setList(section string, items []Item) {
	lists := make(map[string][]Item, len(e.doc.Lists)+1)
	for k, v := range e.doc.Lists {
		lists[k] = v
	}
	lists[section] = items
	e.doc.Lists = lists
}
