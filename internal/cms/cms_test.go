package cms_test

import (
	"encoding/json"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"industry-console/internal/cms"
)

func keys(it cms.Item) []string {
	out := make([]string, 0, len(it))
	for k := range it {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func TestLookupFallsBackToDefault(t *testing.T) {
	got := cms.Lookup("spaceship-repair")
	want := cms.Lookup(cms.DefaultIndustry)
	assert.Equal(t, want, got)
	assert.Equal(t, cms.HeroSection, got.Sections[0])
	assert.False(t, cms.Known("spaceship-repair"))
	assert.True(t, cms.Known("legal"))
}

func TestLookupReturnsCopy(t *testing.T) {
	a := cms.Lookup("legal")
	a.Sections[1] = "mutated"
	assert.NotEqual(t, "mutated", cms.Lookup("legal").Sections[1])
}

func TestEveryConfiguredSectionHasSchema(t *testing.T) {
	for _, ind := range cms.Industries() {
		for _, s := range cms.Lookup(ind).Sections {
			if s == cms.HeroSection {
				continue
			}
			assert.NotEmpty(t, cms.Fields(s), "%s/%s has no fields", ind, s)
		}
	}
}

func TestFieldsUnknownSection(t *testing.T) {
	assert.Empty(t, cms.Fields("nope"))
	assert.Empty(t, cms.NewItem("nope"))
}

func TestNewItemMatchesSchema(t *testing.T) {
	for _, section := range []string{"testimonials", "faqs", "services", "menu", "stats"} {
		it := cms.NewItem(section)
		var want []string
		for _, f := range cms.Fields(section) {
			want = append(want, f.Key)
		}
		sort.Strings(want)
		assert.Equal(t, want, keys(it), section)
		for k, v := range it {
			assert.Equal(t, "", v, "%s.%s", section, k)
		}
	}
}

func TestDefaults(t *testing.T) {
	doc := cms.Defaults("restaurant")
	assert.Equal(t, cms.Hero{"badge": "", "title": "", "subtitle": ""}, doc.Hero)
	for _, s := range cms.Lookup("restaurant").Sections[1:] {
		items, ok := doc.Lists[s]
		require.True(t, ok, s)
		assert.Empty(t, items)
	}
}

func TestMergePartialResponse(t *testing.T) {
	raw := []byte(`{"hero":{"title":"Welcome","badge":"New"},"faqs":[{"question":"Q1","answer":"A1"}]}`)
	doc, err := cms.Merge(cms.Defaults("salon"), raw)
	require.NoError(t, err)

	assert.Equal(t, "Welcome", doc.Hero.Title())
	assert.Equal(t, "New", doc.Hero.Badge())
	assert.Equal(t, "", doc.Hero.Subtitle())
	assert.NotContains(t, doc.Hero, "subtitle", "the stored hero replaces the default wholesale")
	require.Len(t, doc.Items("faqs"), 1)
	assert.Equal(t, "Q1", cms.Value(doc.Items("faqs")[0], "question"))

	// sections the server did not send still exist as empty lists
	items, ok := doc.Lists["testimonials"]
	assert.True(t, ok)
	assert.Empty(t, items)
}

func TestMergeWrongShapesKeepDefaults(t *testing.T) {
	raw := []byte(`{"hero":"oops","faqs":{"not":"a list"},"team":null,"stats":[1,2]}`)
	doc, err := cms.Merge(cms.Defaults("salon"), raw)
	require.NoError(t, err)
	assert.Equal(t, cms.Defaults("salon").Hero, doc.Hero)
	assert.NotNil(t, doc.Lists["faqs"])
	assert.Empty(t, doc.Lists["faqs"])
	assert.Empty(t, doc.Lists["team"])
	assert.Empty(t, doc.Lists["stats"])
}

func TestMergeMalformedJSON(t *testing.T) {
	doc, err := cms.Merge(cms.Defaults("legal"), []byte(`{"hero":`))
	require.Error(t, err)
	assert.Contains(t, doc.Lists, "practice_areas")
}

func TestMergeNullAndEmpty(t *testing.T) {
	for _, raw := range []string{"", "null", "  "} {
		doc, err := cms.Merge(cms.Defaults("legal"), []byte(raw))
		require.NoError(t, err)
		assert.Contains(t, doc.Lists, "faqs")
	}
}

func TestDocumentRoundTripPreservesUnknownKeys(t *testing.T) {
	raw := `{"hero":{"title":"T","subtitle":"S","badge":"B","image":"h.png"},` +
		`"faqs":[{"question":"q","answer":"a","extra":7}],` +
		`"theme":{"color":"#fff"}}`

	doc, err := cms.Merge(cms.Defaults("salon"), []byte(raw))
	require.NoError(t, err)

	out, err := json.Marshal(doc)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(out, &got))

	hero := got["hero"].(map[string]any)
	assert.Equal(t, "h.png", hero["image"])
	assert.Equal(t, map[string]any{"color": "#fff"}, got["theme"])
	faq := got["faqs"].([]any)[0].(map[string]any)
	assert.Equal(t, float64(7), faq["extra"])
	// defaults are written as empty lists
	assert.Equal(t, []any{}, got["testimonials"])
}

func TestValueFallbacks(t *testing.T) {
	it := cms.Item{"s": "x", "n": json.Number("12.50"), "f": 3.0, "b": true, "nil": nil}
	assert.Equal(t, "x", cms.Value(it, "s"))
	assert.Equal(t, "12.50", cms.Value(it, "n"))
	assert.Equal(t, "3", cms.Value(it, "f"))
	assert.Equal(t, "true", cms.Value(it, "b"))
	assert.Equal(t, "", cms.Value(it, "nil"))
	assert.Equal(t, "", cms.Value(it, "missing"))
	assert.Equal(t, "", cms.Value(nil, "missing"))
}

func TestEditorSectionNavigation(t *testing.T) {
	e := cms.NewEditor("healthcare")
	assert.Equal(t, cms.HeroSection, e.Active())
	assert.True(t, e.Select("doctors"))
	assert.Equal(t, "doctors", e.Active())
	assert.False(t, e.Select("menu"))
	assert.Equal(t, "doctors", e.Active())
}

func TestEditorUnknownIndustryUsesDefaultSections(t *testing.T) {
	e := cms.NewEditor("unknown")
	assert.Equal(t, "unknown", e.Industry())
	assert.Equal(t, cms.Lookup(cms.DefaultIndustry).Sections, e.Sections())
}

func TestEditorAddItem(t *testing.T) {
	e := cms.NewEditor("salon")
	before := e.Items("testimonials")
	i := e.AddItem("testimonials")

	assert.Equal(t, 0, i)
	assert.Empty(t, before)
	items := e.Items("testimonials")
	require.Len(t, items, 1)
	assert.Equal(t, cms.NewItem("testimonials"), items[0])
}

func TestEditorAddItemUnknownSection(t *testing.T) {
	e := cms.NewEditor("salon")
	e.AddItem("not-a-section")
	items := e.Items("not-a-section")
	require.Len(t, items, 1)
	assert.Empty(t, items[0])
}

func TestEditorRemoveItemKeepsOrder(t *testing.T) {
	e := cms.NewEditor("salon")
	for i := 0; i < 4; i++ {
		e.AddItem("faqs")
		e.SetField("faqs", i, "question", string(rune('a'+i)))
	}
	before := e.Items("faqs")

	require.True(t, e.RemoveItem("faqs", 1))
	after := e.Items("faqs")

	require.Len(t, after, 3)
	var got []string
	for _, it := range after {
		got = append(got, cms.Value(it, "question"))
	}
	assert.Equal(t, []string{"a", "c", "d"}, got)
	// earlier snapshot untouched
	assert.Len(t, before, 4)
	assert.Equal(t, "b", cms.Value(before[1], "question"))

	assert.False(t, e.RemoveItem("faqs", 3))
	assert.False(t, e.RemoveItem("faqs", -1))
}

func TestEditorSetFieldCopiesItem(t *testing.T) {
	e := cms.NewEditor("salon")
	e.AddItem("stats")
	snap := e.Items("stats")

	require.True(t, e.SetField("stats", 0, "value", "500+"))
	assert.Equal(t, "", cms.Value(snap[0], "value"))
	assert.Equal(t, "500+", cms.Value(e.Items("stats")[0], "value"))
	assert.False(t, e.SetField("stats", 5, "value", "x"))
}

func TestEditorHero(t *testing.T) {
	e := cms.NewEditor("legal")
	assert.True(t, e.SetHero("title", "Counsel you can trust"))
	assert.True(t, e.SetHero("badge", "Since 1990"))
	assert.False(t, e.SetHero("image", "x"))
	assert.Equal(t, cms.Hero{"title": "Counsel you can trust", "badge": "Since 1990", "subtitle": ""}, e.Hero())
}

func TestHeroRoundTripsAsLoaded(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"numeric title", `{"hero":{"title":2024}}`},
		{"bool badge and extra key", `{"hero":{"badge":true,"title":"T","rating":5}}`},
		{"empty hero", `{"hero":{}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := cms.Merge(cms.Document{}, []byte(tt.in))
			require.NoError(t, err)
			out, err := json.Marshal(doc)
			require.NoError(t, err)
			assert.JSONEq(t, tt.in, string(out))
		})
	}
}

func TestSetHeroWritesOnlyThatKey(t *testing.T) {
	doc, err := cms.Merge(cms.Defaults("legal"), []byte(`{"hero":{"title":2024,"rating":5}}`))
	require.NoError(t, err)
	e := cms.NewEditor("legal")
	e.Replace(doc)
	before := e.Hero()

	require.True(t, e.SetHero("badge", "New"))
	assert.Equal(t, cms.Hero{"title": json.Number("2024"), "rating": json.Number("5"), "badge": "New"}, e.Hero())
	assert.NotContains(t, before, "badge", "earlier snapshots are not mutated")
	assert.Equal(t, "2024", e.Hero().Title())
}

func TestRenderDispatchesOnType(t *testing.T) {
	fields := cms.Fields("testimonials")
	item := cms.Item{"name": "Ann", "rating": json.Number("5")}

	got := cms.Render(fields, item)
	want := []cms.Widget{
		{Kind: cms.WidgetInput, Key: "name", Label: "Name", Placeholder: "John Smith", Value: "Ann"},
		{Kind: cms.WidgetInput, Key: "role", Label: "Role", Placeholder: "Client"},
		{Kind: cms.WidgetNumber, Key: "rating", Label: "Rating", Placeholder: "5", Value: "5"},
		{Kind: cms.WidgetTextArea, Key: "quote", Label: "Quote", Placeholder: "What they said", FullWidth: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Render mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderUnknownTypeAndEmptySchema(t *testing.T) {
	got := cms.Render([]cms.Field{{Key: "k", Type: "color"}}, cms.Item{"k": "red"})
	require.Len(t, got, 1)
	assert.Equal(t, cms.WidgetInput, got[0].Kind)
	assert.Equal(t, "red", got[0].Value)

	assert.Empty(t, cms.Render(cms.Fields("nope"), cms.Item{"a": 1}))
}

func TestRenderHero(t *testing.T) {
	w := cms.RenderHero(cms.Hero{"badge": "b", "title": "t", "subtitle": "s"})
	require.Len(t, w, 3)
	assert.Equal(t, "badge", w[0].Key)
	assert.Equal(t, "t", w[1].Value)
	assert.Equal(t, cms.WidgetTextArea, w[2].Kind)
}
