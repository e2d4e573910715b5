package cms

type WidgetKind string

const (
	WidgetInput    WidgetKind = "input"
	WidgetNumber   WidgetKind = "number"
	WidgetTextArea WidgetKind = "textarea"
)

// Widget is one rendered form control, already bound to its current value.
type Widget struct {
	Kind        WidgetKind
	Key         string
	Label       string
	Placeholder string
	Value       string
	FullWidth   bool
}

type widgetFunc func(f Field, value string) Widget

var widgets = map[FieldType]widgetFunc{
	FieldText:     input,
	FieldNumber:   numberInput,
	FieldTextarea: textArea,
}

func input(f Field, value string) Widget {
	return Widget{Kind: WidgetInput, Key: f.Key, Label: f.Label, Placeholder: f.Placeholder, Value: value, FullWidth: f.FullWidth}
}

func numberInput(f Field, value string) Widget {
	w := input(f, value)
	w.Kind = WidgetNumber
	return w
}

func textArea(f Field, value string) Widget {
	w := input(f, value)
	w.Kind = WidgetTextArea
	return w
}

// Render binds item to the widgets described by fields, in schema order.
// Field types without a constructor render as plain inputs.
func Render(fields []Field, item Item) []Widget {
	out := make([]Widget, 0, len(fields))
	for _, f := range fields {
		mk, ok := widgets[f.Type]
		if !ok {
			mk = input
		}
		out = append(out, mk(f, Value(item, f.Key)))
	}
	return out
}

var heroFields = []Field{
	{Key: "badge", Label: "Badge", Placeholder: "Now accepting new clients", Type: FieldText},
	{Key: "title", Label: "Title", Placeholder: "Headline", Type: FieldText},
	{Key: "subtitle", Label: "Subtitle", Placeholder: "Supporting text", Type: FieldTextarea, FullWidth: true},
}

// RenderHero renders the fixed hero form.
func RenderHero(h Hero) []Widget {
	return Render(heroFields, Item(h))
}
