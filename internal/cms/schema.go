package cms

type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldNumber   FieldType = "number"
)

// Field describes one editable attribute of a list-section item.
type Field struct {
	Key         string    `json:"key" yaml:"key"`
	Label       string    `json:"label" yaml:"label"`
	Placeholder string    `json:"placeholder" yaml:"placeholder"`
	Type        FieldType `json:"type" yaml:"type"`
	FullWidth   bool      `json:"full_width" yaml:"full_width"`
}

func text(key, label, placeholder string) Field {
	return Field{Key: key, Label: label, Placeholder: placeholder, Type: FieldText}
}

func number(key, label, placeholder string) Field {
	return Field{Key: key, Label: label, Placeholder: placeholder, Type: FieldNumber}
}

func area(key, label, placeholder string) Field {
	return Field{Key: key, Label: label, Placeholder: placeholder, Type: FieldTextarea, FullWidth: true}
}

var sectionFields = map[string][]Field{
	"stats": {
		text("value", "Value", "500+"),
		text("label", "Label", "Happy clients"),
	},
	"services": {
		text("name", "Service Name", "Haircut & Styling"),
		number("price", "Price", "45"),
		text("duration", "Duration", "45 min"),
		area("description", "Description", "Short description of the service"),
	},
	"team": {
		text("name", "Name", "Jane Doe"),
		text("role", "Role", "Senior Stylist"),
		text("image", "Photo URL", "https://..."),
		area("bio", "Bio", "A few words about this person"),
	},
	"doctors": {
		text("name", "Name", "Dr. Jane Doe"),
		text("specialty", "Specialty", "Cardiology"),
		text("image", "Photo URL", "https://..."),
		area("bio", "Bio", "Education and experience"),
	},
	"departments": {
		text("name", "Department", "Pediatrics"),
		text("icon", "Icon", "baby"),
		area("description", "Description", "What this department covers"),
	},
	"practice_areas": {
		text("name", "Practice Area", "Family Law"),
		text("icon", "Icon", "scale"),
		area("description", "Description", "Matters handled in this area"),
	},
	"case_results": {
		text("title", "Case", "Wrongful termination settlement"),
		text("amount", "Result", "$1.2M"),
		area("summary", "Summary", "Short outcome summary"),
	},
	"products": {
		text("name", "Product", "Precision gear set"),
		text("sku", "SKU", "PG-100"),
		text("image", "Image URL", "https://..."),
		area("description", "Description", "Materials, tolerances, use cases"),
	},
	"capabilities": {
		text("name", "Capability", "CNC machining"),
		area("description", "Description", "Equipment and throughput"),
	},
	"certifications": {
		text("name", "Certification", "ISO 9001"),
		text("issuer", "Issuer", "TUV"),
		number("year", "Year", "2021"),
	},
	"process": {
		number("step", "Step", "1"),
		text("title", "Title", "Consultation"),
		area("description", "Description", "What happens in this step"),
	},
	"menu": {
		text("name", "Dish", "Margherita"),
		text("category", "Category", "Pizza"),
		number("price", "Price", "12.50"),
		area("description", "Description", "Ingredients"),
	},
	"specials": {
		text("name", "Special", "Sunday brunch"),
		text("day", "Day", "Sunday"),
		number("price", "Price", "25"),
		area("description", "Description", "What is included"),
	},
	"classes": {
		text("name", "Class", "Morning Yoga"),
		text("schedule", "Schedule", "Mon/Wed 7:00"),
		text("instructor", "Instructor", "Alex"),
		area("description", "Description", "Level and focus"),
	},
	"courses": {
		text("name", "Course", "Intro to Algebra"),
		text("level", "Level", "Beginner"),
		text("duration", "Duration", "8 weeks"),
		area("description", "Description", "Syllabus overview"),
	},
	"gallery": {
		text("image", "Image URL", "https://..."),
		text("caption", "Caption", "Our studio"),
	},
	"pricing": {
		text("name", "Plan", "Basic"),
		number("price", "Price", "29"),
		text("period", "Period", "month"),
		area("features", "Features", "One feature per line"),
	},
	"testimonials": {
		text("name", "Name", "John Smith"),
		text("role", "Role", "Client"),
		number("rating", "Rating", "5"),
		area("quote", "Quote", "What they said"),
	},
	"faqs": {
		text("question", "Question", "Do you take walk-ins?"),
		area("answer", "Answer", "Yes, subject to availability"),
	},
}

// Fields returns the field schema for section. Unknown sections, including
// the hero, have no schema and yield an empty list.
func Fields(section string) []Field {
	return append([]Field(nil), sectionFields[section]...)
}

// NewItem builds the add-item template for section: one key per schema
// field, each set to the empty string.
func NewItem(section string) Item {
	fields := sectionFields[section]
	it := make(Item, len(fields))
	for _, f := range fields {
		it[f.Key] = ""
	}
	return it
}
