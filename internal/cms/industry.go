package cms

// DefaultIndustry is used whenever an industry key is not in the table.
const DefaultIndustry = "salon"

// HeroSection is the fixed-form section every industry starts with.
const HeroSection = "hero"

type IndustryConfig struct {
	Title    string
	Sections []string
}

var industries = map[string]IndustryConfig{
	"salon": {
		Title:    "Salon & Spa",
		Sections: []string{HeroSection, "stats", "services", "team", "gallery", "pricing", "testimonials", "faqs"},
	},
	"healthcare": {
		Title:    "Healthcare",
		Sections: []string{HeroSection, "stats", "departments", "doctors", "services", "testimonials", "faqs"},
	},
	"legal": {
		Title:    "Legal Practice",
		Sections: []string{HeroSection, "stats", "practice_areas", "team", "case_results", "testimonials", "faqs"},
	},
	"manufacturing": {
		Title:    "Manufacturing",
		Sections: []string{HeroSection, "stats", "products", "capabilities", "certifications", "process", "testimonials"},
	},
	"restaurant": {
		Title:    "Restaurant",
		Sections: []string{HeroSection, "menu", "specials", "team", "gallery", "testimonials", "faqs"},
	},
	"services": {
		Title:    "Professional Services",
		Sections: []string{HeroSection, "stats", "services", "process", "team", "pricing", "testimonials", "faqs"},
	},
	"fitness": {
		Title:    "Fitness Studio",
		Sections: []string{HeroSection, "stats", "classes", "team", "pricing", "testimonials", "faqs"},
	},
	"education": {
		Title:    "Education",
		Sections: []string{HeroSection, "stats", "courses", "team", "testimonials", "faqs"},
	},
}

// Lookup returns the configuration for industry, falling back to
// DefaultIndustry when the key is unknown. The returned Sections slice is a
// copy.
func Lookup(industry string) IndustryConfig {
	cfg, ok := industries[industry]
	if !ok {
		cfg = industries[DefaultIndustry]
	}
	return IndustryConfig{
		Title:    cfg.Title,
		Sections: append([]string(nil), cfg.Sections...),
	}
}

// Known reports whether industry has its own configuration.
func Known(industry string) bool {
	_, ok := industries[industry]
	return ok
}

// Industries lists the configured industry keys in a stable order.
func Industries() []string {
	return []string{"salon", "healthcare", "legal", "manufacturing", "restaurant", "services", "fitness", "education"}
}
