package catalog

// Default returns the Dentalis Clinic service table.
func Default() *Catalog {
	return MustNew(defaultServices...)
}

var defaultServices = []ServiceDefinition{
	{
		CanonicalName:   "Preventívna prehliadka",
		Price:           "20 €",
		DurationMinutes: 30,
		Category:        "Preventívna stomatológia",
	},
	{
		CanonicalName:   "Dentálne čistenie",
		Price:           "45–80 €",
		DurationMinutes: 60,
		Category:        "Preventívna stomatológia",
		Aliases:         []string{"hygiena", "dentálna hygiena", "čistenie zubov", "scaling"},
	},
	{
		CanonicalName:   "Kompozitná výplň",
		Price:           "60–120 €",
		DurationMinutes: 45,
		Category:        "Konzervatívna stomatológia",
		Aliases:         []string{"plomba", "kaz", "výplň"},
	},
	{
		CanonicalName:   "Koreňové ošetrenie",
		Price:           "150–300 €",
		DurationMinutes: 90,
		Category:        "Konzervatívna stomatológia",
		Aliases:         []string{"endodoncia", "koreň", "nervy"},
	},
	{
		CanonicalName:   "Korunka",
		Price:           "450–800 €",
		DurationMinutes: 60,
		Category:        "Protetika",
	},
	{
		CanonicalName:   "Implantát",
		Price:           "800–1 200 €",
		DurationMinutes: 60,
		Category:        "Implantológia",
	},
	{
		CanonicalName:   "Bielenie zubov",
		Price:           "250–400 €",
		DurationMinutes: 60,
		Category:        "Estetická stomatológia",
	},
	{
		CanonicalName:   "Vstupné vyšetrenie",
		Price:           "20–50 €",
		DurationMinutes: 30,
		Category:        "Preventívna stomatológia",
		Aliases:         []string{"vstupná prehliadka", "prvé vyšetrenie"},
	},
	{
		CanonicalName:   "Konzultácia",
		Price:           "Na vyžiadanie",
		DurationMinutes: 30,
		Category:        "Konzultácie",
	},
	{
		CanonicalName:   "Urgentný prípad",
		Price:           "Podľa výkonu",
		DurationMinutes: 30,
		Category:        "Urgentné služby",
		Aliases:         []string{"bolesť", "opuch", "akútne"},
	},
}
