package assistant

import (
	"strings"
	"testing"
)

func TestBuildSystemInstruction_IncludesProfileAndSentinelRule(t *testing.T) {
	prompt := BuildSystemInstruction(BusinessProfile{
		Name:          "Scented Bliss",
		Description:   "Boutique perfume shop",
		BusinessHours: "Mon-Sat 9am-6pm",
		Location:      "Cape Town",
	})

	for _, want := range []string{
		"Scented Bliss",
		"Boutique perfume shop",
		"Mon-Sat 9am-6pm",
		"Cape Town",
		SentinelToken,
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}

func TestBuildSystemInstruction_OnlyAvailableCatalogueEntries(t *testing.T) {
	prompt := BuildSystemInstruction(BusinessProfile{
		Name: "Shop",
		Catalogue: []CatalogueEntry{
			{Name: "Midnight Oud", Price: "R450", IsAvailable: true},
			{Name: "Discontinued Rose", Price: "R200", IsAvailable: false},
		},
	})

	if !strings.Contains(prompt, "Midnight Oud") {
		t.Fatalf("available item missing from prompt")
	}
	if strings.Contains(prompt, "Discontinued Rose") {
		t.Fatalf("unavailable item must not appear in prompt")
	}
}

func TestBuildSystemInstruction_OmitsEmptyFactsAndCatalogueSection(t *testing.T) {
	prompt := BuildSystemInstruction(BusinessProfile{Name: "Shop"})

	if strings.Contains(prompt, "Description:") {
		t.Fatalf("empty description must be omitted")
	}
	if strings.Contains(prompt, "Available products") {
		t.Fatalf("catalogue section must be omitted when empty")
	}
}
