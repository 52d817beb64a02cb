package catalog

import (
	"errors"
	"testing"
)

func TestMintCopiesTemplateStats(t *testing.T) {
	m := NewMinter(Starter())

	card, err := m.Mint("Bullfrog", "player1")
	if err != nil {
		t.Fatalf("unexpected mint error: %v", err)
	}
	if card.HP != 2 || card.ATK != 1 {
		t.Fatalf("expected 2 HP / 1 ATK, got %d/%d", card.HP, card.ATK)
	}
	if card.OwnerID != "player1" {
		t.Fatalf("expected owner player1, got %s", card.OwnerID)
	}

	// Mutating the instance must not touch the shared template.
	card.HP = 0
	if card.Template.HP != 2 {
		t.Fatalf("template HP changed to %d", card.Template.HP)
	}
}

func TestMintIDsAreUnique(t *testing.T) {
	m := NewMinter(Starter())

	seen := make(map[int]bool)
	for i := 0; i < 200; i++ {
		card, err := m.Mint(SquirrelName, "player2")
		if err != nil {
			t.Fatalf("mint %d: %v", i, err)
		}
		if seen[card.ID] {
			t.Fatalf("id %d returned twice", card.ID)
		}
		seen[card.ID] = true
	}
}

func TestMintUnknownTemplate(t *testing.T) {
	m := NewMinter(Starter())

	_, err := m.Mint("Ouroboros", "player1")
	if !errors.Is(err, ErrUnknownTemplate) {
		t.Fatalf("expected ErrUnknownTemplate, got %v", err)
	}
}

func TestNewRejectsDuplicates(t *testing.T) {
	_, err := New([]*Template{
		{Name: SquirrelName, HP: 1},
		{Name: SquirrelName, HP: 2},
	})
	if err == nil {
		t.Fatal("expected duplicate template error")
	}
}

func TestNewRequiresSquirrel(t *testing.T) {
	_, err := New([]*Template{{Name: "Hawk", HP: 1, ATK: 1}})
	if err == nil {
		t.Fatal("expected missing starter error")
	}
}

func TestTemplateCostHelpers(t *testing.T) {
	c := Starter()

	frog, _ := c.Lookup("Bullfrog")
	if frog.Free() {
		t.Fatal("Bullfrog should be costed")
	}
	if frog.TotalCost() != 1 {
		t.Fatalf("expected total cost 1, got %d", frog.TotalCost())
	}

	squirrel, _ := c.Lookup(SquirrelName)
	if !squirrel.Free() {
		t.Fatal("Squirrel should be free")
	}
}
