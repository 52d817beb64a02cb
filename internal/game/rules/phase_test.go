package rules

import "testing"

func TestControllerRoundFlow(t *testing.T) {
	// player2 acted last, so player1 is the first mover.
	c := NewController("player2")

	if !c.CanAct("player1") {
		t.Fatal("expected player1 to be able to act")
	}
	if c.CanAct("player2") {
		t.Fatal("expected player2 to be blocked before player1 commits")
	}

	if err := c.RecordFirstCommit("player1"); err != nil {
		t.Fatalf("first commit: %v", err)
	}
	if c.Phase() != PhaseAwaitingSecondCommit {
		t.Fatalf("expected AWAITING_SECOND_COMMIT, got %s", c.Phase())
	}
	if c.CanAct("player1") {
		t.Fatal("first committer must not act twice in a round")
	}

	if err := c.RecordSecondCommit("player2"); err != nil {
		t.Fatalf("second commit: %v", err)
	}
	if c.Phase() != PhaseAwaitingBonusChoice {
		t.Fatalf("expected AWAITING_BONUS_CHOICE, got %s", c.Phase())
	}
	if c.Round() != 1 {
		t.Fatalf("expected round 1, got %d", c.Round())
	}
	if c.BonusChooser() != "player1" {
		t.Fatalf("bonus belongs to the first committer, got %s", c.BonusChooser())
	}

	if err := c.ResolveBonus("player1"); err != nil {
		t.Fatalf("bonus choice: %v", err)
	}
	if c.Phase() != PhaseAwaitingFirstCommit {
		t.Fatalf("expected AWAITING_FIRST_COMMIT, got %s", c.Phase())
	}
	// Roles swap: player2 opens the next round.
	if !c.CanAct("player2") || c.CanAct("player1") {
		t.Fatal("expected player2 to be the next first mover")
	}
}

func TestControllerRejectsDuplicateCommit(t *testing.T) {
	c := NewController("player2")

	if err := c.RecordFirstCommit("player1"); err != nil {
		t.Fatalf("first commit: %v", err)
	}
	if err := c.RecordSecondCommit("player1"); err == nil {
		t.Fatal("expected replayed commit from the same player to be rejected")
	}
	if c.Round() != 0 {
		t.Fatalf("rejected commit advanced the round to %d", c.Round())
	}
}

func TestControllerRejectsWrongBonusChooser(t *testing.T) {
	c := NewController("player2")
	_ = c.RecordFirstCommit("player1")
	_ = c.RecordSecondCommit("player2")

	if err := c.ResolveBonus("player2"); err == nil {
		t.Fatal("expected bonus from the wrong player to be rejected")
	}
	if err := c.ResolveBonus("player1"); err != nil {
		t.Fatalf("bonus from the rightful chooser rejected: %v", err)
	}
}

func TestControllerGameOverIsTerminal(t *testing.T) {
	c := NewController("player2")
	c.SetGameOver("player1")

	if c.Phase() != PhaseGameOver {
		t.Fatalf("expected GAME_OVER, got %s", c.Phase())
	}
	if c.Winner() != "player1" {
		t.Fatalf("expected winner player1, got %s", c.Winner())
	}
	if c.CanAct("player1") || c.CanAct("player2") {
		t.Fatal("no player may act after game over")
	}
	if err := c.RecordFirstCommit("player2"); err == nil {
		t.Fatal("expected commit after game over to be rejected")
	}
}
