package main

import (
	"testing"

	"github.com/Garsondee/Line-of-Battle/internal/battle"
)

func TestRunStatsRecord(t *testing.T) {
	s := runStats{descriptions: make(map[string]int)}

	s.record(battle.Result{Outcome: battle.OutcomeRedVictory, EndTick: 100,
		RedCasualties: 10, BlueCasualties: 40, Description: "red_victory_blue_routed"})
	s.record(battle.Result{Outcome: battle.OutcomeBlueVictory, EndTick: 300,
		RedCasualties: 50, BlueCasualties: 20, Description: "blue_victory_red_routed"})
	s.record(battle.Result{Outcome: battle.OutcomeDraw, EndTick: 200,
		Description: "draw_mutual_rout"})
	s.record(battle.Result{Outcome: battle.OutcomeRedVictory, EndTick: 100,
		Description: "red_victory_blue_routed"})

	if s.runs != 4 || s.redWins != 2 || s.blueWins != 1 || s.draws != 1 {
		t.Errorf("tally runs=%d red=%d blue=%d draws=%d", s.runs, s.redWins, s.blueWins, s.draws)
	}
	if s.totalTicks != 700 {
		t.Errorf("total ticks %d, want 700", s.totalTicks)
	}
	if s.redCasualties != 60 || s.blueCasualties != 60 {
		t.Errorf("casualties %d/%d, want 60/60", s.redCasualties, s.blueCasualties)
	}
	if s.descriptions["red_victory_blue_routed"] != 2 {
		t.Errorf("description tally %v", s.descriptions)
	}
}

func TestRootCommandWiring(t *testing.T) {
	root := newRootCmd()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	if !names["run"] || !names["history"] {
		t.Errorf("subcommands %v, want run and history", names)
	}
}
