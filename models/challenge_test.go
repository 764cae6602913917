package models

import (
	"testing"
)

func TestDecideWinner(t *testing.T) {
	tests := []struct {
		name            string
		challengerScore int
		recipientScore  int
		want            string
	}{
		{name: "challenger wins", challengerScore: 4, recipientScore: 2, want: "10"},
		{name: "recipient wins", challengerScore: 2, recipientScore: 4, want: "20"},
		{name: "tie is a draw", challengerScore: 3, recipientScore: 3, want: WinnerDraw},
		{name: "zero beats nothing", challengerScore: 0, recipientScore: 0, want: WinnerDraw},
		{name: "one point margin", challengerScore: 5, recipientScore: 4, want: "10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecideWinner(10, 20, tt.challengerScore, tt.recipientScore)
			if got != tt.want {
				t.Errorf("DecideWinner(10, 20, %d, %d) = %q, want %q",
					tt.challengerScore, tt.recipientScore, got, tt.want)
			}
		})
	}
}

func TestChallengeParticipantHelpers(t *testing.T) {
	score := 3
	ch := &Challenge{
		ChallengerID:    10,
		RecipientID:     20,
		ChallengerScore: &score,
	}

	if !ch.IsParticipant(10) || !ch.IsParticipant(20) {
		t.Fatal("both players should be participants")
	}
	if ch.IsParticipant(30) {
		t.Fatal("uid 30 should not be a participant")
	}
	if got := ch.ScoreOf(10); got == nil || *got != 3 {
		t.Errorf("ScoreOf(10) = %v, want 3", got)
	}
	if got := ch.ScoreOf(20); got != nil {
		t.Errorf("ScoreOf(20) = %v, want nil", got)
	}
	if got := ch.OpponentScore(20); got == nil || *got != 3 {
		t.Errorf("OpponentScore(20) = %v, want 3", got)
	}
}
