package coach_test

import (
	"testing"

	"gymboard/internal/domain/coach"
)

// TestCoach_Validate tests validation of Coach.
func TestCoach_Validate(t *testing.T) {
	tests := []struct {
		name    string
		c       coach.Coach
		wantErr bool
	}{
		{"valid coach", coach.Coach{ID: "1", Name: "Ana", Email: "ana@gym.test", Active: true}, false},
		{"valid without email", coach.Coach{ID: "2", Name: "Ben"}, false},
		{"empty name", coach.Coach{ID: "3", Name: " "}, true},
		{"bad email", coach.Coach{ID: "4", Name: "Cy", Email: "not-an-email"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Coach.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
