package quiz

import (
	"context"
	"testing"
)

func TestBank_Resolve(t *testing.T) {
	tests := []struct {
		subject  string
		category string
		count    int
	}{
		{"physics", "physics", 2},
		{"Applied PHYSICS 101", "physics", 2},
		{"Computer Science", "cs", 5},
		{"", "cs", 5},
		{"Mathematics", "cs", 5},
	}

	b := NewBank()
	for _, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			if got := b.Category(tt.subject); got != tt.category {
				t.Fatalf("expected category %q, got %q", tt.category, got)
			}
			qs, err := b.Questions(context.Background(), tt.subject)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(qs) != tt.count {
				t.Fatalf("expected %d questions, got %d", tt.count, len(qs))
			}
		})
	}
}

func TestBank_QuestionsAreValid(t *testing.T) {
	for _, c := range []category{computerScienceCategory, physicsCategory} {
		ids := map[int]bool{}
		for _, q := range c.questions {
			if err := q.Validate(); err != nil {
				t.Errorf("%s: %v", c.name, err)
			}
			if q.Explanation == "" {
				t.Errorf("%s: question %d has no explanation", c.name, q.ID)
			}
			if ids[q.ID] {
				t.Errorf("%s: duplicate id %d", c.name, q.ID)
			}
			ids[q.ID] = true
		}
	}
}

func TestBank_ReturnsCopies(t *testing.T) {
	b := NewBank()
	qs, _ := b.Questions(context.Background(), "physics")
	qs[0].Options[0] = "mutated"

	again, _ := b.Questions(context.Background(), "physics")
	if again[0].Options[0] != "Watt" {
		t.Fatalf("bank data was mutated through a returned question: %q", again[0].Options[0])
	}
}

func TestQuestion_Validate(t *testing.T) {
	valid := Question{ID: 1, Prompt: "p", Options: []string{"a", "b", "c", "d"}, CorrectOption: "c"}

	tests := []struct {
		name    string
		mutate  func(q *Question)
		wantErr bool
	}{
		{"valid", func(q *Question) {}, false},
		{"empty prompt", func(q *Question) { q.Prompt = " " }, true},
		{"three options", func(q *Question) { q.Options = q.Options[:3] }, true},
		{"duplicate option", func(q *Question) { q.Options = []string{"a", "a", "c", "d"} }, true},
		{"blank option", func(q *Question) { q.Options = []string{"a", "", "c", "d"} }, true},
		{"correct not in options", func(q *Question) { q.CorrectOption = "e" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := valid.clone()
			tt.mutate(&q)
			if err := q.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
