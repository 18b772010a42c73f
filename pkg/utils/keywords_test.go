package utils

import (
	"reflect"
	"testing"
)

func TestKeywords(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		extra []string
		want  []string
	}{
		{
			name: "stopwords and punctuation dropped",
			text: "When does the enrollment period open?",
			want: []string{"enrollment", "period", "open"},
		},
		{
			name: "lowercased",
			text: "Library Hours",
			want: []string{"library", "hours"},
		},
		{
			name:  "extra stopwords",
			text:  "campus library hours",
			extra: []string{"campus"},
			want:  []string{"library", "hours"},
		},
		{
			name: "all stopwords",
			text: "who are you",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Keywords(tt.text, tt.extra)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Keywords(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestIsStopword(t *testing.T) {
	if !IsStopword("The") {
		t.Error("The should be a stopword")
	}
	if IsStopword("tuition") {
		t.Error("tuition should not be a stopword")
	}
}
