package tokenizer

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "scheme name with stop words",
			text: "HDFC Large Cap Fund - Direct Growth",
			want: []string{"hdfc", "large", "cap"},
		},
		{
			name: "keeps duplicates in order",
			text: "Axis Axis Bluechip",
			want: []string{"axis", "axis", "bluechip"},
		},
		{
			name: "drops single characters and punctuation",
			text: "ICICI Prudential (G) - IDCW",
			want: []string{"icici", "prudential", "idcw"},
		},
		{
			name: "empty input",
			text: "",
			want: []string{},
		},
		{
			name: "only stop words",
			text: "Mutual Fund Scheme Plan",
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v; want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestTrigrams(t *testing.T) {
	tests := []struct {
		word string
		want []string
	}{
		{"large", []string{"lar", "arg", "rge"}},
		{"cap", []string{"cap"}},
		{"ab", nil},
		{"", nil},
	}
	for _, tt := range tests {
		got := Trigrams(tt.word)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Trigrams(%q) = %v; want %v", tt.word, got, tt.want)
		}
	}
}

func TestIsStopWord(t *testing.T) {
	for _, word := range []string{"fund", "mutual", "scheme", "plan", "direct", "regular", "growth"} {
		if !IsStopWord(word) {
			t.Errorf("IsStopWord(%q) = false; want true", word)
		}
	}
	if IsStopWord("equity") {
		t.Error("IsStopWord(\"equity\") = true; want false")
	}
}
