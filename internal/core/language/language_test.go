package language

import "testing"

func TestCompatible(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		skills   []Skill
		required []Skill
		want     bool
	}{
		{
			name:     "no requirements",
			skills:   nil,
			required: nil,
			want:     true,
		},
		{
			name:     "no requirements with skills",
			skills:   []Skill{{Language: "English", Proficiency: ProficiencyBasic}},
			required: nil,
			want:     true,
		},
		{
			name:     "no skills with requirements",
			skills:   nil,
			required: []Skill{{Language: "English", Proficiency: ProficiencyBasic}},
			want:     false,
		},
		{
			name:     "case insensitive match",
			skills:   []Skill{{Language: "english", Proficiency: ProficiencyFluent}},
			required: []Skill{{Language: "English", Proficiency: ProficiencyBasic}},
			want:     true,
		},
		{
			name:     "equal proficiency passes",
			skills:   []Skill{{Language: "German", Proficiency: ProficiencyConversational}},
			required: []Skill{{Language: "german", Proficiency: ProficiencyConversational}},
			want:     true,
		},
		{
			name:     "insufficient proficiency",
			skills:   []Skill{{Language: "German", Proficiency: ProficiencyBasic}},
			required: []Skill{{Language: "German", Proficiency: ProficiencyFluent}},
			want:     false,
		},
		{
			name:     "missing language",
			skills:   []Skill{{Language: "English", Proficiency: ProficiencyNative}},
			required: []Skill{{Language: "Spanish", Proficiency: ProficiencyBasic}},
			want:     false,
		},
		{
			name: "all requirements must match",
			skills: []Skill{
				{Language: "English", Proficiency: ProficiencyNative},
				{Language: "Spanish", Proficiency: ProficiencyBasic},
			},
			required: []Skill{
				{Language: "English", Proficiency: ProficiencyFluent},
				{Language: "Spanish", Proficiency: ProficiencyConversational},
			},
			want: false,
		},
		{
			name: "multiple requirements satisfied",
			skills: []Skill{
				{Language: "English", Proficiency: ProficiencyNative},
				{Language: "Spanish", Proficiency: ProficiencyFluent},
			},
			required: []Skill{
				{Language: "english", Proficiency: ProficiencyFluent},
				{Language: "SPANISH", Proficiency: ProficiencyConversational},
			},
			want: true,
		},
		{
			name:     "unknown proficiency never satisfies",
			skills:   []Skill{{Language: "English", Proficiency: Proficiency("expert")}},
			required: []Skill{{Language: "English", Proficiency: ProficiencyBasic}},
			want:     false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Compatible(tc.skills, tc.required); got != tc.want {
				t.Fatalf("Compatible() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestProficiencyRank(t *testing.T) {
	t.Parallel()

	if ProficiencyBasic.Rank() >= ProficiencyConversational.Rank() {
		t.Fatal("basic must rank below conversational")
	}
	if ProficiencyConversational.Rank() >= ProficiencyFluent.Rank() {
		t.Fatal("conversational must rank below fluent")
	}
	if ProficiencyFluent.Rank() >= ProficiencyNative.Rank() {
		t.Fatal("fluent must rank below native")
	}
	if Proficiency("unknown").Rank() != 0 {
		t.Fatal("unknown proficiency must rank 0")
	}
	if Proficiency("unknown").Valid() {
		t.Fatal("unknown proficiency must be invalid")
	}
}
