// Package language は言語スキルと求人の言語要件の適合判定を提供します。
package language

import "strings"

// Proficiency は言語の習熟度を表します。
type Proficiency string

const (
	ProficiencyBasic          Proficiency = "basic"
	ProficiencyConversational Proficiency = "conversational"
	ProficiencyFluent         Proficiency = "fluent"
	ProficiencyNative         Proficiency = "native"
)

var proficiencyRanks = map[Proficiency]int{
	ProficiencyBasic:          1,
	ProficiencyConversational: 2,
	ProficiencyFluent:         3,
	ProficiencyNative:         4,
}

// Rank は習熟度の序列を返します。未知の値は 0 です。
func (p Proficiency) Rank() int {
	return proficiencyRanks[p]
}

// Valid は習熟度が既知の値かどうかを返します。
func (p Proficiency) Valid() bool {
	_, ok := proficiencyRanks[p]
	return ok
}

// Skill は社員が申告した 1 言語分のスキルです。求人側の要件も同じ形です。
type Skill struct {
	Language    string      `json:"language"`
	Proficiency Proficiency `json:"proficiency"`
}

// Compatible はスキル一覧が要件一覧をすべて満たすかどうかを判定します。
// 言語名は大文字小文字を区別せず、要件が空なら常に true、スキルが空で
// 要件があるなら false です。エラーは返しません。
func Compatible(skills, required []Skill) bool {
	if len(required) == 0 {
		return true
	}
	if len(skills) == 0 {
		return false
	}

	for _, req := range required {
		if !hasSkill(skills, req) {
			return false
		}
	}
	return true
}

func hasSkill(skills []Skill, req Skill) bool {
	for _, s := range skills {
		if strings.EqualFold(s.Language, req.Language) && s.Proficiency.Rank() >= req.Proficiency.Rank() {
			return true
		}
	}
	return false
}
