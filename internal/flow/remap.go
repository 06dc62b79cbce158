package flow

import "github.com/fieldscope/survey-service/internal/models"

// Builder-time helpers: keeping rule targets valid while the author reorders,
// duplicates, or deletes questions. None of this runs at respondent time.

// RemapReferences rewrites every reference to oldID across the question set to
// point at newID: skip-rule source and target question ids, and display-logic
// condition ids. Questions that do not reference oldID are untouched, and
// applying the same remap twice is a no-op the second time.
func RemapReferences(oldID, newID string, questions []Question) {
	if oldID == "" || oldID == newID {
		return
	}
	for i := range questions {
		cfg := &questions[i].Config
		if sl := cfg.SkipLogic; sl != nil {
			for r := range sl.Rules {
				if sl.Rules[r].QuestionID == oldID {
					sl.Rules[r].QuestionID = newID
				}
				if sl.Rules[r].TargetQuestionID == oldID {
					sl.Rules[r].TargetQuestionID = newID
				}
			}
		}
		if dl := cfg.DisplayLogic; dl != nil {
			for c := range dl.Conditions {
				if dl.Conditions[c].QuestionID == oldID {
					dl.Conditions[c].QuestionID = newID
				}
			}
		}
	}
}

// QuestionReference tracks one question's identity lineage and which other
// questions' logic points at it, split by concern.
type QuestionReference struct {
	OriginalID  string
	CurrentID   string
	SectionID   string
	DisplayRefs []string // ids of questions whose display logic references this one
	SkipRefs    []string // ids of questions whose skip rules reference this one
}

// ReferenceMap indexes questions by current id. It is rebuilt per edit
// transaction and discarded on save; nothing persists it.
type ReferenceMap map[string]*QuestionReference

// BuildReferenceMap walks the definition and records, for every question, who
// references it from skip or display logic.
func BuildReferenceMap(def *Definition) ReferenceMap {
	rm := make(ReferenceMap)
	for _, sec := range def.Sections {
		for _, q := range sec.Questions {
			original := q.Config.OriginalID
			if original == "" {
				original = q.ID
			}
			rm[q.ID] = &QuestionReference{
				OriginalID: original,
				CurrentID:  q.ID,
				SectionID:  sec.ID,
			}
		}
	}
	for _, sec := range def.Sections {
		for _, q := range sec.Questions {
			if sl := q.Config.SkipLogic; sl != nil {
				for _, rule := range sl.Rules {
					for _, id := range []string{rule.QuestionID, rule.TargetQuestionID} {
						if ref, ok := rm[id]; ok && id != "" {
							ref.SkipRefs = appendUnique(ref.SkipRefs, q.ID)
						}
					}
				}
			}
			if dl := q.Config.DisplayLogic; dl != nil {
				for _, cond := range dl.Conditions {
					if ref, ok := rm[cond.QuestionID]; ok && cond.QuestionID != "" {
						ref.DisplayRefs = appendUnique(ref.DisplayRefs, q.ID)
					}
				}
			}
		}
	}
	return rm
}

// LogicIssue is a save-time warning for the author: a rule or condition whose
// target no longer exists in the definition.
type LogicIssue struct {
	SectionID  string `json:"section_id,omitempty"`
	QuestionID string `json:"question_id,omitempty"`
	RuleIndex  int    `json:"rule_index"`
	Concern    string `json:"concern"` // "skip_logic", "display_logic", "section_skip_logic"
	MissingID  string `json:"missing_id"`
}

// ValidateReferences scans all logic for dangling section/question ids. The
// result is advisory: respondent-time evaluation degrades to linear advance
// regardless.
func ValidateReferences(def *Definition) []LogicIssue {
	var issues []LogicIssue
	for _, sec := range def.Sections {
		if sl := sec.SkipLogic; sl != nil && sl.Enabled {
			if sl.Action == models.ActionSpecificSection && sl.TargetSectionID != "" {
				if _, ok := def.SectionIndexOf(sl.TargetSectionID); !ok {
					issues = append(issues, LogicIssue{
						SectionID: sec.ID, RuleIndex: -1,
						Concern: "section_skip_logic", MissingID: sl.TargetSectionID,
					})
				}
			}
			if sl.Action == models.ActionSpecificQuestion && sl.TargetQuestionID != "" {
				if _, ok := def.PositionOf(sl.TargetQuestionID); !ok {
					issues = append(issues, LogicIssue{
						SectionID: sec.ID, RuleIndex: -1,
						Concern: "section_skip_logic", MissingID: sl.TargetQuestionID,
					})
				}
			}
		}
		for _, q := range sec.Questions {
			if sl := q.Config.SkipLogic; sl != nil && sl.Enabled {
				for i, rule := range sl.Rules {
					if rule.TargetQuestionID != "" {
						if _, ok := def.PositionOf(rule.TargetQuestionID); !ok {
							issues = append(issues, LogicIssue{
								SectionID: sec.ID, QuestionID: q.ID, RuleIndex: i,
								Concern: "skip_logic", MissingID: rule.TargetQuestionID,
							})
						}
					} else if rule.TargetSectionID != "" {
						if _, ok := def.SectionIndexOf(rule.TargetSectionID); !ok {
							issues = append(issues, LogicIssue{
								SectionID: sec.ID, QuestionID: q.ID, RuleIndex: i,
								Concern: "skip_logic", MissingID: rule.TargetSectionID,
							})
						}
					}
				}
			}
			if dl := q.Config.DisplayLogic; dl != nil {
				for i, cond := range dl.Conditions {
					if cond.QuestionID == "" {
						continue
					}
					if _, ok := def.PositionOf(cond.QuestionID); !ok {
						issues = append(issues, LogicIssue{
							SectionID: sec.ID, QuestionID: q.ID, RuleIndex: i,
							Concern: "display_logic", MissingID: cond.QuestionID,
						})
					}
				}
			}
		}
	}
	return issues
}

func appendUnique(list []string, id string) []string {
	for _, existing := range list {
		if existing == id {
			return list
		}
	}
	return append(list, id)
}
