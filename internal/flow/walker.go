package flow

import "errors"

// Walker is a respondent session's cursor over a survey definition. It
// composes the two evaluators: question rules fire immediately after each
// answer and may short-circuit past the rest of a section; section rules
// apply only when a section's questions are exhausted with no question-level
// override. Questions whose display logic evaluates false are passed over.
//
// The walker never fails at respondent time: a dangling rule target degrades
// to plain linear advance.
type Walker struct {
	def     *Definition
	answers Answers
	pos     Position
}

// NewWalker starts a session at the first visible question of the first
// section (by order). An effectively empty survey starts at End.
func NewWalker(def *Definition) *Walker {
	w := &Walker{def: def, answers: Answers{}}
	if len(def.Sections) == 0 {
		w.pos = End
		return w
	}
	w.pos = w.settle(Position{SectionIndex: 0, QuestionIndex: 0})
	return w
}

// ResumeWalker rebuilds a session from previously collected answers, placing
// the cursor at pos (as persisted on the response record).
func ResumeWalker(def *Definition, answers Answers, pos Position) *Walker {
	if answers == nil {
		answers = Answers{}
	}
	w := &Walker{def: def, answers: answers}
	w.pos = w.settle(pos)
	return w
}

// Position returns the current cursor.
func (w *Walker) Position() Position {
	return w.pos
}

// Done reports whether the survey has terminated.
func (w *Walker) Done() bool {
	return w.pos.IsEnd()
}

// Current returns the question under the cursor, or nil after termination.
func (w *Walker) Current() *Question {
	return w.def.QuestionAt(w.pos)
}

// Answers exposes the accumulated answer map.
func (w *Walker) Answers() Answers {
	return w.answers
}

// Answer records a value for the current question and moves the cursor to the
// next position: the first matching skip rule's target if one fires,
// otherwise the next visible question in order.
func (w *Walker) Answer(value any) Position {
	q := w.Current()
	if q == nil {
		w.pos = End
		return w.pos
	}
	w.answers[q.ID] = value

	if target := EvaluateQuestionAnswered(q, value); target != nil {
		next, err := ResolveTarget(*target, w.def)
		var dangling *DanglingReferenceError
		if err == nil {
			w.pos = w.settle(next)
			return w.pos
		}
		if !errors.As(err, &dangling) {
			w.pos = End
			return w.pos
		}
		// Dangling target authored against a since-deleted id: fall through
		// to linear advance rather than stalling the respondent.
	}

	w.pos = w.settle(Position{SectionIndex: w.pos.SectionIndex, QuestionIndex: w.pos.QuestionIndex + 1})
	return w.pos
}

// settle normalizes a tentative position to the next presentable state:
// skipping hidden questions, completing exhausted sections through their
// section-level skip logic, and terminating on End. The iteration budget
// guards against author-induced jump cycles through empty or fully hidden
// sections.
func (w *Walker) settle(pos Position) Position {
	budget := len(w.def.Sections) + 1
	for _, sec := range w.def.Sections {
		budget += len(sec.Questions)
	}

	for ; budget > 0; budget-- {
		if pos.IsEnd() {
			return End
		}
		sec := w.def.SectionAt(pos.SectionIndex)
		if sec == nil {
			return End
		}
		if pos.QuestionIndex >= len(sec.Questions) {
			pos = w.completeSection(sec)
			continue
		}
		q := w.def.QuestionAt(pos)
		if !ShouldDisplay(q, w.answers) {
			pos.QuestionIndex++
			continue
		}
		return pos
	}
	return End
}

func (w *Walker) completeSection(sec *Section) Position {
	target := EvaluateSectionCompleted(sec, w.def)
	next, err := ResolveTarget(target, w.def)
	if err == nil {
		return next
	}
	// Dangling section-level target: linear advance to the following section.
	idx, ok := w.def.SectionIndexOf(sec.ID)
	if !ok || idx+1 >= len(w.def.Sections) {
		return End
	}
	return Position{SectionIndex: idx + 1, QuestionIndex: 0}
}
