package services

import (
	"encoding/json"
	"strings"
)

// NoAnswerText is rendered wherever a stored value is NULL.
const NoAnswerText = "No answer provided"

// AnswerRow is one flat answer joined with its question's metadata. For
// sub-question answers ParentQText carries the parent question's own text,
// joined upstream so groups are labeled correctly.
type AnswerRow struct {
	QuestionID       uint    `json:"question_id"`
	Value            *string `json:"value"`
	FilePath         *string `json:"file_path,omitempty"`
	QText            string  `json:"q_text"`
	ParentQuestionID *uint   `json:"parent_question_id,omitempty"`
	SubQuestionLabel *string `json:"sub_question_label,omitempty"`
	ParentQText      string  `json:"parent_q_text,omitempty"`
}

// SubAnswer is one answered sub-question inside an aggregated group.
type SubAnswer struct {
	QuestionID       uint    `json:"question_id"`
	SubQuestionLabel string  `json:"sub_question_label"`
	Value            *string `json:"value"`
}

// AnswerGroup is the reconstructed per-question block: either a standalone
// answer (Value set, no SubAnswers) or a parent question with its answered
// sub-questions grouped under it.
type AnswerGroup struct {
	QuestionID uint        `json:"question_id"`
	QText      string      `json:"q_text"`
	Value      *string     `json:"value,omitempty"`
	FilePath   *string     `json:"file_path,omitempty"`
	SubAnswers []SubAnswer `json:"sub_answers,omitempty"`
}

// Aggregate groups flat answer rows into parent/sub-answer structures. It is a
// pure function shared by the screen, PDF and Excel consumers. Groups appear
// in first-occurrence order of the input, which callers supply storage-ordered.
// Duplicate rows for a question id contribute only once, and the function
// never fails: questions with no rows are simply absent from the output.
func Aggregate(rows []AnswerRow) []AnswerGroup {
	groups := make([]AnswerGroup, 0, len(rows))
	byQuestion := make(map[uint]int, len(rows))
	processed := make(map[uint]bool, len(rows))

	for _, row := range rows {
		if processed[row.QuestionID] {
			continue
		}
		processed[row.QuestionID] = true

		if row.ParentQuestionID == nil {
			byQuestion[row.QuestionID] = len(groups)
			groups = append(groups, AnswerGroup{
				QuestionID: row.QuestionID,
				QText:      row.QText,
				Value:      row.Value,
				FilePath:   row.FilePath,
			})
			continue
		}

		parentID := *row.ParentQuestionID
		i, ok := byQuestion[parentID]
		if !ok {
			// The parent had no row of its own; seed its group from the joined
			// parent text, falling back to this row's text.
			label := row.ParentQText
			if label == "" {
				label = row.QText
			}
			i = len(groups)
			byQuestion[parentID] = i
			groups = append(groups, AnswerGroup{QuestionID: parentID, QText: label})
		}
		sub := SubAnswer{QuestionID: row.QuestionID, Value: row.Value}
		if row.SubQuestionLabel != nil {
			sub.SubQuestionLabel = *row.SubQuestionLabel
		}
		groups[i].SubAnswers = append(groups[i].SubAnswers, sub)
	}
	return groups
}

// FormatAnswerValue renders a stored answer value for human consumption,
// reversing the normalization applied at submission time: NULL becomes the
// sentinel text, a JSON array joins its elements with ", ", a JSON object is
// re-serialized compactly, and anything else passes through verbatim. Only
// strings that start with '[' or '{' are treated as JSON, so numeric-looking
// strings are never reinterpreted.
func FormatAnswerValue(value *string) string {
	if value == nil {
		return NoAnswerText
	}
	raw := *value
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) == 0 {
		return raw
	}

	switch trimmed[0] {
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &elems); err != nil {
			return raw
		}
		parts := make([]string, len(elems))
		for i, e := range elems {
			parts[i] = jsonScalarText(e)
		}
		return strings.Join(parts, ", ")
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
			return raw
		}
		compact, err := json.Marshal(obj)
		if err != nil {
			return raw
		}
		return string(compact)
	default:
		return raw
	}
}

// jsonScalarText renders a JSON value as plain text: strings lose their
// quotes, numbers keep their source form, anything else stays as written.
func jsonScalarText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
