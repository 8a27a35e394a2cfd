package dataset

import "strings"

// ChoiceLetters is the fixed iteration order for MCQ options. Records may
// carry any prefix subset of these letters; rendering always walks them in
// this order.
var ChoiceLetters = []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"}

// Record is a single multiple-choice item. Question and Answer are required
// for formatting; choice letters are optional and looked up explicitly.
type Record struct {
	ID       string
	Question string
	Answer   string
	choices  map[string]string
}

// NewRecord builds a record from explicit fields. Choice keys outside the
// fixed letter set are dropped.
func NewRecord(id, question, answer string, choices map[string]string) Record {
	r := Record{
		ID:       id,
		Question: question,
		Answer:   answer,
	}
	for _, letter := range ChoiceLetters {
		v, ok := choices[letter]
		if !ok {
			continue
		}
		if r.choices == nil {
			r.choices = make(map[string]string, len(choices))
		}
		r.choices[letter] = v
	}
	return r
}

// Choice returns the option text for a letter. Absent letters report ok=false
// and are skipped by callers; this mirrors the required/optional split of the
// record schema (question and answer are not optional).
func (r Record) Choice(letter string) (string, bool) {
	v, ok := r.choices[letter]
	return v, ok
}

// NumChoices reports how many choice letters the record carries.
func (r Record) NumChoices() int {
	return len(r.choices)
}

// fromRow maps a raw file row onto the fixed record schema. Unknown columns
// are ignored; no validation happens here (deferred to formatting).
func fromRow(row map[string]string) Record {
	rec := Record{
		ID:       strings.TrimSpace(row["id"]),
		Question: row["question"],
		Answer:   row["answer"],
	}
	for _, letter := range ChoiceLetters {
		v, ok := row[letter]
		if !ok {
			continue
		}
		if rec.choices == nil {
			rec.choices = make(map[string]string, len(ChoiceLetters))
		}
		rec.choices[letter] = v
	}
	return rec
}
