package models

// Question is a single multiple-choice exam question. CorrectOption and
// Explanation are stripped before questions are sent to a client that has
// not submitted yet.
type Question struct {
	ID            string   `json:"id" firestore:"id"`
	Text          string   `json:"text" firestore:"text"`
	ImageURL      string   `json:"imageUrl,omitempty" firestore:"imageUrl,omitempty"`
	Options       []string `json:"options" firestore:"options"`
	CorrectOption int      `json:"correctOption" firestore:"correctOption"`
	Explanation   string   `json:"explanation,omitempty" firestore:"explanation,omitempty"`
}

// Exam is a fixed mock exam identified by its slug. Premium exams are only
// available to users with an active plan.
type Exam struct {
	Slug      string     `json:"slug" firestore:"-"`
	Title     string     `json:"title" firestore:"title"`
	Category  string     `json:"category,omitempty" firestore:"category,omitempty"`
	Premium   bool       `json:"premium" firestore:"premium"`
	Questions []Question `json:"questions" firestore:"questions"`
}
