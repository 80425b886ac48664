package models

// Lesson is a unit of theory course content. Free lessons are readable by
// anyone; the rest require an active plan.
type Lesson struct {
	Slug    string `json:"slug" firestore:"-"`
	Title   string `json:"title" firestore:"title"`
	Chapter string `json:"chapter" firestore:"chapter"`
	Order   int    `json:"order" firestore:"order"`
	Free    bool   `json:"free" firestore:"free"`
	Body    string `json:"body,omitempty" firestore:"body,omitempty"`
}
