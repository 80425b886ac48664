package models

// TrafficSign is a reference entry used by the traffic-sign quiz.
type TrafficSign struct {
	Code        string `json:"code" firestore:"-"` // RVV code, e.g. "A1", "B6"
	Name        string `json:"name" firestore:"name"`
	Category    string `json:"category" firestore:"category"`
	ImageURL    string `json:"imageUrl,omitempty" firestore:"imageUrl,omitempty"`
	Description string `json:"description,omitempty" firestore:"description,omitempty"`
}
