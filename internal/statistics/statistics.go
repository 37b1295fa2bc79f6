package statistics

type Class struct {
	SubjectCode string `json:"subject_code"`
	Total       int    `json:"total"`
}

type Week struct {
	Year int `json:"year"`
	// Number is an ISO week number
	Number  int     `json:"number"`
	Total   int     `json:"total"`
	Classes []Class `json:"classes"`
}
