package employee

import (
	"strings"
	"time"
)

// Filter は名前またはメールアドレスにキーワードを含む社員を返します（大文字小文字を区別しない）。
func Filter(list []Employee, keyword string) []Employee {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return list
	}
	filtered := make([]Employee, 0, len(list))
	for _, e := range list {
		if strings.Contains(strings.ToLower(e.Name), keyword) ||
			strings.Contains(strings.ToLower(e.Email), keyword) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// DefaultEmployees は一覧の取得に失敗したときに表示する既定データです。
func DefaultEmployees() []Employee {
	date := func(day int) Timestamp {
		return TimestampOf(time.Date(2021, time.February, day, 0, 0, 0, 0, time.UTC))
	}
	return []Employee{
		{ID: "1", Name: "Hukum", Email: "hcgupta@cstech.in", Mobile: "954010044", Designation: "HR", Gender: "Male", Courses: []string{"MCA"}, CreatedAt: date(13)},
		{ID: "2", Name: "Manish", Email: "manish@cstech.in", Mobile: "954010033", Designation: "Sales", Gender: "Male", Courses: []string{"BCA"}, CreatedAt: date(12)},
		{ID: "3", Name: "Yash", Email: "yash@cstech.in", Mobile: "954010022", Designation: "Manager", Gender: "Male", Courses: []string{"BSC"}, CreatedAt: date(11)},
		{ID: "4", Name: "Abhishek", Email: "abhishek@cstech.in", Mobile: "954010033", Designation: "HR", Gender: "Male", Courses: []string{"MCA"}, CreatedAt: date(13)},
	}
}
