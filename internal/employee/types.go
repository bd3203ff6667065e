// Package employee は社員レコードの型、フォーム検証、一覧・登録・編集・削除画面のハンドラーを提供します。
package employee

import (
	"bytes"
	"encoding/json"
	"slices"
	"strconv"
	"strings"
	"time"
)

// 選択肢（フォームの固定値）
var (
	Designations = []string{"HR", "Manager", "Sales"}
	Courses      = []string{"MCA", "BCA", "BSC"}
	Genders      = []string{"Male", "Female"}
)

// Employee はバックエンドが返す社員レコードです。
type Employee struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Mobile      string    `json:"mobile"`
	Designation string    `json:"designation"`
	Gender      string    `json:"gender"`
	Courses     []string  `json:"courses"`
	Image       string    `json:"image,omitempty"`
	CreatedAt   Timestamp `json:"createdAt"`
}

// Timestamp はバックエンドが返す日時の生の値です。形式が想定外でもレコードの読み込みは
// 失敗させず、表示時に Time で解釈します。
type Timestamp string

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

// TimestampOf は t を Timestamp に変換します。
func TimestampOf(t time.Time) Timestamp {
	return Timestamp(t.Format(time.RFC3339))
}

// UnmarshalJSON は文字列・数値（Unixミリ秒）・null を受け付けます。
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*ts = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*ts = Timestamp(s)
		return nil
	}
	*ts = Timestamp(data)
	return nil
}

// Time は値を日時として解釈します。解釈できなければ false を返します。
func (ts Timestamp) Time() (time.Time, bool) {
	s := strings.TrimSpace(string(ts))
	if s == "" {
		return time.Time{}, false
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), true
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Form は登録・編集フォームの入力値です。
type Form struct {
	Name        string
	Email       string
	Mobile      string
	Designation string
	Gender      string
	Courses     []string
	Photo       *Photo // 新しくアップロードされた写真（無ければ nil）
}

// Photo はアップロードされた写真です。
type Photo struct {
	Filename    string
	ContentType string
	Data        []byte
}

// FormFromEmployee は既存レコードから編集フォームの初期値を作ります。
func FormFromEmployee(e *Employee) *Form {
	if e == nil {
		return &Form{}
	}
	courses := e.Courses
	if courses == nil {
		courses = []string{}
	}
	return &Form{
		Name:        e.Name,
		Email:       e.Email,
		Mobile:      e.Mobile,
		Designation: e.Designation,
		Gender:      e.Gender,
		Courses:     slices.Clone(courses),
	}
}

// HasCourse はコースが選択されているかを返します。
func (f *Form) HasCourse(course string) bool {
	return f != nil && slices.Contains(f.Courses, course)
}
