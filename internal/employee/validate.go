package employee

import (
	"regexp"
	"slices"
	"sort"
	"strings"
)

var (
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	mobilePattern = regexp.MustCompile(`^[0-9]{10}$`)
)

// フィールド名（フォームの name 属性と一致）
const (
	FieldName        = "name"
	FieldEmail       = "email"
	FieldMobile      = "mobile"
	FieldDesignation = "designation"
	FieldGender      = "gender"
	FieldCourses     = "courses"
	FieldImage       = "image"
	FieldSubmit      = "submit"
)

// 検証メッセージ
const (
	MsgNameRequired        = "Name is required"
	MsgEmailRequired       = "Email is required"
	MsgEmailInvalid        = "Invalid email format"
	MsgMobileRequired      = "Mobile number is required"
	MsgMobileInvalid       = "Mobile number must be 10 digits"
	MsgDesignationRequired = "Designation is required"
	MsgDesignationInvalid  = "Invalid designation"
	MsgGenderRequired      = "Gender is required"
	MsgGenderInvalid       = "Invalid gender"
	MsgCoursesRequired     = "At least one course must be selected"
	MsgCoursesInvalid      = "Invalid course selection"
	MsgImageRequired       = "Image upload is required"
	MsgImageType           = "Only jpg/png files are allowed"
	MsgImageTooLarge       = "Image is too large"
)

// ValidationErrors はフィールド名からメッセージへの対応です。ネットワークには送られません。
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + v[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validate はフォームを検証します。requirePhoto は登録時に true を指定します。
// 検証エラーが無ければ nil を返します。
func Validate(f *Form, requirePhoto bool) ValidationErrors {
	errs := ValidationErrors{}
	if f == nil {
		f = &Form{}
	}

	if strings.TrimSpace(f.Name) == "" {
		errs[FieldName] = MsgNameRequired
	}

	switch {
	case f.Email == "":
		errs[FieldEmail] = MsgEmailRequired
	case !emailPattern.MatchString(f.Email):
		errs[FieldEmail] = MsgEmailInvalid
	}

	switch {
	case f.Mobile == "":
		errs[FieldMobile] = MsgMobileRequired
	case !mobilePattern.MatchString(f.Mobile):
		errs[FieldMobile] = MsgMobileInvalid
	}

	switch {
	case f.Designation == "":
		errs[FieldDesignation] = MsgDesignationRequired
	case !slices.Contains(Designations, f.Designation):
		errs[FieldDesignation] = MsgDesignationInvalid
	}

	switch {
	case f.Gender == "":
		errs[FieldGender] = MsgGenderRequired
	case !slices.Contains(Genders, f.Gender):
		errs[FieldGender] = MsgGenderInvalid
	}

	if len(f.Courses) == 0 {
		errs[FieldCourses] = MsgCoursesRequired
	} else {
		for _, c := range f.Courses {
			if !slices.Contains(Courses, c) {
				errs[FieldCourses] = MsgCoursesInvalid
				break
			}
		}
	}

	if requirePhoto && f.Photo == nil {
		errs[FieldImage] = MsgImageRequired
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
