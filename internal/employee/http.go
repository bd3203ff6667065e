package employee

import (
	"context"
	"errors"
	"log"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/employee-portal/internal/session"
	"github.com/yourusername/employee-portal/internal/web"
)

// 送信失敗時に表示するメッセージ
const (
	MsgListFailed   = "Failed to fetch employees. Using default data."
	MsgCreateFailed = "Failed to create employee. Please try again."
	MsgUpdateFailed = "Failed to update employee. Please try again."
	MsgDeleteFailed = "Failed to delete employee."
)

// ListPath は一覧画面のパスです。
const ListPath = "/employee-list"

// Service は社員APIです。token はセッションのベアラートークンです。
type Service interface {
	List(ctx context.Context, token string) ([]Employee, error)
	Get(ctx context.Context, token, id string) (*Employee, error)
	Create(ctx context.Context, token string, form *Form) (*Employee, error)
	Update(ctx context.Context, token, id string, form *Form) (*Employee, error)
	Delete(ctx context.Context, token, id string) error
}

// HandlerOptions はハンドラー共通の設定です。
type HandlerOptions struct {
	Logger       *log.Logger
	MaxPhotoSize int64
}

func (o HandlerOptions) logf(format string, args ...any) {
	if o.Logger != nil {
		o.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

// ListHandler は GET /employee-list のハンドラーを返します。
func ListHandler(svc Service, opts HandlerOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		messages := []string{}
		if store, ok := session.StoreFromContext(c); ok {
			if flash := session.PopFlash(store); flash != "" {
				messages = append(messages, flash)
			}
		}

		list, err := svc.List(c.Request.Context(), session.FromContext(c).Token)
		if err != nil {
			opts.logf("Error fetching employees: %v", err)
			list = DefaultEmployees()
			messages = append(messages, MsgListFailed)
		}

		search := c.Query("q")
		web.Render(c, http.StatusOK, "employee_list.html", gin.H{
			"Title":     "Employee List",
			"Employees": Filter(list, search),
			"Search":    search,
			"Errors":    messages,
		})
	}
}

// NewFormHandler は GET /create-employee のハンドラーを返します。
func NewFormHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		renderForm(c, http.StatusOK, createView(&Form{}, nil))
	}
}

// CreateHandler は POST /create-employee のハンドラーを返します。
// 検証に失敗した場合は API を呼び出しません。
func CreateHandler(svc Service, opts HandlerOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		form, errs := parseForm(c, opts.MaxPhotoSize)
		if len(errs) == 0 {
			errs = Validate(form, true)
		} else {
			mergeErrors(errs, Validate(form, errs[FieldImage] == ""))
		}
		if len(errs) > 0 {
			renderForm(c, http.StatusUnprocessableEntity, createView(form, errs))
			return
		}

		if _, err := svc.Create(c.Request.Context(), session.FromContext(c).Token, form); err != nil {
			opts.logf("Error creating employee: %v", err)
			renderForm(c, http.StatusBadGateway, createView(form, ValidationErrors{FieldSubmit: MsgCreateFailed}))
			return
		}
		c.Redirect(http.StatusSeeOther, ListPath)
	}
}

// EditFormHandler は GET /edit-employee/:id のハンドラーを返します。
// 取得に失敗しても空のフォームを表示します。
func EditFormHandler(svc Service, opts HandlerOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		existing, err := svc.Get(c.Request.Context(), session.FromContext(c).Token, id)
		if err != nil {
			opts.logf("Error fetching employee %s: %v", id, err)
			existing = nil
		}
		image := ""
		if existing != nil {
			image = existing.Image
		}
		renderForm(c, http.StatusOK, editView(id, FormFromEmployee(existing), image, nil))
	}
}

// UpdateHandler は POST /edit-employee/:id のハンドラーを返します。写真は任意です。
func UpdateHandler(svc Service, opts HandlerOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		existingImage := strings.TrimSpace(c.PostForm("existingImage"))

		form, errs := parseForm(c, opts.MaxPhotoSize)
		if len(errs) == 0 {
			errs = Validate(form, false)
		} else {
			mergeErrors(errs, Validate(form, false))
		}
		if len(errs) > 0 {
			renderForm(c, http.StatusUnprocessableEntity, editView(id, form, existingImage, errs))
			return
		}

		if _, err := svc.Update(c.Request.Context(), session.FromContext(c).Token, id, form); err != nil {
			opts.logf("Error updating employee %s: %v", id, err)
			renderForm(c, http.StatusBadGateway, editView(id, form, existingImage, ValidationErrors{FieldSubmit: MsgUpdateFailed}))
			return
		}
		c.Redirect(http.StatusSeeOther, ListPath)
	}
}

// DeleteHandler は POST /delete-employee/:id のハンドラーを返します。
// 結果にかかわらず一覧へ戻り、失敗時はメッセージを一度だけ表示します。
func DeleteHandler(svc Service, opts HandlerOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := svc.Delete(c.Request.Context(), session.FromContext(c).Token, id); err != nil {
			opts.logf("Error deleting employee %s: %v", id, err)
			if store, ok := session.StoreFromContext(c); ok {
				store.Set(session.KeyFlash, MsgDeleteFailed)
				if saveErr := store.Save(); saveErr != nil {
					opts.logf("failed to save flash message: %v", saveErr)
				}
			}
		}
		c.Redirect(http.StatusSeeOther, ListPath)
	}
}

type formView struct {
	title         string
	action        string
	submitLabel   string
	form          *Form
	existingImage string
	errors        ValidationErrors
}

func createView(form *Form, errs ValidationErrors) formView {
	return formView{
		title:       "Create Employee",
		action:      "/create-employee",
		submitLabel: "Submit",
		form:        form,
		errors:      errs,
	}
}

func editView(id string, form *Form, existingImage string, errs ValidationErrors) formView {
	return formView{
		title:         "Edit Employee",
		action:        "/edit-employee/" + id,
		submitLabel:   "Update",
		form:          form,
		existingImage: existingImage,
		errors:        errs,
	}
}

func renderForm(c *gin.Context, status int, v formView) {
	if v.errors == nil {
		v.errors = ValidationErrors{}
	}
	if v.form == nil {
		v.form = &Form{}
	}
	web.Render(c, status, "employee_form.html", gin.H{
		"Title":         v.title,
		"Action":        v.action,
		"SubmitLabel":   v.submitLabel,
		"Form":          v.form,
		"ExistingImage": v.existingImage,
		"Errors":        v.errors,
		"Designations":  Designations,
		"Genders":       Genders,
		"Courses":       Courses,
	})
}

// parseForm は multipart フォームを読み取ります。写真の読み取りに失敗した場合は
// image フィールドのエラーとして返します。
func parseForm(c *gin.Context, maxPhotoSize int64) (*Form, ValidationErrors) {
	form := &Form{
		Name:        strings.TrimSpace(c.PostForm("name")),
		Email:       strings.TrimSpace(c.PostForm("email")),
		Mobile:      strings.TrimSpace(c.PostForm("mobile")),
		Designation: strings.TrimSpace(c.PostForm("designation")),
		Gender:      strings.TrimSpace(c.PostForm("gender")),
		Courses:     nonEmpty(c.PostFormArray("courses")),
	}

	errs := ValidationErrors{}
	fh, err := c.FormFile("image")
	if err != nil {
		if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
			errs[FieldImage] = MsgImageType
		}
		return form, errs
	}
	photo, err := readPhoto(fh, maxPhotoSize)
	switch {
	case errors.Is(err, ErrPhotoTooLarge):
		errs[FieldImage] = MsgImageTooLarge
	case err != nil:
		errs[FieldImage] = MsgImageType
	default:
		form.Photo = photo
	}
	return form, errs
}

func readPhoto(fh *multipart.FileHeader, maxSize int64) (*Photo, error) {
	if fh.Size == 0 && fh.Filename == "" {
		return nil, nil
	}
	return ReadPhoto(fh, maxSize)
}

func mergeErrors(dst, src ValidationErrors) {
	for k, v := range src {
		if _, exists := dst[k]; !exists {
			dst[k] = v
		}
	}
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
