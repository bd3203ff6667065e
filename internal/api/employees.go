package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/yourusername/employee-portal/internal/employee"
)

const employeesPath = "/api/employees"

// Employees は社員APIです。
type Employees struct {
	c *Client
}

var _ employee.Service = (*Employees)(nil)

// Employees は社員APIを返します。
func (c *Client) Employees() *Employees {
	return &Employees{c: c}
}

// List は GET /api/employees を呼び出します。
func (e *Employees) List(ctx context.Context, token string) ([]employee.Employee, error) {
	var list []employee.Employee
	if err := e.c.doJSON(ctx, http.MethodGet, employeesPath, token, nil, &list, false); err != nil {
		return nil, err
	}
	return normalize(list), nil
}

// Get は GET /api/employees/:id を呼び出します。
func (e *Employees) Get(ctx context.Context, token, id string) (*employee.Employee, error) {
	var emp employee.Employee
	if err := e.c.doJSON(ctx, http.MethodGet, employeePath(id), token, nil, &emp, false); err != nil {
		return nil, err
	}
	if emp.Courses == nil {
		emp.Courses = []string{}
	}
	return &emp, nil
}

// Create は POST /api/employees を multipart/form-data で呼び出します。
func (e *Employees) Create(ctx context.Context, token string, form *employee.Form) (*employee.Employee, error) {
	return e.send(ctx, http.MethodPost, employeesPath, token, form)
}

// Update は PUT /api/employees/:id を multipart/form-data で呼び出します。
func (e *Employees) Update(ctx context.Context, token, id string, form *employee.Form) (*employee.Employee, error) {
	return e.send(ctx, http.MethodPut, employeePath(id), token, form)
}

// Delete は DELETE /api/employees/:id を呼び出します。
func (e *Employees) Delete(ctx context.Context, token, id string) error {
	return e.c.doJSON(ctx, http.MethodDelete, employeePath(id), token, nil, nil, false)
}

func (e *Employees) send(ctx context.Context, method, path, token string, form *employee.Form) (*employee.Employee, error) {
	body, contentType, err := encodeForm(form)
	if err != nil {
		return nil, err
	}
	var emp employee.Employee
	if err := e.c.do(ctx, request{
		method:      method,
		path:        path,
		token:       token,
		body:        body,
		contentType: contentType,
		lenient:     true,
	}, &emp); err != nil {
		return nil, err
	}
	return &emp, nil
}

// encodeForm はフォームを multipart/form-data にエンコードします。
// courses は同名フィールドを繰り返し、写真は image パートとして添付します。
func encodeForm(form *employee.Form) (*bytes.Buffer, string, error) {
	if form == nil {
		return nil, "", fmt.Errorf("form is nil")
	}
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	fields := []struct{ name, value string }{
		{"name", form.Name},
		{"email", form.Email},
		{"mobile", form.Mobile},
		{"designation", form.Designation},
		{"gender", form.Gender},
	}
	for _, f := range fields {
		if err := writer.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("failed to write %s: %w", f.name, err)
		}
	}
	for _, course := range form.Courses {
		if err := writer.WriteField("courses", course); err != nil {
			return nil, "", fmt.Errorf("failed to write courses: %w", err)
		}
	}

	if form.Photo != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, escapeQuotes(form.Photo.Filename)))
		header.Set("Content-Type", form.Photo.ContentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create image part: %w", err)
		}
		if _, err := part.Write(form.Photo.Data); err != nil {
			return nil, "", fmt.Errorf("failed to write image: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}
	return body, writer.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func employeePath(id string) string {
	return employeesPath + "/" + url.PathEscape(id)
}

func normalize(list []employee.Employee) []employee.Employee {
	if list == nil {
		return []employee.Employee{}
	}
	for i := range list {
		if list[i].Courses == nil {
			list[i].Courses = []string{}
		}
	}
	return list
}
