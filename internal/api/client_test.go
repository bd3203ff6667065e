package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yourusername/employee-portal/internal/employee"
	"github.com/yourusername/employee-portal/internal/session"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", srv.Client(), log.New(io.Discard, "", 0))
}

func TestLoginSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/login" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content-type: %s", ct)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		if body["email"] != "a@b.co" || body["password"] != "secret" {
			t.Errorf("unexpected body: %#v", body)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"xyz","user":{"name":"Hukum"}}`))
	})

	grant, err := client.Login(context.Background(), session.Credentials{Email: "a@b.co", Password: "secret"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if grant.Token != "xyz" || grant.UserName != "Hukum" {
		t.Fatalf("unexpected grant: %#v", grant)
	}
}

func TestLoginRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
	})

	_, err := client.Login(context.Background(), session.Credentials{})
	if !IsAuthError(err) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if got := Message(err, "Login failed"); got != "Invalid credentials" {
		t.Fatalf("Message = %q", got)
	}
}

func TestNetworkFailureUsesFallback(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient(url, nil, log.New(io.Discard, "", 0))
	_, err := client.Login(context.Background(), session.Credentials{})
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Code != CodeNetwork {
		t.Fatalf("expected network error, got %v", err)
	}
	if got := Message(err, "Login failed"); got != "Login failed" {
		t.Fatalf("Message = %q", got)
	}
}

func TestRegisterWithoutToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/register" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"User registered"}`))
	})

	grant, err := client.Register(context.Background(), session.Registration{Name: "n", Email: "e@x.io", Password: "p"})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if grant.Token != "" {
		t.Fatalf("unexpected token: %q", grant.Token)
	}
}

func TestListEmployeesSendsBearerToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer abc123" {
			t.Errorf("Authorization = %q", got)
		}
		_, _ = w.Write([]byte(`[{"_id":"1","name":"Yash","email":"yash@cstech.in","createdAt":"2021-02-11T00:00:00Z"}]`))
	})

	list, err := client.Employees().List(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(list) != 1 || list[0].ID != "1" || list[0].Name != "Yash" {
		t.Fatalf("unexpected list: %#v", list)
	}
	if list[0].Courses == nil {
		t.Fatal("expected courses to be normalized to an empty slice")
	}
}

func TestUnauthorizedIsAuthError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	if _, err := client.Employees().List(context.Background(), "stale"); !IsAuthError(err) {
		t.Fatalf("expected auth error, got %v", err)
	}
}

func TestServerErrorIsNetworkError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	err := client.Employees().Delete(context.Background(), "abc123", "1")
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Code != CodeNetwork || apiErr.Status != http.StatusInternalServerError {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateEmployeeMultipart(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n0000")
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/employees" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer abc123" {
			t.Errorf("Authorization = %q", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
			return
		}
		if r.FormValue("name") != "Yash" || r.FormValue("email") != "yash@cstech.in" {
			t.Errorf("unexpected fields: %#v", r.MultipartForm.Value)
		}
		if courses := r.MultipartForm.Value["courses"]; len(courses) != 2 || courses[0] != "MCA" || courses[1] != "BSC" {
			t.Errorf("unexpected courses: %#v", courses)
		}
		files := r.MultipartForm.File["image"]
		if len(files) != 1 {
			t.Errorf("expected one image part, got %d", len(files))
			return
		}
		if files[0].Filename != "me.png" || files[0].Header.Get("Content-Type") != "image/png" {
			t.Errorf("unexpected image header: %s %v", files[0].Filename, files[0].Header)
		}
		f, _ := files[0].Open()
		data, _ := io.ReadAll(f)
		if !bytes.Equal(data, png) {
			t.Errorf("unexpected image data: %q", data)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"_id":"9","name":"Yash"}`))
	})

	emp, err := client.Employees().Create(context.Background(), "abc123", &employee.Form{
		Name:        "Yash",
		Email:       "yash@cstech.in",
		Mobile:      "9540100222",
		Designation: "Manager",
		Gender:      "Male",
		Courses:     []string{"MCA", "BSC"},
		Photo:       &employee.Photo{Filename: "me.png", ContentType: "image/png", Data: png},
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if emp.ID != "9" {
		t.Fatalf("unexpected employee: %#v", emp)
	}
}

func TestUpdateEmployeeWithoutPhoto(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/employees/65a1" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
			return
		}
		if len(r.MultipartForm.File["image"]) != 0 {
			t.Error("unexpected image part")
		}
		_, _ = w.Write([]byte("updated"))
	})

	if _, err := client.Employees().Update(context.Background(), "abc123", "65a1", &employee.Form{Name: "Yash", Courses: []string{"MCA"}}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
}

func TestNewClientUsesDefaultClientWithoutTimeout(t *testing.T) {
	client := NewClient("http://backend.test/", nil, nil)
	if client.http != http.DefaultClient {
		t.Fatal("expected http.DefaultClient when no client is given")
	}
	if client.http.Timeout != 0 {
		t.Fatalf("unexpected client timeout: %v", client.http.Timeout)
	}
	if client.baseURL != "http://backend.test" {
		t.Fatalf("baseURL = %q", client.baseURL)
	}
}
