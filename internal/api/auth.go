package api

import (
	"context"
	"net/http"

	"github.com/yourusername/employee-portal/internal/session"
)

var _ session.Authenticator = (*Client)(nil)

type authResponse struct {
	Token string `json:"token"`
	Name  string `json:"name"`
	User  *struct {
		Name string `json:"name"`
	} `json:"user"`
}

func (r *authResponse) grant() *session.Grant {
	name := r.Name
	if name == "" && r.User != nil {
		name = r.User.Name
	}
	return &session.Grant{Token: r.Token, UserName: name}
}

// Login は POST /api/auth/login を呼び出します。
func (c *Client) Login(ctx context.Context, creds session.Credentials) (*session.Grant, error) {
	var resp authResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", "", creds, &resp, true); err != nil {
		return nil, err
	}
	return resp.grant(), nil
}

// Register は POST /api/auth/register を呼び出します。応答にトークンが無くても成功です。
func (c *Client) Register(ctx context.Context, reg session.Registration) (*session.Grant, error) {
	var resp authResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/register", "", reg, &resp, true); err != nil {
		return nil, err
	}
	return resp.grant(), nil
}
