// Package api はバックエンドの REST API クライアントを提供します。
// 再試行は行わず、タイムアウトは呼び出し元の context と http.Client に任せます。
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
)

const maxResponseBytes = 10 << 20

// Client は REST API クライアントです。
type Client struct {
	baseURL string
	http    *http.Client
	logger  *log.Logger
}

// NewClient は Client を作成します。httpClient が nil なら http.DefaultClient を使います。
func NewClient(baseURL string, httpClient *http.Client, logger *log.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  logger,
	}
}

type request struct {
	method      string
	path        string
	token       string
	body        io.Reader
	contentType string
	authCall    bool // 認証API（ログイン/登録）なら true
	lenient     bool // 2xx 応答の本文が解釈できなくても成功とする
}

func (c *Client) doJSON(ctx context.Context, method, path, token string, in any, out any, authCall bool) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}
	return c.do(ctx, request{
		method:      method,
		path:        path,
		token:       token,
		body:        body,
		contentType: contentType,
		authCall:    authCall,
	}, out)
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, r.body)
	if err != nil {
		return newError(CodeNetwork, 0, "", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Printf("api %s %s failed: %v", r.method, r.path, err)
		return newError(CodeNetwork, 0, "", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return newError(CodeNetwork, resp.StatusCode, "", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := errorFromResponse(resp.StatusCode, data, r.authCall)
		c.logger.Printf("api %s %s rejected: %v", r.method, r.path, apiErr)
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		if r.lenient {
			return nil
		}
		return newError(CodeNetwork, resp.StatusCode, "", fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

func errorFromResponse(status int, body []byte, authCall bool) *Error {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.Unmarshal(body, &payload)
	message := payload.Message
	if message == "" {
		message = payload.Error
	}

	code := CodeNetwork
	if authCall || status == http.StatusUnauthorized || status == http.StatusForbidden {
		code = CodeAuth
	}
	return newError(code, status, message, nil)
}
