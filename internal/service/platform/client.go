// Package platform 第三方 OnlyFans API 客户端
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ashwinyue/next-fans/internal/errs"
)

// Client API 客户端
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Account 调用时使用的创作者账号
type Account struct {
	ID    string // 平台账号 ID
	Token string // 解密后的凭证，为空时使用全局 API key
}

// OutboundMessage 发给粉丝的消息
type OutboundMessage struct {
	Text      string   `json:"text"`
	Price     float64  `json:"price,omitempty"`
	MediaURLs []string `json:"mediaFiles,omitempty"`
}

// SentMessage 平台返回的消息
type SentMessage struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewClient 创建客户端
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SendMessage 向粉丝发送消息，带价格时为 PPV
func (c *Client) SendMessage(ctx context.Context, acct Account, fanPlatformID string, msg *OutboundMessage) (*SentMessage, error) {
	var out struct {
		Data SentMessage `json:"data"`
	}
	path := fmt.Sprintf("/%s/chats/%s/messages", url.PathEscape(acct.ID), url.PathEscape(fanPlatformID))
	if err := c.do(ctx, acct, http.MethodPost, path, msg, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// SetTyping 显示“正在输入”
func (c *Client) SetTyping(ctx context.Context, acct Account, fanPlatformID string) error {
	path := fmt.Sprintf("/%s/chats/%s/typing", url.PathEscape(acct.ID), url.PathEscape(fanPlatformID))
	return c.do(ctx, acct, http.MethodPost, path, nil, nil)
}

func (c *Client) do(ctx context.Context, acct Account, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	token := acct.Token
	if token == "" {
		token = c.apiKey
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errs.Upstream("platform request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errs.Upstream("platform request failed",
			fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(snippet))))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errs.Upstream("invalid platform response", err)
	}
	return nil
}
