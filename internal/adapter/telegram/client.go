// Package telegram is a minimal Bot API client and the atelier notifier
// built on top of it.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/heartmarshall/atelier-bot/internal/config"
)

const (
	retryDelay  = 500 * time.Millisecond
	httpTimeout = 10 * time.Second
)

// APIError is a non-ok Bot API response.
type APIError struct {
	Method      string
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram: %s: %d %s", e.Method, e.Code, e.Description)
}

// ErrFileTooLarge is returned by DownloadFile when the file exceeds the limit.
var ErrFileTooLarge = errors.New("telegram: file too large")

// Client calls the Bot API over HTTP.
type Client struct {
	baseURL     string
	token       string
	pollTimeout time.Duration
	httpClient  *http.Client
	log         *slog.Logger
}

// NewClient creates a Client from BotConfig. The HTTP timeout leaves room for
// long polls.
func NewClient(cfg config.BotConfig, logger *slog.Logger) *Client {
	return &Client{
		baseURL:     cfg.APIURL,
		token:       cfg.Token,
		pollTimeout: cfg.PollTimeout,
		httpClient:  &http.Client{Timeout: cfg.PollTimeout + httpTimeout},
		log:         logger.With("adapter", "telegram"),
	}
}

// GetUpdates long-polls for updates after offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	var updates []Update
	err := c.call(ctx, "getUpdates", getUpdatesRequest{
		Offset:         offset,
		Timeout:        int(c.pollTimeout / time.Second),
		AllowedUpdates: []string{"message", "callback_query"},
	}, &updates)
	if err != nil {
		return nil, err
	}
	return updates, nil
}

// SendMessage sends text to chatID with an optional inline keyboard.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, keyboard *InlineKeyboardMarkup) error {
	return c.call(ctx, "sendMessage", sendMessageRequest{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: keyboard,
	}, nil)
}

// SendPhoto uploads a JPEG with a caption.
func (c *Client) SendPhoto(ctx context.Context, chatID int64, photo []byte, caption string) error {
	newReq := func() (*http.Request, error) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		if err := mw.WriteField("chat_id", strconv.FormatInt(chatID, 10)); err != nil {
			return nil, err
		}
		if caption != "" {
			if err := mw.WriteField("caption", caption); err != nil {
				return nil, err
			}
		}
		part, err := mw.CreateFormFile("photo", "icon.jpg")
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(photo); err != nil {
			return nil, err
		}
		if err := mw.Close(); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL("sendPhoto"), &body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return req, nil
	}
	return c.do(ctx, "sendPhoto", newReq, nil)
}

// AnswerCallback acknowledges a button press, optionally with a toast.
func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string) error {
	return c.call(ctx, "answerCallbackQuery", answerCallbackRequest{
		CallbackQueryID: callbackID,
		Text:            text,
	}, nil)
}

// DownloadFile resolves fileID and fetches its content, refusing anything
// larger than maxBytes (0 means unlimited).
func (c *Client) DownloadFile(ctx context.Context, fileID string, maxBytes int64) ([]byte, error) {
	var file File
	if err := c.call(ctx, "getFile", getFileRequest{FileID: fileID}, &file); err != nil {
		return nil, err
	}
	if maxBytes > 0 && file.FileSize > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, file.FileSize)
	}

	fileURL := fmt.Sprintf("%s/file/bot%s/%s", c.baseURL, c.token, file.FilePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("telegram: create request: %w", stripURL(err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram: download file: %w", stripURL(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telegram: download file: unexpected status %d", resp.StatusCode)
	}

	reader := io.Reader(resp.Body)
	if maxBytes > 0 {
		reader = io.LimitReader(resp.Body, maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("telegram: read file: %w", err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, maxBytes)
	}
	return data, nil
}

func (c *Client) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
}

// call posts a JSON payload and decodes the result into out (when non-nil).
func (c *Client) call(ctx context.Context, method string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram: %s: encode request: %w", method, err)
	}

	newReq := func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL(method), bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}
	return c.do(ctx, method, newReq, out)
}

func (c *Client) do(ctx context.Context, method string, newReq func() (*http.Request, error), out any) error {
	resp, err := c.doWithRetry(ctx, method, newReq)
	if err != nil {
		c.log.ErrorContext(ctx, "telegram request failed", slog.String("method", method), slog.String("error", err.Error()))
		return fmt.Errorf("telegram: %s: request failed: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("telegram: %s: read body: %w", method, err)
	}

	var envelope apiResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("telegram: %s: decode json (status %d): %w", method, resp.StatusCode, err)
	}
	if !envelope.OK {
		return &APIError{Method: method, Code: envelope.ErrorCode, Description: envelope.Description}
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return fmt.Errorf("telegram: %s: decode result: %w", method, err)
		}
	}

	c.log.DebugContext(ctx, "telegram response", slog.String("method", method), slog.Int("status", resp.StatusCode))
	return nil
}

// doWithRetry executes the request with a single retry on 5xx or network errors.
func (c *Client) doWithRetry(ctx context.Context, method string, newReq func() (*http.Request, error)) (*http.Response, error) {
	req, err := newReq()
	if err != nil {
		return nil, fmt.Errorf("create request: %w", stripURL(err))
	}
	resp, err := c.httpClient.Do(req)
	err = stripURL(err)

	shouldRetry := err != nil || (resp != nil && resp.StatusCode >= 500)
	if !shouldRetry {
		return resp, err
	}

	// Don't retry if context is already cancelled.
	if ctx.Err() != nil {
		return resp, err
	}

	reason := "network error"
	if err == nil && resp != nil {
		reason = fmt.Sprintf("status %d", resp.StatusCode)
	}
	c.log.WarnContext(ctx, "telegram retry", slog.String("method", method), slog.String("reason", reason))

	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(retryDelay):
	}

	req, err = newReq()
	if err != nil {
		return nil, fmt.Errorf("create request: %w", stripURL(err))
	}
	resp, err = c.httpClient.Do(req)
	return resp, stripURL(err)
}

// stripURL drops the request URL from a *url.Error. Bot API URLs carry the
// token in their path.
func stripURL(err error) error {
	var ue *url.Error
	if !errors.As(err, &ue) {
		return err
	}
	return fmt.Errorf("%s: %w", ue.Op, ue.Err)
}
