// Package aiclient talks to the voice model server.
package aiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const (
	ttsPath    = "/tts"
	sttTTSPath = "/stt_tts"

	formFieldFile       = "file"
	formFieldText       = "text"
	formFieldOutputPath = "output_path"

	maxErrorBody = 1024
)

// ErrRequestFailed wraps every failure talking to the model server.
var ErrRequestFailed = errors.New("ai request failed")

// Client sends synthesis jobs to the model server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for baseURL. timeout bounds each request.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type ttsResponse struct {
	FilePath string `json:"file_path"`
}

type sttTTSResponse struct {
	STTResult struct {
		Text string `json:"text"`
	} `json:"stt_result"`
	TTSResult ttsResponse `json:"tts_result"`
}

// Transcript is the outcome of a speech-to-speech job.
type Transcript struct {
	Text     string
	FilePath string
}

// TextToSpeech synthesises text in the voice of the reference sample and
// returns the path the server wrote the result to.
func (c *Client) TextToSpeech(ctx context.Context, text string, reference []byte, referenceName, outputPath string) (string, error) {
	fields := map[string]string{
		formFieldText:       text,
		formFieldOutputPath: outputPath,
	}

	var resp ttsResponse
	if err := c.post(ctx, ttsPath, reference, referenceName, fields, &resp); err != nil {
		return "", err
	}
	if resp.FilePath == "" {
		return "", fmt.Errorf("%w: response has no file_path", ErrRequestFailed)
	}
	return resp.FilePath, nil
}

// SpeechToTextToSpeech transcribes audio and re-synthesises it.
func (c *Client) SpeechToTextToSpeech(ctx context.Context, audio []byte, filename, outputPath string) (*Transcript, error) {
	fields := map[string]string{
		formFieldOutputPath: outputPath,
	}

	var resp sttTTSResponse
	if err := c.post(ctx, sttTTSPath, audio, filename, fields, &resp); err != nil {
		return nil, err
	}
	if resp.TTSResult.FilePath == "" {
		return nil, fmt.Errorf("%w: response has no tts_result.file_path", ErrRequestFailed)
	}
	return &Transcript{Text: resp.STTResult.Text, FilePath: resp.TTSResult.FilePath}, nil
}

func (c *Client) post(ctx context.Context, path string, file []byte, filename string, fields map[string]string, out interface{}) error {
	body, contentType, err := encodeForm(file, filename, fields)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseErrorResponse(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrRequestFailed, err)
	}
	return nil
}

func encodeForm(file []byte, filename string, fields map[string]string) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if filename == "" {
		filename = "audio.wav"
	}
	part, err := writer.CreateFormFile(formFieldFile, filename)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(file); err != nil {
		return nil, "", fmt.Errorf("failed to copy file data: %w", err)
	}

	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("failed to write %s field: %w", k, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}
	return &buf, writer.FormDataContentType(), nil
}

func parseErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var payload struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if msg := payload.Detail + payload.Error; msg != "" {
			return fmt.Errorf("%w: status %d: %s", ErrRequestFailed, resp.StatusCode, msg)
		}
	}
	return fmt.Errorf("%w: status %d: %s", ErrRequestFailed, resp.StatusCode, strings.TrimSpace(string(body)))
}
