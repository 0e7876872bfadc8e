package aiclient_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eartalk/internal/aiclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextToSpeech(t *testing.T) {
	var gotText, gotOutput, gotFile, gotName string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/tts", r.URL.Path)
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		gotText = r.FormValue("text")
		gotOutput = r.FormValue("output_path")
		f, hdr, err := r.FormFile("file")
		if err == nil {
			data, _ := io.ReadAll(f)
			gotFile, gotName = string(data), hdr.Filename
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"file_path": "/media/out.wav"})
	}))
	defer server.Close()

	client := aiclient.New(server.URL+"/", 5*time.Second)
	path, err := client.TextToSpeech(context.Background(), "안녕하세요", []byte("ref-bytes"), "ref.wav", "/media/x_processed.wav")
	require.NoError(t, err)

	assert.Equal(t, "/media/out.wav", path)
	assert.Equal(t, "안녕하세요", gotText)
	assert.Equal(t, "/media/x_processed.wav", gotOutput)
	assert.Equal(t, "ref-bytes", gotFile)
	assert.Equal(t, "ref.wav", gotName)
}

func TestSpeechToTextToSpeech(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stt_tts", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"stt_result": map[string]string{"text": "recognised"},
			"tts_result": map[string]string{"file_path": "/media/p.wav"},
		})
	}))
	defer server.Close()

	res, err := aiclient.New(server.URL, 5*time.Second).
		SpeechToTextToSpeech(context.Background(), []byte("wav"), "in.wav", "/media/p.wav")
	require.NoError(t, err)
	assert.Equal(t, "recognised", res.Text)
	assert.Equal(t, "/media/p.wav", res.FilePath)
}

func TestClient_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"detail":"model crashed"}`))
		}},
		{"missing path", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}},
		{"not json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(tc.handler)
			defer server.Close()
			client := aiclient.New(server.URL, 5*time.Second)

			_, err := client.TextToSpeech(context.Background(), "hi", []byte("r"), "r.wav", "/o.wav")
			assert.ErrorIs(t, err, aiclient.ErrRequestFailed)

			_, err = client.SpeechToTextToSpeech(context.Background(), []byte("a"), "a.wav", "/o.wav")
			assert.ErrorIs(t, err, aiclient.ErrRequestFailed)
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"file_path":"late.wav"}`))
	}))
	defer server.Close()

	_, err := aiclient.New(server.URL, 20*time.Millisecond).
		TextToSpeech(context.Background(), "hi", []byte("r"), "r.wav", "/o.wav")
	assert.ErrorIs(t, err, aiclient.ErrRequestFailed)
}

func TestClient_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := aiclient.New(url, time.Second).
		TextToSpeech(context.Background(), "hi", []byte("r"), "r.wav", "/o.wav")
	assert.ErrorIs(t, err, aiclient.ErrRequestFailed)
}
