package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/EllouziMedAmin/Pedagogical-RAG/api"
	"github.com/EllouziMedAmin/Pedagogical-RAG/testutil/mocks"
	"github.com/EllouziMedAmin/Pedagogical-RAG/tutor"
)

func newTestHandler(t *testing.T) (*SessionHandler, *tutor.InteractionService, tutor.Services) {
	t.Helper()
	svcs := tutor.Services{
		LLM:         mocks.NewMockProvider().WithResponse("Que penses-tu ?"),
		Toxicity:    mocks.NewMockClassifier().WithLabel("toxic", 0.01),
		Affect:      mocks.NewMockClassifier().WithLabel("joy", 0.9),
		Memory:      mocks.NewMockStore(),
		Transcriber: mocks.NewMockSTT(),
		Synthesizer: mocks.NewMockTTS().WithAudio([]byte("mp3")),
	}
	logger := zap.NewNop()
	registry := tutor.NewRegistry(svcs, tutor.NewPromptComposer(nil), tutor.RegistryConfig{}, logger)
	service := tutor.NewInteractionService(
		registry,
		tutor.NewNormalizer(svcs.Transcriber, tutor.CallTimeouts{}, logger),
		tutor.NewSynthesizer(svcs.Synthesizer, tutor.CallTimeouts{}, logger),
		nil,
		logger,
	)
	return NewSessionHandler(service, 1<<20, logger), service, svcs
}

func router(h *SessionHandler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /session", h.HandleCreate)
	mux.HandleFunc("POST /session/{id}/interact", h.HandleInteract)
	return mux
}

func createSession(t *testing.T, srv http.Handler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/session", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.True(t, env.Success)
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func TestHandleCreate(t *testing.T) {
	h, _, _ := newTestHandler(t)
	srv := router(h)

	rec := createSession(t, srv, url.Values{
		"name":    {"Léa"},
		"age":     {"9"},
		"subject": {"maths"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeEnvelope[api.CreateSessionResponse](t, rec)
	assert.NotEmpty(t, resp.SessionID)
}

func TestHandleCreateMultipart(t *testing.T) {
	h, _, _ := newTestHandler(t)
	srv := router(h)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("name", "Tom"))
	require.NoError(t, mw.WriteField("age", "8"))
	require.NoError(t, mw.WriteField("subject", "anglais"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/session", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope[api.CreateSessionResponse](t, rec)
	assert.NotEmpty(t, resp.SessionID)
}

func TestHandleCreateJSON(t *testing.T) {
	h, _, _ := newTestHandler(t)
	srv := router(h)

	body, err := json.Marshal(api.CreateSessionRequest{Name: "Tom", Age: 8, Subject: "anglais"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/session", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope[api.CreateSessionResponse](t, rec)
	assert.NotEmpty(t, resp.SessionID)
}

func TestHandleCreateJSONMalformed(t *testing.T) {
	h, _, _ := newTestHandler(t)
	srv := router(h)

	req := httptest.NewRequest(http.MethodPost, "/session", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCreateValidation(t *testing.T) {
	h, _, _ := newTestHandler(t)
	srv := router(h)

	t.Run("missing name", func(t *testing.T) {
		rec := createSession(t, srv, url.Values{"age": {"9"}, "subject": {"maths"}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing subject", func(t *testing.T) {
		rec := createSession(t, srv, url.Values{"name": {"Léa"}, "age": {"9"}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("non-numeric age", func(t *testing.T) {
		rec := createSession(t, srv, url.Values{"name": {"Léa"}, "age": {"neuf"}, "subject": {"maths"}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func interactMultipart(t *testing.T, srv http.Handler, id string, text string, files map[string][]byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if text != "" {
		require.NoError(t, mw.WriteField("text", text))
	}
	for field, data := range files {
		fw, err := mw.CreateFormFile(field, field+".bin")
		require.NoError(t, err)
		_, err = io.Copy(fw, bytes.NewReader(data))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/session/"+id+"/interact", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHandleInteractText(t *testing.T) {
	h, _, _ := newTestHandler(t)
	srv := router(h)

	created := decodeEnvelope[api.CreateSessionResponse](t, createSession(t, srv, url.Values{
		"name": {"Léa"}, "age": {"9"}, "subject": {"maths"},
	}))

	rec := interactMultipart(t, srv, created.SessionID, "aide-moi", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.InteractResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Que penses-tu ?", resp.Text)
	assert.Equal(t, "audio/mp3", resp.Format)

	audio, err := base64.StdEncoding.DecodeString(resp.Audio)
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3"), audio)
}

func TestHandleInteractAudioAndImage(t *testing.T) {
	h, _, svcs := newTestHandler(t)
	srv := router(h)

	created := decodeEnvelope[api.CreateSessionResponse](t, createSession(t, srv, url.Values{
		"name": {"Léa"}, "age": {"9"}, "subject": {"maths"},
	}))

	rec := interactMultipart(t, srv, created.SessionID, "", map[string][]byte{
		"audio": []byte("riff-bytes"),
		"image": {0xFF, 0xD8},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// The audio reached the transcriber with the session's language hint.
	stt := svcs.Transcriber.(*mocks.MockSTT)
	require.Len(t, stt.Calls(), 1)
	assert.Equal(t, "fr", stt.Calls()[0].Language)
}

func TestHandleInteractUnknownSession(t *testing.T) {
	h, _, _ := newTestHandler(t)
	srv := router(h)

	rec := interactMultipart(t, srv, "missing", "bonjour", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleInteractEmptyInput(t *testing.T) {
	h, _, _ := newTestHandler(t)
	srv := router(h)

	rec := interactMultipart(t, srv, "whatever", "   ", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var env Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_INPUT", env.Error.Code)
}

func TestHandleInteractUploadTooLarge(t *testing.T) {
	h, _, _ := newTestHandler(t)
	h.maxUploadBytes = 128
	srv := router(h)

	rec := interactMultipart(t, srv, "whatever", "", map[string][]byte{
		"audio": bytes.Repeat([]byte{0x01}, 4096),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
