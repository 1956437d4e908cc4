package handlers

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/EllouziMedAmin/Pedagogical-RAG/api"
	"github.com/EllouziMedAmin/Pedagogical-RAG/tutor"
	"github.com/EllouziMedAmin/Pedagogical-RAG/types"
)

// SessionHandler serves session creation and per-turn interaction.
type SessionHandler struct {
	service        *tutor.InteractionService
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewSessionHandler builds the handler. maxUploadBytes bounds the whole
// multipart body of an interaction request.
func NewSessionHandler(service *tutor.InteractionService, maxUploadBytes int64, logger *zap.Logger) *SessionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = 20 << 20
	}
	return &SessionHandler{service: service, maxUploadBytes: maxUploadBytes, logger: logger}
}

// HandleCreate serves POST /session. It accepts form fields name, age
// and subject (or the same fields as a JSON body) and returns the new
// session id.
func (h *SessionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteErrorMessage(w, http.StatusMethodNotAllowed, types.ErrInvalidInput, "method not allowed", h.logger)
		return
	}

	profile, err := h.readProfile(w, r)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	sess, err := h.service.Registry().Create(profile)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	WriteSuccess(w, api.CreateSessionResponse{SessionID: sess.ID()})
}

// HandleInteract serves POST /session/{id}/interact. The multipart body
// may carry a text field, an audio file and an image file in any
// combination; at least one must be present.
func (h *SessionHandler) HandleInteract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteErrorMessage(w, http.StatusMethodNotAllowed, types.ErrInvalidInput, "method not allowed", h.logger)
		return
	}
	sessionID := r.PathValue("id")
	if sessionID == "" {
		WriteErrorMessage(w, http.StatusBadRequest, types.ErrInvalidInput, "missing session id", h.logger)
		return
	}

	if err := h.parseForm(w, r); err != nil {
		WriteError(w, err, h.logger)
		return
	}

	raw := tutor.RawTurn{Text: r.FormValue("text")}

	audio, err := h.readFilePart(r, "audio")
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	raw.Audio = audio

	image, err := h.readFilePart(r, "image")
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	raw.Image = image

	res, err := h.service.Interact(r.Context(), sessionID, raw)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, api.InteractResponse{
		Text:   res.Text,
		Audio:  base64.StdEncoding.EncodeToString(res.Audio),
		Format: res.AudioMIME,
	})
}

// readProfile decodes a learner profile from a JSON body or form fields.
func (h *SessionHandler) readProfile(w http.ResponseWriter, r *http.Request) (tutor.LearnerProfile, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
		var req api.CreateSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return tutor.LearnerProfile{}, types.NewError(types.ErrInvalidInput, "malformed request body").
				WithCause(err).WithHTTPStatus(http.StatusBadRequest)
		}
		return tutor.LearnerProfile{
			Name:    req.Name,
			Age:     req.Age,
			Level:   req.Level,
			Subject: req.Subject,
		}, nil
	}

	if err := h.parseForm(w, r); err != nil {
		return tutor.LearnerProfile{}, err
	}
	ageStr := strings.TrimSpace(r.FormValue("age"))
	age, err := strconv.Atoi(ageStr)
	if ageStr != "" && err != nil {
		return tutor.LearnerProfile{}, types.NewError(types.ErrInvalidInput, "age must be a number").
			WithHTTPStatus(http.StatusBadRequest)
	}
	return tutor.LearnerProfile{
		Name:    r.FormValue("name"),
		Age:     age,
		Level:   r.FormValue("level"),
		Subject: r.FormValue("subject"),
	}, nil
}

// parseForm parses the body as multipart when possible and falls back to
// url-encoded form data.
func (h *SessionHandler) parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	err := r.ParseMultipartForm(h.maxUploadBytes)
	if err == http.ErrNotMultipart {
		err = r.ParseForm()
	}
	if err != nil {
		return types.NewError(types.ErrInvalidInput, "malformed request body").
			WithCause(err).WithHTTPStatus(http.StatusBadRequest)
	}
	return nil
}

// readFilePart returns the bytes of an optional multipart file field.
func (h *SessionHandler) readFilePart(r *http.Request, field string) ([]byte, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	file, _, err := r.FormFile(field)
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, types.NewError(types.ErrInvalidInput, "unreadable "+field+" upload").
			WithCause(err).WithHTTPStatus(http.StatusBadRequest)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, types.NewError(types.ErrInvalidInput, "unreadable "+field+" upload").
			WithCause(err).WithHTTPStatus(http.StatusBadRequest)
	}
	return data, nil
}
