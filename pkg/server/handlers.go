package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shamank/skynet-gateway/pkg/capability"
	"github.com/shamank/skynet-gateway/pkg/model"
	"go.uber.org/zap"
)

const (
	internalError = "Internal server error"
	maxBodyBytes  = 1 << 20
)

// errorBody is the body of rejections that never reached a capability.
type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type imageRequest struct {
	Prompt string `json:"prompt" validate:"required"`
}

type textRequest struct {
	Prompt   string `json:"prompt" validate:"required"`
	Provider string `json:"provider" validate:"required,oneof=openai anthropic"`
	Model    string `json:"model" validate:"required_if=Provider openai,max=128"`
}

type deployRequest struct {
	Prompt string `json:"prompt" validate:"required"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bind decodes the JSON body into dst and validates it. An empty body decodes
// as an empty object so that missing fields surface as validation errors.
func (s *Server) bind(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid JSON body"})
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: validationMessage(err)})
		return false
	}
	return true
}

// validationMessage renders the first failed field, e.g. "Prompt is required".
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request"
	}
	fe := verrs[0]
	field := fe.Field()
	if field != "" {
		field = strings.ToUpper(field[:1]) + field[1:]
	}
	switch fe.Tag() {
	case "required", "required_if":
		return field + " is required"
	case "oneof":
		return field + " must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return field + " is invalid"
	}
}

func heartbeat(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) generateImage(w http.ResponseWriter, r *http.Request) {
	var req imageRequest
	if !s.bind(w, r, &req) {
		return
	}
	res := s.pipeline.GenerateAndStore(r.Context(), req.Prompt)
	writeResult(w, res)
}

func (s *Server) generateText(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !s.bind(w, r, &req) {
		return
	}

	var (
		res model.Result[model.Completion]
		err error
	)
	switch req.Provider {
	case capability.OpenAI:
		res, err = s.caps.GenerateWithOpenAI(r.Context(), req.Prompt, req.Model)
	default:
		res, err = s.caps.GenerateWithClaude(r.Context(), req.Prompt)
		req.Model = capability.ClaudeModel
	}
	if err != nil {
		writeCallError(r.Context(), w, err)
		return
	}
	writeResult(w, model.MapResult(res, func(c model.Completion) model.TextResult {
		return model.TextResult{
			Provider: req.Provider,
			Model:    req.Model,
			Text:     capability.ExtractText(c),
			Response: c,
		}
	}))
}

func (s *Server) deployApp(w http.ResponseWriter, r *http.Request) {
	var req deployRequest
	if !s.bind(w, r, &req) {
		return
	}
	res, err := s.caps.CreateDockerApp(r.Context(), req.Prompt)
	if err != nil {
		writeCallError(r.Context(), w, err)
		return
	}
	writeResult(w, res)
}

func (s *Server) mlPod(w http.ResponseWriter, r *http.Request) {
	res, err := s.caps.CreateMLPod(r.Context())
	if err != nil {
		writeCallError(r.Context(), w, err)
		return
	}
	writeResult(w, res)
}

// writeResult sends a success as 200 and a failure as 500, body verbatim.
func writeResult[T any](w http.ResponseWriter, res model.Result[T]) {
	status := http.StatusOK
	if !res.Success() {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, res)
}

// writeCallError reports an error raised before a capability call was sent,
// e.g. a failed authorization.
func writeCallError(ctx context.Context, w http.ResponseWriter, err error) {
	zap.L().Error("capability call failed",
		zap.String("request_id", RequestID(ctx)),
		zap.Error(err),
	)
	writeResult(w, model.Fail[model.Completion](err))
}
