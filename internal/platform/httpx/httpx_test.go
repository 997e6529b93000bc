package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"petora-connect/internal/platform/apperr"
	"petora-connect/internal/platform/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWriteError_Validation(t *testing.T) {
	v := &apperr.ValidationError{}
	v.Add("price", "required for Sale listings")

	rec := httptest.NewRecorder()
	WriteError(rec, httptest.NewRequest(http.MethodPost, "/pets", nil), logger.Nop(), fmt.Errorf("create: %w", v))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body struct {
		Error  string              `json:"error"`
		Fields []apperr.FieldError `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "validation", body.Error)
	require.Len(t, body.Fields, 1)
	assert.Equal(t, "price", body.Fields[0].Field)
}

func TestWriteError_UpstreamIsGenericAndLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.FromZap(zap.New(core))

	rec := httptest.NewRecorder()
	err := apperr.Upstream("dynamodb put", errors.New("secret table arn"))
	WriteError(rec, httptest.NewRequest(http.MethodGet, "/pets", nil), log, err)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")
	require.Equal(t, 1, logs.Len())
	assert.Contains(t, logs.All()[0].ContextMap()["err"], "secret table arn")
}

func TestWriteError_Forbidden(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, httptest.NewRequest(http.MethodDelete, "/pets/1", nil), nil, apperr.ErrForbidden)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"forbidden"}`, rec.Body.String())
}

func TestDecodeJSON_RejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","extra":1}`))
	var v struct {
		Name string `json:"name"`
	}
	err := DecodeJSON(req, &v)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
