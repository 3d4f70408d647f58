package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/greyhelm/vtt-api/internal/errors"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *errors.Error
		code errors.Code
	}{
		{"not found", errors.NotFoundf("actor %s not found", "actor_1"), errors.CodeNotFound},
		{"permission denied", errors.PermissionDenied("not your turn"), errors.CodePermissionDenied},
		{"invalid argument", errors.InvalidArgument("no spell slots available"), errors.CodeInvalidArgument},
		{"already exists", errors.AlreadyExists("there is already an active combat"), errors.CodeAlreadyExists},
		{"failed precondition", errors.FailedPrecondition("combat has ended"), errors.CodeFailedPrecondition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.code, errors.GetCode(tt.err))
			assert.Contains(t, tt.err.Error(), tt.code.String())
		})
	}
}

func TestWrapPreservesCode(t *testing.T) {
	base := errors.NotFound("combat not found")
	wrapped := errors.Wrap(base, "failed to advance turn")

	assert.True(t, errors.IsNotFound(wrapped))
	assert.Equal(t, "failed to advance turn", errors.GetMessage(wrapped))
	assert.True(t, stderrors.Is(wrapped, base))
}

func TestWrapUnknownErrorIsInternal(t *testing.T) {
	wrapped := errors.Wrap(fmt.Errorf("connection refused"), "failed to load actor")

	assert.True(t, errors.IsInternal(wrapped))
}

func TestWrapWithCode(t *testing.T) {
	base := stderrors.New("redis: nil")
	wrapped := errors.WrapWithCode(base, errors.CodeNotFound, "game not found")

	assert.True(t, errors.IsNotFound(wrapped))
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, errors.Wrap(nil, "ignored"))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, errors.CodeNotFound.HTTPStatus())
	assert.Equal(t, http.StatusForbidden, errors.CodePermissionDenied.HTTPStatus())
	assert.Equal(t, http.StatusBadRequest, errors.CodeInvalidArgument.HTTPStatus())
	assert.Equal(t, http.StatusConflict, errors.CodeAlreadyExists.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, errors.CodeInternal.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, errors.Code("BOGUS").HTTPStatus())
}

func TestGetCodeOfPlainError(t *testing.T) {
	assert.Equal(t, errors.CodeInternal, errors.GetCode(stderrors.New("boom")))
	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
}

func TestMeta(t *testing.T) {
	err := errors.NotFound("actor not found").
		WithMeta("actor_id", "actor_1").
		WithMeta("game_id", "game_1")

	assert.Equal(t, "actor_1", err.Meta["actor_id"])
	assert.Equal(t, "game_1", err.Meta["game_id"])
}

func TestValidationBuilder(t *testing.T) {
	vb := errors.NewValidationBuilder()
	assert.NoError(t, vb.Build())

	vb.RequiredField("GameRepo").Fieldf("MaxPlayers", "must be at least %d", 2)
	err := vb.Build()

	assert.Error(t, err)
	assert.True(t, errors.IsInvalidArgument(err))
	assert.Contains(t, err.Error(), "GameRepo")
}
