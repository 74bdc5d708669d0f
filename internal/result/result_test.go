package result

import (
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromError_KeepsClassifiedMessage(t *testing.T) {
	r := FromError(Business("Cannot delete customer with existing sales"))

	assert.False(t, r.Success)
	assert.Equal(t, KindBusiness, r.Kind)
	assert.Equal(t, "Cannot delete customer with existing sales", r.Message)
}

func TestFromError_WrappedClassifiedError(t *testing.T) {
	err := fmt.Errorf("sale 4: %w", InsufficientStock("", 7))
	r := FromError(err)

	assert.Equal(t, KindBusiness, r.Kind)
	assert.Equal(t, "Insufficient stock for product ID 7", r.Message)
	assert.True(t, errors.Is(err, ErrInsufficientStock))
}

func TestFromError_UnknownIsDatabase(t *testing.T) {
	r := FromError(errors.New("connection refused"))

	assert.Equal(t, KindDatabase, r.Kind)
	assert.Equal(t, "Database error: connection refused. Please try again later.", r.Message)
}

func TestInsufficientStock_Prefix(t *testing.T) {
	err := InsufficientStock("Cannot delete: ", 3)
	assert.Equal(t, "Cannot delete: Insufficient stock for product ID 3", err.Error())
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{nil, KindOK},
		{Validation("x"), KindValidation},
		{NotFound("x"), KindNotFound},
		{Unauthorized("x"), KindUnauthorized},
		{errors.New("boom"), KindDatabase},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, KindOf(tt.err), "err=%v", tt.err)
	}
}

func TestSend_StatusMapping(t *testing.T) {
	app := fiber.New()
	app.Get("/ok", func(c *fiber.Ctx) error {
		return OK("created", fiber.Map{"id": 1}).Send(c, fiber.StatusCreated)
	})
	app.Get("/conflict", func(c *fiber.Ctx) error {
		return FromError(Business("nope")).Send(c, fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/ok", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/conflict", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"success":false,"message":"nope"}`, string(body))
}

func TestSend_EmptyMessageIsKept(t *testing.T) {
	app := fiber.New()
	app.Get("/list", func(c *fiber.Ctx) error {
		return OK("", []int{1, 2}).Send(c, fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/list", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"success":true,"message":"","data":[1,2]}`, string(body))
}
