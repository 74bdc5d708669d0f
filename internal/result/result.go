// Package result, tüm aksiyonların döndürdüğü {success, message, data} zarfını
// ve hata sınıflandırmasını içerir.
package result

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

type Kind int

const (
	KindOK Kind = iota
	KindValidation
	KindNotFound
	KindBusiness
	KindUnauthorized
	KindDatabase
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindBusiness:
		return "business"
	case KindUnauthorized:
		return "unauthorized"
	case KindDatabase:
		return "database"
	default:
		return "unknown"
	}
}

// HTTPStatus, hata türüne karşılık gelen HTTP durum kodu.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindOK:
		return fiber.StatusOK
	case KindValidation:
		return fiber.StatusBadRequest
	case KindNotFound:
		return fiber.StatusNotFound
	case KindBusiness:
		return fiber.StatusConflict
	case KindUnauthorized:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Kind    Kind   `json:"-"`
}

func OK(message string, data any) Result {
	return Result{Success: true, Message: message, Data: data, Kind: KindOK}
}

func Fail(kind Kind, message string) Result {
	return Result{Success: false, Message: message, Kind: kind}
}

// WithData, başarısız sonuçlarda da boş veri döndürmek için kullanılır
// (liste ekranları [] bekler).
func (r Result) WithData(data any) Result {
	r.Data = data
	return r
}

// Send sonucu JSON olarak yazar. Başarılı sonuçlarda okStatus kullanılır.
func (r Result) Send(c *fiber.Ctx, okStatus int) error {
	status := okStatus
	if !r.Success {
		status = r.Kind.HTTPStatus()
	}
	return c.Status(status).JSON(r)
}

// ErrInsufficientStock, stok yetersizliği hatalarının ortak kökü.
var ErrInsufficientStock = errors.New("insufficient stock")

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Business(msg string) error {
	return &Error{Kind: KindBusiness, Message: msg}
}

func Unauthorized(msg string) error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

// InsufficientStock ürün bazlı stok hatası üretir; prefix silme gibi
// işlemlerde mesajın başına eklenir ("Cannot delete: ").
func InsufficientStock(prefix string, productID uint) error {
	return &Error{
		Kind:    KindBusiness,
		Message: fmt.Sprintf("%sInsufficient stock for product ID %d", prefix, productID),
		Err:     ErrInsufficientStock,
	}
}

// KindOf hatanın türünü döndürür; tanınmayan hatalar veritabanı hatasıdır.
func KindOf(err error) Kind {
	if err == nil {
		return KindOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindDatabase
}

// FromError hatayı zarfa çevirir. Sınıflandırılmış hatalar mesajlarını korur,
// diğerleri genel veritabanı mesajına dönüşür.
func FromError(err error) Result {
	var e *Error
	if errors.As(err, &e) {
		return Fail(e.Kind, e.Error())
	}
	return Fail(KindDatabase, DatabaseMessage(err))
}

func DatabaseMessage(err error) string {
	detail := "Unknown error"
	if err != nil {
		detail = err.Error()
	}
	return fmt.Sprintf("Database error: %s. Please try again later.", detail)
}
