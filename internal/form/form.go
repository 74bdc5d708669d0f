// Package form, form-encoded ve JSON gövdeler arasında ortak olan alan
// ayrıştırmalarını toplar.
package form

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"isletme-backend/internal/result"

	"github.com/gofiber/fiber/v2"
)

type LineItem struct {
	ProductID uint    `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// Items hem JSON dizisini hem de JSON kodlanmış string'i kabul eder
// (formlarda items alanı string olarak gelir).
type Items []LineItem

func (it *Items) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = []byte(s)
	}
	var items []LineItem
	if err := json.Unmarshal(b, &items); err != nil {
		return err
	}
	*it = items
	return nil
}

func (it *Items) UnmarshalText(b []byte) error {
	return it.UnmarshalJSON(b)
}

var ErrInvalidItems = result.Validation("Invalid items format")

// Parse istek gövdesini dst'ye okur. Form gövdelerinde items alanı ayrıca
// JSON olarak çözülür.
func Parse(c *fiber.Ctx, dst any, items *Items) error {
	if err := c.BodyParser(dst); err != nil {
		if items != nil && isJSON(c) {
			// JSON gövdede bozuk items dizisi
			return ErrInvalidItems
		}
		return result.Validation("Invalid request body")
	}
	if items == nil || len(*items) > 0 {
		return nil
	}
	if raw := c.FormValue("items"); raw != "" {
		if err := items.UnmarshalText([]byte(raw)); err != nil {
			return ErrInvalidItems
		}
	}
	return nil
}

func isJSON(c *fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEApplicationJSON)
}

// ParamID rota parametresindeki pozitif id'yi döndürür.
func ParamID(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, result.Validation("Invalid " + name)
	}
	return uint(id), nil
}

// QueryID opsiyonel bir id sorgu parametresini okur; yoksa 0 döner.
func QueryID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, result.Validation("Invalid " + name)
	}
	return uint(id), nil
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02 15:04:05", "2006-01-02"}

// ParseDate formlardan gelen tarihleri okur; boş değer sıfır zaman döner.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, result.Validation("Invalid date: " + raw)
}

// Validate her kalemin ürün, pozitif miktar ve negatif olmayan fiyat
// içerdiğini kontrol eder.
func (it Items) Validate() error {
	for _, item := range it {
		if item.ProductID == 0 || item.Quantity <= 0 || item.Price < 0 {
			return result.Validation("Each item needs a product, a positive quantity and a non-negative price")
		}
	}
	return nil
}
