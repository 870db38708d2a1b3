package tempdata

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gorilla/securecookie"
)

// DefaultCookieName is the cookie the middleware uses when none is configured
const DefaultCookieName = ".TempData"

type localsKey struct{}

// CookieCodec signs (and optionally encrypts) the retained temp data into a
// single cookie value.
type CookieCodec struct {
	name     string
	path     string
	secure   bool
	sameSite string
	sc       *securecookie.SecureCookie
}

// CookieOption configures the codec
type CookieOption func(*CookieCodec)

// WithCookieName overrides DefaultCookieName
func WithCookieName(name string) CookieOption {
	return func(c *CookieCodec) {
		if name != "" {
			c.name = name
		}
	}
}

// WithSecure marks the cookie Secure
func WithSecure(secure bool) CookieOption {
	return func(c *CookieCodec) {
		c.secure = secure
	}
}

// WithPath scopes the cookie to a path
func WithPath(path string) CookieOption {
	return func(c *CookieCodec) {
		if path != "" {
			c.path = path
		}
	}
}

// NewCookieCodec creates a codec. hashKey authenticates the value and should
// be 32 or 64 bytes; blockKey, when given, encrypts it with AES and must be
// 16, 24 or 32 bytes.
func NewCookieCodec(hashKey, blockKey []byte, opts ...CookieOption) *CookieCodec {
	sc := securecookie.New(hashKey, blockKey)
	sc.SetSerializer(securecookie.JSONEncoder{})

	c := &CookieCodec{
		name:     DefaultCookieName,
		path:     "/",
		sameSite: fiber.CookieSameSiteLaxMode,
		sc:       sc,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the cookie name
func (c *CookieCodec) Name() string {
	return c.name
}

// Encode serializes values into a cookie value
func (c *CookieCodec) Encode(values map[string]any) (string, error) {
	encoded, err := c.sc.Encode(c.name, values)
	if err != nil {
		return "", fmt.Errorf("failed to encode temp data: %w", err)
	}
	return encoded, nil
}

// Decode restores values from a cookie value
func (c *CookieCodec) Decode(raw string) (map[string]any, error) {
	values := make(map[string]any)
	if err := c.sc.Decode(c.name, raw, &values); err != nil {
		return nil, fmt.Errorf("failed to decode temp data: %w", err)
	}
	return values, nil
}

// Middleware loads the temp data cookie into a Dict for the handler chain and
// writes back whatever the chain retained. A cookie that fails verification
// is discarded.
func Middleware(codec *CookieCodec) fiber.Handler {
	return func(c fiber.Ctx) error {
		raw := c.Cookies(codec.name)

		dict := New()
		if raw != "" {
			if values, err := codec.Decode(raw); err == nil {
				dict = Load(values)
			}
		}
		c.Locals(localsKey{}, dict)

		chainErr := c.Next()

		retained := dict.Retained()
		switch {
		case len(retained) > 0:
			value, err := codec.Encode(retained)
			if err != nil {
				return err
			}
			c.Cookie(&fiber.Cookie{
				Name:     codec.name,
				Value:    value,
				Path:     codec.path,
				HTTPOnly: true,
				Secure:   codec.secure,
				SameSite: codec.sameSite,
			})
		case raw != "":
			c.Cookie(&fiber.Cookie{
				Name:     codec.name,
				Value:    "",
				Path:     codec.path,
				Expires:  time.Unix(0, 0),
				MaxAge:   -1,
				HTTPOnly: true,
				Secure:   codec.secure,
				SameSite: codec.sameSite,
			})
		}

		return chainErr
	}
}

// FromCtx returns the request's Dict, or a fresh one when the middleware is
// not installed.
func FromCtx(c fiber.Ctx) *Dict {
	if dict, ok := c.Locals(localsKey{}).(*Dict); ok {
		return dict
	}
	dict := New()
	c.Locals(localsKey{}, dict)
	return dict
}
