// Package cookie sets and clears the two session cookies with identical attributes,
// so browsers accept the clearing Set-Cookie.
package cookie

import (
	"net/http"
	"time"

	"slynk/config"

	"github.com/labstack/echo/v4"
)

const (
	defaultAccessName  = "token"
	defaultRefreshName = "refreshToken"
	defaultPath        = "/"
)

// Jar knows the cookie names and attributes of this deployment.
type Jar struct {
	accessName  string
	refreshName string
	path        string
	domain      string
	secure      bool
}

// NewJar marks cookies Secure in production.
func NewJar(cfg *config.Config) *Jar {
	jar := &Jar{
		accessName:  defaultAccessName,
		refreshName: defaultRefreshName,
		path:        defaultPath,
		secure:      cfg.IsProduction(),
	}

	if cfg.Cookie != nil {
		if cfg.Cookie.AccessName != "" {
			jar.accessName = cfg.Cookie.AccessName
		}
		if cfg.Cookie.RefreshName != "" {
			jar.refreshName = cfg.Cookie.RefreshName
		}
		if cfg.Cookie.Path != "" {
			jar.path = cfg.Cookie.Path
		}
		jar.domain = cfg.Cookie.Domain
	}

	return jar
}

// SetSession writes both cookies. Max-Age follows each token's lifetime.
func (j *Jar) SetSession(c echo.Context, accessToken string, accessTTL time.Duration, refreshToken string, refreshTTL time.Duration) {
	c.SetCookie(j.build(j.accessName, accessToken, int(accessTTL/time.Second)))
	c.SetCookie(j.build(j.refreshName, refreshToken, int(refreshTTL/time.Second)))
}

// Clear expires both cookies.
func (j *Jar) Clear(c echo.Context) {
	c.SetCookie(j.build(j.accessName, "", -1))
	c.SetCookie(j.build(j.refreshName, "", -1))
}

// AccessToken returns the access cookie value, or "".
func (j *Jar) AccessToken(c echo.Context) string {
	return read(c, j.accessName)
}

// RefreshToken returns the refresh cookie value, or "".
func (j *Jar) RefreshToken(c echo.Context) string {
	return read(c, j.refreshName)
}

func read(c echo.Context, name string) string {
	ck, err := c.Cookie(name)
	if err != nil {
		return ""
	}

	return ck.Value
}

func (j *Jar) build(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     j.path,
		Domain:   j.domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   j.secure,
		SameSite: http.SameSiteStrictMode,
	}
}
