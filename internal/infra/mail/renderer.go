package mail

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"

	"slynk/internal/domain/service"

	"github.com/pkg/errors"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const (
	subjectOTP       = "%s OTP Verification"
	subjectOTPResend = "%s OTP Verification - Resend"
)

// Renderer turns an OTP mail request into subject, plain-text and HTML bodies.
type Renderer struct {
	appName string
	html    *htmltemplate.Template
	text    *texttemplate.Template
	now     func() time.Time
}

type otpTemplateData struct {
	AppName string
	Name    string
	Code    string
	Minutes int
	Year    int
	Resend  bool
}

// NewRenderer parses the embedded templates.
func NewRenderer(appName string) (*Renderer, error) {
	html, err := htmltemplate.ParseFS(templateFS, "templates/otp.html.tmpl")
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse html template")
	}

	text, err := texttemplate.ParseFS(templateFS, "templates/otp.txt.tmpl")
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse text template")
	}

	return &Renderer{
		appName: appName,
		html:    html,
		text:    text,
		now:     time.Now,
	}, nil
}

// RenderOTP builds the message for a first send or a resend.
func (r *Renderer) RenderOTP(otp *service.OTPMail) (*Message, error) {
	name := otp.Name
	if name == "" {
		name = "there"
	}

	data := otpTemplateData{
		AppName: r.appName,
		Name:    name,
		Code:    otp.Code,
		Minutes: int(otp.ValidFor / time.Minute),
		Year:    r.now().Year(),
		Resend:  otp.Resend,
	}

	var htmlBuf, textBuf bytes.Buffer
	if err := r.html.Execute(&htmlBuf, data); err != nil {
		return nil, errors.Wrap(err, "failed to render html body")
	}
	if err := r.text.Execute(&textBuf, data); err != nil {
		return nil, errors.Wrap(err, "failed to render text body")
	}

	subject := subjectOTP
	if otp.Resend {
		subject = subjectOTPResend
	}

	return &Message{
		To:      otp.To,
		Subject: fmt.Sprintf(subject, r.appName),
		Text:    textBuf.String(),
		HTML:    htmlBuf.String(),
	}, nil
}
