package httpserver

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-monolith/mono/pkg/types"
)

const (
	// PasscodeHeader carries the shared secret.
	PasscodeHeader = "X-Passcode"

	// PasscodeField is the query parameter and body field name for the shared secret.
	PasscodeField = "passcode"
)

type passcodeBody struct {
	Passcode *string `json:"passcode"`
}

// PasscodeGate rejects requests whose credential does not equal passcode.
// Every request is checked on its own; there are no sessions.
func PasscodeGate(passcode string, logger types.Logger) gin.HandlerFunc {
	expected := []byte(passcode)
	return func(c *gin.Context) {
		supplied, ok := resolvePasscode(c)
		if ok && subtle.ConstantTimeCompare([]byte(supplied), expected) == 1 {
			c.Next()
			return
		}

		logger.Warn("Unauthorized access",
			"client_ip", c.ClientIP(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"message": "Invalid or missing pass-code",
		})
	}
}

// resolvePasscode returns the first credential present, checking the header,
// then the query string, then the body. Later sources are ignored once an
// earlier one is present, whatever its value.
func resolvePasscode(c *gin.Context) (string, bool) {
	if values := c.Request.Header.Values(PasscodeHeader); len(values) > 0 {
		return values[0], true
	}
	if value, ok := c.GetQuery(PasscodeField); ok {
		return value, true
	}
	return passcodeFromBody(c)
}

func passcodeFromBody(c *gin.Context) (string, bool) {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return "", false
	}

	switch c.ContentType() {
	case binding.MIMEJSON:
		// ShouldBindBodyWith keeps the bytes so handlers can read the body again.
		var body passcodeBody
		if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil || body.Passcode == nil {
			return "", false
		}
		return *body.Passcode, true
	case binding.MIMEPOSTForm, binding.MIMEMultipartPOSTForm:
		return c.GetPostForm(PasscodeField)
	}
	return "", false
}
