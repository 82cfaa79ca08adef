package httpserver

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGateEngine(logger *mockLogger, reached *int) *gin.Engine {
	engine := gin.New()
	engine.Use(PasscodeGate(testPasscode, logger))
	handler := func(c *gin.Context) {
		*reached++
		c.JSON(http.StatusOK, gin.H{"status": "authenticated"})
	}
	engine.GET("/probe", handler)
	engine.POST("/probe", handler)
	return engine
}

func TestPasscodeGate_Precedence(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		header      *string
		query       *string
		body        string
		contentType string
		wantStatus  int
	}{
		{
			name:       "no credential",
			method:     http.MethodGet,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "header matches",
			method:     http.MethodGet,
			header:     ptr(testPasscode),
			wantStatus: http.StatusOK,
		},
		{
			name:       "header wrong",
			method:     http.MethodGet,
			header:     ptr("nope"),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "header wrong beats matching query",
			method:     http.MethodGet,
			header:     ptr("nope"),
			query:      ptr(testPasscode),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:        "header wrong beats matching body",
			method:      http.MethodPost,
			header:      ptr("nope"),
			body:        `{"passcode":"` + testPasscode + `"}`,
			contentType: binding.MIMEJSON,
			wantStatus:  http.StatusUnauthorized,
		},
		{
			name:       "empty header is still present",
			method:     http.MethodGet,
			header:     ptr(""),
			query:      ptr(testPasscode),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "header matches despite wrong query",
			method:     http.MethodGet,
			header:     ptr(testPasscode),
			query:      ptr("nope"),
			wantStatus: http.StatusOK,
		},
		{
			name:       "query matches",
			method:     http.MethodGet,
			query:      ptr(testPasscode),
			wantStatus: http.StatusOK,
		},
		{
			name:        "query wrong beats matching body",
			method:      http.MethodPost,
			query:       ptr("nope"),
			body:        `{"passcode":"` + testPasscode + `"}`,
			contentType: binding.MIMEJSON,
			wantStatus:  http.StatusUnauthorized,
		},
		{
			name:        "query matches despite wrong body",
			method:      http.MethodPost,
			query:       ptr(testPasscode),
			body:        `{"passcode":"nope"}`,
			contentType: binding.MIMEJSON,
			wantStatus:  http.StatusOK,
		},
		{
			name:        "json body matches",
			method:      http.MethodPost,
			body:        `{"passcode":"` + testPasscode + `"}`,
			contentType: binding.MIMEJSON,
			wantStatus:  http.StatusOK,
		},
		{
			name:        "json body null",
			method:      http.MethodPost,
			body:        `{"passcode":null}`,
			contentType: binding.MIMEJSON,
			wantStatus:  http.StatusUnauthorized,
		},
		{
			name:        "json body malformed",
			method:      http.MethodPost,
			body:        `{"passcode":`,
			contentType: binding.MIMEJSON,
			wantStatus:  http.StatusUnauthorized,
		},
		{
			name:        "form body matches",
			method:      http.MethodPost,
			body:        url.Values{"passcode": {testPasscode}}.Encode(),
			contentType: binding.MIMEPOSTForm,
			wantStatus:  http.StatusOK,
		},
		{
			name:        "body with unknown content type is ignored",
			method:      http.MethodPost,
			body:        `passcode=` + testPasscode,
			contentType: "text/plain",
			wantStatus:  http.StatusUnauthorized,
		},
		{
			name:       "case sensitive",
			method:     http.MethodGet,
			header:     ptr(strings.ToUpper(testPasscode)),
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &mockLogger{}
			reached := 0
			engine := newGateEngine(logger, &reached)

			target := "/probe"
			if tt.query != nil {
				target += "?" + url.Values{PasscodeField: {*tt.query}}.Encode()
			}
			req := httptest.NewRequest(tt.method, target, strings.NewReader(tt.body))
			if tt.body == "" {
				req = httptest.NewRequest(tt.method, target, nil)
			}
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			if tt.header != nil {
				req.Header.Set(PasscodeHeader, *tt.header)
			}

			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.JSONEq(t, `{"message":"Invalid or missing pass-code"}`, rec.Body.String())
				assert.Zero(t, reached, "handler must not run")
				assert.Len(t, logger.warnings(), 1)
			} else {
				assert.Equal(t, 1, reached)
				assert.Empty(t, logger.warnings())
			}
		})
	}
}

func TestPasscodeGate_LogsClientIP(t *testing.T) {
	logger := &mockLogger{}
	reached := 0
	engine := newGateEngine(logger, &reached)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.RemoteAddr = "203.0.113.7:52100"
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	warns := logger.warnings()
	require.Len(t, warns, 1)
	assert.Equal(t, "Unauthorized access", warns[0].msg)
	assert.Contains(t, warns[0].args, "client_ip")
	assert.Contains(t, warns[0].args, "203.0.113.7")
}

func TestPasscodeGate_JSONBodyStaysReadable(t *testing.T) {
	engine := gin.New()
	engine.Use(PasscodeGate(testPasscode, &mockLogger{}))

	var payload struct {
		Passcode string `json:"passcode"`
		Note     string `json:"note"`
	}
	engine.POST("/probe", func(c *gin.Context) {
		if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	body := `{"passcode":"` + testPasscode + `","note":"kept"}`
	req := httptest.NewRequest(http.MethodPost, "/probe", strings.NewReader(body))
	req.Header.Set("Content-Type", binding.MIMEJSON)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "kept", payload.Note)
}

func ptr(s string) *string {
	return &s
}
