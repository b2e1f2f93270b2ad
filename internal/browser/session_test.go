// internal/browser/session_test.go
package browser

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestNormalizeToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{"raw value", "ABC123", "ABC123"},
		{"prefixed value", "li_at=ABC123", "ABC123"},
		{"whitespace is kept", " ABC123", " ABC123"},
		{"trailing newline is kept", "ABC123\n", "ABC123\n"},
		{"prefix must be leading", " li_at=ABC123", " li_at=ABC123"},
		{"only the leading prefix is stripped", "li_at=li_at=X", "li_at=X"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeToken(tt.token))
		})
	}
}

func TestAuthCookie(t *testing.T) {
	want := Cookie{
		Name:     "li_at",
		Value:    "ABC123",
		Domain:   ".linkedin.com",
		Path:     "/",
		Secure:   true,
		HTTPOnly: true,
	}
	if diff := cmp.Diff(want, AuthCookie("li_at=ABC123")); diff != "" {
		t.Errorf("AuthCookie mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterCookies(t *testing.T) {
	cookies := []Cookie{
		{Name: "li_at", Domain: ".linkedin.com"},
		{Name: "JSESSIONID", Domain: "www.linkedin.com"},
		{Name: "other", Domain: ".example.com"},
	}

	assert.Len(t, FilterCookies(cookies, ""), 3)
	got := FilterCookies(cookies, "linkedin.com")
	require.Len(t, got, 2)
	assert.Equal(t, "li_at", got[0].Name)
	assert.Equal(t, "JSESSIONID", got[1].Name)
	assert.Empty(t, FilterCookies(cookies, "nowhere.test"))
}

func TestDirectSession_Operations(t *testing.T) {
	ctx := context.Background()
	driver := &fakeDriver{
		evalResult: map[string]any{"name": "Ada"},
		pageSource: "<html><body>profile</body></html>",
		cookies:    []Cookie{{Name: "lang", Domain: ".linkedin.com"}, {Name: "x", Domain: ".other.com"}},
	}
	s := NewDirectSession(driver, zaptest.NewLogger(t))

	assert.False(t, s.IsBridgeSession())
	assert.NotEmpty(t, s.ID())

	require.NoError(t, s.Navigate(ctx, "https://www.linkedin.com/in/ada/"))
	url, err := s.GetCurrentURL(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://www.linkedin.com/in/ada/", url)

	res, err := s.ExecuteScript(ctx, "return {name: 'Ada'};")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Ada"}, res)

	html, err := s.GetPageSource(ctx)
	require.NoError(t, err)
	assert.Contains(t, html, "profile")

	cookies, err := s.GetCookies(ctx, "linkedin.com")
	require.NoError(t, err)
	require.Len(t, cookies, 1)
	assert.Equal(t, "lang", cookies[0].Name)
}

func TestDirectSession_SetCookiesSkipsRejected(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	driver := &fakeDriver{rejectCookies: map[string]bool{"bad": true}}
	s := NewDirectSession(driver, zap.New(core))

	err := s.SetCookies(context.Background(), []Cookie{
		{Name: "bad", Value: "1"},
		{Name: "good", Value: "2"},
	})
	require.NoError(t, err)

	cookies, err := s.GetCookies(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, cookies, 1)
	assert.Equal(t, "good", cookies[0].Name)
	assert.Equal(t, 1, logs.FilterMessage("Failed to set cookie.").Len())
}

func TestDirectSession_Close(t *testing.T) {
	t.Run("double close is a no-op", func(t *testing.T) {
		driver := &fakeDriver{}
		s := NewDirectSession(driver, zaptest.NewLogger(t))

		assert.NoError(t, s.Close(context.Background()))
		assert.NoError(t, s.Close(context.Background()))
		assert.Equal(t, 1, driver.quits(), "the driver is only quit once")
	})

	t.Run("quit failure is logged, not returned", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		driver := &fakeDriver{quitErr: errors.New("chrome already gone")}
		s := NewDirectSession(driver, zap.New(core))

		assert.NoError(t, s.Close(context.Background()))
		assert.Equal(t, 1, logs.FilterMessage("Error while quitting browser.").Len())
	})

	t.Run("operations after close fail", func(t *testing.T) {
		ctx := context.Background()
		s := NewDirectSession(&fakeDriver{}, zaptest.NewLogger(t))
		require.NoError(t, s.Close(ctx))

		assert.ErrorIs(t, s.Navigate(ctx, LinkedInHomeURL), ErrSessionClosed)
		_, err := s.ExecuteScript(ctx, "return 1;")
		assert.ErrorIs(t, err, ErrSessionClosed)
		_, err = s.GetCookies(ctx, "")
		assert.ErrorIs(t, err, ErrSessionClosed)
		assert.ErrorIs(t, s.SetCookies(ctx, []Cookie{AuthCookie("x")}), ErrSessionClosed)
		_, err = s.GetPageSource(ctx)
		assert.ErrorIs(t, err, ErrSessionClosed)
		_, err = s.GetCurrentURL(ctx)
		assert.ErrorIs(t, err, ErrSessionClosed)

		assert.False(t, s.IsBridgeSession(), "IsBridgeSession still answers after close")
	})
}

func TestDirectSession_DriverErrorsAreWrapped(t *testing.T) {
	boom := errors.New("target crashed")
	s := NewDirectSession(&fakeDriver{navigateErr: boom}, zaptest.NewLogger(t))

	err := s.Navigate(context.Background(), LinkedInHomeURL)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), LinkedInHomeURL)
}
