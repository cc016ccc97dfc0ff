package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"golang.org/x/oauth2"
)

// successPage is rendered in the browser once the provider redirects back
// with a usable authorization code.
const successPage = `<!DOCTYPE html>
<html>
<head>
    <title>chartx</title>
    <style>
        body { font-family: sans-serif; display: flex; align-items: center;
               justify-content: center; height: 100vh; margin: 0;
               background: #1a1a2e; color: #e0e0e0; }
        main { text-align: center; }
        h1 { color: #04B575; margin-bottom: 0.5rem; }
    </style>
</head>
<body>
    <main>
        <h1>✓ Connected</h1>
        <p>chartx is now linked to your chart provider account.</p>
        <p>You can close this tab and return to the terminal.</p>
    </main>
</body>
</html>
`

// OAuthResult carries the outcome of the authorization code flow.
type OAuthResult struct {
	Token *oauth2.Token
	err   error
}

func (o *OAuthResult) Error() error {
	return o.err
}

// OAuthHandler serves the provider's login redirect. The callback is accepted
// exactly once; replays get a 400.
type OAuthHandler struct {
	config     *oauth2.Config
	state      string
	resultChan chan OAuthResult
	handled    atomic.Bool
	once       sync.Once
}

// NewOAuthHandler creates a callback handler bound to a state token. The
// token must be cryptographically random, it is the CSRF check.
func NewOAuthHandler(config *oauth2.Config, state string) *OAuthHandler {
	return &OAuthHandler{
		config:     config,
		state:      state,
		resultChan: make(chan OAuthResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *OAuthHandler) Routes() []string {
	return []string{"/callback"}
}

// ServeHTTP validates the state parameter, exchanges the authorization code
// for a token, and delivers the outcome through the result channel.
func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.handled.CompareAndSwap(false, true) {
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}

	query := r.URL.Query()

	if query.Get("state") != h.state {
		h.Send(OAuthResult{err: fmt.Errorf("state mismatch in provider callback")})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := query.Get("code")
	if code == "" {
		err := fmt.Errorf("provider denied authorization: %s (%s)",
			query.Get("error"), query.Get("error_description"))
		h.Send(OAuthResult{err: err})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	token, err := h.config.Exchange(context.Background(), code)
	if err != nil {
		h.Send(OAuthResult{err: fmt.Errorf("token exchange failed: %w", err)})
		http.Error(w, "Token exchange failed", http.StatusInternalServerError)
		return
	}

	h.Send(OAuthResult{Token: token})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, successPage)
}

// Send delivers the result exactly once and closes the channel.
func (h *OAuthHandler) Send(result OAuthResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the channel the single flow outcome arrives on.
func (h *OAuthHandler) Result() <-chan OAuthResult {
	return h.resultChan
}
