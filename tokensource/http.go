package tokensource

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/SJieNg123/zids/zidserr"
)

// tokenRequest is the wire shape of the server's POST /token body.
type tokenRequest struct {
	RowID int    `json:"row_id"`
	X     int    `json:"x"`
	SID   string `json:"sid,omitempty"`
}

// tokenResponse is the wire shape of POST /token's success body.
type tokenResponse struct {
	TokenB64 string `json:"token_b64"`
	Ver      string `json:"ver"`
}

// errorEnvelope is the server's canonical HTTP error body.
type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Ver     string `json:"ver"`
}

// HTTPSource posts to a GDFA server's /token endpoint.
type HTTPSource struct {
	BaseURL string
	SID     string
	Client  *http.Client
}

// NewHTTPSource builds an HTTP token source with a sane default 10s client
// timeout.
func NewHTTPSource(baseURL, sid string) *HTTPSource {
	return &HTTPSource{
		BaseURL: baseURL,
		SID:     sid,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// GetToken implements Source.
func (s *HTTPSource) GetToken(rowID int, x byte) ([]byte, error) {
	reqBody, err := json.Marshal(tokenRequest{RowID: rowID, X: int(x), SID: s.SID})
	if err != nil {
		return nil, fmt.Errorf("tokensource: marshal request: %w", err)
	}

	resp, err := s.Client.Post(s.BaseURL+"/token", "application/json", bytes.NewReader(reqBody))
	if err != nil {
		return nil, zidserr.TransportErrorf("tokensource: POST /token: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var envelope errorEnvelope
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		return nil, zidserr.TransportErrorf("tokensource: /token returned %d: %s", resp.StatusCode, envelope.Message)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, zidserr.MalformedContainerf("tokensource: malformed /token response: %v", err)
	}
	token, err := base64.StdEncoding.DecodeString(tr.TokenB64)
	if err != nil {
		return nil, zidserr.MalformedContainerf("tokensource: malformed token_b64: %v", err)
	}
	return token, nil
}
