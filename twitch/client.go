// Package twitch talks to the Twitch Helix API to find new clips, and polls it for the clip announcer.
package twitch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"emperror.dev/errors"
	"github.com/starshine-sys/clipbot/common"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	TokenURL = "https://id.twitch.tv/oauth2/token"
	HelixURL = "https://api.twitch.tv/helix"
)

// ErrEmptyToken is returned by Authenticate if Twitch answered without an access token.
const ErrEmptyToken = errors.Sentinel("empty access token in twitch response")

// Client is a minimal Helix client using an app access token.
type Client struct {
	ClientID string
	BaseURL  string

	http   *http.Client
	config *clientcredentials.Config

	tok   *oauth2.Token
	tokMu sync.Mutex
}

// Options configures a Client. Zero values use the Twitch defaults.
type Options struct {
	TokenURL string
	BaseURL  string
	Timeout  time.Duration
}

// NewClient creates a Helix client for the given application credentials.
func NewClient(clientID, clientSecret string, opts Options) *Client {
	if opts.TokenURL == "" {
		opts.TokenURL = TokenURL
	}
	if opts.BaseURL == "" {
		opts.BaseURL = HelixURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	hc := &http.Client{Timeout: opts.Timeout}

	return &Client{
		ClientID: clientID,
		BaseURL:  opts.BaseURL,
		http:     hc,
		config: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     opts.TokenURL,
			AuthStyle:    oauth2.AuthStyleInParams,
		},
	}
}

// Authenticate fetches (or reuses) an app access token.
func (c *Client) Authenticate(ctx context.Context) error {
	_, err := c.token(ctx)
	return err
}

// token returns the cached app access token, fetching a new one with ctx if it's missing or expired.
func (c *Client) token(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c.tokMu.Lock()
	defer c.tokMu.Unlock()

	if c.tok.Valid() {
		return c.tok.AccessToken, nil
	}

	tok, err := c.config.Token(context.WithValue(ctx, oauth2.HTTPClient, c.http))
	if err != nil {
		return "", errors.Wrap(err, "fetching app access token")
	}
	if tok.AccessToken == "" {
		return "", ErrEmptyToken
	}

	c.tok = tok
	return tok.AccessToken, nil
}

// ResolveChannel resolves a login name to a broadcaster ID.
// found is false, with a nil error, if no such user exists.
func (c *Client) ResolveChannel(ctx context.Context, login string) (id string, found bool, err error) {
	if login == "" {
		return "", false, errors.New("login empty")
	}

	var body usersResponse
	err = c.get(ctx, "/users", url.Values{"login": {login}}, &body)
	if err != nil {
		return "", false, err
	}

	if len(body.Data) == 0 {
		return "", false, nil
	}
	return body.Data[0].ID, true, nil
}

// LatestClips returns up to count clips for the broadcaster, in the order Twitch returns them.
// Errors are logged and result in an empty slice; the caller decides when to try again.
func (c *Client) LatestClips(ctx context.Context, broadcasterID string, count int) []Clip {
	if count <= 0 {
		count = 1
	}

	var body clipsResponse
	err := c.get(ctx, "/clips", url.Values{
		"broadcaster_id": {broadcasterID},
		"first":          {strconv.Itoa(count)},
	}, &body)
	if err != nil {
		common.Log.Named("twitch").Warnf("Error fetching clips for %v: %v", broadcasterID, err)
		return nil
	}

	if len(body.Data) > count {
		body.Data = body.Data[:count]
	}
	return body.Data
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, v any) error {
	tok, err := c.token(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+endpoint, nil)
	if err != nil {
		return errors.Wrap(err, "creating request")
	}
	req.URL.RawQuery = params.Encode()
	req.Header.Set("Client-Id", c.ClientID)
	req.Header.Set("Authorization", "Bearer "+tok)

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "executing request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.Errorf("helix %v: %v: %s", endpoint, resp.Status, b)
	}

	return errors.Wrap(json.NewDecoder(resp.Body).Decode(v), "decoding response")
}
