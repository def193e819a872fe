package client

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"github.com/jypelle/piratedisplay/apimodel"
	"github.com/sirupsen/logrus"
	"io"
	"net/http"
	"time"
)

// Client sends commands to a running display server.
type Client struct {
	baseUrl    string
	apiKey     string
	httpClient *http.Client
}

// NewClient targets address ("host:port"). With useTls, the self-signed certificate of the
// server is accepted.
func NewClient(address string, useTls bool, apiKey string) *Client {
	scheme := "http"
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if useTls {
		scheme = "https"
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &Client{
		baseUrl: scheme + "://" + address + "/api",
		apiKey:  apiKey,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
		},
	}
}

func (c *Client) DrawIcon(iconId string) error {
	return c.SendCommand(apimodel.DrawIconRequest{Command: apimodel.CommandDrawIcon, Icon: iconId})
}

func (c *Client) ClearIcon(iconId string) error {
	return c.SendCommand(apimodel.ClearIconRequest{Command: apimodel.CommandClearIcon, Icon: iconId})
}

// DrawImage shows an image file. Relative paths are resolved by the server from its image root.
func (c *Client) DrawImage(relativePath string) error {
	return c.SendCommand(apimodel.DrawImageRequest{Command: apimodel.CommandDrawImage, RelativePath: relativePath})
}

func (c *Client) IconBarColor(r, g, b, a int) error {
	return c.SendCommand(apimodel.IconBarColorRequest{Command: apimodel.CommandIconBarColor, R: r, G: g, B: b, A: a})
}

func (c *Client) Backlight() error {
	return c.SendCommand(apimodel.BacklightRequest{Command: apimodel.CommandBacklight})
}

// SendCommand posts request and returns the *apimodel.Exception of an exception reply.
func (c *Client) SendCommand(request interface{}) error {
	body, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("unable to encode command: %w", err)
	}

	var response apimodel.Response
	if err := c.do(http.MethodPost, "/command", body, &response); err != nil {
		return err
	}
	return response.Err()
}

func (c *Client) Status() (*apimodel.Status, error) {
	var status apimodel.Status
	if err := c.do(http.MethodGet, "/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) do(method string, path string, body []byte, result interface{}) error {
	logrus.Debugf("%s %s%s", method, c.baseUrl, path)

	req, err := http.NewRequest(method, c.baseUrl+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("unable to reach display server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errorMessage apimodel.ErrorMessage
		raw, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(raw, &errorMessage) != nil || errorMessage.ErrStatusCode == 0 {
			errorMessage = apimodel.ErrorMessage{ErrStatusCode: resp.StatusCode, ErrMessage: apimodel.DefaultStatusMessage(resp.StatusCode)}
		}
		return &errorMessage
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("unable to decode reply: %w", err)
	}
	return nil
}
