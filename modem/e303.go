package modem

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"
)

// TokenHeader is the request header carrying the verification token.
const TokenHeader = "__RequestVerificationToken"

const dateLayout = "2006-01-02 15:04:05"

// E303Client implements Modem for the Huawei E303 in HiLink mode.
// It is not safe for concurrent use.
type E303Client struct {
	config     ClientConfig
	httpClient *http.Client
	iface      string
	path       string
	token      string
}

type smsListRequest struct {
	XMLName         xml.Name `xml:"request"`
	PageIndex       int      `xml:"PageIndex"`
	ReadCount       int      `xml:"ReadCount"`
	BoxType         int      `xml:"BoxType"`
	SortType        int      `xml:"SortType"`
	Ascending       int      `xml:"Ascending"`
	UnreadPreferred int      `xml:"UnreadPreferred"`
}

type smsDeleteRequest struct {
	XMLName xml.Name `xml:"request"`
	Index   []string `xml:"Index"`
}

// NewE303Client creates a new client for the modem behind iface, found at
// sysfsPath. Both may be empty when the modem was not discovered.
func NewE303Client(cfg ClientConfig, httpClient *http.Client, iface, sysfsPath string) (*E303Client, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}
	return &E303Client{
		config:     cfg,
		httpClient: httpClient,
		iface:      iface,
		path:       sysfsPath,
	}, nil
}

// GetStatus retrieves the connection status and signal strength.
func (c *E303Client) GetStatus() (*Status, error) {
	raw, err := c.apiGet("/monitoring/status")
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	icon, err := raw.Int("SignalIcon")
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	code := strings.TrimSpace(raw.String("ConnectionStatus"))
	description, err := connectionStatus(code)
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}
	connectionCode, _ := raw.Int("ConnectionStatus")

	return &Status{
		Status:         description,
		Signal:         signalPercent(icon),
		NetworkType:    networkType(strings.TrimSpace(raw.String("CurrentNetworkType"))),
		ConnectionCode: connectionCode,
	}, nil
}

// GetMessageCount retrieves the inbox counters.
func (c *E303Client) GetMessageCount() (*MessageCount, error) {
	raw, err := c.apiGet("/sms/sms-count")
	if err != nil {
		return nil, fmt.Errorf("failed to get message count: %w", err)
	}

	count, err := raw.Int("LocalInbox")
	if err != nil {
		return nil, fmt.Errorf("failed to get message count: %w", err)
	}
	unread, err := raw.Int("LocalUnread")
	if err != nil {
		return nil, fmt.Errorf("failed to get message count: %w", err)
	}

	return &MessageCount{Count: count, Unread: unread}, nil
}

// GetMessages lists the first page of the inbox. When delete is set the
// returned messages are removed from the modem afterwards; a failed delete
// is logged and does not affect the result.
func (c *E303Client) GetMessages(delete bool) ([]SMSMessage, error) {
	body, err := xml.Marshal(smsListRequest{
		PageIndex: 1,
		ReadCount: 50,
		BoxType:   1,
	})
	if err != nil {
		return nil, err
	}

	raw, err := c.apiPost("/sms/sms-list", body)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	messages, err := parseMessages(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	if delete && len(messages) > 0 {
		ids := make([]string, len(messages))
		for i, m := range messages {
			ids[i] = m.ID
		}
		if err := c.DeleteMessages(ids); err != nil {
			slog.Warn("failed to delete listed messages", "interface", c.iface, "count", len(ids), "error", err)
		}
	}

	return messages, nil
}

// DeleteMessage removes a single message.
func (c *E303Client) DeleteMessage(id string) error {
	return c.DeleteMessages([]string{id})
}

// DeleteMessages removes the messages with the given ids in one request.
func (c *E303Client) DeleteMessages(ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	body, err := xml.Marshal(smsDeleteRequest{Index: ids})
	if err != nil {
		return err
	}

	if _, err := c.apiPost("/sms/delete-sms", body); err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	return nil
}

// Interface returns the network interface of the modem.
func (c *E303Client) Interface() string {
	return c.iface
}

// GetModel returns the modem driver type.
func (c *E303Client) GetModel() Model {
	return ModelHuaweiE303
}

// Close releases any resources held by the client.
func (c *E303Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *E303Client) String() string {
	return fmt.Sprintf("HuaweiE303 %s (%s)", c.iface, c.path)
}

// Token returns the verification token currently held by the session.
func (c *E303Client) Token() string {
	return c.token
}

func (c *E303Client) ensureToken() error {
	if c.token != "" {
		return nil
	}
	return c.refreshToken()
}

func (c *E303Client) refreshToken() error {
	req, err := http.NewRequest(http.MethodGet, c.config.URL+"/webserver/token", nil)
	if err != nil {
		return err
	}
	raw, err := c.roundTrip(req)
	if err != nil {
		return fmt.Errorf("failed to get token: %w", err)
	}
	token := raw.String("token")
	if token == "" {
		return fmt.Errorf("failed to get token: empty token")
	}
	c.token = token
	slog.Debug("refreshed verification token", "interface", c.iface)
	return nil
}

func (c *E303Client) apiGet(endpoint string) (Response, error) {
	return c.call(http.MethodGet, endpoint, nil)
}

func (c *E303Client) apiPost(endpoint string, payload []byte) (Response, error) {
	return c.call(http.MethodPost, endpoint, payload)
}

// call performs a request and retries it exactly once with a fresh token
// when the modem rejects the current one.
func (c *E303Client) call(method, endpoint string, payload []byte) (Response, error) {
	if err := c.ensureToken(); err != nil {
		return nil, err
	}

	raw, err := c.send(method, endpoint, payload)
	var tokenErr *TokenError
	if !errors.As(err, &tokenErr) {
		return raw, err
	}

	slog.Debug("verification token rejected, retrying", "interface", c.iface, "endpoint", endpoint)
	if err := c.refreshToken(); err != nil {
		return nil, err
	}
	return c.send(method, endpoint, payload)
}

func (c *E303Client) send(method, endpoint string, payload []byte) (Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(append([]byte(xml.Header), payload...))
	}

	req, err := http.NewRequest(method, c.config.URL+endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set(TokenHeader, c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/xml; charset=UTF-8")
	}

	return c.roundTrip(req)
}

func (c *E303Client) roundTrip(req *http.Request) (Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	return ParseResponse(resp.StatusCode, data)
}

// signalPercent scales the 0-5 signal icon level to a percentage.
func signalPercent(icon int) int {
	percent := int(math.Round(float64(icon) / 5 * 100))
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

func parseMessages(raw Response) ([]SMSMessage, error) {
	count := strings.TrimSpace(raw.String("Count"))
	var nodes []Response
	if count != "0" {
		container, ok := raw["Messages"].(Response)
		if !ok {
			return nil, fmt.Errorf("missing Messages element for count %s", count)
		}
		var err error
		nodes, err = normalizeList(count, container["Message"])
		if err != nil {
			return nil, err
		}
	}

	messages := make([]SMSMessage, 0, len(nodes))
	for _, node := range nodes {
		received, err := time.ParseInLocation(dateLayout, node.String("Date"), time.Local)
		if err != nil {
			return nil, fmt.Errorf("invalid date for message %s: %w", node.String("Index"), err)
		}
		messages = append(messages, SMSMessage{
			ID:          node.String("Index"),
			Message:     node.String("Content"),
			Sender:      node.String("Phone"),
			ReceiveTime: received,
		})
	}
	return messages, nil
}
