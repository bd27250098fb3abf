// Package gateway предоставляет клиент платёжного шлюза и проверку подписи вебхуков.
package gateway

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// Client инкапсулирует HTTP-взаимодействие с платёжным шлюзом.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *retryablehttp.Client
}

// CreateOrderRequest описывает исходящий запрос на создание платежа.
type CreateOrderRequest struct {
	MerchantOrderID string `json:"merchantOrderId"`
	Amount          int64  `json:"amount"`
	RedirectURL     string `json:"redirectUrl"`
}

// CreateOrderResponse описывает ответ шлюза на создание платежа.
type CreateOrderResponse struct {
	OrderID     string `json:"orderId"`
	RedirectURL string `json:"redirectUrl"`
}

// NewClient создаёт HTTP-клиент шлюза с указанным адресом и учётными данными.
func NewClient(baseURL, username, password string) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.HTTPClient.Timeout = 5 * time.Second
	rc.Logger = nil

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		username:   username,
		password:   password,
		httpClient: rc,
	}
}

// CreateOrder создаёт платёж в шлюзе и возвращает адрес перенаправления плательщика.
func (c *Client) CreateOrder(ctx context.Context, merchantOrderID string, amount int64, redirectURL string) (*CreateOrderResponse, error) {
	if c == nil || c.baseURL == "" {
		return nil, fmt.Errorf("gateway client not configured")
	}

	base := c.baseURL
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	body, err := json.Marshal(CreateOrderRequest{
		MerchantOrderID: merchantOrderID,
		Amount:          amount,
		RedirectURL:     redirectURL,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, base+"/api/pg/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", Sign(body, c.username, c.password))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result CreateOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &result, nil
}

// Sign вычисляет подпись тела запроса: sha256(body || username || password) в hex.
func Sign(body []byte, username, password string) string {
	h := sha256.New()
	h.Write(body)
	h.Write([]byte(username))
	h.Write([]byte(password))
	return hex.EncodeToString(h.Sum(nil))
}

// VerifySignature сверяет подпись вебхука с заголовком Authorization.
// Сравнение регистронезависимое.
func (c *Client) VerifySignature(body []byte, header string) bool {
	if header == "" {
		return false
	}
	expected := Sign(body, c.username, c.password)
	return strings.EqualFold(expected, header)
}
