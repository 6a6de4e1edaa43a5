package vietqr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"pos-terminal/internal/util"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

var (
	// ErrNoData is returned when the service answers without a QR payload.
	ErrNoData = errors.New("qr service returned no data")
	// ErrUnavailable wraps transport failures.
	ErrUnavailable = errors.New("qr service unavailable")
)

// ServiceError carries the message VietQR returned for a rejected request.
type ServiceError struct {
	Status  int
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

type Config struct {
	Endpoint    string
	APIKey      string
	ClientID    string
	AccountNo   string
	AccountName string
	AcqID       int
	BankName    string
	StoreLabel  string
	Timeout     time.Duration
}

// BankInfo is the static transfer destination shown next to the QR code.
type BankInfo struct {
	BankName      string `json:"bankName"`
	AccountName   string `json:"accountName"`
	AccountNumber string `json:"accountNumber"`
}

// QRData is the payload returned by /v2/generate.
type QRData struct {
	AcpID     int    `json:"acpId,omitempty"`
	QRCode    string `json:"qrCode"`
	QRDataURL string `json:"qrDataURL"`
}

type generateRequest struct {
	AccountNo   string `json:"accountNo"`
	AccountName string `json:"accountName"`
	AcqID       int    `json:"acqId"`
	Amount      int64  `json:"amount"`
	AddInfo     string `json:"addInfo"`
	Format      string `json:"format"`
	Template    string `json:"template"`
}

type generateResponse struct {
	Code    string  `json:"code"`
	Desc    string  `json:"desc"`
	Message string  `json:"message"`
	Data    *QRData `json:"data"`
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(cfg Config) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: util.GetLogger(),
	}
}

func (c *Client) BankInfo() BankInfo {
	return BankInfo{
		BankName:      c.cfg.BankName,
		AccountName:   c.cfg.AccountName,
		AccountNumber: c.cfg.AccountNo,
	}
}

// TransferContent is the memo the customer's bank shows for this invoice.
func (c *Client) TransferContent(invoiceNumber string) string {
	return fmt.Sprintf("Thanh toan %s - %s", c.cfg.StoreLabel, invoiceNumber)
}

// Generate requests a transfer QR for amount, tagged with invoiceNumber.
func (c *Client) Generate(ctx context.Context, amount int64, invoiceNumber string) (*QRData, error) {
	ctx, span := util.StartSpan(ctx, "VietQR.Generate")
	defer span.End()

	payload, err := json.Marshal(generateRequest{
		AccountNo:   c.cfg.AccountNo,
		AccountName: c.cfg.AccountName,
		AcqID:       c.cfg.AcqID,
		Amount:      amount,
		AddInfo:     c.TransferContent(invoiceNumber),
		Format:      "text",
		Template:    "compact",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal qr request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build qr request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.cfg.APIKey)
	req.Header.Set("x-client-id", c.cfg.ClientID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		util.QRRequestsTotal.WithLabelValues("unavailable").Inc()
		c.logger.Warn("QR service unreachable", zap.String("invoice_number", invoiceNumber), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var body generateResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&body)

	if resp.StatusCode >= http.StatusBadRequest {
		util.QRRequestsTotal.WithLabelValues("rejected").Inc()
		if decodeErr == nil && body.Message != "" {
			return nil, &ServiceError{Status: resp.StatusCode, Message: body.Message}
		}
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	if decodeErr != nil || body.Data == nil {
		util.QRRequestsTotal.WithLabelValues("empty").Inc()
		return nil, ErrNoData
	}

	util.QRRequestsTotal.WithLabelValues("ok").Inc()
	return body.Data, nil
}
