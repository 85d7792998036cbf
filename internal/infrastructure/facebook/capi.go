package facebook

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"storefront/internal/auth"
	"storefront/internal/domain"
	"storefront/pkg/logger"
)

const defaultGraphURL = "https://graph.facebook.com"

// HashSHA256 returns a hex-encoded SHA256 hash of the normalized input string.
func HashSHA256(input string) string {
	if input == "" {
		return ""
	}
	// Normalize: trim whitespace and lowercase
	normalized := strings.ToLower(strings.TrimSpace(input))
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:])
}

// CAPIClient sends commerce events to the Facebook Conversions API.
// A nil client is valid and drops every event.
type CAPIClient struct {
	pixelID     string
	accessToken string
	apiVersion  string
	testCode    string
	currency    string
	graphURL    string
	httpClient  *http.Client
	wg          sync.WaitGroup
	now         func() time.Time
}

// NewCAPIClient creates a new Facebook CAPI client, or nil when not configured.
func NewCAPIClient(pixelID, accessToken, apiVersion, testCode, currency string) *CAPIClient {
	if pixelID == "" || accessToken == "" {
		logger.Info().Msg("Facebook Pixel ID or Access Token not configured. CAPI disabled.")
		return nil
	}
	return &CAPIClient{
		pixelID:     pixelID,
		accessToken: accessToken,
		apiVersion:  apiVersion,
		testCode:    testCode,
		currency:    currency,
		graphURL:    defaultGraphURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		now: time.Now,
	}
}

// WithGraphURL points the client at another Graph API host.
func (c *CAPIClient) WithGraphURL(u string) *CAPIClient {
	if c != nil {
		c.graphURL = strings.TrimRight(u, "/")
	}
	return c
}

// UserData represents the user information for event matching
type UserData struct {
	Email      string `json:"em,omitempty"`          // SHA256 hashed email
	ExternalID string `json:"external_id,omitempty"` // SHA256 hashed user or session id
}

// CustomData carries the commerce payload of an event
type CustomData struct {
	Currency    string        `json:"currency,omitempty"`
	Value       float64       `json:"value,omitempty"`
	ContentName string        `json:"content_name,omitempty"`
	ContentIDs  []string      `json:"content_ids,omitempty"`
	Contents    []ContentItem `json:"contents,omitempty"`
	NumItems    int           `json:"num_items,omitempty"`
	OrderID     string        `json:"order_id,omitempty"`
}

// ContentItem represents one product line
type ContentItem struct {
	ID       string  `json:"id"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"item_price,omitempty"`
}

// Event represents a single CAPI event
type Event struct {
	EventName    string     `json:"event_name"`
	EventTime    int64      `json:"event_time"`
	ActionSource string     `json:"action_source"`
	UserData     UserData   `json:"user_data"`
	CustomData   CustomData `json:"custom_data,omitempty"`
	EventID      string     `json:"event_id,omitempty"` // For deduplication with browser events
}

// EventPayload is the request body for CAPI
type EventPayload struct {
	Data          []Event `json:"data"`
	TestEventCode string  `json:"test_event_code,omitempty"`
}

// SendEvent sends a single event. Failures are returned, never retried.
func (c *CAPIClient) SendEvent(ctx context.Context, event Event) error {
	if c == nil {
		return nil // CAPI disabled
	}

	jsonData, err := json.Marshal(EventPayload{Data: []Event{event}, TestEventCode: c.testCode})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%s/events?access_token=%s", c.graphURL, c.apiVersion, c.pixelID, c.accessToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("CAPI request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("CAPI request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("CAPI error (status %d): %s", resp.StatusCode, string(body))
	}
	return nil
}

func (c *CAPIClient) TrackAddToCart(ctx context.Context, owner string, item domain.LineItem) {
	c.trackLine(ctx, "AddToCart", owner, item)
}

func (c *CAPIClient) TrackAddToWishlist(ctx context.Context, owner string, item domain.LineItem) {
	c.trackLine(ctx, "AddToWishlist", owner, item)
}

func (c *CAPIClient) trackLine(ctx context.Context, name, owner string, item domain.LineItem) {
	if c == nil {
		return
	}
	price := item.Price.InexactFloat64()
	c.dispatch(ctx, Event{
		EventName:    name,
		EventTime:    c.now().Unix(),
		ActionSource: "website",
		UserData:     c.userData(ctx, owner),
		CustomData: CustomData{
			Currency:    c.currency,
			Value:       price * float64(item.Quantity),
			ContentName: item.Name,
			ContentIDs:  []string{item.ProductID},
			Contents:    []ContentItem{{ID: item.ProductID, Quantity: item.Quantity, Price: price}},
			NumItems:    item.Quantity,
		},
	})
}

func (c *CAPIClient) TrackPurchase(ctx context.Context, owner string, order *domain.Order) {
	if c == nil || order == nil {
		return
	}
	items := make([]ContentItem, len(order.Items))
	for i, it := range order.Items {
		items[i] = ContentItem{ID: it.ProductID, Quantity: it.Quantity, Price: it.Price.InexactFloat64()}
	}
	c.dispatch(ctx, Event{
		EventName:    "Purchase",
		EventTime:    c.now().Unix(),
		ActionSource: "website",
		UserData:     c.userData(ctx, owner),
		CustomData: CustomData{
			Currency:   c.currency,
			Value:      order.TotalAmount.InexactFloat64(),
			OrderID:    order.ID,
			Contents:   items,
			NumItems:   len(items),
			ContentIDs: extractContentIDs(items),
		},
		EventID: order.ID, // Use order ID for deduplication
	})
}

// Wait blocks until in-flight events are sent.
func (c *CAPIClient) Wait() {
	if c != nil {
		c.wg.Wait()
	}
}

func (c *CAPIClient) userData(ctx context.Context, owner string) UserData {
	id := auth.FromContext(ctx)
	external := owner
	if id.IsAuthenticated() {
		external = id.UserID
	}
	return UserData{
		Email:      HashSHA256(id.Email),
		ExternalID: HashSHA256(external),
	}
}

// dispatch sends async to not block the request.
func (c *CAPIClient) dispatch(ctx context.Context, event Event) {
	ctx = context.WithoutCancel(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := c.SendEvent(ctx, event); err != nil {
			logger.WithContext(ctx).Warn().Err(err).Str("event", event.EventName).Msg("Failed to send CAPI event")
			return
		}
		logger.WithContext(ctx).Debug().Str("event", event.EventName).Msg("CAPI event sent")
	}()
}

func extractContentIDs(items []ContentItem) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

var _ domain.ConversionTracker = (*CAPIClient)(nil)
