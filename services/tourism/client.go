// Package tourism reads the Korean public tourism data API.
package tourism

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"travellocal/models"
	"travellocal/utils"

	"go.uber.org/zap"
)

const (
	DefaultRows    = 20
	maxRows        = 100
	mobileOS       = "ETC"
	mobileApp      = "TravelLocal"
	requestTimeout = 10 * time.Second
	successCode    = "0000"
)

// Client calls areaBasedList and searchKeyword with a Redis-backed cache.
// Failures come back as an empty page.
type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
	cache      Cache
	ttl        time.Duration
	logger     *zap.Logger
}

// NewClient creates a tourism client. cache may be nil.
func NewClient(baseURL, serviceKey string, cache Cache, ttl time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: requestTimeout},
		cache:      cache,
		ttl:        ttl,
		logger:     logger,
	}
}

// apiResponse is the public data portal's JSON shape. items is "" when the
// result is empty.
type apiResponse struct {
	Response struct {
		Header struct {
			ResultCode string `json:"resultCode"`
			ResultMsg  string `json:"resultMsg"`
		} `json:"header"`
		Body struct {
			Items      json.RawMessage `json:"items"`
			PageNo     int             `json:"pageNo"`
			TotalCount int             `json:"totalCount"`
		} `json:"body"`
	} `json:"response"`
}

// AreaBased lists places in an area code. An empty area lists nationwide.
func (c *Client) AreaBased(ctx context.Context, areaCode string, page, rows int) models.TourismPage {
	q := url.Values{}
	if areaCode != "" {
		q.Set("areaCode", areaCode)
	}
	return c.fetch(ctx, "areaBasedList1", q, page, rows)
}

// SearchKeyword searches places by keyword.
func (c *Client) SearchKeyword(ctx context.Context, keyword string, page, rows int) models.TourismPage {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return emptyPage(page)
	}
	q := url.Values{}
	q.Set("keyword", keyword)
	return c.fetch(ctx, "searchKeyword1", q, page, rows)
}

func (c *Client) fetch(ctx context.Context, operation string, q url.Values, page, rows int) models.TourismPage {
	if page < 1 {
		page = 1
	}
	if rows < 1 || rows > maxRows {
		rows = DefaultRows
	}
	q.Set("pageNo", strconv.Itoa(page))
	q.Set("numOfRows", strconv.Itoa(rows))
	key := cacheKey(operation, q)

	if cached, ok := c.fromCache(ctx, key); ok {
		return cached
	}

	result, err := c.call(ctx, operation, q)
	if err != nil {
		c.logger.Warn("Tourism API call failed, returning empty list",
			zap.String("operation", operation),
			zap.Error(err))
		return emptyPage(page)
	}
	c.toCache(ctx, key, result)
	return result
}

func (c *Client) call(ctx context.Context, operation string, q url.Values) (models.TourismPage, error) {
	params := url.Values{}
	for k, v := range q {
		params[k] = v
	}
	params.Set("MobileOS", mobileOS)
	params.Set("MobileApp", mobileApp)
	params.Set("_type", "json")
	// The portal issues keys already URL-encoded.
	endpoint := fmt.Sprintf("%s/%s?serviceKey=%s&%s", c.baseURL, operation, c.serviceKey, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.TourismPage{}, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.TourismPage{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return models.TourismPage{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.TourismPage{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if code := body.Response.Header.ResultCode; code != successCode {
		return models.TourismPage{}, fmt.Errorf("api error %s: %s", code, body.Response.Header.ResultMsg)
	}

	items, err := decodeItems(body.Response.Body.Items)
	if err != nil {
		return models.TourismPage{}, err
	}
	return models.TourismPage{
		Items:      items,
		TotalCount: body.Response.Body.TotalCount,
		PageNo:     body.Response.Body.PageNo,
	}, nil
}

// decodeItems accepts {"item":[...]}, {"item":{...}} and "".
func decodeItems(raw json.RawMessage) ([]models.TourismItem, error) {
	items := []models.TourismItem{}
	if len(raw) == 0 || raw[0] == '"' || string(raw) == "null" {
		return items, nil
	}
	var wrapper struct {
		Item json.RawMessage `json:"item"`
	}
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, fmt.Errorf("failed to decode items: %w", err)
	}
	if len(wrapper.Item) == 0 {
		return items, nil
	}
	if wrapper.Item[0] == '{' {
		var single models.TourismItem
		if err := json.Unmarshal(wrapper.Item, &single); err != nil {
			return nil, fmt.Errorf("failed to decode item: %w", err)
		}
		return append(items, single), nil
	}
	if err := json.Unmarshal(wrapper.Item, &items); err != nil {
		return nil, fmt.Errorf("failed to decode items: %w", err)
	}
	return items, nil
}

func (c *Client) fromCache(ctx context.Context, key string) (models.TourismPage, bool) {
	if c.cache == nil {
		return models.TourismPage{}, false
	}
	b, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.logger.Warn("Tourism cache read failed", zap.Error(err))
		}
		return models.TourismPage{}, false
	}
	var page models.TourismPage
	if err := json.Unmarshal(b, &page); err != nil {
		return models.TourismPage{}, false
	}
	return page, true
}

func (c *Client) toCache(ctx context.Context, key string, page models.TourismPage) {
	if c.cache == nil || c.ttl <= 0 {
		return
	}
	b, err := json.Marshal(page)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, b, c.ttl); err != nil {
		c.logger.Warn("Tourism cache write failed", zap.Error(err))
	}
}

func cacheKey(operation string, q url.Values) string {
	return utils.TourismCachePrefix + operation + ":" + q.Encode()
}

func emptyPage(page int) models.TourismPage {
	return models.TourismPage{Items: []models.TourismItem{}, PageNo: page}
}
