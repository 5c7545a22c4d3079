package zkbridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	attendance "github.com/ju4700/ZKTecho-sub001/internal/attendance/domain"
)

// Client is a minimal ZKTeco bridge REST client.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewClient constructs a bridge client.
func NewClient(baseURL, token string) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("zkbridge: empty base url")
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// FetchPunches pulls attendance logs recorded by one device in [from, to).
func (c *Client) FetchPunches(ctx context.Context, deviceID string, from, to time.Time) ([]attendance.PunchEvent, error) {
	if deviceID == "" {
		return nil, errors.New("zkbridge: empty device id")
	}
	if !to.After(from) {
		return nil, errors.New("zkbridge: to must be after from")
	}

	var events []attendance.PunchEvent
	for page := 0; page < 100; page++ {
		path := fmt.Sprintf("/api/devices/%s/attlogs?from=%d&to=%d&page=%d&pageSize=500",
			deviceID, from.UnixMilli(), to.UnixMilli(), page)
		var resp attlogPage
		if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
			if errors.Is(err, errNotFound) {
				return events, nil
			}
			return nil, err
		}
		for _, item := range resp.Data {
			event, err := item.toPunchEvent(deviceID)
			if err != nil {
				return nil, err
			}
			events = append(events, event)
		}
		if !resp.HasNext {
			break
		}
	}
	return events, nil
}

type attlogPage struct {
	Data    []attlogItem `json:"data"`
	HasNext bool         `json:"hasNext"`
}

type attlogItem struct {
	DeviceUserID string `json:"deviceUserId"`
	TS           int64  `json:"ts"`
	Code         int    `json:"code"`
}

func (i attlogItem) toPunchEvent(deviceID string) (attendance.PunchEvent, error) {
	if i.DeviceUserID == "" {
		return attendance.PunchEvent{}, errors.New("zkbridge: attlog missing deviceUserId")
	}
	if i.TS <= 0 {
		return attendance.PunchEvent{}, errors.New("zkbridge: attlog invalid ts")
	}
	punchType, ok := attendance.PunchTypeFromCode(i.Code)
	if !ok {
		return attendance.PunchEvent{}, fmt.Errorf("zkbridge: unknown punch code %d", i.Code)
	}
	return attendance.PunchEvent{
		DeviceUserID: i.DeviceUserID,
		Timestamp:    time.UnixMilli(i.TS).UTC(),
		Type:         punchType,
		DeviceID:     deviceID,
	}, nil
}

var errNotFound = errors.New("zkbridge: not found")

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var reqBody *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(payload)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("zkbridge: http %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
