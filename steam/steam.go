package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/marcus-crane/depotfinder/config"
	"github.com/marcus-crane/depotfinder/shared"
	"github.com/marcus-crane/depotfinder/utils"
)

const (
	APP_LIST_ENDPOINT = "/ISteamApps/GetAppList/v2/"
)

type AppListResponse struct {
	AppList AppList `json:"applist"`
}

type AppList struct {
	Apps []AppListEntry `json:"apps"`
}

type AppListEntry struct {
	AppID int    `json:"appid"`
	Name  string `json:"name"`
}

// App is a catalog entry that matched a search. The app id is kept as a string
// since it is only ever passed along to other tools.
type App struct {
	Name  string `json:"name"`
	AppID string `json:"app_id"`
}

type Client struct {
	APIBaseURL string
	HTTPClient *http.Client
	Logger     *slog.Logger
	// Progress, when set, is handed the response size (-1 if unknown) and the
	// app list body is copied into whatever it returns while being read.
	Progress func(size int64) io.Writer
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		APIBaseURL: cfg.Steam.APIURL,
		HTTPClient: utils.NewHTTPClient(cfg.HTTPTimeout()),
		Logger:     slog.Default(),
	}
}

func (c *Client) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

func (c *Client) getAppList(ctx context.Context) (AppListResponse, error) {
	var appList AppListResponse
	endpoint := strings.TrimRight(c.APIBaseURL, "/") + APP_LIST_ENDPOINT
	c.logger().Debug("Fetching app list from Steam", slog.String("url", endpoint))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return appList, err
	}
	req.Header = http.Header{
		"Accept":     []string{"application/json"},
		"User-Agent": []string{shared.USER_AGENT},
	}
	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return appList, &shared.NetworkError{Op: "fetch app list", URL: endpoint, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return appList, &shared.NetworkError{Op: "fetch app list", URL: endpoint, StatusCode: res.StatusCode}
	}

	var body io.Reader = res.Body
	if c.Progress != nil {
		body = io.TeeReader(res.Body, c.Progress(res.ContentLength))
	}

	if err := json.NewDecoder(body).Decode(&appList); err != nil {
		// A body that stops halfway is still a failed fetch
		if err == io.ErrUnexpectedEOF {
			return appList, &shared.NetworkError{Op: "read app list", URL: endpoint, Err: err}
		}
		return appList, fmt.Errorf("decode app list: %w", err)
	}
	return appList, nil
}

// SearchApps downloads the full public app list and returns every app whose
// name contains gameName, ignoring case. Duplicate app ids are dropped with the
// first occurrence winning.
func (c *Client) SearchApps(ctx context.Context, gameName string) ([]App, error) {
	appList, err := c.getAppList(ctx)
	if err != nil {
		c.logger().Error("Failed to fetch app list from Steam",
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	needle := strings.ToLower(gameName)
	matches := []App{}
	for _, entry := range appList.AppList.Apps {
		if strings.Contains(strings.ToLower(entry.Name), needle) {
			matches = append(matches, App{
				Name:  entry.Name,
				AppID: strconv.Itoa(entry.AppID),
			})
		}
	}
	matches = StripDuplicates(matches)

	c.logger().Debug("Searched Steam app list",
		slog.String("query", gameName),
		slog.Int("catalog_size", len(appList.AppList.Apps)),
		slog.Int("matches", len(matches)),
	)
	return matches, nil
}

func StripDuplicates(apps []App) []App {
	unique := make([]App, 0, len(apps))
	seen := make(map[string]struct{}, len(apps))
	for _, app := range apps {
		if _, ok := seen[app.AppID]; ok {
			continue
		}
		seen[app.AppID] = struct{}{}
		unique = append(unique, app)
	}
	return unique
}
