package steamdb

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/marcus-crane/depotfinder/config"
	"github.com/marcus-crane/depotfinder/shared"
)

const (
	DEPOTS_PATH   = "/app/{appID}/depots/"
	DEPOT_PATH    = "/depot/%s/"
	DEPOT_TABLE   = "table.table-depot-table"
	MANIFEST_TAB  = "#tab-manifests"
	MANIFEST_BODY = "table.table-responsive-flex tbody"
)

type Depot struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Manifest struct {
	ID   string `json:"id"`
	Date string `json:"date"`
}

type Client struct {
	BaseURL        string
	HTTP           *resty.Client
	Logger         *slog.Logger
	BrowserTimeout time.Duration

	// renderPage loads a page in a real browser and returns the rendered HTML of
	// the manifest table. Swapped out in tests.
	renderPage func(ctx context.Context, url string) (string, error)
}

func NewClient(cfg config.Config) *Client {
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(cfg.SteamDB.URL, "/"))
	client.SetHeader("User-Agent", shared.BROWSER_USER_AGENT)
	client.SetHeader("Accept-Language", "en-US,en;q=0.5")
	client.SetTimeout(cfg.HTTPTimeout())

	c := &Client{
		BaseURL:        strings.TrimRight(cfg.SteamDB.URL, "/"),
		HTTP:           client,
		Logger:         slog.Default(),
		BrowserTimeout: cfg.BrowserTimeout(),
	}
	c.renderPage = c.renderManifestTable
	return c
}

func (c *Client) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// ListDepots scrapes the depot table for an app. A page without the table, or
// a table without usable rows, gives back an empty list rather than an error.
func (c *Client) ListDepots(ctx context.Context, appID string) ([]Depot, error) {
	url := c.BaseURL + strings.ReplaceAll(DEPOTS_PATH, "{appID}", appID)
	c.logger().Debug("Fetching depots from SteamDB", slog.String("url", url))

	res, err := c.HTTP.R().
		SetContext(ctx).
		SetPathParam("appID", appID).
		Get(DEPOTS_PATH)
	if err != nil {
		c.logger().Error("Failed to contact SteamDB for depots",
			slog.String("error", err.Error()),
			slog.String("url", url),
		)
		return nil, &shared.NetworkError{Op: "fetch depots", URL: url, Err: err}
	}
	if !res.IsSuccess() {
		c.logger().Error("Received a non-2xx status code from SteamDB",
			slog.String("status", res.Status()),
			slog.String("url", url),
		)
		return nil, &shared.NetworkError{Op: "fetch depots", URL: url, StatusCode: res.StatusCode()}
	}

	depots, err := parseDepots(bytes.NewReader(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("parse depots for app %s: %w", appID, err)
	}
	if len(depots) == 0 {
		c.logger().Warn("No depots found on SteamDB", slog.String("app_id", appID))
	}
	for _, d := range depots {
		c.logger().Debug("Found depot", slog.String("depot_id", d.ID), slog.String("name", d.Name))
	}
	return depots, nil
}

func parseDepots(r io.Reader) ([]Depot, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	depots := []Depot{}
	table := doc.Find(DEPOT_TABLE).First()
	if table.Length() == 0 {
		return depots, nil
	}

	// First row is the header regardless of whether it uses th or td
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return
		}
		cols := row.Find("td")
		if cols.Length() < 2 {
			return
		}
		depots = append(depots, Depot{
			ID:   strings.TrimSpace(cols.Eq(0).Text()),
			Name: strings.TrimSpace(cols.Eq(1).Text()),
		})
	})
	return depots, nil
}
