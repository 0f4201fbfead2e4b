package steamdb

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"

	"github.com/marcus-crane/depotfinder/shared"
)

// ListManifests returns the manifests SteamDB knows about for a depot. The
// manifests tab is rendered client side so this needs a local Chrome install.
func (c *Client) ListManifests(ctx context.Context, depotID string) ([]Manifest, error) {
	url := c.BaseURL + fmt.Sprintf(DEPOT_PATH, depotID)

	ctx, cancel := context.WithTimeout(ctx, c.BrowserTimeout)
	defer cancel()

	html, err := c.renderPage(ctx, url)
	if err != nil {
		c.logger().Error("Failed to render manifests tab",
			slog.String("error", err.Error()),
			slog.String("url", url),
		)
		return nil, &shared.NetworkError{Op: "render manifests", URL: url, Err: err}
	}

	manifests, err := c.parseManifests(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse manifests for depot %s: %w", depotID, err)
	}
	c.logger().Info("Listed manifests",
		slog.String("depot_id", depotID),
		slog.Int("count", len(manifests)),
	)
	return manifests, nil
}

func (c *Client) renderManifestTable(ctx context.Context, url string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.UserAgent(shared.BROWSER_USER_AGENT))
	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	ctx, cancel = chromedp.NewContext(allocCtx, chromedp.WithLogf(log.Printf), chromedp.WithErrorf(log.Printf))
	defer cancel()

	c.logger().Debug("Spinning up headless Chrome", slog.String("url", url))

	var content string
	err := chromedp.Run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitVisible(MANIFEST_TAB, chromedp.ByQuery),
		chromedp.Click(MANIFEST_TAB, chromedp.ByQuery),
		chromedp.WaitVisible(MANIFEST_BODY, chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			node, err := dom.GetDocument().Do(ctx)
			if err != nil {
				return err
			}
			content, err = dom.GetOuterHTML().WithNodeID(node.NodeID).Do(ctx)
			return err
		}),
	)
	return content, err
}

func (c *Client) parseManifests(r io.Reader) ([]Manifest, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	manifests := []Manifest{}
	doc.Find(MANIFEST_BODY).First().Find("tr").Each(func(i int, row *goquery.Selection) {
		cols := row.Find("td")
		if cols.Length() < 3 {
			c.logger().Warn("Manifest row has fewer than 3 columns", slog.Int("row", i+1))
			return
		}
		id := strings.TrimSpace(cols.Eq(2).Text())
		if !isDigits(id) {
			c.logger().Warn("Manifest row does not contain a valid manifest id",
				slog.Int("row", i+1),
				slog.String("value", id),
			)
			return
		}
		manifests = append(manifests, Manifest{
			ID:   id,
			Date: strings.TrimSpace(cols.Eq(0).Text()),
		})
	})
	return manifests, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
