package traffic

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// speedmap mirrors the Transport Department traffic speed map XML feed.
type speedmap struct {
	XMLName xml.Name        `xml:"jtis_speedmap"`
	Records []speedmapEntry `xml:"jtis_speedlist"`
}

type speedmapEntry struct {
	LinkID       string  `xml:"LINK_ID"`
	Region       string  `xml:"REGION"`
	RoadType     string  `xml:"ROAD_TYPE"`
	Saturation   string  `xml:"ROAD_SATURATION_LEVEL"`
	TrafficSpeed float64 `xml:"TRAFFIC_SPEED"`
	CaptureDate  string  `xml:"CAPTURE_DATE"`
}

// Fetcher refreshes the traffic cache from the external speed feed.
type Fetcher struct {
	url    string
	cache  *Cache
	client *http.Client
}

func NewFetcher(url string, cache *Cache) *Fetcher {
	return &Fetcher{
		url:    url,
		cache:  cache,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// FetchOnce pulls the feed and updates the cache for every record with a
// positive speed. Records without a link id or speed are skipped.
func (f *Fetcher) FetchOnce(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("traffic feed status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var feed speedmap
	if err := xml.Unmarshal(body, &feed); err != nil {
		return fmt.Errorf("parse traffic feed: %w", err)
	}

	for _, rec := range feed.Records {
		if rec.LinkID == "" || rec.TrafficSpeed <= 0 {
			continue
		}
		f.cache.Update(rec.LinkID, SpeedToState(rec.TrafficSpeed), rec.TrafficSpeed)
	}
	return nil
}

// Run fetches on a fixed interval until the context is cancelled. Failures
// are logged and skipped; the cache keeps serving the last good samples.
func (f *Fetcher) Run(ctx context.Context, interval time.Duration) {
	if err := f.FetchOnce(ctx); err != nil {
		log.Printf("traffic fetch failed: %v", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := f.FetchOnce(ctx); err != nil {
				log.Printf("traffic fetch failed: %v", err)
			}
		}
	}
}
