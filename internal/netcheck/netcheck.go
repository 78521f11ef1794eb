// Package netcheck measures internet speed against the nearest test server.
package netcheck

import (
	"context"
	"fmt"

	log "log/slog"

	"github.com/showwin/speedtest-go/speedtest"
)

type Tester struct {
	client *speedtest.Speedtest
}

func New() *Tester {
	return &Tester{client: speedtest.New()}
}

// Measure runs a full download, upload and latency test. It can take close
// to a minute on slow links, so callers should announce it beforehand.
func (t *Tester) Measure(ctx context.Context) (string, error) {
	servers, err := t.client.FetchServerListContext(ctx)
	if err != nil {
		return "", fmt.Errorf("fetch server list: %w", err)
	}
	targets, err := servers.FindServer(nil)
	if err != nil || len(targets) == 0 {
		return "", fmt.Errorf("find test server: %w", err)
	}

	srv := targets[0]
	log.Info("Running speed test", "server", srv.Name, "sponsor", srv.Sponsor)

	if err := srv.PingTestContext(ctx, nil); err != nil {
		return "", fmt.Errorf("ping test: %w", err)
	}
	if err := srv.DownloadTestContext(ctx); err != nil {
		return "", fmt.Errorf("download test: %w", err)
	}
	if err := srv.UploadTestContext(ctx); err != nil {
		return "", fmt.Errorf("upload test: %w", err)
	}

	return fmt.Sprintf(
		"Your download speed is %.1f megabits per second, upload speed is %.1f megabits per second, and ping is %d milliseconds.",
		srv.DLSpeed.Mbps(), srv.ULSpeed.Mbps(), srv.Latency.Milliseconds(),
	), nil
}
