package logs

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Alijeyrad/caseservice/config"
)

type lokiStream struct {
	Stream map[string]string `json:"stream"`
	Values [][2]string       `json:"values"`
}

type lokiPush struct {
	Streams []lokiStream `json:"streams"`
}

// lokiWriter pushes each JSON log line to Loki's push API.
type lokiWriter struct {
	client *resty.Client
	labels map[string]string
}

func newLokiWriter(cfg *config.Config) *lokiWriter {
	loki := cfg.Logging.Output.Loki
	client := resty.New().
		SetBaseURL(strings.TrimRight(loki.Endpoint, "/")).
		SetTimeout(3 * time.Second).
		SetHeader("Content-Type", "application/json")
	if loki.Username != "" {
		client.SetBasicAuth(loki.Username, loki.Password)
	}

	return &lokiWriter{
		client: client,
		labels: map[string]string{
			"service": cfg.Observability.ServiceName,
			"env":     cfg.Server.Environment,
		},
	}
}

func newLokiHandler(cfg *config.Config, level slog.Level) slog.Handler {
	return slog.NewJSONHandler(newLokiWriter(cfg), &slog.HandlerOptions{Level: level})
}

func (lw *lokiWriter) Write(p []byte) (int, error) {
	line := strings.TrimRight(string(p), "\n")
	body := lokiPush{Streams: []lokiStream{{
		Stream: lw.labels,
		Values: [][2]string{{strconv.FormatInt(time.Now().UnixNano(), 10), line}},
	}}}

	resp, err := lw.client.R().SetBody(body).Post("/loki/api/v1/push")
	if err != nil {
		return 0, err
	}
	if resp.IsError() {
		return 0, fmt.Errorf("loki push: status %d", resp.StatusCode())
	}
	return len(p), nil
}
