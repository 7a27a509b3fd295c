package workflow

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/matchday-preview/internal/domain/workflow"
	"github.com/riskibarqy/matchday-preview/internal/platform/logging"
	"github.com/riskibarqy/matchday-preview/internal/platform/resilience"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type QStashConfig struct {
	BaseURL     string
	Token       string
	TargetURL   string
	TargetToken string
	Retries     int
	Timeout     time.Duration
	Breaker     resilience.Config
}

// QStashDispatcher publishes jobs to Upstash QStash, which delivers them to
// the workflow engine with retries. The dispatch id doubles as the
// deduplication id so a replayed trigger is not delivered twice.
type QStashDispatcher struct {
	client      *http.Client
	baseURL     string
	token       string
	targetURL   string
	targetToken string
	retries     int
	logger      *logging.Logger
	breaker     *resilience.Breaker
}

type qstashPublishResponse struct {
	MessageID string `json:"messageId"`
}

func NewQStashDispatcher(cfg QStashConfig, logger *logging.Logger) *QStashDispatcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &QStashDispatcher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		token:       strings.TrimSpace(cfg.Token),
		targetURL:   strings.TrimSpace(cfg.TargetURL),
		targetToken: strings.TrimSpace(cfg.TargetToken),
		retries:     cfg.Retries,
		logger:      logger,
		breaker:     resilience.New(cfg.Breaker),
	}
}

func (d *QStashDispatcher) Dispatch(ctx context.Context, job workflow.Job) (workflow.Receipt, error) {
	receipt := workflow.Receipt{DispatchID: job.DispatchID, Mode: workflow.ModeQStash}

	done, err := d.breaker.Acquire()
	if err != nil {
		d.logger.WarnContext(ctx, "qstash circuit breaker rejected request", "state", d.breaker.State().String())
		return receipt, fmt.Errorf("qstash is temporarily unavailable: %w", err)
	}
	receipt, err = d.publish(ctx, job, receipt)
	done(err != nil && isTransient(err))
	return receipt, err
}

func (d *QStashDispatcher) publish(ctx context.Context, job workflow.Job, receipt workflow.Receipt) (workflow.Receipt, error) {
	baseURL, err := parseEndpoint(d.baseURL)
	if err != nil {
		return receipt, crerr.Wrap(err, "QSTASH_BASE_URL")
	}
	targetURL, err := parseEndpoint(d.targetURL)
	if err != nil {
		return receipt, crerr.Wrap(err, "QSTASH_TARGET_URL")
	}
	body, err := sonic.Marshal(job)
	if err != nil {
		return receipt, crerr.Wrap(err, "marshal workflow job")
	}

	// QStash takes the destination verbatim after /v2/publish/.
	publishURL := baseURL + "/v2/publish/" + targetURL
	headers := d.headers(job.DispatchID)
	preview := curlPreview(publishURL, headers, body)
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.String("qstash.publish_url", publishURL),
			attribute.String("qstash.target_url", targetURL),
			attribute.String("qstash.request_curl_preview", preview),
		)
	}
	d.logger.InfoContext(ctx, "qstash publish request",
		"match_id", job.MatchID,
		"dispatch_id", job.DispatchID,
		"target_url", targetURL,
		"curl_preview", preview,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, publishURL, bytes.NewReader(body))
	if err != nil {
		return receipt, crerr.Wrap(err, "build qstash request")
	}
	for _, h := range headers {
		req.Header.Set(h.name, h.value)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return receipt, fmt.Errorf("%w: publish to qstash target_url=%s: %v", errTransient, targetURL, err)
	}
	defer resp.Body.Close()

	receipt.StatusCode = resp.StatusCode
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxLoggedBody))
	if resp.StatusCode/100 != 2 {
		return receipt, statusError("publish to qstash", resp.StatusCode, targetURL, raw)
	}

	var published qstashPublishResponse
	if err := sonic.Unmarshal(raw, &published); err != nil {
		d.logger.WarnContext(ctx, "qstash publish response not understood", "dispatch_id", job.DispatchID, "error", err)
	}
	receipt.MessageID = published.MessageID

	d.logger.InfoContext(ctx, "qstash job published",
		"dispatch_id", job.DispatchID,
		"message_id", receipt.MessageID,
	)
	return receipt, nil
}

// headers lists what QStash needs to deliver the job. Upstash-Forward-* are
// passed on to the workflow engine; the dispatch id deduplicates replays.
func (d *QStashDispatcher) headers(dispatchID string) []header {
	hs := []header{
		{name: "Authorization", value: "Bearer " + d.token, secret: true},
		{name: "Content-Type", value: "application/json"},
		{name: "Upstash-Method", value: http.MethodPost},
	}
	if d.retries > 0 {
		hs = append(hs, header{name: "Upstash-Retries", value: strconv.Itoa(d.retries)})
	}
	if id := strings.TrimSpace(dispatchID); id != "" {
		hs = append(hs, header{name: "Upstash-Deduplication-Id", value: id})
	}
	if d.targetToken != "" {
		hs = append(hs, header{name: "Upstash-Forward-Authorization", value: "Bearer " + d.targetToken, secret: true})
	}
	return hs
}
