package workflow

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/matchday-preview/internal/domain/workflow"
	"github.com/riskibarqy/matchday-preview/internal/platform/logging"
	"github.com/riskibarqy/matchday-preview/internal/platform/resilience"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type WebhookConfig struct {
	URL     string
	Token   string
	Timeout time.Duration
	Breaker resilience.Config
}

// WebhookDispatcher posts jobs straight to a workflow engine webhook
// (n8n style) and returns once the engine has accepted the request.
type WebhookDispatcher struct {
	client  *fasthttp.Client
	url     string
	token   string
	timeout time.Duration
	logger  *logging.Logger
	breaker *resilience.Breaker
}

func NewWebhookDispatcher(cfg WebhookConfig, logger *logging.Logger) *WebhookDispatcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &WebhookDispatcher{
		client: &fasthttp.Client{
			Name:                "matchday-preview",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		},
		url:     strings.TrimSpace(cfg.URL),
		token:   strings.TrimSpace(cfg.Token),
		timeout: timeout,
		logger:  logger,
		breaker: resilience.New(cfg.Breaker),
	}
}

func (d *WebhookDispatcher) Dispatch(ctx context.Context, job workflow.Job) (workflow.Receipt, error) {
	receipt := workflow.Receipt{DispatchID: job.DispatchID, Mode: workflow.ModeWebhook}

	endpoint, err := parseEndpoint(d.url)
	if err != nil {
		return receipt, crerr.Wrap(err, "WORKFLOW_WEBHOOK_URL")
	}
	body, err := sonic.Marshal(job)
	if err != nil {
		return receipt, crerr.Wrap(err, "marshal workflow job")
	}

	err = d.breaker.Do(ctx, func(ctx context.Context) error {
		status, err := d.post(ctx, endpoint, job, body)
		receipt.StatusCode = status
		return err
	}, isTransient)
	if err != nil {
		if crerr.Is(err, resilience.ErrOpen) {
			d.logger.WarnContext(ctx, "workflow webhook circuit breaker rejected request", "state", d.breaker.State().String())
			return receipt, fmt.Errorf("workflow webhook is temporarily unavailable: %w", err)
		}
		return receipt, err
	}

	d.logger.InfoContext(ctx, "workflow webhook accepted job",
		"match_id", job.MatchID,
		"dispatch_id", job.DispatchID,
		"status_code", receipt.StatusCode,
	)
	return receipt, nil
}

func (d *WebhookDispatcher) post(ctx context.Context, endpoint string, job workflow.Job, body []byte) (int, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	headers := []header{
		{name: "Content-Type", value: "application/json"},
		{name: "Idempotency-Key", value: job.DispatchID},
	}
	if d.token != "" {
		headers = append(headers, header{name: "Authorization", value: "Bearer " + d.token, secret: true})
	}

	req.SetRequestURI(endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	for _, h := range headers {
		req.Header.Set(h.name, h.value)
	}
	carrier := propagation.HeaderCarrier(http.Header{})
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for _, key := range carrier.Keys() {
		req.Header.Set(key, carrier.Get(key))
	}
	req.SetBody(body)

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("workflow.webhook_url", endpoint),
			attribute.String("workflow.dispatch_id", job.DispatchID),
			attribute.String("workflow.request_curl_preview", curlPreview(endpoint, headers, body)),
		)
	}

	deadline := time.Now().Add(d.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	if err := d.client.DoDeadline(req, resp, deadline); err != nil {
		return 0, fmt.Errorf("%w: post workflow webhook url=%s: %v", errTransient, endpoint, err)
	}

	status := resp.StatusCode()
	if status/100 != 2 {
		return status, statusError("post workflow webhook", status, endpoint, resp.Body())
	}
	return status, nil
}
