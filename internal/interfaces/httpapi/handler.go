package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/matchday-preview/internal/domain/user"
	"github.com/riskibarqy/matchday-preview/internal/platform/logging"
	"github.com/riskibarqy/matchday-preview/internal/usecase"
)

type Handler struct {
	authService      *usecase.AuthService
	dashboardService *usecase.DashboardService
	leagueService    *usecase.LeagueService
	matchService     *usecase.MatchService
	analysisService  *usecase.AnalysisService
	articleService   *usecase.ArticleService
	userService      *usecase.UserService
	logger           *logging.Logger
	validator        *validator.Validate
}

func NewHandler(
	authService *usecase.AuthService,
	dashboardService *usecase.DashboardService,
	leagueService *usecase.LeagueService,
	matchService *usecase.MatchService,
	analysisService *usecase.AnalysisService,
	articleService *usecase.ArticleService,
	userService *usecase.UserService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		authService:      authService,
		dashboardService: dashboardService,
		leagueService:    leagueService,
		matchService:     matchService,
		analysisService:  analysisService,
		articleService:   articleService,
		userService:      userService,
		logger:           logger.With("component", "httpapi"),
		validator:        validator.New(validator.WithRequiredStructEnabled()),
	}
}

type decodeMode uint8

const (
	// strict rejects unknown fields; admin clients are ours.
	strict decodeMode = iota
	// lenient accepts unknown fields from workflow engine payloads.
	lenient
	// lenientOrEmpty additionally treats an empty body as the zero value.
	lenientOrEmpty
)

// decode reads one JSON document into dst and validates it.
func (h *Handler) decode(ctx context.Context, r *http.Request, dst any, mode decodeMode) error {
	dec := sonic.ConfigDefault.NewDecoder(r.Body)
	if mode == strict {
		dec.DisallowUnknownFields()
	}
	err := dec.Decode(dst)
	if err != nil && !(mode == lenientOrEmpty && errors.Is(err, io.EOF)) {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	if err := h.validator.StructCtx(ctx, dst); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func requirePrincipal(ctx context.Context) (user.Principal, error) {
	principal, ok := principalFromContext(ctx)
	if !ok {
		return user.Principal{}, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized)
	}
	return principal, nil
}

// logFailure logs server-side failures at error and client mistakes at warn.
func (h *Handler) logFailure(ctx context.Context, msg string, err error, args ...any) {
	args = append(args, "error", err)
	if classify(err).code >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, args...)
		return
	}
	h.logger.WarnContext(ctx, msg, args...)
}
