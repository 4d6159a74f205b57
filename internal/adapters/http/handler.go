package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/tidwall/gjson"

	"github.com/futalk/Tarot-Reading/internal/app"
	"github.com/futalk/Tarot-Reading/internal/domain"
)

const (
	maxQuestionLen = 500

	msgMissingCards      = "缺少必需参数：cards"
	msgMissingCredential = "未提供API Key。请在设置中配置你的API Key，或联系管理员启用默认服务。"
	msgEndpointNeedsKey  = "使用自定义API地址时，请同时提供你自己的API Key。"
	msgRateLimited       = "请求过于频繁。"
	hintRateLimited      = "💡 提示：配置你自己的API Key可以解除限制"
	msgQuotaExhausted    = "默认AI服务暂时不可用（配额已用完）"
	hintQuotaExhausted   = "💡 建议：配置你自己的API Key以继续使用AI解读功能"
	msgMalformed         = "AI返回的数据格式不正确"
	msgTimeout           = "AI服务响应超时，请稍后再试"
	msgUnreachable       = "AI服务暂时无法连接，请稍后再试"
	msgBadBody           = "请求体格式不正确"
	msgInternal          = "服务器内部错误"
	msgMethodNotAllowed  = "Method not allowed"

	headerRemainingHour = "X-RateLimit-Remaining-Hour"
	headerRemainingDay  = "X-RateLimit-Remaining-Day"
)

type Handler struct {
	tarot  *app.TarotService
	ai     *app.AIReadingService
	logger *slog.Logger
	// dev exposes internal error text in failure details.
	dev bool
}

func NewHandler(tarot *app.TarotService, ai *app.AIReadingService, logger *slog.Logger, dev bool) *Handler {
	return &Handler{tarot: tarot, ai: ai, logger: logger, dev: dev}
}

func (h *Handler) Register(e *echo.Echo) {
	e.GET("/healthz", h.Healthz)

	e.POST("/api/ai-reading", h.AIReading)
	e.OPTIONS("/api/ai-reading", h.Preflight)
	e.GET("/api/ai-providers", h.Providers)

	v1 := e.Group("/v1")
	v1.GET("/spreads", h.ListSpreads)
	v1.GET("/cards/:name", h.GetCard)
	v1.POST("/readings", h.CreateReading)
	v1.POST("/readings/analyze", h.AnalyzeReading)
	v1.GET("/readings", h.ListReadings)
	v1.DELETE("/readings", h.ClearReadings)
	v1.GET("/daily", h.Daily)
	v1.POST("/yesno", h.YesNo)
}

func (h *Handler) Healthz(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// Preflight answers CORS preflight requests; the CORS middleware has
// already set the headers.
func (h *Handler) Preflight(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func (h *Handler) AIReading(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return fail(c, http.StatusBadRequest, ErrorResponse{Error: msgBadBody})
	}
	if cards := gjson.GetBytes(body, "cards"); !cards.IsArray() || len(cards.Array()) == 0 {
		return fail(c, http.StatusBadRequest, ErrorResponse{Error: msgMissingCards})
	}

	var req AIReadingRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return fail(c, http.StatusBadRequest, ErrorResponse{Error: msgBadBody})
	}

	res, err := h.ai.Interpret(c.Request().Context(), app.AIReadingRequest{
		Cards:       toReadingCards(req.Cards),
		Spread:      req.Spread,
		Question:    req.Question,
		APIEndpoint: req.APIEndpoint,
		APIKey:      req.APIKey,
		Model:       req.Model,
		ClientIP:    c.RealIP(),
	})
	if err != nil {
		return h.mapError(c, err)
	}
	if q := res.Quota; q != nil {
		c.Response().Header().Set(headerRemainingHour, strconv.Itoa(q.HourlyRemaining))
		c.Response().Header().Set(headerRemainingDay, strconv.Itoa(q.DailyRemaining))
	}

	return c.JSON(http.StatusOK, AIReadingResponse{
		Success:         true,
		Interpretation:  res.Text,
		Model:           res.Model,
		Usage:           res.Usage,
		UsingDefaultKey: res.UsingDefaultKey,
		Cached:          res.Cached,
	})
}

func (h *Handler) Providers(c echo.Context) error {
	return c.JSON(http.StatusOK, ProvidersResponse{Success: true, Providers: h.ai.Providers()})
}

func (h *Handler) ListSpreads(c echo.Context) error {
	return c.JSON(http.StatusOK, SpreadsResponse{Success: true, Spreads: h.tarot.Spreads()})
}

func (h *Handler) GetCard(c echo.Context) error {
	name, err := url.PathUnescape(c.Param("name"))
	if err != nil {
		return fail(c, http.StatusBadRequest, ErrorResponse{Error: "invalid card name"})
	}
	card, err := h.tarot.Card(c.Request().Context(), name)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, CardResponse{Success: true, Card: card})
}

func (h *Handler) CreateReading(c echo.Context) error {
	var req DrawRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, ErrorResponse{Error: msgBadBody})
	}
	if utf8.RuneCountInString(req.Question) > maxQuestionLen {
		return fail(c, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("question must be at most %d characters", maxQuestionLen)})
	}
	if req.Spread == "" {
		req.Spread = domain.SpreadRandom
	}

	res, err := h.tarot.Draw(c.Request().Context(), app.DrawRequest{
		Spread:      req.Spread,
		CustomCount: req.Count,
		Question:    req.Question,
		Cut:         domain.CutPosition(req.Cut),
		Picks:       req.Picks,
	})
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusCreated, DrawResponse{Success: true, Reading: res.Reading, Analysis: res.Analysis})
}

func (h *Handler) AnalyzeReading(c echo.Context) error {
	var req AnalyzeRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, ErrorResponse{Error: msgBadBody})
	}
	res, err := h.tarot.Analyze(c.Request().Context(), app.AnalyzeRequest{
		Spread:   req.Spread,
		Question: req.Question,
		Cards:    toReadingCards(req.Cards),
	})
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, AnalyzeResponse{Success: true, Analysis: res})
}

func (h *Handler) ListReadings(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return fail(c, http.StatusBadRequest, ErrorResponse{Error: "limit must be a non-negative integer"})
		}
		limit = parsed
	}
	readings, err := h.tarot.History(c.Request().Context(), limit)
	if err != nil {
		return h.mapError(c, err)
	}
	if readings == nil {
		readings = []domain.Reading{}
	}
	return c.JSON(http.StatusOK, ReadingsResponse{Success: true, Readings: readings})
}

func (h *Handler) ClearReadings(c echo.Context) error {
	if err := h.tarot.ClearHistory(c.Request().Context()); err != nil {
		return h.mapError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Daily(c echo.Context) error {
	d, err := h.tarot.Daily(c.Request().Context(), c.QueryParam("user"))
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, DailyResponse{Success: true, DailyCard: d})
}

func (h *Handler) YesNo(c echo.Context) error {
	var req YesNoRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, ErrorResponse{Error: msgBadBody})
	}
	res, err := h.tarot.YesNo(c.Request().Context(), req.Question)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, YesNoResponse{Success: true, YesNoResult: res})
}

func fail(c echo.Context, status int, body ErrorResponse) error {
	body.Success = false
	return c.JSON(status, body)
}

// mapError turns a service error into a status and failure body.
func (h *Handler) mapError(c echo.Context, err error) error {
	requestID, _ := c.Get("request_id").(string)
	ctx := c.Request().Context()

	var (
		rl        *domain.RateLimitError
		upErr     *domain.UpstreamError
		malformed *domain.MalformedResponseError
	)
	switch {
	case errors.As(err, &rl):
		retryAfter := int(math.Ceil(rl.RetryAfter.Seconds()))
		c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
		return fail(c, http.StatusTooManyRequests, ErrorResponse{
			Error:      msgRateLimited + rateLimitMessage(rl),
			Hint:       hintRateLimited,
			RetryAfter: retryAfter,
		})

	case errors.As(err, &upErr):
		h.logger.WarnContext(ctx, "AI API error", "request_id", requestID, "status", upErr.Status, "error", upErr.Message)
		if upErr.DefaultKey && upErr.QuotaExhausted() {
			return fail(c, upErr.Status, ErrorResponse{
				Error:   msgQuotaExhausted,
				Hint:    hintQuotaExhausted,
				Details: upErr.Message,
			})
		}
		return fail(c, relayStatus(upErr.Status), ErrorResponse{
			Error:   upErr.Message,
			Details: upErr.Details,
		})

	case errors.As(err, &malformed):
		h.logger.WarnContext(ctx, "malformed AI response", "request_id", requestID)
		return fail(c, http.StatusInternalServerError, ErrorResponse{Error: msgMalformed, Details: malformed.Details})

	case errors.Is(err, domain.ErrUpstreamTimeout):
		h.logger.WarnContext(ctx, "AI API timeout", "request_id", requestID, "error", err)
		return fail(c, http.StatusGatewayTimeout, ErrorResponse{Error: msgTimeout})

	case errors.Is(err, domain.ErrUpstreamLLM):
		h.logger.ErrorContext(ctx, "upstream LLM failure", "request_id", requestID, "error", err)
		return fail(c, http.StatusBadGateway, ErrorResponse{Error: msgUnreachable, Details: h.debugDetails(err)})

	case errors.Is(err, domain.ErrMissingCards):
		return fail(c, http.StatusBadRequest, ErrorResponse{Error: msgMissingCards})

	case errors.Is(err, domain.ErrMissingCredential):
		return fail(c, http.StatusBadRequest, ErrorResponse{Error: msgMissingCredential})

	case errors.Is(err, domain.ErrEndpointNeedsKey):
		return fail(c, http.StatusBadRequest, ErrorResponse{Error: msgEndpointNeedsKey})

	case errors.Is(err, domain.ErrDeckNotFound), errors.Is(err, domain.ErrCardNotFound):
		return fail(c, http.StatusNotFound, ErrorResponse{Error: err.Error()})

	case app.IsClientError(err):
		return fail(c, http.StatusBadRequest, ErrorResponse{Error: err.Error()})

	default:
		h.logger.ErrorContext(ctx, "internal error", "request_id", requestID, "error", err)
		return fail(c, http.StatusInternalServerError, ErrorResponse{Error: msgInternal, Details: h.debugDetails(err)})
	}
}

func (h *Handler) debugDetails(err error) any {
	if !h.dev {
		return nil
	}
	return err.Error()
}

// relayStatus keeps upstream failure codes but never reports success.
func relayStatus(status int) int {
	if status < 400 || status > 599 {
		return http.StatusBadGateway
	}
	return status
}

func rateLimitMessage(rl *domain.RateLimitError) string {
	if rl.Window == domain.WindowDaily {
		hours := int(math.Ceil(rl.RetryAfter.Hours()))
		return fmt.Sprintf("每日限制%d次，请%d小时后再试", rl.Limit, hours)
	}
	minutes := int(math.Ceil(rl.RetryAfter.Minutes()))
	return fmt.Sprintf("每小时限制%d次，请%d分钟后再试", rl.Limit, minutes)
}

// errorHandler renders framework errors (unknown routes, wrong methods,
// recovered panics) in the common failure shape.
func (h *Handler) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if !errors.As(err, &he) {
		_ = h.mapError(c, err)
		return
	}

	msg := http.StatusText(he.Code)
	switch {
	case he.Code == http.StatusMethodNotAllowed:
		msg = msgMethodNotAllowed
	case he.Code < http.StatusInternalServerError:
		if s, ok := he.Message.(string); ok {
			msg = s
		}
	default:
		h.logger.ErrorContext(c.Request().Context(), "http error", "error", err)
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(he.Code)
		return
	}
	_ = fail(c, he.Code, ErrorResponse{Error: msg})
}
