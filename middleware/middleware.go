package middleware

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"campus_essentials/config"
	"campus_essentials/models"
	apperr "campus_essentials/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// SetupMiddleware configures all application middleware
func SetupMiddleware(app *fiber.App, cfg *config.Config) {
	// Request ID middleware - adds unique ID to each request
	app.Use(requestid.New())

	// Access log
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${method} ${path} - ${ip} - ${latency} - ${locals:requestid}\n",
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Local",
	}))

	app.Use(recover.New(recover.Config{
		EnableStackTrace: cfg.Env != "production",
	}))

	// Security middleware
	app.Use(helmet.New(helmet.Config{
		XSSProtection:             "1; mode=block",
		ContentTypeNosniff:        "nosniff",
		XFrameOptions:             "DENY",
		HSTSMaxAge:                31536000,
		CrossOriginResourcePolicy: "cross-origin",
	}))

	// Session cookies cross origins, so wildcard origins are never combined
	// with credentials.
	origins := strings.Join(cfg.CORSAllowOrigins, ",")
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     strings.Join(cfg.CORSAllowMethods, ","),
		AllowHeaders:     strings.Join(cfg.CORSAllowHeaders, ","),
		AllowCredentials: origins != "*",
		ExposeHeaders:    "X-Request-ID",
		MaxAge:           86400, // 24 hours
	}))

	app.Use(Timeout(cfg.RequestTimeout))
}

// Timeout bounds the request's user context. Handlers pass c.UserContext()
// down to services so database and bcrypt work stops at the deadline.
func Timeout(d time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if d <= 0 {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), d)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals(requestid.ConfigDefault.ContextKey).(string); ok {
		return id
	}
	return c.GetRespHeader(fiber.HeaderXRequestID)
}

func statusOf(code apperr.Code) int {
	switch code {
	case apperr.CodeInvalidArgument:
		return fiber.StatusBadRequest
	case apperr.CodeUnauthenticated:
		return fiber.StatusUnauthorized
	case apperr.CodePermissionDenied:
		return fiber.StatusForbidden
	case apperr.CodeNotFound:
		return fiber.StatusNotFound
	case apperr.CodeAlreadyExists:
		return fiber.StatusConflict
	case apperr.CodeUpstream:
		return fiber.StatusBadGateway
	case apperr.CodeDeadlineExceeded:
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}

func codeOfStatus(status int) apperr.Code {
	switch status {
	case fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge, fiber.StatusUnprocessableEntity:
		return apperr.CodeInvalidArgument
	case fiber.StatusUnauthorized:
		return apperr.CodeUnauthenticated
	case fiber.StatusForbidden:
		return apperr.CodePermissionDenied
	case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
		return apperr.CodeNotFound
	case fiber.StatusConflict:
		return apperr.CodeAlreadyExists
	case fiber.StatusRequestTimeout, fiber.StatusGatewayTimeout:
		return apperr.CodeDeadlineExceeded
	default:
		return apperr.CodeInternal
	}
}

// ErrorHandler renders every error returned by a handler as an APIError.
// Unclassified errors are logged and reported as a generic 500.
func ErrorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		rid := requestID(c)

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(models.ErrorResponse(string(codeOfStatus(fe.Code)), fe.Message, rid))
		}

		var ae *apperr.AppError
		if !errors.As(err, &ae) {
			ae = &apperr.AppError{Code: apperr.CodeInternal, Cause: err}
		}
		code, msg := ae.Code, ae.Message
		status := statusOf(code)
		if status == fiber.StatusInternalServerError {
			log.Error("request failed",
				"request_id", rid,
				"method", c.Method(),
				"path", c.Path(),
				"error", err,
			)
			code, msg = apperr.CodeInternal, "internal server error"
		}
		return c.Status(status).JSON(models.ErrorResponse(string(code), msg, rid))
	}
}

// NotFound answers any route no handler matched.
func NotFound(c *fiber.Ctx) error {
	return fiber.NewError(fiber.StatusNotFound, "the requested resource was not found")
}
