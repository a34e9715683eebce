package httpapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/i474232898/motogp-standings/internal/fetch"
	"github.com/i474232898/motogp-standings/internal/render"
	"github.com/i474232898/motogp-standings/internal/season"
	"github.com/i474232898/motogp-standings/internal/standings"
	"github.com/i474232898/motogp-standings/internal/standings/wikipedia"
	"github.com/i474232898/motogp-standings/internal/weather/providers"
)

var validate = validator.New()

// suggestThreshold is the lowest Jaro-Winkler score offered as "did you mean".
const suggestThreshold = 0.8

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *season.Service, logger *zap.Logger) {
	h := &handlers{service: service, logger: logger}

	app.Get("/", h.form)
	app.Post("/", h.submit)

	v1 := app.Group("/api/v1/seasons/:season")
	v1.Get("/standings", h.standings)
	v1.Get("/weather", h.weather)
	v1.Get("/history", h.history)
	v1.Get("/chart.png", h.chart)
}

type handlers struct {
	service *season.Service
	logger  *zap.Logger
}

// chartQuery selects what goes on a chart. Zero From, To and Races mean no limit.
type chartQuery struct {
	Season  int  `query:"season" form:"season" validate:"required"`
	History bool `query:"history" form:"history"`
	From    int  `query:"from" form:"from" validate:"omitempty,gte=1"`
	To      int  `query:"to" form:"to" validate:"omitempty,gtefield=From"`
	Races   int  `query:"races" form:"races" validate:"omitempty,gte=1"`
}

func (h *handlers) form(c *fiber.Ctx) error {
	seasons := h.service.Seasons()
	q := chartQuery{From: 1, To: defaultRiders}
	if len(seasons) > 0 {
		q.Season = seasons[len(seasons)-1]
	}
	return h.renderPage(c, fiber.StatusOK, page{Seasons: seasons, Form: q})
}

func (h *handlers) submit(c *fiber.Ctx) error {
	p := page{Seasons: h.service.Seasons()}

	if err := c.BodyParser(&p.Form); err != nil {
		p.Error = "invalid form: " + err.Error()
		return h.renderPage(c, fiber.StatusBadRequest, p)
	}
	if err := validate.Struct(p.Form); err != nil {
		p.Error = err.Error()
		return h.renderPage(c, fiber.StatusBadRequest, p)
	}

	png, err := h.drawChart(c.UserContext(), p.Form)
	if err != nil {
		p.Error = err.Error()
		return h.renderPage(c, h.status(err), p)
	}
	p.Chart = base64.StdEncoding.EncodeToString(png)
	return h.renderPage(c, fiber.StatusOK, p)
}

func (h *handlers) standings(c *fiber.Ctx) error {
	year, err := c.ParamsInt("season")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "season must be a year")
	}

	m, err := h.service.Standings(c.UserContext(), year)
	if err != nil {
		return h.fail(err)
	}

	name := c.Query("rider")
	if name == "" {
		return c.JSON(m)
	}

	rider, ok := standings.FindRider(m, name)
	if !ok {
		msg := fmt.Sprintf("rider %q not found in season %d", name, year)
		if suggestion, score := standings.SuggestRider(m, name); score >= suggestThreshold {
			msg += fmt.Sprintf("; did you mean %q?", suggestion)
		}
		return fiber.NewError(fiber.StatusNotFound, msg)
	}
	return c.JSON(m.Restrict([]string{rider}))
}

func (h *handlers) weather(c *fiber.Ctx) error {
	year, err := c.ParamsInt("season")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "season must be a year")
	}

	record, err := h.service.Weather(c.UserContext(), year)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(record)
}

func (h *handlers) history(c *fiber.Ctx) error {
	year, err := c.ParamsInt("season")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "season must be a year")
	}

	m, err := h.service.History(c.UserContext(), year)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(m)
}

func (h *handlers) chart(c *fiber.Ctx) error {
	var q chartQuery
	if err := c.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	year, err := c.ParamsInt("season")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "season must be a year")
	}
	q.Season = year

	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	png, err := h.drawChart(c.UserContext(), q)
	if err != nil {
		return h.fail(err)
	}
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(png)
}

// drawChart runs the season pipeline and draws the selected riders and races.
func (h *handlers) drawChart(ctx context.Context, q chartQuery) ([]byte, error) {
	report, err := h.service.Report(ctx, q.Season, q.History)
	if err != nil {
		return nil, err
	}

	in := render.ChartInput{
		Title:     fmt.Sprintf("%d MotoGP riders' standings", q.Season),
		Standings: report.Standings.Top(q.From, q.To).FirstRaces(q.Races),
		Weather:   report.Weather,
	}
	if report.History != nil {
		history := report.History.Restrict(in.Standings.Riders)
		in.History = &history
	}

	var buf bytes.Buffer
	if err := render.Chart(&buf, in); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (h *handlers) fail(err error) error {
	code := h.status(err)
	return fiber.NewError(code, err.Error())
}

// status maps pipeline errors onto HTTP status codes.
func (h *handlers) status(err error) int {
	switch {
	case errors.Is(err, season.ErrSeasonOutOfRange), errors.Is(err, season.ErrNoHistory):
		return fiber.StatusBadRequest
	case errors.Is(err, fetch.ErrNotFound),
		errors.Is(err, wikipedia.ErrTableNotFound),
		errors.Is(err, providers.ErrSeasonNotFound),
		errors.Is(err, providers.ErrCategoryNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, standings.ErrDataShape),
		errors.Is(err, fetch.ErrParse),
		errors.Is(err, render.ErrNothingToPlot):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, fetch.ErrConnectivity):
		return fiber.StatusBadGateway
	}
	h.logger.Error("unexpected pipeline error", zap.Error(err))
	return fiber.StatusInternalServerError
}
