package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/car-pooling/internal/model"
	"github.com/iliyamo/car-pooling/internal/pooling"
	"github.com/iliyamo/car-pooling/internal/service"
)

// PoolingHandler serves the car pooling API.  It validates the shape of
// each request and leaves every allocation decision to the service.
type PoolingHandler struct {
	Service *service.PoolingService
}

// NewPoolingHandler constructs a PoolingHandler and panics if svc is nil.
func NewPoolingHandler(svc *service.PoolingService) *PoolingHandler {
	if svc == nil {
		panic("nil service passed to NewPoolingHandler")
	}
	return &PoolingHandler{Service: svc}
}

type carRequest struct {
	ID    *int64 `json:"id"`
	Seats *int   `json:"seats"`
}

type journeyRequest struct {
	ID     *int64 `json:"id"`
	People *int   `json:"people"`
}

// UpdateCars handles PUT /cars.  The body is a JSON array of
// {"id", "seats"} objects that replaces the whole fleet.  Every known
// journey is discarded.  A car whose seats fall outside the configured
// range rejects the whole list with 400 and the offending car id.
func (h *PoolingHandler) UpdateCars(c echo.Context) error {
	var body []carRequest
	if err := decodeStrict(c, &body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	cars := make([]model.Car, 0, len(body))
	for i, r := range body {
		if r.ID == nil || r.Seats == nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": fmt.Sprintf("index %d: id and seats are required", i)})
		}
		if *r.Seats < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": fmt.Sprintf("car %d: seats must not be negative", *r.ID)})
		}
		cars = append(cars, model.Car{ID: *r.ID, Seats: *r.Seats})
	}

	if err := h.Service.UpdateCarList(c.Request().Context(), cars); err != nil {
		var cerr *pooling.InvalidCapacityError
		if errors.As(err, &cerr) {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error":   pooling.ErrInvalidCapacity.Error(),
				"code":    pooling.CodeCarInvalidSeat,
				"details": echo.Map{"car_id": cerr.CarID, "min_seats": cerr.Min, "max_seats": cerr.Max},
			})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update cars"})
	}
	return c.NoContent(http.StatusOK)
}

// RegisterJourney handles POST /journey.  The body is a JSON object
// {"id", "people"}.  The group is seated right away when a car fits it
// and waits otherwise; both outcomes answer 200.  Registering an id twice
// answers 409.
func (h *PoolingHandler) RegisterJourney(c echo.Context) error {
	var body journeyRequest
	if err := decodeStrict(c, &body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if body.ID == nil || body.People == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id and people are required"})
	}
	_, maxSeats := h.Service.SeatBounds()
	if *body.People < 0 || *body.People > maxSeats {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": fmt.Sprintf("people must be between 0 and %d", maxSeats)})
	}

	err := h.Service.RegisterJourney(c.Request().Context(), model.Group{ID: *body.ID, People: *body.People})
	switch {
	case err == nil:
		return c.NoContent(http.StatusOK)
	case errors.Is(err, pooling.ErrDuplicateGroup):
		return groupError(c, http.StatusConflict, err, *body.ID)
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "unable to register journey"})
	}
}

// DropOff handles POST /dropoff with a form encoded ID.  The group is
// removed whether it is travelling or waiting.  Unknown ids answer 404.
func (h *PoolingHandler) DropOff(c echo.Context) error {
	id, err := formID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	err = h.Service.DropOffJourney(c.Request().Context(), id)
	switch {
	case err == nil:
		return c.NoContent(http.StatusOK)
	case errors.Is(err, pooling.ErrGroupNotFound):
		return groupError(c, http.StatusNotFound, err, id)
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "unable to drop off journey"})
	}
}

// Locate handles POST /locate with a form encoded ID.  It answers 200 with
// the car {"id", "seats"} of a travelling group, 204 while the group waits
// and 404 for unknown ids.
func (h *PoolingHandler) Locate(c echo.Context) error {
	id, err := formID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	car, err := h.Service.LocateJourney(c.Request().Context(), id)
	switch {
	case err == nil && car == nil:
		return c.NoContent(http.StatusNoContent)
	case err == nil:
		return c.JSON(http.StatusOK, car)
	case errors.Is(err, pooling.ErrGroupNotFound):
		return groupError(c, http.StatusNotFound, err, id)
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "unable to locate journey"})
	}
}

func groupError(c echo.Context, status int, err error, groupID int64) error {
	msg := pooling.ErrGroupNotFound.Error()
	if errors.Is(err, pooling.ErrDuplicateGroup) {
		msg = pooling.ErrDuplicateGroup.Error()
	}
	return c.JSON(status, echo.Map{
		"error":   msg,
		"code":    pooling.Code(err),
		"details": echo.Map{"group_id": groupID},
	})
}

// decodeStrict decodes the JSON body into v, rejecting unknown fields and
// trailing data.
func decodeStrict(c echo.Context, v interface{}) error {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return errors.New("unable to read request body")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %s", strings.TrimPrefix(err.Error(), "json: "))
	}
	if dec.More() {
		return errors.New("invalid request body: unexpected data after JSON value")
	}
	return nil
}

// formID reads the ID form field as a group id.
func formID(c echo.Context) (int64, error) {
	raw := strings.TrimSpace(c.FormValue("ID"))
	if raw == "" {
		return 0, errors.New("ID is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.New("ID must be an integer")
	}
	return id, nil
}
