package controllers

import (
	"strconv"
	"time"

	"muschats/backend/config"
	"muschats/backend/models"
	"muschats/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type EventController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewEventController(db *gorm.DB, cfg *config.Config) *EventController {
	return &EventController{DB: db, Cfg: cfg}
}

type EventInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	StartsAt    string `json:"starts_at"`
	Category    string `json:"category"`
}

// Форматы даты, которые принимает форма событий
var eventTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

func parseEventTime(value string) (time.Time, bool) {
	for _, layout := range eventTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Upcoming godoc
// @Summary Upcoming events
// @Description Up to 5 soonest future events, ascending by date; shown on the home page
// @Tags events
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Router /events/upcoming [get]
func (ec *EventController) Upcoming(c *fiber.Ctx) error {
	var events []models.Event
	if err := ec.DB.Where("starts_at > ?", time.Now()).
		Order("starts_at ASC").
		Limit(5).
		Find(&events).Error; err != nil {
		return utils.InternalServerError(c, "Could not fetch events")
	}

	views := make([]fiber.Map, 0, len(events))
	for _, e := range events {
		views = append(views, fiber.Map{
			"id":          e.ID,
			"name":        e.Name,
			"description": e.Description,
			"starts_at":   e.StartsAt,
			"category":    e.Category,
		})
	}

	return utils.Success(c, fiber.StatusOK, views)
}

// Create godoc
// @Summary Create an event
// @Description Administrator only
// @Tags events
// @Accept json
// @Produce json
// @Param input body EventInput true "Event data"
// @Success 201 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/events [post]
func (ec *EventController) Create(c *fiber.Ctx) error {
	var input EventInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Name == "" || input.StartsAt == "" {
		return utils.BadRequest(c, "Name and date are required")
	}

	startsAt, ok := parseEventTime(input.StartsAt)
	if !ok {
		return utils.BadRequest(c, "Invalid date")
	}

	event := models.Event{
		Name:        input.Name,
		Description: input.Description,
		StartsAt:    startsAt,
		Category:    input.Category,
	}

	if err := ec.DB.Create(&event).Error; err != nil {
		return utils.InternalServerError(c, "Could not create event")
	}

	return utils.Success(c, fiber.StatusCreated, fiber.Map{"id": event.ID})
}

// Delete godoc
// @Summary Delete an event
// @Description Administrator only
// @Tags events
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/events/{id} [delete]
func (ec *EventController) Delete(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid event ID")
	}

	var event models.Event
	if err := ec.DB.First(&event, id).Error; err != nil {
		return utils.NotFound(c, "Event not found")
	}

	if err := ec.DB.Unscoped().Delete(&event).Error; err != nil {
		return utils.InternalServerError(c, "Could not delete event")
	}

	return utils.SuccessMessage(c, fiber.StatusOK, "Event deleted")
}
