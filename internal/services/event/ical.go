package event

import (
	"bytes"
	"log"

	"github.com/emersion/go-ical"
	"github.com/gofiber/fiber/v3"

	"github.com/samiksha1911888/slot-swapper/internal/db"
	"github.com/samiksha1911888/slot-swapper/internal/middleware"
	"github.com/samiksha1911888/slot-swapper/internal/models"
)

// ExportCalendar отдаёт календарь пользователя в формате iCalendar
func (s *EventService) ExportCalendar(c fiber.Ctx) error {
	userID, ok := middleware.CallerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	rows, err := db.Pool.Query(ctx, `
		SELECT id, owner_id, title, start_time, end_time, status, created_at, updated_at
		FROM events
		WHERE owner_id = $1
		ORDER BY start_time
	`, userID)
	if err != nil {
		log.Printf("Ошибка запроса событий для экспорта: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения событий"})
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var ev models.Event
		if err := rows.Scan(
			&ev.ID,
			&ev.OwnerID,
			&ev.Title,
			&ev.StartTime,
			&ev.EndTime,
			&ev.Status,
			&ev.CreatedAt,
			&ev.UpdatedAt,
		); err != nil {
			log.Printf("Ошибка сканирования события: %v", err)
			continue
		}
		events = append(events, ev)
	}

	cal := BuildCalendar(events)

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		log.Printf("Ошибка кодирования календаря: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка экспорта календаря"})
	}

	c.Set("Content-Type", "text/calendar; charset=utf-8")
	c.Set("Content-Disposition", `attachment; filename="slot-swapper.ics"`)
	return c.Send(buf.Bytes())
}

// BuildCalendar собирает VCALENDAR из событий пользователя
func BuildCalendar(events []models.Event) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//slot-swapper//EN")

	for _, ev := range events {
		ve := ical.NewComponent(ical.CompEvent)
		ve.Props.SetText(ical.PropUID, ev.ID.String())
		ve.Props.SetText(ical.PropSummary, ev.Title)
		// DTSTAMP из updated_at, чтобы экспорт был воспроизводимым
		ve.Props.SetDateTime(ical.PropDateTimeStamp, ev.UpdatedAt.UTC())
		ve.Props.SetDateTime(ical.PropDateTimeStart, ev.StartTime)
		ve.Props.SetDateTime(ical.PropDateTimeEnd, ev.EndTime)
		ve.Props.SetText(ical.PropStatus, statusToICal(ev.Status))
		cal.Children = append(cal.Children, ve)
	}

	return cal
}

// statusToICal переводит статус события в STATUS из RFC 5545
func statusToICal(status models.EventStatus) string {
	// Событие под обменом или выставленное на обмен считаем
	// предварительным: оно может сменить владельца
	if status == models.StatusSwappable || status == models.StatusSwapPending {
		return "TENTATIVE"
	}
	return "CONFIRMED"
}
