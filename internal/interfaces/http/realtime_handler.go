package http

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/jhoicas/Turnos-api/internal/application/dto"
	"github.com/jhoicas/Turnos-api/internal/domain/repository"
	"github.com/jhoicas/Turnos-api/pkg/logger"
)

const sseHeartbeat = 25 * time.Second

// RealtimeHandler reenvía el canal de cambios como Server-Sent Events.
type RealtimeHandler struct {
	feed repository.ChangeFeed
	log  *logger.Logger
}

// NewRealtimeHandler construye el handler SSE.
func NewRealtimeHandler(feed repository.ChangeFeed, log *logger.Logger) *RealtimeHandler {
	return &RealtimeHandler{feed: feed, log: log.Component("sse")}
}

// topicFor filtro de visibilidad por tabla; ok=false si la tabla no se publica.
func topicFor(table string, a actorView) (repository.Topic, bool) {
	t := repository.Topic{Table: table}
	switch table {
	case repository.TableEmployees, repository.TableShifts:
	case repository.TableMessages:
		t.Filter = repository.Eq("recipient_id", a.userID).Or(repository.Eq("sender_id", a.userID))
	case repository.TableTimeOffRequests, repository.TableTimeOffBalances:
		if !a.manager {
			t.Filter = repository.Eq("employee_id", a.employeeID)
		}
	default:
		return t, false
	}
	return t, true
}

type actorView struct {
	userID     string
	employeeID string
	manager    bool
}

// Stream godoc
// @Summary      Cambios en vivo de una tabla (SSE)
// @Description  Emite eventos "change" con {table, type, record, old_record}. Mensajes y ausencias
// @Description  se filtran a los visibles para el usuario.
// @Tags         realtime
// @Security     Bearer
// @Produce      text/event-stream
// @Param        table  path  string  true  "employees | shifts | time_off_requests | time_off_balances | messages"
// @Success      200
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/realtime/{table} [get]
func (h *RealtimeHandler) Stream(c *fiber.Ctx) error {
	a := actor(c)
	topic, ok := topicFor(c.Params("table"), actorView{userID: a.UserID, employeeID: a.EmployeeID, manager: a.IsManager()})
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "tabla no publicada"})
	}

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := h.feed.Subscribe(ctx, topic)
	if err != nil {
		cancel()
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	log := h.log.Zerolog().With().Str("table", topic.Table).Str("user_id", a.UserID).Logger()
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()
		defer sub.Close()
		log.Debug().Msg("cliente SSE conectado")

		ping := time.NewTicker(sseHeartbeat)
		defer ping.Stop()
		if !writeFrame(w, "ready", []byte(`{}`)) {
			return
		}
		for {
			select {
			case ev, ok := <-sub.Events():
				if !ok {
					if err := sub.Err(); err != nil {
						log.Warn().Err(err).Msg("suscripción descartada")
						payload, _ := json.Marshal(fiber.Map{"error": err.Error()})
						writeFrame(w, "resync", payload)
					}
					return
				}
				payload, err := json.Marshal(ev)
				if err != nil {
					log.Error().Err(err).Msg("no se pudo serializar el evento")
					continue
				}
				if !writeFrame(w, "change", payload) {
					log.Debug().Msg("cliente SSE desconectado")
					return
				}
			case <-ping.C:
				if _, err := w.WriteString(": ping\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))
	return nil
}

func writeFrame(w *bufio.Writer, event string, data []byte) bool {
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return false
	}
	return w.Flush() == nil
}
