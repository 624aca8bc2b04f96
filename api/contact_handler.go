package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sfrosal/portfolio-api/errs"
	"github.com/sfrosal/portfolio-api/services"
)

// mailer is the slice of the email relay the handler needs.
type mailer interface {
	SendContactEmail(ctx context.Context, msg services.ContactMessage) error
}

type contactHandler struct {
	responder Responder
	logger    zerolog.Logger
	mailer    mailer
}

func newContactHandler(mailer mailer) contactHandler {
	logger := log.With().Str("handlerName", "contactHandler").Logger()

	return contactHandler{
		responder: NewResponder(logger),
		logger:    logger,
		mailer:    mailer,
	}
}

// submit validates a contact-form submission and relays it by email. Invalid
// payloads never reach the mail transport.
func (h contactHandler) submit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var msg services.ContactMessage
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			h.responder.WriteError(w, errs.NewMalformedPayloadError(err))
			return
		}

		if err := msg.Validate(); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.mailer.SendContactEmail(r.Context(), msg); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, map[string]interface{}{
			"success": true,
			"message": "message sent, we will be in touch soon",
		})
	}
}
