package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/armsx2/site-api/internal/email"
)

// ContactRequest is the body of POST /api/send-email.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// ContactResponse confirms a relayed message.
type ContactResponse struct {
	Message string `json:"message"`
}

func handleContact(logger *slog.Logger, mailer *email.Service, recipient string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ContactRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		req.Name = strings.TrimSpace(req.Name)
		req.Email = strings.TrimSpace(req.Email)
		req.Message = strings.TrimSpace(req.Message)
		if req.Name == "" || req.Email == "" || req.Message == "" {
			writeError(w, http.StatusBadRequest, "name, email, and message are required")
			return
		}

		if mailer == nil || !mailer.IsConfigured() || recipient == "" {
			writeError(w, http.StatusInternalServerError, "contact relay is not configured")
			return
		}

		subject := "Contact request from " + req.Name
		body := fmt.Sprintf("From: %s <%s>\n\n%s", req.Name, req.Email, req.Message)
		if err := mailer.Send(recipient, subject, body); err != nil {
			logger.Error("relaying contact message", "error", err)
			writeError(w, http.StatusBadGateway, "could not send message")
			return
		}

		writeJSON(w, http.StatusOK, ContactResponse{Message: "Request sent successfully."})
	}
}
