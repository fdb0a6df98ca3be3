package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"budgets/internal/core"
	"budgets/internal/log"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	})
}

// handleReady checks templates and, when the backend has one, the store
// connection.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]string)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	switch {
	case s.pinger == nil:
		checks["store"] = "ok"
	default:
		if err := s.pinger.Ping(ctx); err != nil {
			checks["store"] = "failed: " + err.Error()
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["store"] = "ok"
		}
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type indexData struct {
	Contacts  []core.Contact
	ContactID int64
	Table     tableData
	ShowTable bool
	LoadError string
}

// handleIndex renders the page: contact selector, create form and, when a
// contact is selected via ?contact_id=, its budget table.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := indexData{ContactID: queryContactID(r)}

	contacts, err := s.budgets.Contacts(ctx)
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Contact lookup failed", log.FieldError, err)
		data.LoadError = "Contacts could not be loaded"
	}
	data.Contacts = contacts

	if data.ContactID == 0 && len(contacts) > 0 {
		data.ContactID = contacts[0].ID
	}
	if data.ContactID > 0 {
		table, err := s.loadTable(ctx, data.ContactID)
		if err != nil {
			log.FromContext(ctx).ErrorContext(ctx, "Budget listing failed",
				log.FieldError, err,
				log.FieldContactID, data.ContactID)
			data.LoadError = "Budgets could not be loaded"
		} else {
			data.Table = table
			data.ShowTable = true
		}
	}

	s.render(w, r, http.StatusOK, "index.html", data)
}
