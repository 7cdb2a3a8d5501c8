package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"notifier/internal/domain"
)

type templateRequest struct {
	Kind     string `json:"kind"`
	Category string `json:"category"`
	Body     string `json:"body"`
}

var validKinds = map[domain.NotificationKind]bool{
	domain.KindExpired:  true,
	domain.KindExpiring: true,
	domain.KindBilling:  true,
}

// TemplatesList returns the seller's message templates.
func (a *App) TemplatesList(w http.ResponseWriter, r *http.Request) {
	sellerID := a.currentSellerID(r)
	if sellerID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing seller context")
		return
	}
	templates, err := a.Templates.ListBySeller(r.Context(), sellerID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	if templates == nil {
		templates = []domain.MessageTemplate{}
	}
	items := make([]map[string]any, 0, len(templates))
	for _, tpl := range templates {
		items = append(items, map[string]any{
			"id":         tpl.ID,
			"kind":       tpl.Kind,
			"category":   tpl.Category,
			"body":       tpl.Body,
			"updated_at": tpl.UpdatedAt,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

// TemplatesUpsert writes the seller's template for a (kind, category) slot.
func (a *App) TemplatesUpsert(w http.ResponseWriter, r *http.Request) {
	sellerID := a.currentSellerID(r)
	if sellerID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing seller context")
		return
	}
	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	kind := domain.NotificationKind(strings.ToLower(strings.TrimSpace(req.Kind)))
	if !validKinds[kind] {
		a.error(w, http.StatusBadRequest, "bad_request", "kind must be one of expired, expiring, billing")
		return
	}
	if strings.TrimSpace(req.Body) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "body is required")
		return
	}
	tpl := &domain.MessageTemplate{
		ID:       uuid.NewString(),
		SellerID: sellerID,
		Kind:     kind,
		Category: strings.TrimSpace(req.Category),
		Body:     req.Body,
	}
	if err := a.Templates.Upsert(r.Context(), tpl); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"id": tpl.ID, "kind": string(kind)})
}
