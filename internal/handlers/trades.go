package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"giftswap/internal/middleware"
	"giftswap/internal/services"
	"giftswap/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.cards.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load cards")
		return
	}
	respondJSON(w, http.StatusOK, cards)
}

type submitTradeRequest struct {
	CardID      string   `json:"card_id"`
	Variant     string   `json:"variant"`
	Amount      string   `json:"amount"`
	Code        string   `json:"code"`
	EvidenceIDs []string `json:"evidence_ids"`
}

func (h *Handler) SubmitTrade(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req submitTradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	tradeID, err := h.tradeService.Submit(r.Context(), services.SubmitTradeRequest{
		UserID:      userID,
		CardID:      req.CardID,
		Variant:     req.Variant,
		Amount:      req.Amount,
		Code:        req.Code,
		EvidenceIDs: req.EvidenceIDs,
	})
	if err != nil {
		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			respondJSON(w, http.StatusBadRequest, map[string]any{
				"error": "validation_failed",
				"rules": validationErr.Rules,
			})
			return
		}
		switch err {
		case services.ErrCardNotFound:
			respondError(w, http.StatusNotFound, "card_not_found")
		case services.ErrEvidenceMissing:
			respondError(w, http.StatusBadRequest, "evidence_not_found")
		default:
			respondError(w, http.StatusInternalServerError, "trade_submit_failed")
		}
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"trade_id": tradeID})
}

func (h *Handler) ListTrades(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit, offset := parsePagination(r)
	trades, err := h.trades.ListByUser(r.Context(), userID, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load trades")
		return
	}
	respondJSON(w, http.StatusOK, normalizeTrades(trades))
}

func (h *Handler) GetTrade(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	tradeID := chi.URLParam(r, "id")
	record, err := h.trades.GetByID(r.Context(), tradeID)
	if err != nil {
		respondError(w, http.StatusNotFound, "trade not found")
		return
	}
	if valueToString(record["user_id"]) != userID {
		respondError(w, http.StatusForbidden, "access denied")
		return
	}
	evidence, err := h.evidence.ListByTrade(r.Context(), tradeID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load evidence")
		return
	}
	urls := make([]string, 0, len(evidence))
	for _, item := range evidence {
		urls = append(urls, item.URL)
	}
	record = normalizeTrade(record)
	record["evidence_urls"] = urls
	respondJSON(w, http.StatusOK, record)
}

func (h *Handler) UploadEvidence(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	// 10 MB cap per image.
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart payload")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()
	uploadID := uuid.NewString()
	path, url, err := h.blobs.Save(userID, uploadID, header.Filename, file)
	if err != nil {
		if err == storage.ErrUnsupportedType {
			respondError(w, http.StatusBadRequest, "unsupported_file_type")
			return
		}
		respondError(w, http.StatusInternalServerError, "upload_failed")
		return
	}
	if err := h.evidence.Register(r.Context(), uploadID, userID, path, url); err != nil {
		respondError(w, http.StatusInternalServerError, "upload_failed")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{
		"id":  uploadID,
		"url": url,
	})
}

func parsePagination(r *http.Request) (int, int) {
	limit := 50
	offset := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}

func normalizeTrades(records []map[string]any) []map[string]any {
	normalized := make([]map[string]any, 0, len(records))
	for _, record := range records {
		normalized = append(normalized, normalizeTrade(record))
	}
	return normalized
}

func normalizeTrade(record map[string]any) map[string]any {
	record["face_value"] = valueToMoney(record["face_value_minor"])
	record["payout"] = valueToMoney(record["payout_minor"])
	return record
}
