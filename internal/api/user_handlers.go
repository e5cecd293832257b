package api

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/leeaandrob/coinpulse/internal/models"
	"github.com/leeaandrob/coinpulse/internal/storage"
)

// ============================================================================
// USER
// ============================================================================

// PostUserSync makes sure a user record exists for the caller.
func (h *Handlers) PostUserSync(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.EnsureUser(r.Context(), externalID(r.Context()))
	if err != nil {
		log.Error().Err(err).Msg("Failed to sync user")
		respondError(w, http.StatusInternalServerError, "Failed to sync user")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"id":         user.ID,
		"externalId": user.ExternalID,
	})
}

// ============================================================================
// VOTES
// ============================================================================

type voteBody struct {
	Section   string `json:"section" validate:"required,oneof=prices news insight meme"`
	ContentID string `json:"contentId" validate:"required,max=512"`
	Vote      int    `json:"vote" validate:"oneof=1 -1"`
}

// PostVote toggles the caller's vote on a piece of content.
func (h *Handlers) PostVote(w http.ResponseWriter, r *http.Request) {
	var body voteBody
	if err := h.decode(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	user, err := h.users.UserByExternalID(r.Context(), externalID(r.Context()))
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to record vote")
		return
	}

	vote, err := h.users.CastVote(r.Context(), user.ID, models.Section(body.Section), body.ContentID, body.Vote)
	if err != nil {
		log.Error().Err(err).Str("section", body.Section).Msg("Failed to record vote")
		respondError(w, http.StatusInternalServerError, "Failed to record vote")
		return
	}

	if vote == 0 {
		respondJSON(w, http.StatusOK, map[string]interface{}{"vote": nil})
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"vote": vote})
}

// GetVotes returns the caller's votes in a section keyed by content id.
func (h *Handlers) GetVotes(w http.ResponseWriter, r *http.Request) {
	section := models.Section(r.URL.Query().Get("section"))
	if !h.registry.ValidSection(section) {
		respondError(w, http.StatusBadRequest, "Invalid section")
		return
	}

	user, err := h.users.UserByExternalID(r.Context(), externalID(r.Context()))
	if errors.Is(err, storage.ErrNotFound) {
		respondJSON(w, http.StatusOK, map[string]interface{}{"votes": map[string]int{}})
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch votes")
		return
	}

	votes, err := h.users.SectionVotes(r.Context(), user.ID, section)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch votes")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"votes": votes})
}

// ============================================================================
// ONBOARDING & PREFERENCES
// ============================================================================

type onboardingBody struct {
	Assets       []string `json:"assets" validate:"required,min=1,max=16,dive,required"`
	InvestorType string   `json:"investorType" validate:"required"`
	ContentTypes []string `json:"contentTypes" validate:"required,min=1,dive,required"`
}

// PostOnboarding stores the caller's onboarding choices.
func (h *Handlers) PostOnboarding(w http.ResponseWriter, r *http.Request) {
	var body onboardingBody
	if err := h.decode(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	assets, ok := h.knownSymbols(body.Assets)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid assets")
		return
	}
	persona := models.Persona(body.InvestorType)
	if _, ok := h.registry.Persona(persona); !ok {
		respondError(w, http.StatusBadRequest, "Invalid investor type")
		return
	}
	for _, c := range body.ContentTypes {
		if !h.registry.ValidContentType(c) {
			respondError(w, http.StatusBadRequest, "Invalid content types")
			return
		}
	}

	user, err := h.users.EnsureUser(r.Context(), externalID(r.Context()))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to save preferences")
		return
	}

	err = h.users.SavePreferences(r.Context(), &models.Preferences{
		UserID:       user.ID,
		Assets:       assets,
		InvestorType: persona,
		ContentTypes: body.ContentTypes,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to save preferences")
		respondError(w, http.StatusInternalServerError, "Failed to save preferences")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// GetPreferences returns the caller's stored preferences.
func (h *Handlers) GetPreferences(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.UserByExternalID(r.Context(), externalID(r.Context()))
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch preferences")
		return
	}

	prefs, err := h.users.GetPreferences(r.Context(), user.ID)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "No preferences found. Complete onboarding first.")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch preferences")
		return
	}

	respondJSON(w, http.StatusOK, prefs)
}

type preferencesPatch struct {
	Assets []string `json:"assets" validate:"required,min=1,max=16,dive,required"`
}

// PatchPreferences replaces the caller's tracked assets.
func (h *Handlers) PatchPreferences(w http.ResponseWriter, r *http.Request) {
	var body preferencesPatch
	if err := h.decode(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid assets")
		return
	}
	assets, ok := h.knownSymbols(body.Assets)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid assets")
		return
	}

	user, err := h.users.UserByExternalID(r.Context(), externalID(r.Context()))
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update preferences")
		return
	}

	err = h.users.UpdateAssets(r.Context(), user.ID, assets)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "No preferences found. Complete onboarding first.")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update preferences")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "assets": assets})
}
