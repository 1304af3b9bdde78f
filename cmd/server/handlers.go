package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/fleetpay/fleetpay/internal/config"
	"github.com/fleetpay/fleetpay/internal/fleet"
	"github.com/fleetpay/fleetpay/internal/isk"
	"github.com/fleetpay/fleetpay/internal/models"
	"github.com/fleetpay/fleetpay/internal/payout"
	"github.com/fleetpay/fleetpay/internal/service"
	"github.com/fleetpay/fleetpay/internal/storage"
	"github.com/fleetpay/fleetpay/internal/wallet"
)

// server bundles the handlers' dependencies.
type server struct {
	cfg      *config.Config
	store    storage.Store
	svc      *service.PayoutService
	importer *fleet.Importer
	verifier func(journal wallet.JournalSource) *wallet.Verifier
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/fleets", s.handleCreateFleet)
	mux.HandleFunc("GET /api/fleets/{id}", s.handleGetFleet)
	mux.HandleFunc("POST /api/fleets/{id}/participants", s.handleImportRoster)
	mux.HandleFunc("POST /api/pools", s.handleCreatePool)
	mux.HandleFunc("GET /api/pools/{id}", s.handleGetPool)
	mux.HandleFunc("POST /api/pools/{id}/appraise", s.handleAppraise)
	mux.HandleFunc("POST /api/pools/{id}/reappraise", s.handleReappraise)
	mux.HandleFunc("POST /api/pools/{id}/payouts", s.handleMaterialize)
	mux.HandleFunc("GET /api/pools/{id}/payouts", s.handleListPayouts)
	mux.HandleFunc("POST /api/pools/{id}/status", s.handleAdvance)
	mux.HandleFunc("POST /api/pools/{id}/verify", s.handleVerify)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, storage.ErrNotFound) {
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
		return false
	}
	return true
}

// pctOrDefault parses an optional percentage field.
func pctOrDefault(s string, def decimal.Decimal) (decimal.Decimal, error) {
	if s == "" {
		return def, nil
	}
	return decimal.NewFromString(s)
}

func (s *server) handleCreateFleet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name          string `json:"name"`
		FCCharacterID int64  `json:"fc_character_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	f := &models.Fleet{Name: req.Name, FCCharacterID: req.FCCharacterID}
	if err := s.store.CreateFleet(r.Context(), f); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, fleetResponse(f, nil))
}

func (s *server) handleGetFleet(w http.ResponseWriter, r *http.Request) {
	f, err := s.store.GetFleet(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	roster, err := s.store.ListParticipants(r.Context(), f.ID, false)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fleetResponse(f, roster))
}

// rosterRequest is a request-supplied fleet composition: the caller
// submits the member list instead of the server polling an API.
type rosterRequest struct {
	Members []struct {
		CharacterID   int64  `json:"character_id"`
		CharacterName string `json:"character_name"`
		JoinTime      int64  `json:"join_time,omitempty"`
	} `json:"members"`
}

func (rr *rosterRequest) FleetMembers(_ context.Context, _ int64) ([]fleet.Member, error) {
	members := make([]fleet.Member, len(rr.Members))
	for i, m := range rr.Members {
		members[i] = fleet.Member{
			CharacterID:   m.CharacterID,
			CharacterName: m.CharacterName,
		}
		if m.JoinTime != 0 {
			members[i].JoinTime = time.Unix(m.JoinTime, 0)
		}
	}
	return members, nil
}

func (s *server) handleImportRoster(w http.ResponseWriter, r *http.Request) {
	var req rosterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := s.importer.Import(r.Context(), r.PathValue("id"), 0, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"added":          res.Added,
		"skipped":        res.Skipped,
		"unique_players": res.UniquePlayers,
	})
}

func (s *server) handleCreatePool(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FleetID       string `json:"fleet_id"`
		RawLootText   string `json:"raw_loot_text"`
		CorpSharePct  string `json:"corp_share_pct,omitempty"`
		ScoutBonusPct string `json:"scout_bonus_pct,omitempty"`
		PricingMethod string `json:"pricing_method,omitempty"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	corp, err := pctOrDefault(req.CorpSharePct, s.cfg.CorpSharePct)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid corp_share_pct"})
		return
	}
	bonus, err := pctOrDefault(req.ScoutBonusPct, s.cfg.ScoutBonusPct)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid scout_bonus_pct"})
		return
	}
	method := models.PricingMethod(req.PricingMethod)
	if method == "" {
		method = models.PricingJaniceBuy
	}
	pool, err := s.svc.CreatePool(r.Context(), req.FleetID, req.RawLootText, corp, bonus, method)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, poolResponse(pool, nil))
}

func (s *server) handleGetPool(w http.ResponseWriter, r *http.Request) {
	pool, err := s.store.GetPool(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	summary, err := s.svc.Summarize(r.Context(), pool.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, poolResponse(pool, summary))
}

// handleAppraise runs the appraisal asynchronously; the client polls
// the pool status for the outcome.
func (s *server) handleAppraise(w http.ResponseWriter, r *http.Request) {
	poolID := r.PathValue("id")
	if _, err := s.store.GetPool(r.Context(), poolID); err != nil {
		writeError(w, err)
		return
	}
	go func() {
		if err := s.svc.Appraise(context.Background(), poolID); err != nil {
			slog.Error("Background appraisal failed", "pool_id", poolID, "error", err)
		}
	}()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": string(models.PoolStatusValuing)})
}

func (s *server) handleReappraise(w http.ResponseWriter, r *http.Request) {
	poolID := r.PathValue("id")
	if _, err := s.store.GetPool(r.Context(), poolID); err != nil {
		writeError(w, err)
		return
	}
	go func() {
		if err := s.svc.Reappraise(context.Background(), poolID); err != nil {
			slog.Error("Background re-appraisal failed", "pool_id", poolID, "error", err)
		}
	}()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": string(models.PoolStatusValuing)})
}

func (s *server) handleMaterialize(w http.ResponseWriter, r *http.Request) {
	n, err := s.svc.Materialize(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"created": n})
}

func (s *server) handleListPayouts(w http.ResponseWriter, r *http.Request) {
	var statuses []models.PayoutStatus
	if st := r.URL.Query().Get("status"); st != "" {
		statuses = append(statuses, models.PayoutStatus(st))
	}
	payouts, err := s.store.ListPayouts(r.Context(), r.PathValue("id"), statuses...)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]map[string]any, len(payouts))
	for i := range payouts {
		out[i] = payoutResponse(&payouts[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{"payouts": out})
}

func (s *server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.svc.Advance(r.Context(), r.PathValue("id"), models.PoolStatus(req.Status)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

// journalRequest is a request-supplied wallet journal slice to match
// pending payouts against.
type journalRequest struct {
	Entries []struct {
		ID            int64  `json:"id"`
		RefType       string `json:"ref_type"`
		Amount        string `json:"amount"`
		SecondPartyID int64  `json:"second_party_id"`
		Date          int64  `json:"date"`
	} `json:"entries"`
}

func (jr *journalRequest) WalletJournal(_ context.Context, _ int64) ([]wallet.JournalEntry, error) {
	entries := make([]wallet.JournalEntry, 0, len(jr.Entries))
	for _, e := range jr.Entries {
		amount, err := isk.FromString(e.Amount)
		if err != nil {
			return nil, err
		}
		entries = append(entries, wallet.JournalEntry{
			ID:            e.ID,
			RefType:       e.RefType,
			Amount:        amount,
			SecondPartyID: e.SecondPartyID,
			Date:          time.Unix(e.Date, 0),
		})
	}
	return entries, nil
}

func (s *server) handleVerify(w http.ResponseWriter, r *http.Request) {
	poolID := r.PathValue("id")
	var req journalRequest
	if !decodeBody(w, r, &req) {
		return
	}
	pool, err := s.store.GetPool(r.Context(), poolID)
	if err != nil {
		writeError(w, err)
		return
	}
	f, err := s.store.GetFleet(r.Context(), pool.FleetID)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := s.verifier(&req).VerifyPayouts(r.Context(), poolID, f.FCCharacterID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"verified": res.Verified,
		"pending":  res.Pending,
		"errors":   res.Errors,
	})
}

func fleetResponse(f *models.Fleet, roster []models.FleetParticipant) map[string]any {
	out := map[string]any{
		"id":              f.ID,
		"name":            f.Name,
		"fc_character_id": f.FCCharacterID,
		"status":          f.Status,
		"created_at":      f.CreatedAt,
	}
	if roster != nil {
		members := make([]map[string]any, len(roster))
		for i, p := range roster {
			members[i] = map[string]any{
				"character_id":        p.CharacterID,
				"character_name":      p.CharacterName,
				"main_character_id":   p.MainCharacterID,
				"main_character_name": p.MainCharacterName,
				"role":                p.Role,
				"excluded":            p.Excluded,
				"active":              p.Active(),
			}
		}
		out["participants"] = members
	}
	return out
}

func poolResponse(p *models.Pool, summary *payout.Summary) map[string]any {
	out := map[string]any{
		"id":              p.ID,
		"fleet_id":        p.FleetID,
		"status":          p.Status,
		"pricing_method":  p.PricingMethod,
		"corp_share_pct":  p.CorpSharePct.String(),
		"scout_bonus_pct": p.ScoutBonusPct.String(),
		"total_value":     p.TotalValue.StringFixed(2),
		"created_at":      p.CreatedAt,
		"valued_at":       p.ValuedAt,
	}
	if len(p.Items) > 0 {
		items := make([]map[string]any, len(p.Items))
		for i, it := range p.Items {
			items[i] = map[string]any{
				"type_id":     it.TypeID,
				"name":        it.Name,
				"quantity":    it.Quantity,
				"unit_price":  it.UnitPrice.StringFixed(2),
				"total_value": it.TotalValue.StringFixed(2),
				"source":      it.Source,
			}
		}
		out["items"] = items
	}
	if summary != nil {
		out["summary"] = map[string]any{
			"total_loot":       isk.Format(summary.TotalLoot),
			"corp_share":       isk.Format(summary.CorpShare),
			"participant_pool": isk.Format(summary.ParticipantPool),
			"eligible_count":   summary.EligibleCount,
			"scout_count":      summary.ScoutCount,
			"base_share":       isk.Format(summary.BaseShare),
			"scout_share":      isk.Format(summary.ScoutShare),
			"total_payouts":    isk.Format(summary.TotalPayouts),
			"final_corp_share": isk.Format(summary.FinalCorpShare),
		}
	}
	return out
}

func payoutResponse(p *models.Payout) map[string]any {
	return map[string]any{
		"id":              p.ID,
		"recipient_id":    p.RecipientID,
		"recipient_name":  p.RecipientName,
		"amount":          p.Amount.StringFixed(2),
		"status":          p.Status,
		"method":          p.Method,
		"is_scout":        p.IsScout,
		"verified":        p.Verified,
		"verified_at":     p.VerifiedAt,
		"transaction_ref": p.TransactionRef,
	}
}
