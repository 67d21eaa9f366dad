package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/vendor-outreach/internal/db"
	"github.com/jonathan/vendor-outreach/internal/mail"
	"github.com/jonathan/vendor-outreach/internal/outreach"
	"github.com/jonathan/vendor-outreach/internal/types"
)

// handleStartOutreach dispatches the first inquiry for a vendor.
// POST /vendors/{id}/outreach
func (s *Server) handleStartOutreach(w http.ResponseWriter, r *http.Request) {
	vendorID, err := pathUUID(r)
	if err != nil {
		s.errorFor(w, err)
		return
	}

	result, err := s.dispatcher.Start(r.Context(), vendorID)
	if err != nil {
		s.errorFor(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// approveRequest accepts a single vendor or a batch
type approveRequest struct {
	VendorID   string   `json:"vendor_id,omitempty"`
	VendorIDs  []string `json:"vendor_ids,omitempty"`
	ApprovedBy string   `json:"approved_by" validate:"required"`
}

// handleApproveOutreach records human approval and triggers dispatch.
// POST /outreach/approve
func (s *Server) handleApproveOutreach(w http.ResponseWriter, r *http.Request) {
	var req approveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorFor(w, &ErrValidation{Field: "body", Message: "invalid JSON"})
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.errorFor(w, &ErrValidation{Field: "approved_by", Message: "is required"})
		return
	}
	if req.VendorID == "" && len(req.VendorIDs) == 0 {
		s.errorFor(w, &ErrValidation{Field: "vendor_id", Message: "vendor_id or vendor_ids is required"})
		return
	}

	if req.VendorID != "" {
		vendorID, err := uuid.Parse(req.VendorID)
		if err != nil {
			s.errorFor(w, &ErrValidation{Field: "vendor_id", Message: "must be a UUID"})
			return
		}
		result, err := s.dispatcher.Approve(r.Context(), vendorID, req.ApprovedBy)
		if err != nil {
			s.errorFor(w, err)
			return
		}
		s.jsonResponse(w, http.StatusOK, result)
		return
	}

	ids := make([]uuid.UUID, 0, len(req.VendorIDs))
	for _, raw := range req.VendorIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			s.errorFor(w, &ErrValidation{Field: "vendor_ids", Message: fmt.Sprintf("%q is not a UUID", raw)})
			return
		}
		ids = append(ids, id)
	}
	results := s.dispatcher.BulkApprove(r.Context(), ids, req.ApprovedBy)
	s.jsonResponse(w, http.StatusOK, map[string]any{"results": results})
}

// replyRequest carries a human-authored reply to an escalated thread
type replyRequest struct {
	Body string `json:"body" validate:"required"`
}

// handleReplyToThread sends a human reply on an escalated thread and puts
// it back into the automated loop.
// POST /threads/{id}/reply
func (s *Server) handleReplyToThread(w http.ResponseWriter, r *http.Request) {
	threadID, err := pathUUID(r)
	if err != nil {
		s.errorFor(w, err)
		return
	}

	var req replyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorFor(w, &ErrValidation{Field: "body", Message: "invalid JSON"})
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.errorFor(w, &ErrValidation{Field: "body", Message: "is required"})
		return
	}

	tc, err := s.store.GetThreadContext(r.Context(), threadID)
	if err != nil {
		s.errorFor(w, err)
		return
	}
	if tc == nil {
		s.errorFor(w, &ErrThreadNotFound{ThreadID: threadID})
		return
	}
	if tc.Thread.Status != types.StatusEscalation {
		s.errorFor(w, &ErrConflict{Message: fmt.Sprintf("thread is %s, only escalated threads accept replies", tc.Thread.Status)})
		return
	}

	// The trail records the human's intervention before the send; the log
	// seq doubles as the dedup discriminator for repeated submissions.
	step, err := s.store.AppendLog(r.Context(), threadID, types.StepHumanReply, map[string]any{
		"body_length": len(req.Body),
	})
	if err != nil {
		s.errorFor(w, err)
		return
	}

	dedupKey := fmt.Sprintf("humanreply:%s:%d", threadID, step.Seq)
	_, _, err = s.sender.Send(r.Context(), threadID, types.SenderHuman, mail.SendRequest{
		To:               tc.Vendor.ContactEmail,
		Subject:          "Re: " + outreach.FirstMessageSubject(tc.Event.Name, tc.Vendor.Category),
		Body:             req.Body,
		ProviderThreadID: tc.Thread.ProviderThreadID,
	}, dedupKey)
	if err != nil {
		s.errorFor(w, err)
		return
	}

	now := time.Now()
	moved, err := s.store.TransitionThread(r.Context(), threadID, types.StatusEscalation, types.StatusWaiting, db.ThreadMutation{
		ClearEscalation: true,
		LastTouch:       &now,
	})
	if err != nil {
		s.errorFor(w, err)
		return
	}
	if !moved {
		s.errorFor(w, &ErrConflict{Message: "thread state changed while replying"})
		return
	}

	// The thread is waiting again, so the nudge cycle resumes. The
	// scheduler caps total follow-ups regardless of attempt numbers.
	if _, err := s.store.ArmTimer(r.Context(), threadID, now.Add(s.followUpDelay), tc.Thread.FollowUpCount+1); err != nil {
		s.errorFor(w, err)
		return
	}

	thread, err := s.store.GetThread(r.Context(), threadID)
	if err != nil {
		s.errorFor(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, thread)
}

// statusRequest carries a manual status override
type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

// handleUpdateThreadStatus manually overrides a thread's status.
// PATCH /threads/{id}/status
func (s *Server) handleUpdateThreadStatus(w http.ResponseWriter, r *http.Request) {
	threadID, err := pathUUID(r)
	if err != nil {
		s.errorFor(w, err)
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorFor(w, &ErrValidation{Field: "body", Message: "invalid JSON"})
		return
	}
	target := types.ThreadStatus(req.Status)
	if !types.IsValidStatus(target) {
		s.errorFor(w, &ErrInvalidStatus{Status: req.Status})
		return
	}

	thread, err := s.store.GetThread(r.Context(), threadID)
	if err != nil {
		s.errorFor(w, err)
		return
	}
	if thread == nil {
		s.errorFor(w, &ErrThreadNotFound{ThreadID: threadID})
		return
	}

	if _, err := s.store.AppendLog(r.Context(), threadID, types.StepStatusOverride, map[string]any{
		"from": string(thread.Status),
		"to":   string(target),
	}); err != nil {
		s.errorFor(w, err)
		return
	}

	if _, err := s.store.OverrideThreadStatus(r.Context(), threadID, target); err != nil {
		s.errorFor(w, err)
		return
	}

	updated, err := s.store.GetThread(r.Context(), threadID)
	if err != nil {
		s.errorFor(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, updated)
}

// handleGetThread returns the denormalized thread read model.
// GET /threads/{id}
func (s *Server) handleGetThread(w http.ResponseWriter, r *http.Request) {
	threadID, err := pathUUID(r)
	if err != nil {
		s.errorFor(w, err)
		return
	}

	tc, err := s.store.GetThreadContext(r.Context(), threadID)
	if err != nil {
		s.errorFor(w, err)
		return
	}
	if tc == nil {
		s.errorFor(w, &ErrThreadNotFound{ThreadID: threadID})
		return
	}
	s.jsonResponse(w, http.StatusOK, tc)
}

// handleGetPendingApproval lists threads awaiting outreach approval for an
// event.
// GET /events/{id}/pending-approval
func (s *Server) handleGetPendingApproval(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathUUID(r)
	if err != nil {
		s.errorFor(w, err)
		return
	}

	threads, err := s.store.ListPendingApproval(r.Context(), eventID)
	if err != nil {
		s.errorFor(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"threads": threads})
}
