package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/example/skiphire/internal/core/schedule"
	"github.com/example/skiphire/internal/ports/primary"
)

type skipRequest struct {
	SkipID int `json:"skip_id" validate:"required,gt=0"`
}

type placementRequest struct {
	Placement string `json:"placement" validate:"required,oneof=private public"`
}

type deliveryDateRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

type addressRequest struct {
	Address string `json:"address" validate:"max=500"`
}

type instructionsRequest struct {
	Instructions string `json:"instructions" validate:"max=1000"`
}

type customerRequest struct {
	Name  *string `json:"name" validate:"omitempty,max=200"`
	Email *string `json:"email" validate:"omitempty,max=254"`
	Phone *string `json:"phone" validate:"omitempty,max=32"`
}

type submitRequest struct {
	CardNumber      string `json:"card_number" validate:"required_without=PaymentMethodID,max=23"`
	Expiry          string `json:"expiry" validate:"required_without=PaymentMethodID,max=7"`
	CVV             string `json:"cvv" validate:"required_without=PaymentMethodID,max=4"`
	HolderName      string `json:"holder_name" validate:"required_without=PaymentMethodID,max=200"`
	BillingLine1    string `json:"billing_line1" validate:"required,max=200"`
	BillingLine2    string `json:"billing_line2" validate:"max=200"`
	BillingCity     string `json:"billing_city" validate:"required,max=100"`
	BillingPostcode string `json:"billing_postcode" validate:"required,max=10"`
	PaymentMethodID string `json:"payment_method_id"`
}

func (r submitRequest) details() primary.PaymentDetails {
	return primary.PaymentDetails{
		Card: primary.CardDetails{
			Number:     r.CardNumber,
			Expiry:     r.Expiry,
			CVV:        r.CVV,
			HolderName: r.HolderName,
		},
		Billing: primary.BillingAddress{
			Line1:    r.BillingLine1,
			Line2:    r.BillingLine2,
			City:     r.BillingCity,
			Postcode: r.BillingPostcode,
		},
		PaymentMethodID: r.PaymentMethodID,
	}
}

// ============================================================================
// Catalog
// ============================================================================

func (h *Handler) listSkips(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	includeForbidden, _ := strconv.ParseBool(q.Get("include_forbidden"))

	skips, err := h.catalog.ListSkips(r.Context(), primary.SkipFilters{
		Postcode:         strings.ToUpper(q.Get("postcode")),
		IncludeForbidden: includeForbidden,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, skips)
}

func (h *Handler) getSkip(w http.ResponseWriter, r *http.Request) {
	id, ok := skipIDParam(w, r)
	if !ok {
		return
	}
	skip, err := h.catalog.GetSkip(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, skip)
}

func (h *Handler) quoteSkip(w http.ResponseWriter, r *http.Request) {
	id, ok := skipIDParam(w, r)
	if !ok {
		return
	}
	quote, err := h.catalog.QuoteSkip(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func skipIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeMessage(w, http.StatusBadRequest, "invalid skip ID")
		return 0, false
	}
	return id, true
}

// ============================================================================
// Session
// ============================================================================

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request) {
	snap, err := h.booking.StartSession(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	h.respond(w)(h.booking.GetSnapshot(r.Context()))
}

func (h *Handler) endSession(w http.ResponseWriter, r *http.Request) {
	if err := h.booking.EndSession(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) selectSkip(w http.ResponseWriter, r *http.Request) {
	var req skipRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.respond(w)(h.booking.SelectSkip(r.Context(), req.SkipID))
}

func (h *Handler) setPlacement(w http.ResponseWriter, r *http.Request) {
	var req placementRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.respond(w)(h.booking.SetPlacement(r.Context(), req.Placement))
}

func (h *Handler) setDeliveryDate(w http.ResponseWriter, r *http.Request) {
	var req deliveryDateRequest
	if !h.decode(w, r, &req) {
		return
	}
	date, err := schedule.ParseDate(req.Date)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	h.respond(w)(h.booking.SetDeliveryDate(r.Context(), date))
}

func (h *Handler) clearDeliveryDate(w http.ResponseWriter, r *http.Request) {
	h.respond(w)(h.booking.ClearDeliveryDate(r.Context()))
}

func (h *Handler) setAddress(w http.ResponseWriter, r *http.Request) {
	var req addressRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.respond(w)(h.booking.SetDeliveryAddress(r.Context(), req.Address))
}

func (h *Handler) setInstructions(w http.ResponseWriter, r *http.Request) {
	var req instructionsRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.respond(w)(h.booking.SetSpecialInstructions(r.Context(), req.Instructions))
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.respond(w)(h.booking.UpdateCustomerDetails(r.Context(), primary.CustomerUpdate{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	}))
}

func (h *Handler) uploadPhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoBytes)
	file, header, err := r.FormFile("photo")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "multipart field \"photo\" is required")
		return
	}
	defer file.Close()

	h.respond(w)(h.booking.UploadPhoto(r.Context(), primary.UploadPhotoRequest{
		Filename: header.Filename,
		Content:  file,
	}))
}

func (h *Handler) clearPhoto(w http.ResponseWriter, r *http.Request) {
	h.respond(w)(h.booking.SetPhotoUploaded(r.Context(), false))
}

func (h *Handler) validateField(w http.ResponseWriter, r *http.Request) {
	h.respond(w)(h.booking.ValidateField(r.Context(), chi.URLParam(r, "field")))
}

func (h *Handler) clearError(w http.ResponseWriter, r *http.Request) {
	h.respond(w)(h.booking.ClearError(r.Context(), chi.URLParam(r, "field")))
}

func (h *Handler) advance(w http.ResponseWriter, r *http.Request) {
	resp, err := h.booking.Advance(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) retreat(w http.ResponseWriter, r *http.Request) {
	resp, err := h.booking.Retreat(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// submit answers 200 on success, 422 when payment fields need correcting
// and 402 when the gateway declined or failed.
func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.booking.Submit(r.Context(), req.details())
	if err != nil {
		h.writeError(w, err)
		return
	}

	status := http.StatusOK
	switch {
	case resp.Success:
	case resp.Invalid:
		status = http.StatusUnprocessableEntity
	default:
		status = http.StatusPaymentRequired
	}
	writeJSON(w, status, resp)
}

// ============================================================================
// Helpers
// ============================================================================

func (h *Handler) respond(w http.ResponseWriter) func(*primary.Snapshot, error) {
	return func(snap *primary.Snapshot, err error) {
		if err != nil {
			h.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

// decode reads a JSON body into dst and validates it.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeMessage(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request body", "fields": fields})
			return false
		}
		writeMessage(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, primary.ErrNoSession), errors.Is(err, primary.ErrSkipNotFound):
		return http.StatusNotFound
	case errors.Is(err, primary.ErrRejected), errors.Is(err, primary.ErrNotReadyToSubmit):
		return http.StatusUnprocessableEntity
	case errors.Is(err, primary.ErrSubmissionInProgress):
		return http.StatusConflict
	case errors.Is(err, primary.ErrRetryThrottled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.Error(err))
		writeMessage(w, status, "internal error")
		return
	}
	writeMessage(w, status, err.Error())
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
