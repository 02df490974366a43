/*
portal.go - Customer portal handlers

PURPOSE:
  The endpoints a customer reaches from the contract email. Every call is
  authorized by the order's access token, passed as the access_token query
  parameter or in the JSON body.

ENDPOINTS:
  POST /my/orders/{id}/payment_term         Pick a term; always 200 with
                                            {success, message} or {success, error}
  POST /my/orders/{id}/installments_preview Installments a term would produce
  GET  /my/contract/{id}                    Contract view
  POST /my/contract/{id}/sign               Store the signature
*/
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// UpdatePaymentTerm answers with a PortalResult; failures are reported in
// the body, not the status code.
func (h *Handler) UpdatePaymentTerm(w http.ResponseWriter, r *http.Request) {
	req, ok := decodePortalRequest(w, r)
	if !ok {
		return
	}
	res := h.Service.PortalUpdateTerm(r.Context(), orderID(r), req.TermID, accessToken(r, req.AccessToken))
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) PreviewInstallments(w http.ResponseWriter, r *http.Request) {
	req, ok := decodePortalRequest(w, r)
	if !ok {
		return
	}
	preview, err := h.Service.PreviewTerm(r.Context(), orderID(r), req.TermID, accessToken(r, req.AccessToken))
	if err != nil {
		h.writeServiceError(w, "Failed to preview installments", err)
		return
	}
	writeJSON(w, http.StatusOK, toPreviewDTO(preview))
}

func (h *Handler) ViewContract(w http.ResponseWriter, r *http.Request) {
	view, err := h.Service.ViewContract(r.Context(), orderID(r), accessToken(r, ""))
	if err != nil {
		h.writeServiceError(w, "Failed to load contract", err)
		return
	}

	dto := ContractViewDTO{
		Order:         toOrderDTO(view.Order),
		Summary:       view.Summary,
		TotalInWords:  view.TotalInWords,
		SignDate:      view.SignDate.String(),
		Installments:  toInstallmentDTOs(view.Order, view.Installments),
		ScheduleTotal: view.ScheduleTotal,
		Signed:        view.Signed,
		SignedBy:      view.SignedBy,
	}
	writeJSON(w, http.StatusOK, dto)
}

func (h *Handler) SignContract(w http.ResponseWriter, r *http.Request) {
	var req SignContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	redirect, err := h.Service.SignContract(r.Context(), orderID(r), accessToken(r, ""), req.Name, req.Signature)
	if err != nil {
		h.writeServiceError(w, "Failed to sign contract", err)
		return
	}
	writeJSON(w, http.StatusOK, SignContractResponse{Redirect: redirect})
}

// decodePortalRequest accepts an empty body.
func decodePortalRequest(w http.ResponseWriter, r *http.Request) (PortalTermRequest, bool) {
	var req PortalTermRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return req, false
	}
	return req, true
}

// accessToken prefers the query parameter over the body field.
func accessToken(r *http.Request, fromBody string) string {
	if t := r.URL.Query().Get("access_token"); t != "" {
		return t
	}
	return fromBody
}
